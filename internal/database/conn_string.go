package database

import (
	"fmt"
	"net/url"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/nft-marketplace/internal/config"
)

// BuildPostgresConnString builds a PostgreSQL connection string from config.
func BuildPostgresConnString(cfg config.DBConfig) string {
	// URL-encode password to handle special characters
	escapedPassword := url.QueryEscape(cfg.Password)

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		escapedPassword,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}

// BuildMySQLDSN builds a go-sql-driver DSN. parseTime is always enabled.
func BuildMySQLDSN(cfg config.MySQLConfig) string {
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = cfg.Addr
	mc.DBName = cfg.Name
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.ParseTime = true
	return mc.FormatDSN()
}
