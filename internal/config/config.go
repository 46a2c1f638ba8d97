package config

import "time"

// ServerConfig is the root configuration for a marketplace instance.
type ServerConfig struct {
	Instance    InstanceConfig    `yaml:"instance"`
	Marketplace MarketplaceConfig `yaml:"marketplace"`
	Server      ListenConfig      `yaml:"server"`
	Storage     StorageConfig     `yaml:"storage"`
	Redis       RedisConfig       `yaml:"redis"`
	Workers     WorkersConfig     `yaml:"workers"`
	Registry    RegistryConfig    `yaml:"registry"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// InstanceConfig identifies this server.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// MarketplaceConfig holds the ledger identity.
type MarketplaceConfig struct {
	Address          string `yaml:"address"`           // operator presented to the asset registry
	CurrencyDecimals *int32 `yaml:"currency_decimals"` // display only, amounts are always smallest units
}

// Decimals returns the configured display decimals. An explicit 0 is kept.
func (m MarketplaceConfig) Decimals() int32 {
	if m.CurrencyDecimals == nil {
		return DefaultCurrencyDecimals
	}
	return *m.CurrencyDecimals
}

// ListenConfig holds the transport listeners.
type ListenConfig struct {
	HTTPAddr        string        `yaml:"http_addr"`
	GRPCAddr        string        `yaml:"grpc_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

const (
	DriverMemory   = "memory"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// StorageConfig selects where ledger state is persisted.
type StorageConfig struct {
	Driver   string      `yaml:"driver"`
	Migrate  bool        `yaml:"migrate"` // create tables on startup
	MySQL    MySQLConfig `yaml:"mysql"`
	Postgres DBConfig    `yaml:"postgres"`
}

// MySQLConfig holds a MySQL connection.
type MySQLConfig struct {
	Addr            string        `yaml:"addr"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DBConfig holds a single PostgreSQL connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// RedisConfig holds request id deduplication and event fan-out settings.
type RedisConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Addr           string        `yaml:"addr"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	PoolSize       int           `yaml:"pool_size"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl"`
	EventsChannel  string        `yaml:"events_channel"`
}

// WorkersConfig sizes the commit pipeline.
type WorkersConfig struct {
	Count        int           `yaml:"count"`
	QueueSize    int           `yaml:"queue_size"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RegistryConfig seeds the in-memory asset registry.
type RegistryConfig struct {
	Items []SeedItem `yaml:"items"`
}

// SeedItem is one pre-minted asset.
type SeedItem struct {
	Collection         string `yaml:"collection"`
	ItemID             uint64 `yaml:"item_id"`
	Owner              string `yaml:"owner"`
	ApproveMarketplace bool   `yaml:"approve_marketplace"`
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}
