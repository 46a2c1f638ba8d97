package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *ServerConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}
	if strings.TrimSpace(c.Marketplace.Address) == "" {
		return errors.New("marketplace.address is required")
	}
	if d := c.Marketplace.Decimals(); d < 0 || d > 36 {
		return fmt.Errorf("marketplace.currency_decimals must be between 0 and 36, got %d", d)
	}

	if c.Server.HTTPAddr == "" {
		return errors.New("server.http_addr is required")
	}
	if c.Server.GRPCAddr == "" {
		return errors.New("server.grpc_addr is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be > 0")
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverMySQL:
		if err := c.Storage.MySQL.validate("storage.mysql"); err != nil {
			return err
		}
	case DriverPostgres:
		if err := c.Storage.Postgres.validate("storage.postgres"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("storage.driver must be one of memory, mysql, postgres, got %q", c.Storage.Driver)
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required")
		}
		if c.Redis.PoolSize < 1 {
			return errors.New("redis.pool_size must be >= 1")
		}
		if c.Redis.IdempotencyTTL <= 0 {
			return errors.New("redis.idempotency_ttl must be > 0")
		}
	}

	if c.Workers.Count < 1 {
		return errors.New("workers.count must be >= 1")
	}
	if c.Workers.QueueSize < 1 {
		return errors.New("workers.queue_size must be >= 1")
	}
	if c.Workers.WriteTimeout <= 0 {
		return errors.New("workers.write_timeout must be > 0")
	}

	for i, item := range c.Registry.Items {
		if item.Collection == "" {
			return fmt.Errorf("registry.items[%d].collection is required", i)
		}
		if item.Owner == "" {
			return fmt.Errorf("registry.items[%d].owner is required", i)
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

func (m *MySQLConfig) validate(prefix string) error {
	if m.Addr == "" {
		return fmt.Errorf("%s.addr is required", prefix)
	}
	if m.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if m.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if m.MaxOpenConns < 1 {
		return fmt.Errorf("%s.max_open_conns must be >= 1", prefix)
	}
	if m.MaxIdleConns > m.MaxOpenConns {
		return fmt.Errorf("%s.max_idle_conns (%d) cannot exceed max_open_conns (%d)", prefix, m.MaxIdleConns, m.MaxOpenConns)
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
