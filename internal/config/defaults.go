package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultInstanceID       = "marketplace-1"
	DefaultCurrencyDecimals = 18
	DefaultHTTPAddr         = ":8080"
	DefaultGRPCAddr         = ":50051"
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultDriver           = DriverMemory
	DefaultMySQLAddr        = "localhost:3306"
	DefaultMaxOpenConns     = 50
	DefaultMaxIdleConns     = 10
	DefaultConnMaxLifetime  = 5 * time.Minute
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 10
	DefaultMinConns         = 2
	DefaultRedisAddr        = "localhost:6379"
	DefaultRedisPoolSize    = 100
	DefaultIdempotencyTTL   = 24 * time.Hour
	DefaultEventsChannel    = "marketplace:events"
	DefaultWorkerCount      = 10
	DefaultQueueSize        = 1000
	DefaultWriteTimeout     = 5 * time.Second
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

func (c *ServerConfig) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = DefaultInstanceID
	}
	if c.Marketplace.CurrencyDecimals == nil {
		decimals := int32(DefaultCurrencyDecimals)
		c.Marketplace.CurrencyDecimals = &decimals
	}

	// Listener defaults
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}
	if c.Server.GRPCAddr == "" {
		c.Server.GRPCAddr = DefaultGRPCAddr
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Storage defaults
	if c.Storage.Driver == "" {
		c.Storage.Driver = DefaultDriver
	}
	if c.Storage.MySQL.Addr == "" {
		c.Storage.MySQL.Addr = DefaultMySQLAddr
	}
	if c.Storage.MySQL.MaxOpenConns == 0 {
		c.Storage.MySQL.MaxOpenConns = DefaultMaxOpenConns
	}
	if c.Storage.MySQL.MaxIdleConns == 0 {
		c.Storage.MySQL.MaxIdleConns = DefaultMaxIdleConns
	}
	if c.Storage.MySQL.ConnMaxLifetime == 0 {
		c.Storage.MySQL.ConnMaxLifetime = DefaultConnMaxLifetime
	}
	c.Storage.Postgres.applyDefaults()

	// Redis defaults
	if c.Redis.Addr == "" {
		c.Redis.Addr = DefaultRedisAddr
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = DefaultRedisPoolSize
	}
	if c.Redis.IdempotencyTTL == 0 {
		c.Redis.IdempotencyTTL = DefaultIdempotencyTTL
	}
	if c.Redis.EventsChannel == "" {
		c.Redis.EventsChannel = DefaultEventsChannel
	}

	// Worker defaults
	if c.Workers.Count == 0 {
		c.Workers.Count = DefaultWorkerCount
	}
	if c.Workers.QueueSize == 0 {
		c.Workers.QueueSize = DefaultQueueSize
	}
	if c.Workers.WriteTimeout == 0 {
		c.Workers.WriteTimeout = DefaultWriteTimeout
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

func (db *DBConfig) applyDefaults() {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
