package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: test-market
marketplace:
  address: "0xMarket"
server:
  http_addr: ":9000"
storage:
  driver: postgres
  postgres:
    host: localhost
    port: 5432
    name: test_db
    user: testuser
    password: testpass
registry:
  items:
    - collection: "0xc011"
      item_id: 7
      owner: "0xa11ce"
      approve_marketplace: true
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-market" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-market")
	}
	if cfg.Marketplace.Address != "0xMarket" {
		t.Errorf("Marketplace.Address = %q, want %q", cfg.Marketplace.Address, "0xMarket")
	}
	if cfg.Server.HTTPAddr != ":9000" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, ":9000")
	}
	if cfg.Storage.Postgres.Host != "localhost" {
		t.Errorf("Storage.Postgres.Host = %q, want %q", cfg.Storage.Postgres.Host, "localhost")
	}
	if len(cfg.Registry.Items) != 1 || cfg.Registry.Items[0].ItemID != 7 || !cfg.Registry.Items[0].ApproveMarketplace {
		t.Errorf("Registry.Items = %+v", cfg.Registry.Items)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
marketplace:
  address: "0xmarket"
storage:
  driver: mysql
  mysql:
    name: market
    user: root
    password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.MySQL.Password != "secret123" {
		t.Errorf("Storage.MySQL.Password = %q, want %q", cfg.Storage.MySQL.Password, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
marketplace:
  address: "0xmarket"
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.Server.HTTPAddr != DefaultHTTPAddr {
		t.Errorf("Server.HTTPAddr = %q, want default %q", cfg.Server.HTTPAddr, DefaultHTTPAddr)
	}
	if cfg.Storage.Driver != DriverMemory {
		t.Errorf("Storage.Driver = %q, want default %q", cfg.Storage.Driver, DriverMemory)
	}
	if cfg.Storage.Postgres.Port != DefaultDBPort {
		t.Errorf("Storage.Postgres.Port = %d, want default %d", cfg.Storage.Postgres.Port, DefaultDBPort)
	}
	if cfg.Redis.IdempotencyTTL != DefaultIdempotencyTTL {
		t.Errorf("Redis.IdempotencyTTL = %v, want default %v", cfg.Redis.IdempotencyTTL, DefaultIdempotencyTTL)
	}
	if cfg.Workers.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("Workers.WriteTimeout = %v, want default %v", cfg.Workers.WriteTimeout, DefaultWriteTimeout)
	}
	if cfg.Marketplace.Decimals() != DefaultCurrencyDecimals {
		t.Errorf("Marketplace.Decimals() = %d, want default %d", cfg.Marketplace.Decimals(), DefaultCurrencyDecimals)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadWithDefaults_KeepsZeroDecimals(t *testing.T) {
	yaml := `
marketplace:
  address: "0xmarket"
  currency_decimals: 0
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if cfg.Marketplace.Decimals() != 0 {
		t.Errorf("Marketplace.Decimals() = %d, want 0", cfg.Marketplace.Decimals())
	}
}

func TestLoadAndValidate_MissingFile(t *testing.T) {
	if _, err := LoadAndValidate(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func validConfig() ServerConfig {
	return ServerConfig{
		Instance:    InstanceConfig{ID: "test"},
		Marketplace: MarketplaceConfig{Address: "0xmarket"},
		Server:      ListenConfig{HTTPAddr: ":8080", GRPCAddr: ":50051", ShutdownTimeout: time.Second},
		Storage:     StorageConfig{Driver: DriverMemory},
		Workers:     WorkersConfig{Count: 2, QueueSize: 10, WriteTimeout: time.Second},
		Logging:     LoggingConfig{Level: "info", Format: "json"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ServerConfig)
		wantErr string
	}{
		{
			name:    "missing instance id",
			mutate:  func(c *ServerConfig) { c.Instance.ID = "" },
			wantErr: "instance.id is required",
		},
		{
			name:    "missing marketplace address",
			mutate:  func(c *ServerConfig) { c.Marketplace.Address = " " },
			wantErr: "marketplace.address is required",
		},
		{
			name: "negative currency decimals",
			mutate: func(c *ServerConfig) {
				d := int32(-1)
				c.Marketplace.CurrencyDecimals = &d
			},
			wantErr: "marketplace.currency_decimals must be between 0 and 36, got -1",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *ServerConfig) { c.Storage.Driver = "sqlite" },
			wantErr: `storage.driver must be one of memory, mysql, postgres, got "sqlite"`,
		},
		{
			name: "missing postgres password",
			mutate: func(c *ServerConfig) {
				c.Storage.Driver = DriverPostgres
				c.Storage.Postgres = DBConfig{Host: "localhost", Name: "db", User: "user"}
			},
			wantErr: "storage.postgres.password is required",
		},
		{
			name: "min_conns exceeds max_conns",
			mutate: func(c *ServerConfig) {
				c.Storage.Driver = DriverPostgres
				c.Storage.Postgres = DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 5, MinConns: 10}
			},
			wantErr: "storage.postgres.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name: "mysql idle exceeds open",
			mutate: func(c *ServerConfig) {
				c.Storage.Driver = DriverMySQL
				c.Storage.MySQL = MySQLConfig{Addr: "db:3306", Name: "m", User: "u", MaxOpenConns: 2, MaxIdleConns: 4}
			},
			wantErr: "storage.mysql.max_idle_conns (4) cannot exceed max_open_conns (2)",
		},
		{
			name: "redis enabled without ttl",
			mutate: func(c *ServerConfig) {
				c.Redis = RedisConfig{Enabled: true, Addr: "localhost:6379", PoolSize: 1}
			},
			wantErr: "redis.idempotency_ttl must be > 0",
		},
		{
			name:    "zero workers",
			mutate:  func(c *ServerConfig) { c.Workers.Count = 0 },
			wantErr: "workers.count must be >= 1",
		},
		{
			name: "seed item without owner",
			mutate: func(c *ServerConfig) {
				c.Registry.Items = []SeedItem{{Collection: "0xc011", ItemID: 1}}
			},
			wantErr: "registry.items[0].owner is required",
		},
		{
			name:    "bad log format",
			mutate:  func(c *ServerConfig) { c.Logging.Format = "xml" },
			wantErr: `logging.format must be text or json, got "xml"`,
		},
		{
			name:    "valid config",
			mutate:  func(c *ServerConfig) {},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
