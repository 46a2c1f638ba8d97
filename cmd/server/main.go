package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/rl1809/nft-marketplace/internal/adapter/handler"
	"github.com/rl1809/nft-marketplace/internal/adapter/handler/marketrpc"
	"github.com/rl1809/nft-marketplace/internal/adapter/registry"
	"github.com/rl1809/nft-marketplace/internal/adapter/storage"
	"github.com/rl1809/nft-marketplace/internal/adapter/stream"
	"github.com/rl1809/nft-marketplace/internal/adapter/wallet"
	"github.com/rl1809/nft-marketplace/internal/config"
	"github.com/rl1809/nft-marketplace/internal/core/domain"
	"github.com/rl1809/nft-marketplace/internal/core/ledger"
	"github.com/rl1809/nft-marketplace/internal/core/service"
	"github.com/rl1809/nft-marketplace/internal/database"
	"github.com/rl1809/nft-marketplace/internal/port"
	"github.com/rl1809/nft-marketplace/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/marketplace.local.yaml", "path to config file")
	envFile := flag.String("env", ".env", "optional dotenv file loaded before the config")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting marketplace",
		"version", version.Version,
		"commit", version.Commit,
		"instance_id", cfg.Instance.ID,
		"storage", cfg.Storage.Driver,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("marketplace stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("marketplace stopped")
}

func run(cfg *config.ServerConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Asset registry and wallet
	reg := registry.NewMemoryRegistry()
	operator := domain.NormalizeAddress(cfg.Marketplace.Address)
	if err := seedRegistry(reg, cfg.Registry.Items, operator); err != nil {
		return err
	}
	logger.Info("registry seeded", "items", len(cfg.Registry.Items))

	funds := wallet.NewMemoryWallet(logger)

	// Ledger repository
	repo, closeRepo, err := openRepository(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	opts := []ledger.Option{
		ledger.WithLogger(logger),
		ledger.WithCommitQueue(cfg.Workers.QueueSize),
	}
	if repo != nil {
		st, err := repo.LoadState(ctx)
		if err != nil {
			return fmt.Errorf("load ledger state: %w", err)
		}
		opts = append(opts, ledger.WithState(st))
		logger.Info("ledger state restored",
			"seq", st.Seq,
			"listings", len(st.Listings),
			"sellers", len(st.Proceeds),
		)
	}
	l := ledger.New(operator, reg, funds, opts...)

	// Event fan-out and request id cache
	hub := stream.NewHub(0, logger)
	publishers := []port.EventPublisher{hub}

	var cache port.CacheRepository
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis", "addr", cfg.Redis.Addr)

		redisAdapter := storage.NewRedisAdapter(rdb, storage.RedisConfig{
			IdempotencyTTL: cfg.Redis.IdempotencyTTL,
			EventsChannel:  cfg.Redis.EventsChannel,
		})
		cache = redisAdapter
		publishers = append(publishers, redisAdapter)
	}

	marketService := service.NewMarketService(l, cache, logger)

	dispatcher := service.NewDispatcher(service.DispatcherConfig{
		Workers:      cfg.Workers.Count,
		QueueSize:    cfg.Workers.QueueSize,
		WriteTimeout: cfg.Workers.WriteTimeout,
	}, marketService.GetCommitQueue(), repo, publishers, logger)

	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		dispatcher.Run()
	}()

	// Transports
	grpcServer := grpc.NewServer()
	marketrpc.RegisterMarketServiceServer(grpcServer, handler.NewGRPCHandler(marketService, logger))

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		marketService.Close()
		<-dispatcherDone
		return fmt.Errorf("listen grpc: %w", err)
	}

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: handler.NewHTTPHandler(marketService, hub, cfg.Marketplace.Decimals(), logger).Routes(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("gRPC server listening", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown incomplete", "error", err)
		}
		logger.Info("HTTP server stopped")

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")

		// closing the ledger ends the commit queue; the dispatcher drains it
		marketService.Close()
		<-dispatcherDone
		hub.Close()
		logger.Info("commit pipeline drained")
		return nil
	})

	return g.Wait()
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func seedRegistry(reg *registry.MemoryRegistry, items []config.SeedItem, operator domain.Address) error {
	for _, it := range items {
		item := domain.NewItemKey(it.Collection, it.ItemID)
		owner := domain.NormalizeAddress(it.Owner)
		if err := reg.Mint(item, owner); err != nil {
			return fmt.Errorf("seed registry: %w", err)
		}
		if it.ApproveMarketplace {
			if err := reg.Approve(owner, item, operator); err != nil {
				return fmt.Errorf("seed registry: %w", err)
			}
		}
	}
	return nil
}

// openRepository returns a nil repository for the memory driver.
func openRepository(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (port.LedgerRepository, func(), error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		db, err := database.OpenMySQL(ctx, cfg.MySQL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mysql: %w", err)
		}
		logger.Info("connected to mysql", "addr", cfg.MySQL.Addr, "database", cfg.MySQL.Name)

		adapter := storage.NewMySQLAdapter(db)
		if cfg.Migrate {
			if err := adapter.EnsureSchema(ctx); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		return adapter, func() { db.Close() }, nil

	case config.DriverPostgres:
		pool, err := database.ConnectPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		logger.Info("connected to postgres", "host", cfg.Postgres.Host, "database", cfg.Postgres.Name)

		adapter := storage.NewPostgresAdapter(pool)
		if cfg.Migrate {
			if err := adapter.EnsureSchema(ctx); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		return adapter, pool.Close, nil

	default:
		logger.Warn("ledger state is kept in memory only")
		return nil, func() {}, nil
	}
}
