package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/halcyon-pay/authengine-go/internal/audit"
	"github.com/halcyon-pay/authengine-go/internal/backend"
	"github.com/halcyon-pay/authengine-go/internal/config"
	"github.com/halcyon-pay/authengine-go/internal/engine"
	"github.com/halcyon-pay/authengine-go/internal/platform/env"
	"github.com/halcyon-pay/authengine-go/internal/platform/httpserver"
	"github.com/halcyon-pay/authengine-go/internal/platform/objectstore"
	"github.com/halcyon-pay/authengine-go/internal/platform/postgres"
	platformredis "github.com/halcyon-pay/authengine-go/internal/platform/redis"
	"github.com/halcyon-pay/authengine-go/internal/replay"
	"github.com/halcyon-pay/authengine-go/internal/resilience"
	"github.com/halcyon-pay/authengine-go/internal/scatter"
)

const serviceName = "authengine"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := env.String("AUTHENGINE_HTTP_ADDR", ":8080")
	shutdownTimeout, err := env.Duration("AUTHENGINE_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		logger.Error("invalid env", "error", err)
		os.Exit(2)
	}
	version := env.String("AUTHENGINE_VERSION", "dev")

	specPath := env.String("AUTHENGINE_DEPENDENCY_CONFIG", "dependencies.yaml")
	spec, err := config.Load(specPath)
	if err != nil {
		logger.Error("invalid dependency config", "path", specPath, "error", err)
		os.Exit(2)
	}

	dbCfg, err := postgres.ConfigFromEnv()
	if err != nil {
		logger.Error("invalid database config", "error", err)
		os.Exit(2)
	}
	db, err := postgres.Open(ctx, dbCfg)
	if err != nil {
		logger.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	sink := audit.NewPostgresSink(db)
	asyncAudit := audit.NewAsync(sink, logger)
	defer asyncAudit.Drain()

	var guard *replay.Guard
	redisCfg, err := platformredis.ConfigFromEnv()
	if err != nil {
		logger.Error("invalid redis config", "error", err)
		os.Exit(2)
	}
	var redisReady func(context.Context) error
	if redisCfg.Enabled() {
		client, err := platformredis.Open(ctx, redisCfg)
		if err != nil {
			logger.Error("redis unavailable", "error", err)
			os.Exit(1)
		}
		defer func() { _ = client.Close() }()
		replayTTL, err := env.Duration("AUTHENGINE_REPLAY_TTL", 15*time.Minute)
		if err != nil {
			logger.Error("invalid env", "error", err)
			os.Exit(2)
		}
		guard = replay.NewGuard(replay.NewRedisStore(client), replayTTL, logger)
		redisReady = func(ctx context.Context) error {
			checkCtx, cancel := context.WithTimeout(ctx, 750*time.Millisecond)
			defer cancel()
			return client.Ping(checkCtx).Err()
		}
	} else {
		logger.Warn("replay guard disabled, no redis address configured")
	}

	var exporter *audit.Exporter
	storeCfg, err := objectstore.ConfigFromEnv()
	if err != nil {
		logger.Error("invalid object store config", "error", err)
		os.Exit(2)
	}
	if storeCfg.Enabled() {
		storeClient, err := objectstore.NewClient(storeCfg)
		if err != nil {
			logger.Error("invalid object store client", "error", err)
			os.Exit(2)
		}
		startupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := objectstore.EnsureArchiveBucket(startupCtx, storeClient, storeCfg); err != nil {
			cancel()
			logger.Error("object store unavailable", "error", err)
			os.Exit(1)
		}
		cancel()
		store, err := objectstore.NewMinioStore(storeClient)
		if err != nil {
			logger.Error("invalid object store client", "error", err)
			os.Exit(2)
		}
		exporter = audit.NewExporter(sink, store, storeCfg.BucketArchive)
	} else {
		logger.Warn("audit archive export disabled, no object store endpoint configured")
	}

	caller := &resilience.Caller{
		Registry: resilience.NewRegistry(resilience.BreakerConfig{}),
		Diag:     resilience.NewDiagnosticHandler(logger),
		Logger:   logger,
	}
	delegate := backend.NewDelegate(caller, &http.Client{}, spec)

	eng := engine.New(engine.Config{
		Backends: delegate,
		Pool:     scatter.NewPool(spec.PoolSize),
		Audit:    asyncAudit,
		Logger:   logger,
		Source:   serviceName,
		Version:  version,
	})
	defer eng.Drain()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", httpserver.Healthz(serviceName))
	readiness := []httpserver.ReadinessCheck{
		{
			Name: "postgres",
			Check: func(ctx context.Context) error {
				checkCtx, cancel := context.WithTimeout(ctx, 750*time.Millisecond)
				defer cancel()
				return db.PingContext(checkCtx)
			},
		},
	}
	if redisReady != nil {
		readiness = append(readiness, httpserver.ReadinessCheck{Name: "redis", Check: redisReady})
	}
	mux.HandleFunc("/readyz", httpserver.ReadyzWithChecks(serviceName, readiness...))

	api := newAuthEngineAPI(logger, eng, guard, asyncAudit, exporter)
	api.register(mux)

	handler := httpserver.Wrap(logger, serviceName, mux)
	cfg := httpserver.Config{
		Service:         serviceName,
		Addr:            addr,
		ShutdownTimeout: shutdownTimeout,
	}
	if err := httpserver.Run(ctx, logger, cfg, handler); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
