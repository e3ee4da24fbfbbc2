// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/vbarsoum1/langflow/services/flowserver/cache"
	"github.com/vbarsoum1/langflow/services/flowserver/components"
	"github.com/vbarsoum1/langflow/services/flowserver/config"
	"github.com/vbarsoum1/langflow/services/flowserver/flows"
	"github.com/vbarsoum1/langflow/services/flowserver/graph"
	"github.com/vbarsoum1/langflow/services/flowserver/middleware"
	"github.com/vbarsoum1/langflow/services/flowserver/routes"
	"github.com/vbarsoum1/langflow/services/flowserver/storage/badgerdb"
	"github.com/vbarsoum1/langflow/services/flowserver/tasks"
	"github.com/vbarsoum1/langflow/services/flowserver/uploads"
)

func initTracer(endpoint string) (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("flowserver")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func main() {
	// Local development convenience; the file is optional.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(os.Getenv("LANGFLOW_CONFIG"))
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if cfg.OTLPEndpoint != "" {
		cleanup, err := initTracer(cfg.OTLPEndpoint)
		if err != nil {
			log.Fatalf("failed to setup the OTLP tracer: %v", err)
		}
		defer cleanup(context.Background())
	} else {
		slog.Info("OTLP endpoint not set, tracing disabled")
	}

	// --- Storage ---
	db := mustOpenBadger(cfg)
	defer db.Close()

	flowStore, err := flows.NewBadgerStore(db)
	if err != nil {
		log.Fatalf("failed to create flow store: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	}

	// --- Cache ---
	computationCache := cache.New(pickCacheStore(cfg, db, redisClient))

	// --- Task dispatch ---
	runner := tasks.NewRunner(computationCache, graph.EchoEvaluator{})
	backend, pool := pickBackend(cfg, runner, redisClient, logger)
	if pool != nil {
		poolCtx, poolCancel := context.WithCancel(context.Background())
		defer poolCancel()
		pool.Start(poolCtx)
		defer pool.Stop()
	}
	dispatcher := tasks.NewDispatcher(backend, logger)
	tracker := tasks.NewTracker(backend)

	// --- Components ---
	catalog := components.NewCatalog(cfg.ComponentPaths, logger)
	if len(cfg.ComponentPaths) > 0 {
		watcher, err := components.NewWatcher(catalog, logger)
		if err != nil {
			slog.Warn("component watcher unavailable", "error", err)
		} else {
			watchCtx, watchCancel := context.WithCancel(context.Background())
			defer watchCancel()
			if err := watcher.Start(watchCtx); err != nil {
				slog.Warn("component watcher failed to start", "error", err)
			}
			defer watcher.Stop()
		}
	}

	// --- Uploads ---
	uploadStore, err := uploads.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("failed to create upload store: %v", err)
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("flowserver"))

	routes.SetupRoutes(router, routes.Deps{
		FlowStore:    flowStore,
		Dispatcher:   dispatcher,
		Tracker:      tracker,
		Catalog:      catalog,
		Uploads:      uploadStore,
		AuthProvider: middleware.NopAPIKeyProvider{},
		RateLimit:    middleware.RateLimitConfig{RequestsPerSecond: cfg.RateLimitRPS},
	})

	slog.Info("starting flowserver", "port", cfg.Port, "backend", dispatcher.Backend())
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// mustOpenBadger opens the configured badger database, falling back to an
// in-memory instance when no data dir is configured.
func mustOpenBadger(cfg config.Config) *badger.DB {
	if cfg.DataDir == "" {
		db, err := badgerdb.OpenInMemory()
		if err != nil {
			log.Fatalf("failed to open in-memory badger: %v", err)
		}
		return db
	}
	dbCfg := badgerdb.DefaultConfig()
	dbCfg.Path = cfg.DataDir
	db, err := badgerdb.Open(dbCfg)
	if err != nil {
		log.Fatalf("failed to open badger at %s: %v", cfg.DataDir, err)
	}
	return db
}

// pickCacheStore prefers the shared redis store when configured, then the
// persistent badger store, then in-memory LRU.
func pickCacheStore(cfg config.Config, db *badger.DB, redisClient *redis.Client) cache.Store {
	if redisClient != nil {
		if err := redisClient.Ping(context.Background()).Err(); err == nil {
			store, err := cache.NewRedisStore(redisClient, 24*time.Hour)
			if err == nil {
				slog.Info("using redis computation cache", "addr", cfg.RedisURL)
				return store
			}
		}
		slog.Warn("redis unreachable, falling back to local cache", "addr", cfg.RedisURL)
	}
	if cfg.DataDir != "" {
		store, err := cache.NewBadgerStore(db, 24*time.Hour)
		if err == nil {
			return store
		}
		slog.Warn("badger cache unavailable, using in-memory cache", "error", err)
	}
	return cache.NewMemoryStore(cfg.CacheCapacity)
}

// pickBackend selects the dispatch backend. A configured but unreachable
// redis degrades to local execution rather than failing startup.
func pickBackend(cfg config.Config, runner *tasks.Runner, redisClient *redis.Client,
	logger *slog.Logger) (tasks.Backend, *tasks.WorkerPool) {

	if cfg.TaskBackend != "redis" {
		return tasks.NewLocalBackend(runner, logger), nil
	}
	if redisClient == nil {
		slog.Warn("redis backend configured without redis_url, using local execution")
		return tasks.NewLocalBackend(runner, logger), nil
	}

	backendCfg := tasks.DefaultRedisBackendConfig()
	backendCfg.AwaitTimeout = cfg.AwaitTimeout.Std()
	backend, err := tasks.NewRedisBackend(redisClient, backendCfg)
	if err == nil {
		err = backend.Ping(context.Background())
	}
	if err != nil {
		slog.Warn("redis backend unavailable, using local execution", "error", err)
		return tasks.NewLocalBackend(runner, logger), nil
	}

	pool := tasks.NewWorkerPool(backend, runner, cfg.Workers, logger)
	return backend, pool
}
