package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/agaskrobot/fenix-university-registry/internal/audit"
	jwttoken "github.com/agaskrobot/fenix-university-registry/internal/jwt_token"
	"github.com/agaskrobot/fenix-university-registry/internal/platform/config"
	"github.com/agaskrobot/fenix-university-registry/internal/platform/httpserver"
	"github.com/agaskrobot/fenix-university-registry/internal/platform/logger"
	"github.com/agaskrobot/fenix-university-registry/internal/platform/middleware"
	platformredis "github.com/agaskrobot/fenix-university-registry/internal/platform/redis"
	"github.com/agaskrobot/fenix-university-registry/internal/registry"
	registrymetrics "github.com/agaskrobot/fenix-university-registry/internal/registry/metrics"
	"github.com/agaskrobot/fenix-university-registry/internal/registry/service"
	"github.com/agaskrobot/fenix-university-registry/internal/registry/store/university"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal/registry packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := buildStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)

	svc, err := registry.NewService(cfg.OwnerAccount, store,
		service.WithLogger(log),
		service.WithMetrics(registrymetrics.New()),
		service.WithAuditPublisher(audit.NewMemoryPublisher()),
	)
	if err != nil {
		log.Error("failed to initialize registry", "error", err)
		os.Exit(1)
	}

	h := registry.NewHandler(svc, log, jwtService)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	h.Register(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := httpserver.New(cfg.Addr, r)

	log.Info("starting university registry",
		"addr", cfg.Addr,
		"owner_account", cfg.OwnerAccount,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// buildStore selects the storage backend from config: postgres when a URL is
// set, in-memory otherwise, with an optional redis read-through cache on top.
func buildStore(ctx context.Context, cfg config.Server, log *slog.Logger) (service.UniversityStore, func(), error) {
	cleanup := func() {}

	var store university.Store
	if cfg.PostgresURL != "" {
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return nil, cleanup, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, cleanup, err
		}
		pg := university.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, cleanup, err
		}
		store = pg
		cleanup = func() { db.Close() }
		log.Info("using postgres storage")
	} else {
		store = university.NewInMemory()
		log.Info("using in-memory storage")
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return nil, cleanup, err
	}
	if redisClient != nil {
		store = university.NewRedisCache(store, redisClient.Client, cfg.CacheTTL, log)
		prev := cleanup
		cleanup = func() {
			redisClient.Close()
			prev()
		}
		log.Info("record cache enabled")
	}

	return store, cleanup, nil
}
