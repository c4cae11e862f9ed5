package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"inhand/internal/domain/audit"
	"inhand/internal/domain/auth"
	"inhand/internal/domain/salary"
	"inhand/internal/platform/cache"
	"inhand/internal/platform/config"
	cryptoutil "inhand/internal/platform/crypto"
	"inhand/internal/platform/db"
	"inhand/internal/platform/jobs"
	"inhand/internal/platform/logging"
	"inhand/internal/platform/metrics"
	"inhand/internal/transport/http/api"
	adminhandler "inhand/internal/transport/http/handlers/admin"
	audithandler "inhand/internal/transport/http/handlers/audit"
	authhandler "inhand/internal/transport/http/handlers/auth"
	salaryhandler "inhand/internal/transport/http/handlers/salary"
	"inhand/internal/transport/http/middleware"
	"inhand/migrations"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Cache   cache.Cache
	Jobs    *jobs.Service
	Metrics *metrics.Collector
	Router  http.Handler
}

// Deps are the collaborators the HTTP surface is assembled from.
type Deps struct {
	Config      config.Config
	Auth        authhandler.Authenticator
	Salary      salaryhandler.Calculator
	Retention   adminhandler.RetentionRunner
	Perms       middleware.PermissionStore
	Audit       audit.Recorder
	AuditLog    audithandler.Lister
	Idempotency salaryhandler.IdempotencyStore
	Metrics     *metrics.Collector
	Limits      cache.Counter
	Ready       func(ctx context.Context) error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		source := fs.FS(migrations.FS)
		if cfg.MigrationsDir != "" {
			source = os.DirFS(cfg.MigrationsDir)
		}
		if err := db.Migrate(ctx, pool, source); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, err
	}

	authService := auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL)
	if cfg.RunSeed {
		if err := db.Seed(ctx, authService, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	memo := cache.New(cfg.RedisAddr)
	if r, ok := memo.(*cache.Redis); ok {
		if err := r.Ping(ctx); err != nil {
			slog.Warn("redis unreachable, cache and shared rate limits degraded", "addr", cfg.RedisAddr, "err", err)
		}
	}
	collector := metrics.New()
	salaryService := salary.NewService(salary.NewStore(pool), crypto, memo, cfg.CacheTTL)
	salaryService.SetObserver(collector)
	idempotency := middleware.NewIdempotencyStore(pool, cfg.IdempotencyTTL)
	jobService := jobs.New(jobs.NewRunStore(pool), salaryService, cfg)
	jobService.SetKeySweeper(idempotency)

	auditService := audit.New(pool)
	router := NewRouter(Deps{
		Config:      cfg,
		Auth:        authService,
		Salary:      salaryService,
		Retention:   jobService,
		Perms:       auth.StaticPermissions{},
		Audit:       auditService,
		AuditLog:    auditService,
		Idempotency: idempotency,
		Metrics:     collector,
		Limits:      memo,
		Ready:       pool.Ping,
	})

	return &App{
		Config:  cfg,
		DB:      pool,
		Cache:   memo,
		Jobs:    jobService,
		Metrics: collector,
		Router:  router,
	}, nil
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	limits := d.Limits
	if limits == nil {
		limits = cache.NewMemory()
	}
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	if d.Metrics != nil {
		router.Use(middleware.Metrics(d.Metrics))
	}
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled && d.Metrics != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, d.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(limits, cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveMutationRateLimit(limits, cfg.RateLimitPerMinute, time.Minute))

		authhandler.NewHandler(d.Auth, cfg.AllowSelfSignup).RegisterRoutes(r)
		salaryhandler.NewHandler(d.Salary, d.Perms, d.Audit, d.Idempotency).RegisterRoutes(r)
		adminhandler.NewHandler(d.Retention, d.Perms, d.Audit).RegisterRoutes(r)
		if d.AuditLog != nil {
			audithandler.NewHandler(d.AuditLog, d.Perms).RegisterRoutes(r)
		}
	})

	return router
}

func (a *App) Close() {
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			slog.Warn("cache close failed", "err", err)
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func Run() {
	cfg := config.Load()
	if err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		slog.Error("logging setup failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	app.Jobs.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("server shutdown failed", "err", err)
		}
	}()

	slog.Info("in-hand salary server listening", "addr", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}
