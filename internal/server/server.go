// Package server wires the long-lived resources together and runs the HTTP
// (and optional gRPC) listeners until the context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gql "github.com/graphql-go/graphql"
	"google.golang.org/grpc"

	"github.com/plantnet/plantnet/app/graphql"
	"github.com/plantnet/plantnet/app/repositories"
	"github.com/plantnet/plantnet/app/routes"
	"github.com/plantnet/plantnet/app/services"
	"github.com/plantnet/plantnet/config"
	"github.com/plantnet/plantnet/internal/kernel"
	"github.com/plantnet/plantnet/pkg/auth"
	"github.com/plantnet/plantnet/pkg/cache"
	"github.com/plantnet/plantnet/pkg/database"
	plantgrpc "github.com/plantnet/plantnet/pkg/grpc"
	"github.com/plantnet/plantnet/pkg/logger"
	"github.com/plantnet/plantnet/pkg/mail"
	"github.com/plantnet/plantnet/pkg/middleware"
	"github.com/plantnet/plantnet/pkg/notification"
	"github.com/plantnet/plantnet/pkg/storage"
	"github.com/plantnet/plantnet/pkg/workerpool"
)

const shutdownTimeout = 15 * time.Second

// OpenStore connects the backend selected by DB_DRIVER.
func OpenStore(ctx context.Context) (*repositories.Store, error) {
	driver := config.DatabaseDriver()
	if driver == "mongo" {
		m, err := database.ConnectMongo(ctx, config.MongoURI(), config.DatabaseName())
		if err != nil {
			return nil, err
		}
		store, err := repositories.NewMongoStore(ctx, m)
		if err != nil {
			_ = m.Close(context.Background())
			return nil, err
		}
		return store, nil
	}

	db, err := database.OpenSQL(driver, config.DatabaseDSN())
	if err != nil {
		return nil, err
	}
	return repositories.NewSQLStore(db)
}

// App owns every resource the HTTP surface depends on.
type App struct {
	Store    *repositories.Store
	Services *services.Services
	Kernel   *kernel.HTTPKernel

	pool      *workerpool.Pool
	redis     *cache.Store
	stopSweep context.CancelFunc
	closeLogs func()
}

// Bootstrap loads configuration and opens the store, the notification
// pool, the rate-limit counter and the storage disk.
func Bootstrap(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("server: load config: %w", err)
	}
	proxies, err := middleware.ParseProxies(config.TrustedProxies())
	if err != nil {
		return nil, fmt.Errorf("server: TRUSTED_PROXIES: %w", err)
	}

	a := &App{closeLogs: func() {}}
	if uri := config.LogMongoURI(); uri != "" {
		closeLogs, err := logger.AttachMongo(uri, config.DatabaseName())
		if err != nil {
			logger.Warn("mongo log sink disabled", "error", err)
		}
		a.closeLogs = closeLogs
	}

	store, err := OpenStore(ctx)
	if err != nil {
		a.closeLogs()
		return nil, fmt.Errorf("server: open store: %w", err)
	}
	a.Store = store

	mailer := mail.New(mail.FromConfig())
	if !mailer.Configured() {
		logger.Warn("MAIL_USERNAME not set: order emails will fail and be logged")
	}
	a.pool = workerpool.New(config.NotifyWorkers(),
		workerpool.WithQueue(256),
		workerpool.WithPanicHandler(func(r any) {
			logger.Error("notification task panicked", "panic", r)
		}),
	)
	dispatcher := notification.NewDispatcher(mailer, a.pool)

	var localFiles string
	disk, err := storage.New(storage.FromConfig())
	if err != nil {
		logger.Warn("image uploads disabled", "error", err)
		disk = nil
	} else if local, ok := disk.(*storage.LocalDisk); ok {
		localFiles = local.Root()
	}

	secret := config.TokenSecret()
	if config.IsProduction() && secret == "change-me-in-production" {
		logger.Warn("ACCESS_TOKEN_SECRET is the built-in default")
	}
	issuer := auth.NewTokenIssuer(secret, auth.DefaultTTL)

	a.Services = services.New(store, dispatcher, disk)

	var catalog *gql.Schema
	if schema, err := graphql.NewSchema(a.Services.Plants); err != nil {
		logger.Warn("graphql catalog disabled", "error", err)
	} else {
		catalog = &schema
	}

	a.Kernel = kernel.NewHTTPKernel(routes.Deps{
		Services:     a.Services,
		Issuer:       issuer,
		SecureCookie: config.IsProduction(),
		Catalog:      catalog,
		LocalFiles:   localFiles,
	}, kernel.Options{
		CORSOrigins:    config.CORSOrigins(),
		RateCounter:    a.rateCounter(ctx),
		RatePerMinute:  config.RateLimitPerMinute(),
		TrustedProxies: proxies,
	})
	return a, nil
}

// rateCounter prefers Redis so limits hold across replicas.
func (a *App) rateCounter(ctx context.Context) middleware.Counter {
	if addr := config.RedisAddr(); addr != "" {
		rc, err := cache.Connect(ctx, addr, config.RedisPassword())
		if err == nil {
			a.redis = rc
			return rc
		}
		logger.Warn("redis unavailable, rate limiting per process", "error", err)
	}
	sweepCtx, cancel := context.WithCancel(context.Background())
	a.stopSweep = cancel
	return middleware.NewMemoryCounter(sweepCtx, time.Minute)
}

// Close drains queued notifications and releases connections.
func (a *App) Close(ctx context.Context) {
	if a.pool != nil {
		a.pool.Shutdown()
	}
	if a.stopSweep != nil {
		a.stopSweep()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Warn("redis close", "error", err)
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(ctx); err != nil {
			logger.Warn("store close", "error", err)
		}
	}
	a.closeLogs()
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context) error {
	app, err := Bootstrap(ctx)
	if err != nil {
		return err
	}

	addr := ":" + config.AppPort()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Kernel.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	grpcSrv := startGRPC(app)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("plantNet is running", "addr", addr, "env", config.AppEnv(), "db", config.DatabaseDriver())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err = <-errCh:
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		logger.Error("http shutdown", "error", serr)
	}
	plantgrpc.Stop(grpcSrv)
	app.Close(shutdownCtx)
	return err
}

func startGRPC(app *App) *grpc.Server {
	port := config.GRPCPort()
	if port == "" {
		return nil
	}
	srv, _, err := plantgrpc.Start(port, app.Store.Ping)
	if err != nil {
		logger.Error("gRPC server not started", "error", err)
		return nil
	}
	return srv
}
