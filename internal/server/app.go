// Package server wires the book review application together: configuration,
// logging, the PostgreSQL store and its migrations, the token service, the
// REST API and the gRPC health endpoint, with graceful shutdown on signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/bookreview/internal/logging"
	"github.com/dmitrijs2005/bookreview/internal/ratelimit"
	"github.com/dmitrijs2005/bookreview/internal/server/access"
	"github.com/dmitrijs2005/bookreview/internal/server/auth"
	"github.com/dmitrijs2005/bookreview/internal/server/config"
	"github.com/dmitrijs2005/bookreview/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bookreview/internal/server/rest"
	"github.com/dmitrijs2005/bookreview/internal/server/services"

	gs "github.com/dmitrijs2005/bookreview/internal/server/grpc"
)

// limiterIdleTTL is how long an idle client keeps its /authenticate bucket.
const limiterIdleTTL = 10 * time.Minute

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	limiter     *ratelimit.KeyedRateLimiter
	rest        *rest.Server
	health      *gs.HealthServer
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	keys, err := auth.GenerateKeyProvider(c.RSAKeyBits)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("signing key error: %w", err)
	}
	tokens := auth.NewTokenService(keys, nil)

	rm := repomanager.NewPostgresRepositoryManager()

	us := services.NewUserService(db, rm, auth.NewBcryptHasher(c.BcryptCost), tokens)
	rs := services.NewReviewService(db, rm)
	ps := services.NewReplyService(db, rm)

	limiter := ratelimit.New(c.AuthRateLimit, c.AuthRateBurst, limiterIdleTTL)

	metrics := rest.NewMetrics()
	if err := metrics.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "bookreview_auth_rate_limited_clients",
			Help: "Number of clients currently tracked by the /authenticate rate limiter",
		},
		func() float64 { return float64(limiter.Len()) },
	)); err != nil {
		limiter.Stop()
		_ = db.Close()
		return nil, fmt.Errorf("metrics init error: %w", err)
	}

	api := rest.NewServer(rest.Options{
		Address:         c.EndpointAddrHTTP,
		AllowedOrigin:   c.CORSAllowedOrigin,
		ShutdownTimeout: c.ShutdownTimeout,
		Users:           us,
		Reviews:         rs,
		Replies:         ps,
		Tokens:          tokens,
		Policy:          access.DefaultPolicy(),
		Limiter:         limiter,
		Metrics:         metrics,
	}, logger)

	logger.Info(context.Background(), "Token signing key generated", "kid", keys.KeyID(), "bits", c.RSAKeyBits)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: rm,
		limiter:     limiter,
		rest:        api,
		health:      gs.NewHealthServer(c.EndpointAddrGRPC, logger, db),
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// runner is a component that serves until its context is cancelled.
type runner interface {
	Run(ctx context.Context) error
}

func (app *App) start(ctx context.Context, cancelFunc context.CancelFunc, name string, r runner) {
	if err := r.Run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped with error", "server", name, "error", err)
		cancelFunc()
	}
}

// Run applies pending migrations, then serves HTTP and gRPC health until ctx
// is cancelled or a signal arrives. A failing server stops the other one.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	defer app.close()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.start(ctx, cancelFunc, "http", app.rest)
	}()
	go func() {
		defer wg.Done()
		app.start(ctx, cancelFunc, "grpc", app.health)
	}()

	wg.Wait()

	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
	return nil
}

func (app *App) close() {
	app.limiter.Stop()
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
}
