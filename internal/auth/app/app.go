package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/pres/internal/auth/http"
	"github.com/aussiebroadwan/pres/internal/auth/handshake"
	"github.com/aussiebroadwan/pres/internal/auth/oauth"
	"github.com/aussiebroadwan/pres/internal/auth/service"
	"github.com/aussiebroadwan/pres/internal/auth/store"
	redisstore "github.com/aussiebroadwan/pres/internal/auth/store/drivers/redis"
	"github.com/aussiebroadwan/pres/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/pres/pkg/cryptox"
	"github.com/aussiebroadwan/pres/pkg/httpx"
	"github.com/aussiebroadwan/pres/pkg/jwtx"
	"github.com/aussiebroadwan/pres/pkg/slogx"
	goredis "github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db            store.Store
	refreshTokens store.RefreshTokens
	redis         *goredis.Client // nil unless AUTH_REFRESH_STORE=redis
	keys          *jwtx.Keyring
	codec         *jwtx.Codec
	handshake     *handshake.Cache

	// Services
	tokenService        *service.TokenService
	principalService    *service.PrincipalService
	identityService     *service.IdentityService // nil unless Kakao is configured
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)
	httpx.LoadRateLimitsFromEnv()
	httpx.TrustProxyHeaders = app.cfg.TrustProxyHeaders

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initRefreshStore(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	keys, err := InitKeyring(app.cfg, app.logger)
	if err != nil {
		app.closeStores()
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}
	app.keys = keys
	app.codec = jwtx.NewCodec(keys, app.cfg.Issuer, jwtx.WithLogger(app.logger))

	hs, err := handshake.New(handshake.Config{
		Secret: []byte(app.cfg.HandshakeSecret),
		Secure: app.cfg.CookieSecure,
	})
	if err != nil {
		app.closeStores()
		return nil, fmt.Errorf("failed to initialize handshake cache: %w", err)
	}
	app.handshake = hs

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"refresh_store", app.cfg.RefreshStore,
		"kakao", app.cfg.KakaoEnabled(),
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			app.closeStores()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) closeStores() error {
	var errs []error
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
			errs = append(errs, err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		app.cfg.DatabaseFile,
	)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initRefreshStore picks where refresh tokens live. Principals always stay in
// the database.
func (app *Application) initRefreshStore() error {
	if app.cfg.RefreshStore != "redis" {
		app.refreshTokens = app.db.RefreshTokens()
		return nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to reach redis at %s: %w", app.cfg.RedisAddr, err)
	}

	app.redis = client
	app.refreshTokens = redisstore.NewRefreshTokens(client, redisstore.DefaultPrefix)
	app.logger.Info("refresh tokens stored in redis", "addr", app.cfg.RedisAddr)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Codec:          app.codec,
		RefreshTokens:  app.refreshTokens,
		Principals:     app.db.Principals(),
		RefreshInStore: app.redis == nil,
		AccessTTL:      app.cfg.AccessTTL,
		RefreshTTL:     app.cfg.RefreshTTL,
		LongLivedTTL:   jwtx.LongLivedRefreshTokenTTL,
	}

	app.principalService = &service.PrincipalService{
		Store:  app.db,
		Tokens: app.tokenService,
	}

	if app.cfg.KakaoEnabled() {
		app.identityService = &service.IdentityService{
			Provider: oauth.NewKakaoProvider(oauth.KakaoConfig{
				ClientID:     app.cfg.KakaoClientID,
				ClientSecret: app.cfg.KakaoClientSecret,
				RedirectURI:  app.cfg.KakaoRedirectURI,
				AuthHost:     app.cfg.KakaoAuthHost,
				APIHost:      app.cfg.KakaoAPIHost,
				Scope:        app.cfg.KakaoScope,
				HTTPClient:   &http.Client{Timeout: app.cfg.UpstreamTimeout},
			}),
			Principals: app.db.Principals(),
			Tokens:     app.tokenService,
		}
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.refreshTokens,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	// Only a separate refresh store gets its own readiness check.
	var refreshPinger httpapi.Pinger
	if app.redis != nil {
		refreshPinger = app.refreshTokens.(httpapi.Pinger)
	}

	router := httpapi.NewRouter(
		httpx.NewAuthenticator(app.codec),
		app.keys,
		BuildVersion,
		app.db,
		refreshPinger,
		app.handshake,
		app.logger,
	)

	// Wire services to router
	router.TokenService = app.tokenService
	router.PrincipalService = app.principalService
	router.IdentityService = app.identityService
	router.TestTokensEnabled = app.cfg.TestTokens
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
