// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/openshelf/openshelf/adapters/auth"
	"github.com/openshelf/openshelf/adapters/clock"
	"github.com/openshelf/openshelf/adapters/email"
	"github.com/openshelf/openshelf/adapters/hasher"
	"github.com/openshelf/openshelf/adapters/idgen"
	"github.com/openshelf/openshelf/adapters/metrics"
	"github.com/openshelf/openshelf/adapters/sqlite"
	"github.com/openshelf/openshelf/adapters/storage"
	"github.com/openshelf/openshelf/api"
	"github.com/openshelf/openshelf/app"
	"github.com/openshelf/openshelf/config"
	"github.com/openshelf/openshelf/domain/identity"
	"github.com/openshelf/openshelf/ports"
)

// App represents the running application.
type App struct {
	Config     *config.Config
	Logger     zerolog.Logger
	DB         *sqlite.DB
	HTTPServer *http.Server
	Metrics    *metrics.Collector

	// Stores and services exposed for CLI management commands.
	Users  ports.UserStore
	Hasher ports.Hasher
	IDs    ports.IDGenerator
	Clock  ports.Clock

	holder *config.Holder
}

// New creates and initializes the application.
func New(cfg *config.Config) (*App, error) {
	logger := setupLogger(cfg.Logging)

	db, err := sqlite.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	// Each App carries its own registry so tests can build several.
	registry := prometheus.NewRegistry()
	collector := metrics.NewWithRegistry(registry)

	users := sqlite.NewUserStore(db)
	resets := sqlite.NewResetTokenStore(db)
	books := sqlite.NewBookStore(db)
	categories := sqlite.NewCategoryStore(db)
	purchases := sqlite.NewPurchaseStore(db)
	library := sqlite.NewLibraryStore(db)
	reviews := sqlite.NewReviewStore(db)

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifetime)
	pwHasher := hasher.NewBcrypt(cfg.Auth.BcryptCost)
	clk := clock.Real{}
	ids := idgen.UUID{}

	sender, err := buildEmailSender(cfg, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	files, err := buildFileStore(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	handler := api.NewHandler(api.Deps{
		Auth:       app.NewAuthService(users, resets, pwHasher, tokens, sender, ids, clk, logger),
		Books:      app.NewBookService(books, categories, files, ids, clk, collector, logger),
		Categories: app.NewCategoryService(categories, ids, clk, logger),
		Purchases:  app.NewPurchaseService(purchases, books, library, users, sender, ids, clk, collector, logger),
		Library:    app.NewLibraryService(library, books, purchases, clk, logger),
		Reviews:    app.NewReviewService(reviews, library, books, ids, clk, collector, logger),
		Admin:      app.NewAdminService(users, books, categories, purchases, logger),
		User:       app.NewUserService(library, purchases, reviews, logger),
		Tokens:     tokens,
		Metrics:    collector,
		Logger:     logger,
	})

	router := handler.Router()
	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	a := &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		HTTPServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		Metrics: collector,
		Users:   users,
		Hasher:  pwHasher,
		IDs:     ids,
		Clock:   clk,
	}

	// First-run admin bootstrap from environment.
	if adminEmail := os.Getenv("OPENSHELF_ADMIN_EMAIL"); adminEmail != "" {
		password := os.Getenv("OPENSHELF_ADMIN_PASSWORD")
		if _, err := a.EnsureAdmin(context.Background(), adminEmail, password, "Administrator"); err != nil {
			logger.Warn().Err(err).Msg("admin bootstrap failed")
		}
	}

	return a, nil
}

// NewWithHotReload creates the application with config file watching.
// Reloadable fields take effect on the next request; the rest log a
// restart hint.
func NewWithHotReload(path string) (*App, error) {
	logger := setupLogger(config.LoggingConfig{Level: "info", Format: "json"})

	holder, err := config.NewHolder(path, logger)
	if err != nil {
		return nil, err
	}

	a, err := New(holder.Get())
	if err != nil {
		holder.Stop()
		return nil, err
	}
	a.holder = holder

	holder.SetMetrics(a.Metrics)
	holder.OnChange(func(cfg *config.Config) {
		a.Logger.Info().
			Strs("restart_required", config.NonReloadableFields()).
			Msg("config reloaded; non-reloadable fields need a restart")
	})

	if err := holder.WatchFile(); err != nil {
		a.Logger.Warn().Err(err).Msg("config file watch unavailable")
	}
	holder.WatchSignals()

	return a, nil
}

// EnsureAdmin creates a super admin account if the email is not yet
// registered. A generated password is logged when none is supplied.
func (a *App) EnsureAdmin(ctx context.Context, emailAddr, password, name string) (identity.User, error) {
	emailAddr = identity.NormalizeEmail(emailAddr)

	if existing, err := a.Users.GetByEmail(ctx, emailAddr); err == nil {
		return existing, nil
	} else if !errors.Is(err, ports.ErrNotFound) {
		return identity.User{}, err
	}

	if password == "" {
		password = identity.GenerateResetToken()[:16]
		a.Logger.Info().Str("email", emailAddr).Str("password", password).Msg("generated admin password")
	}

	hash, err := a.Hasher.Hash(password)
	if err != nil {
		return identity.User{}, err
	}

	now := a.Clock.Now().UTC()
	admin := identity.User{
		ID:           a.IDs.New(),
		Email:        emailAddr,
		FullName:     name,
		PasswordHash: string(hash),
		Role:         identity.RoleSuperAdmin,
		Permissions:  []string{},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.Users.Create(ctx, admin); err != nil {
		return identity.User{}, err
	}

	a.Logger.Info().Str("email", emailAddr).Msg("admin account created")
	return admin, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.holder != nil {
		a.holder.Stop()
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

func buildEmailSender(cfg *config.Config, logger zerolog.Logger) (ports.EmailSender, error) {
	switch cfg.Email.Mode {
	case "smtp":
		return email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
			FromName: cfg.Email.FromName,
			UseTLS:   cfg.Email.UseTLS,
			BaseURL:  cfg.Server.BaseURL,
			AppName:  cfg.Email.FromName,
		})
	case "none":
		logger.Info().Msg("email sending disabled")
		return email.NewNoopSender(), nil
	default:
		return nil, fmt.Errorf("unknown email mode %q", cfg.Email.Mode)
	}
}

func buildFileStore(cfg *config.Config) (ports.FileStore, error) {
	switch cfg.Storage.Mode {
	case "s3":
		return storage.NewS3(context.Background(), storage.S3Config{
			Region:        cfg.Storage.Region,
			Bucket:        cfg.Storage.Bucket,
			AccessKey:     cfg.Storage.AccessKey,
			SecretKey:     cfg.Storage.SecretKey,
			BaseEndpoint:  cfg.Storage.Endpoint,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
		})
	case "memory":
		return storage.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage mode %q", cfg.Storage.Mode)
	}
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
	} else {
		logger = zerolog.New(os.Stderr).Level(level)
	}
	return logger.With().Timestamp().Str("service", "openshelf").Logger()
}
