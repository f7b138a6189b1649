package checkoutapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/club-checkout/internal/cache"
	"github.com/magabrotheeeer/club-checkout/internal/config"
	"github.com/magabrotheeeer/club-checkout/internal/http/handlers/health"
	customjwt "github.com/magabrotheeeer/club-checkout/internal/lib/jwt"
	"github.com/magabrotheeeer/club-checkout/internal/lib/sl"
	"github.com/magabrotheeeer/club-checkout/internal/migrations"
	"github.com/magabrotheeeer/club-checkout/internal/paymentprovider"
	"github.com/magabrotheeeer/club-checkout/internal/rabbitmq"
	adminservice "github.com/magabrotheeeer/club-checkout/internal/services/admin"
	authservice "github.com/magabrotheeeer/club-checkout/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/club-checkout/internal/services/catalog"
	checkoutservice "github.com/magabrotheeeer/club-checkout/internal/services/checkout"
	settingsservice "github.com/magabrotheeeer/club-checkout/internal/services/settings"
	"github.com/magabrotheeeer/club-checkout/internal/storage/repository"
	"github.com/magabrotheeeer/club-checkout/internal/wizard"
)

// App HTTP-приложение оформления абонементов.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	cache    *cache.Cache
	conn     *amqp.Connection
	ch       *amqp.Channel
	sessions *wizard.Manager
	sweep    time.Duration
}

// New поднимает зависимости, применяет миграции и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err = repository.CheckDatabaseReady(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.Topology())
	if err != nil {
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, err
	}

	loc := cfg.Checkout.Location()
	catalogService := catalogservice.NewCatalogService(db, cacheRedis, cfg.CatalogCacheTTL, logger)
	settingsService := settingsservice.NewSettingsService(db, cacheRedis, cfg.SettingsTTL, logger)
	checkoutService := checkoutservice.NewCheckoutService(
		db, paymentprovider.NewClient(cfg.PaymentProvider), catalogService, cfg.PaymentProvider, loc, logger)
	adminService := adminservice.NewAdminService(db, catalogService, logger)
	authService := authservice.NewAuthService(db, customjwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL))

	if created, err := authService.Bootstrap(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logger.Error("failed to bootstrap admin user", sl.Err(err))
	} else if created {
		logger.Info("bootstrap admin user created", slog.String("email", cfg.Admin.Email))
	}

	sessions := wizard.NewManager(catalogService, checkoutService, logger, wizard.Config{
		CatalogTimeout: cfg.CatalogTimeout,
		SubmitTimeout:  cfg.SubmitTimeout,
		Now:            func() time.Time { return time.Now().In(loc) },
	}, cfg.SessionTTL)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, Services{
		Catalog:   catalogService,
		Settings:  settingsService,
		Checkout:  checkoutService,
		Admin:     adminService,
		Auth:      authService,
		Sessions:  sessions,
		Publisher: rabbitmq.NewPublisher(ch),
		Checks: map[string]health.Checker{
			"postgres": db.DB.PingContext,
			"redis": func(ctx context.Context) error {
				return cacheRedis.Db.Ping(ctx).Err()
			},
			"rabbitmq": func(context.Context) error {
				if conn.IsClosed() {
					return errors.New("connection closed")
				}
				return nil
			},
		},
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP + cfg.SubmitTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		cache:    cacheRedis,
		conn:     conn,
		ch:       ch,
		sessions: sessions,
		sweep:    sweepInterval(cfg.SessionTTL),
	}, nil
}

// Run обслуживает HTTP до отмены ctx и затем корректно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	go a.sessions.Run(ctx, a.sweep)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	if err != nil {
		return fmt.Errorf("checkoutapi.Run: %w", err)
	}
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}

// sweepInterval период очистки просроченных сессий мастера.
func sweepInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return time.Minute
	}
	return max(ttl/10, 10*time.Second)
}
