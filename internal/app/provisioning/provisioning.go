// Package provisioning содержит воркер, который обрабатывает оплаченные
// заказы из очереди orders.paid.
package provisioning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/club-checkout/internal/config"
	"github.com/magabrotheeeer/club-checkout/internal/lib/sl"
	"github.com/magabrotheeeer/club-checkout/internal/lib/smtp"
	"github.com/magabrotheeeer/club-checkout/internal/rabbitmq"
	provisioningservice "github.com/magabrotheeeer/club-checkout/internal/services/provisioning"
	senderservice "github.com/magabrotheeeer/club-checkout/internal/services/sender"
	"github.com/magabrotheeeer/club-checkout/internal/storage/repository"
	"github.com/magabrotheeeer/club-checkout/internal/upstream"
)

// App представляет воркер выдачи абонементов.
type App struct {
	provisioningService *provisioningservice.ProvisioningService
	db                  *repository.Storage
	conn                *amqp.Connection
	ch                  *amqp.Channel
	logger              *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(ctx, db)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр воркера.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.Topology())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	// Миграции применяет checkout-api, воркер только ждёт схему.
	if err := waitForDB(ctx, db); err != nil {
		_ = db.Close()
		closeResources(ch, conn, logger)
		return nil, err
	}

	mailer := senderservice.NewSenderService(logger, smtp.NewTransport(cfg.SMTP, logger))
	provisioningService := provisioningservice.NewProvisioningService(
		db,
		upstream.NewAccountsClient(cfg.AccountsAPI),
		upstream.NewInvoicingClient(cfg.InvoicingAPI),
		mailer,
		rabbitmq.NewPublisher(ch),
		cfg.Checkout.Location(),
		logger,
	)

	return &App{
		provisioningService: provisioningService,
		db:                  db,
		conn:                conn,
		ch:                  ch,
		logger:              logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run потребляет очередь оплаченных заказов до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.QueueOrdersPaid, a.logger, a.provisioningService.HandlePaidOrder)
	if err != nil {
		a.logger.Error("failed to start orders consumer", sl.Err(err))
		closeResources(a.ch, a.conn, a.logger)
		_ = a.db.Close()
		return err
	}

	<-ctx.Done()

	a.logger.Info("shutting down provisioning worker")
	closeResources(a.ch, a.conn, a.logger)
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
	return nil
}
