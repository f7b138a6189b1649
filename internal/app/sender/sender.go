// Package sender содержит воркер, который доставляет push-уведомления
// из очереди notifications.push в шлюз мобильного приложения.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/club-checkout/internal/config"
	"github.com/magabrotheeeer/club-checkout/internal/lib/sl"
	"github.com/magabrotheeeer/club-checkout/internal/rabbitmq"
	pushservice "github.com/magabrotheeeer/club-checkout/internal/services/notification-sender"
	"github.com/magabrotheeeer/club-checkout/internal/upstream"
)

// App воркер push-уведомлений.
type App struct {
	conn        *amqp.Connection
	ch          *amqp.Channel
	pushService *pushservice.PushService
	logger      *slog.Logger
}

// New подключается к брокеру и собирает сервис доставки.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.Topology())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	pushService := pushservice.NewPushService(upstream.NewPushClient(cfg.PushGateway), cfg.PushGateway.Timeout, logger)

	return &App{
		conn:        conn,
		ch:          ch,
		pushService: pushService,
		logger:      logger,
	}, nil
}

// Run потребляет очередь уведомлений до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.QueuePushNotifications, a.logger, a.pushService.HandleMessage)
	if err != nil {
		a.logger.Error("failed to start notifications.push consumer", sl.Err(err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("Sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}

	return nil
}
