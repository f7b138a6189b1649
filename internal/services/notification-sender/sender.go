// Package services доставляет push-уведомления из очереди notifications.push
// в шлюз мобильного приложения.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/club-checkout/internal/lib/sl"
	"github.com/magabrotheeeer/club-checkout/internal/metrics"
	"github.com/magabrotheeeer/club-checkout/internal/models"
)

// Gateway отправляет push-уведомление в шлюз.
type Gateway interface {
	Send(ctx context.Context, msg models.PushMessage) error
}

// PushService обрабатывает сообщения очереди push-уведомлений.
type PushService struct {
	gateway Gateway
	timeout time.Duration
	log     *slog.Logger
}

// NewPushService создает новый экземпляр PushService.
func NewPushService(gateway Gateway, timeout time.Duration, log *slog.Logger) *PushService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PushService{gateway: gateway, timeout: timeout, log: log}
}

// HandleMessage отправляет одно уведомление. Нечитаемое сообщение
// отбрасывается, ошибка шлюза возвращается, чтобы сообщение вернулось в очередь.
func (s *PushService) HandleMessage(body []byte) error {
	const op = "services.notification-sender.HandleMessage"
	log := s.log.With(slog.String("op", op))

	var msg models.PushMessage
	if err := json.Unmarshal(body, &msg); err != nil || msg.Email == "" {
		metrics.RecordPushNotification("dropped")
		log.Error("dropping malformed push message", slog.String("body", string(body)), sl.Err(err))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.gateway.Send(ctx, msg); err != nil {
		metrics.RecordPushNotification("error")
		log.Error("failed to deliver push notification", slog.String("email", msg.Email), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	metrics.RecordPushNotification("sent")
	log.Info("push notification delivered", slog.String("email", msg.Email))
	return nil
}
