package upstream

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/club-checkout/internal/config"
	"github.com/magabrotheeeer/club-checkout/internal/models"
)

// PushClient доставляет push-уведомления через шлюз.
type PushClient struct {
	api apiClient
}

// NewPushClient создаёт клиент push-шлюза.
func NewPushClient(cfg config.APIClient) *PushClient {
	return &PushClient{api: newAPIClient(cfg)}
}

// Send отправляет уведомление владельцу учётной записи с адресом msg.Email.
func (c *PushClient) Send(ctx context.Context, msg models.PushMessage) error {
	const op = "upstream.Send"
	if err := c.api.postJSON(ctx, "/push", msg, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
