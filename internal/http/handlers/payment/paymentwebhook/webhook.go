// Package paymentwebhook реализует HTTP-обработчик вебхуков платёжного провайдера.
//
// Подписанное событие об оплате превращается в сообщение очереди orders.paid,
// остальная обработка заказа выполняется воркером.
package paymentwebhook

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/club-checkout/internal/http/response"
	"github.com/magabrotheeeer/club-checkout/internal/lib/sl"
	"github.com/magabrotheeeer/club-checkout/internal/metrics"
	"github.com/magabrotheeeer/club-checkout/internal/models"
	"github.com/magabrotheeeer/club-checkout/internal/paymentprovider"
	"github.com/magabrotheeeer/club-checkout/internal/rabbitmq"
)

// SignatureHeader заголовок с подписью тела вебхука.
const SignatureHeader = "X-Signature"

const maxBodyBytes = 1 << 20

// Publisher публикует сообщения в брокер.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// Handler обрабатывает вебхуки провайдера.
type Handler struct {
	log           *slog.Logger
	publisher     Publisher
	webhookSecret string
}

// New создает новый Handler.
func New(log *slog.Logger, publisher Publisher, secret string) *Handler {
	return &Handler{
		log:           log,
		publisher:     publisher,
		webhookSecret: secret,
	}
}

// ServeHTTP godoc
// @Summary Вебхук провайдера оплаты
// @Tags Payments
// @Accept json
// @Param X-Signature header string true "base64(HMAC-SHA256(body))"
// @Success 200
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if !paymentprovider.VerifySignature(h.webhookSecret, body, r.Header.Get(SignatureHeader)) {
		log.Error("invalid or missing webhook signature")
		metrics.RecordWebhookEvent("unknown", "unauthorized")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	var event paymentprovider.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid payload"))
		return
	}
	log = log.With(slog.String("event_id", event.ID), slog.String("event", event.Type))

	if event.Type != paymentprovider.EventCheckoutCompleted {
		log.Info("ignored webhook event")
		metrics.RecordWebhookEvent(event.Type, "ignored")
		w.WriteHeader(http.StatusOK)
		return
	}

	status := event.Data.Object.PaymentStatus
	orderID := event.OrderID()
	if orderID == "" || status != paymentprovider.PaymentStatusPaid {
		log.Warn("completed event without paid order", slog.String("payment_status", status))
		metrics.RecordWebhookEvent(event.Type, "ignored")
		w.WriteHeader(http.StatusOK)
		return
	}

	msg := models.PaidOrderMessage{OrderID: orderID, PaymentID: event.PaymentID()}
	if err := h.publisher.Publish(rabbitmq.ExchangeOrders, rabbitmq.RoutingKeyPaid, msg); err != nil {
		log.Error("failed to publish paid order", slog.String("order_id", orderID), sl.Err(err))
		metrics.RecordWebhookEvent(event.Type, "error")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process event"))
		return
	}

	log.Info("paid order queued", slog.String("order_id", orderID), slog.String("payment_id", msg.PaymentID))
	metrics.RecordWebhookEvent(event.Type, "ok")
	w.WriteHeader(http.StatusOK)
}
