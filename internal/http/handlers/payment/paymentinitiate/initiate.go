// Package paymentinitiate реализует HTTP-обработчик инициации платежа.
//
// Handler принимает готовый заказ, передаёт его сервису оформления и
// возвращает URL страницы оплаты, на которую нужно перенаправить покупателя.
package paymentinitiate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/club-checkout/internal/http/response"
	"github.com/magabrotheeeer/club-checkout/internal/lib/sl"
	"github.com/magabrotheeeer/club-checkout/internal/metrics"
	"github.com/magabrotheeeer/club-checkout/internal/models"
	checkout "github.com/magabrotheeeer/club-checkout/internal/services/checkout"
)

// maxBodyBytes ограничивает размер тела запроса.
const maxBodyBytes = 64 << 10

// Service создаёт заказ и страницу оплаты.
type Service interface {
	Initiate(ctx context.Context, order models.Order) (string, error)
}

// Handler обрабатывает запросы на инициацию платежа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Инициация платежа
// @Description Сохраняет заказ и возвращает URL страницы оплаты.
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body models.Order true "Заказ"
// @Success 200 {object} models.PaymentResult
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Провайдер недоступен"
// @Router /payments/initiate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.initiate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var order models.Order
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&order); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	url, err := h.service.Initiate(r.Context(), order)
	metrics.RecordSubmission(metrics.Result(err))
	if err != nil {
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			log.Info("order validation failed", sl.Err(err))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(verrs))
		case errors.Is(err, checkout.ErrInvalidOrder):
			log.Info("order rejected", sl.Err(err))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("invalid order"))
		default:
			log.Error("payment initiation failed", sl.Err(err))
			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, response.Error("payment initiation failed"))
		}
		return
	}

	log.Info("payment initiated", slog.String("club_id", order.Club.ID), slog.String("plan_id", order.Plan.ID))
	render.JSON(w, r, models.PaymentResult{URL: url})
}
