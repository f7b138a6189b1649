// Package plans реализует HTTP-обработчик каталога тарифов клуба.
//
// Если каталог пуст или недоступен, отдаются встроенные тарифы, чтобы
// страница покупки оставалась рабочей.
package plans

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/club-checkout/internal/http/response"
	"github.com/magabrotheeeer/club-checkout/internal/lib/sl"
	"github.com/magabrotheeeer/club-checkout/internal/models"
)

// Service отдаёт тарифы с применёнными промоакциями клуба.
type Service interface {
	Plans(ctx context.Context, clubID string) ([]models.Plan, error)
}

// Handler обрабатывает запросы каталога тарифов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Тарифы
// @Description Тарифы по возрастанию длительности с промоакциями клуба.
// @Tags Catalog
// @Produce json
// @Param club_id query string false "ID клуба"
// @Success 200 {object} response.Response
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.plans"
	clubID := r.URL.Query().Get("club_id")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("club_id", clubID),
	)

	plans, err := h.service.Plans(r.Context(), clubID)
	if err != nil {
		log.Error("failed to load plans, serving defaults", sl.Err(err))
	}
	source := "catalog"
	if len(plans) == 0 {
		plans = models.DefaultPlans()
		source = "default"
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"plans":  plans,
		"source": source,
	}))
}
