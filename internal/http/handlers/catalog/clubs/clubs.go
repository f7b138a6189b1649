// Package clubs реализует HTTP-обработчик списка активных клубов.
package clubs

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

// Service отдаёт активные клубы.
type Service interface {
	Clubs(ctx context.Context) ([]models.Club, error)
}

// Handler обрабатывает запросы списка клубов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список клубов
// @Description Возвращает активные клубы по алфавиту.
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /clubs [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.clubs"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	clubs, err := h.service.Clubs(r.Context())
	if err != nil {
		log.Error("failed to list clubs", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list clubs"))
		return
	}
	if clubs == nil {
		clubs = []models.Club{}
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"clubs": clubs,
	}))
}
