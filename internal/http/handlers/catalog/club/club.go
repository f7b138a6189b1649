// Package club реализует HTTP-обработчик получения клуба по id.
package club

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/club-checkout/internal/http/response"
	"github.com/magabrotheeeer/club-checkout/internal/lib/sl"
	"github.com/magabrotheeeer/club-checkout/internal/models"
	"github.com/magabrotheeeer/club-checkout/internal/storage/repository"
)

// Service отдаёт клуб по id.
type Service interface {
	Club(ctx context.Context, id string) (*models.Club, error)
}

// Handler обрабатывает запросы на получение клуба.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Клуб
// @Tags Catalog
// @Produce json
// @Param id path string true "ID клуба"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /clubs/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.club"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	club, err := h.service.Club(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("club not found"))
		return
	}
	if err != nil {
		log.Error("failed to get club", slog.String("id", id), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get club"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"club": club,
	}))
}
