package admin

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/club-checkout/internal/models"
)

// ListClubs godoc
// @Summary Все клубы, включая неактивные
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/clubs [get]
func (h *Handler) ListClubs(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.ListClubs")
	clubs, err := h.service.Clubs(r.Context())
	if err != nil {
		fail(w, r, log, err, "could not list clubs")
		return
	}
	ok(w, r, clubs)
}

// CreateClub godoc
// @Summary Создать клуб
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param club body models.ClubInput true "Клуб"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.Response
// @Router /admin/clubs [post]
func (h *Handler) CreateClub(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.CreateClub")
	var in models.ClubInput
	if !h.decode(w, r, log, &in) {
		return
	}
	club, err := h.service.CreateClub(r.Context(), in)
	if err != nil {
		fail(w, r, log, err, "could not create club")
		return
	}
	log.Info("club created", slog.String("id", club.ID))
	created(w, r, club)
}

// UpdateClub godoc
// @Summary Изменить клуб
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID клуба"
// @Param club body models.ClubInput true "Клуб"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.Response
// @Router /admin/clubs/{id} [put]
func (h *Handler) UpdateClub(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.UpdateClub")
	var in models.ClubInput
	if !h.decode(w, r, log, &in) {
		return
	}
	club, err := h.service.UpdateClub(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		fail(w, r, log, err, "could not update club")
		return
	}
	ok(w, r, club)
}
