package admin

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/club-checkout/internal/models"
)

// ListPromotions godoc
// @Summary Промоакции
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/promotions [get]
func (h *Handler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.ListPromotions")
	promos, err := h.service.Promotions(r.Context())
	if err != nil {
		fail(w, r, log, err, "could not list promotions")
		return
	}
	ok(w, r, promos)
}

// CreatePromotion godoc
// @Summary Создать промоакцию
// @Description Без clubId акция действует во всех клубах.
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param promotion body models.PromotionInput true "Промоакция"
// @Success 201 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /admin/promotions [post]
func (h *Handler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.CreatePromotion")
	var in models.PromotionInput
	if !h.decode(w, r, log, &in) {
		return
	}
	promo, err := h.service.CreatePromotion(r.Context(), in)
	if err != nil {
		fail(w, r, log, err, "could not create promotion")
		return
	}
	log.Info("promotion created", slog.String("id", promo.ID))
	created(w, r, promo)
}

// UpdatePromotion godoc
// @Summary Изменить промоакцию
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID промоакции"
// @Param promotion body models.PromotionInput true "Промоакция"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.Response
// @Router /admin/promotions/{id} [put]
func (h *Handler) UpdatePromotion(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.UpdatePromotion")
	var in models.PromotionInput
	if !h.decode(w, r, log, &in) {
		return
	}
	promo, err := h.service.UpdatePromotion(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		fail(w, r, log, err, "could not update promotion")
		return
	}
	ok(w, r, promo)
}

// DeletePromotion godoc
// @Summary Удалить промоакцию
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "ID промоакции"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /admin/promotions/{id} [delete]
func (h *Handler) DeletePromotion(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.DeletePromotion")
	if err := h.service.DeletePromotion(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, log, err, "could not delete promotion")
		return
	}
	deleted(w, r)
}
