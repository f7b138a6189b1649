package admin

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/club-checkout/internal/models"
)

// ListPlans godoc
// @Summary Тарифы без промоакций
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/plans [get]
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.ListPlans")
	plans, err := h.service.Plans(r.Context())
	if err != nil {
		fail(w, r, log, err, "could not list plans")
		return
	}
	ok(w, r, plans)
}

// CreatePlan godoc
// @Summary Создать тариф
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param plan body models.PlanInput true "Тариф"
// @Success 201 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /admin/plans [post]
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.CreatePlan")
	var in models.PlanInput
	if !h.decode(w, r, log, &in) {
		return
	}
	plan, err := h.service.CreatePlan(r.Context(), in)
	if err != nil {
		fail(w, r, log, err, "could not create plan")
		return
	}
	log.Info("plan created", slog.String("id", plan.ID))
	created(w, r, plan)
}

// UpdatePlan godoc
// @Summary Изменить тариф
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID тарифа"
// @Param plan body models.PlanInput true "Тариф"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /admin/plans/{id} [put]
func (h *Handler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.UpdatePlan")
	var in models.PlanInput
	if !h.decode(w, r, log, &in) {
		return
	}
	plan, err := h.service.UpdatePlan(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		fail(w, r, log, err, "could not update plan")
		return
	}
	ok(w, r, plan)
}

// DeletePlan godoc
// @Summary Удалить тариф
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "ID тарифа"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /admin/plans/{id} [delete]
func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.DeletePlan")
	if err := h.service.DeletePlan(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, log, err, "could not delete plan")
		return
	}
	deleted(w, r)
}
