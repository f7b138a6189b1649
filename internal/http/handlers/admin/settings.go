package admin

import (
	"net/http"

	"github.com/magabrotheeeer/club-checkout/internal/models"
)

// GetSettings godoc
// @Summary Настройки сайта
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.GetSettings")
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		fail(w, r, log, err, "could not get settings")
		return
	}
	ok(w, r, settings)
}

// UpdateSettings godoc
// @Summary Изменить настройки сайта
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param settings body models.Settings true "Настройки"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /admin/settings [put]
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.UpdateSettings")
	var in models.Settings
	if !h.decode(w, r, log, &in) {
		return
	}
	if err := h.settings.Update(r.Context(), in); err != nil {
		fail(w, r, log, err, "could not update settings")
		return
	}
	log.Info("settings updated")
	ok(w, r, in)
}
