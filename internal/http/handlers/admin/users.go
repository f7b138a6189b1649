package admin

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/club-checkout/internal/models"
)

// ListUsers godoc
// @Summary Пользователи админки
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.ListUsers")
	users, err := h.service.Users(r.Context())
	if err != nil {
		fail(w, r, log, err, "could not list users")
		return
	}
	ok(w, r, users)
}

// CreateUser godoc
// @Summary Создать пользователя админки
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param user body models.UserInput true "Пользователь"
// @Success 201 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /admin/users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.CreateUser")
	var in models.UserInput
	if !h.decode(w, r, log, &in) {
		return
	}
	user, err := h.service.CreateUser(r.Context(), in)
	if err != nil {
		fail(w, r, log, err, "could not create user")
		return
	}
	log.Info("admin user created", slog.String("id", user.ID), slog.String("role", user.Role))
	created(w, r, user)
}

// DeleteUser godoc
// @Summary Удалить пользователя админки
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /admin/users/{id} [delete]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.DeleteUser")
	if err := h.service.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, log, err, "could not delete user")
		return
	}
	deleted(w, r)
}
