package admin

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/club-checkout/internal/http/response"
	"github.com/magabrotheeeer/club-checkout/internal/models"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// pagination разбирает limit и offset из строки запроса.
func pagination(r *http.Request) (limit, offset int, ok bool) {
	limit, offset = defaultPageSize, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return 0, 0, false
		}
		limit = min(n, maxPageSize)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}

// ListClients godoc
// @Summary Клиенты с остатком абонемента
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Размер страницы" default(50)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /admin/clients [get]
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.ListClients")
	limit, offset, valid := pagination(r)
	if !valid {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid pagination parameters"))
		return
	}
	clients, err := h.service.Clients(r.Context(), limit, offset)
	if err != nil {
		fail(w, r, log, err, "could not list clients")
		return
	}
	ok(w, r, clients)
}

// GetClient godoc
// @Summary Клиент по id
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "ID клиента"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /admin/clients/{id} [get]
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.GetClient")
	client, err := h.service.Client(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, log, err, "could not get client")
		return
	}
	ok(w, r, client)
}

// UpdateClient godoc
// @Summary Изменить контакты клиента
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID клиента"
// @Param client body models.ClientUpdate true "Контакты"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.Response
// @Router /admin/clients/{id} [put]
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.UpdateClient")
	var in models.ClientUpdate
	if !h.decode(w, r, log, &in) {
		return
	}
	client, err := h.service.UpdateClient(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		fail(w, r, log, err, "could not update client")
		return
	}
	ok(w, r, client)
}

// DeleteClient godoc
// @Summary Удалить клиента
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "ID клиента"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /admin/clients/{id} [delete]
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.DeleteClient")
	if err := h.service.DeleteClient(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, log, err, "could not delete client")
		return
	}
	deleted(w, r)
}
