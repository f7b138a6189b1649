// Package session реализует HTTP API мастера оформления абонемента.
//
// Каждая сессия живёт в памяти процесса, клиент обращается к ней по id,
// полученному при создании. Ответы содержат полный снимок состояния мастера.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/club-checkout/internal/http/response"
	"github.com/magabrotheeeer/club-checkout/internal/lib/sl"
	"github.com/magabrotheeeer/club-checkout/internal/metrics"
	"github.com/magabrotheeeer/club-checkout/internal/models"
	"github.com/magabrotheeeer/club-checkout/internal/storage/repository"
	"github.com/magabrotheeeer/club-checkout/internal/wizard"
)

const maxBodyBytes = 16 << 10

// Sessions хранит сессии мастера.
type Sessions interface {
	Start() *wizard.Session
	Get(id string) (*wizard.Session, error)
	Finish(id string)
}

// Clubs отдаёт клуб по id.
type Clubs interface {
	Club(ctx context.Context, id string) (*models.Club, error)
}

// Handler группирует обработчики сессии мастера.
type Handler struct {
	log      *slog.Logger
	sessions Sessions
	clubs    Clubs
	loc      *time.Location
}

// New создает новый Handler. loc задаёт часовой пояс дат абонемента.
func New(log *slog.Logger, sessions Sessions, clubs Clubs, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{log: log, sessions: sessions, clubs: clubs, loc: loc}
}

// ClubRequest - выбор клуба.
type ClubRequest struct {
	ClubID string `json:"club_id"`
}

// PlanRequest - выбор тарифа.
type PlanRequest struct {
	PlanID string `json:"plan_id"`
}

// StartDateRequest - дата начала абонемента в формате YYYY-MM-DD.
type StartDateRequest struct {
	StartDate string `json:"start_date"`
}

// GoToRequest - переход на пройденный шаг.
type GoToRequest struct {
	Step int `json:"step"`
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("session_id", chi.URLParam(r, "id")),
	)
}

// session достаёт сессию из URL или отвечает 404.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*wizard.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("checkout session not found"))
		return nil, false
	}
	return s, true
}

func decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return false
	}
	return true
}

func renderState(w http.ResponseWriter, r *http.Request, s *wizard.Session) {
	render.JSON(w, r, response.StatusOKWithData(s.State()))
}

// Create godoc
// @Summary Новая сессия оформления
// @Tags Checkout
// @Produce json
// @Success 201 {object} response.Response
// @Router /checkout/sessions [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Start()
	h.logger(r, "handlers.checkout.Create").Info("checkout session created", slog.String("id", s.ID()))
	render.Status(r, http.StatusCreated)
	renderState(w, r, s)
}

// Get godoc
// @Summary Состояние сессии
// @Description С wait=true ответ отдаётся после загрузки каталога тарифов.
// @Tags Checkout
// @Produce json
// @Param id path string true "ID сессии"
// @Param wait query bool false "Дождаться каталога"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /checkout/sessions/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("wait") == "true" {
		s.WaitPlans()
	}
	renderState(w, r, s)
}

// SelectClub godoc
// @Summary Выбор клуба
// @Description Смена клуба сбрасывает тариф и перезагружает каталог.
// @Tags Checkout
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param request body ClubRequest true "Клуб"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /checkout/sessions/{id}/club [put]
func (h *Handler) SelectClub(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.checkout.SelectClub")
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req ClubRequest
	if !decode(w, r, log, &req) {
		return
	}

	club, err := h.clubs.Club(r.Context(), req.ClubID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !club.Active) {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("club is not available"))
		return
	}
	if err != nil {
		log.Error("failed to load club", slog.String("club_id", req.ClubID), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load club"))
		return
	}

	s.SelectClub(*club)
	renderState(w, r, s)
}

// SelectPlan godoc
// @Summary Выбор тарифа
// @Tags Checkout
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param request body PlanRequest true "Тариф"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /checkout/sessions/{id}/plan [put]
func (h *Handler) SelectPlan(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.checkout.SelectPlan")
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req PlanRequest
	if !decode(w, r, log, &req) {
		return
	}

	err := s.SelectPlan(req.PlanID)
	if errors.Is(err, wizard.ErrUnknownPlan) && s.PlansLoading() {
		s.WaitPlans()
		err = s.SelectPlan(req.PlanID)
	}
	if err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}
	renderState(w, r, s)
}

// SetPersonalData godoc
// @Summary Поля формы покупателя
// @Description Принимает объект {поле: значение}. Неизвестное поле отклоняет весь запрос.
// @Tags Checkout
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param request body map[string]string true "Поля формы"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /checkout/sessions/{id}/personal-data [patch]
func (h *Handler) SetPersonalData(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.checkout.SetPersonalData")
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req map[string]string
	if !decode(w, r, log, &req) {
		return
	}

	known := make(map[string]bool)
	for _, f := range wizard.Fields() {
		known[f] = true
	}
	for field := range req {
		if !known[field] {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("unknown field: "+field))
			return
		}
	}
	for _, field := range wizard.Fields() {
		value, ok := req[field]
		if !ok {
			continue
		}
		if err := s.SetField(field, value); err != nil {
			log.Error("failed to set field", slog.String("field", field), sl.Err(err))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
	}
	renderState(w, r, s)
}

// SetStartDate godoc
// @Summary Дата начала абонемента
// @Tags Checkout
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param request body StartDateRequest true "Дата YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /checkout/sessions/{id}/start-date [put]
func (h *Handler) SetStartDate(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.checkout.SetStartDate")
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req StartDateRequest
	if !decode(w, r, log, &req) {
		return
	}

	date, err := wizard.ParseDate(req.StartDate, h.loc)
	if err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("start_date must be in format YYYY-MM-DD"))
		return
	}
	if err := s.SetStartDate(date); err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}
	renderState(w, r, s)
}

// Advance godoc
// @Summary Следующий шаг
// @Tags Checkout
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /checkout/sessions/{id}/advance [post]
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if !s.Advance() {
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error("already on the last step"))
		return
	}
	renderState(w, r, s)
}

// GoTo godoc
// @Summary Возврат на пройденный шаг
// @Tags Checkout
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param request body GoToRequest true "Номер шага"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /checkout/sessions/{id}/goto [post]
func (h *Handler) GoTo(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.checkout.GoTo")
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req GoToRequest
	if !decode(w, r, log, &req) {
		return
	}
	if err := s.GoTo(wizard.Step(req.Step)); err != nil {
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}
	renderState(w, r, s)
}

// Submit godoc
// @Summary Отправка заказа
// @Description Передаёт заказ на оплату и возвращает URL для редиректа. При ошибке сессия сохраняется.
// @Tags Checkout
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} models.PaymentResult
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Failure 422 {object} response.Response
// @Failure 502 {object} response.ErrorResponse
// @Router /checkout/sessions/{id}/submit [post]
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.checkout.Submit")
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if !s.StepComplete(wizard.StepPersonalData) {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Response{
			Status: response.StatusError,
			Error:  "personal data is incomplete",
			Data:   s.State(),
		})
		return
	}

	url, err := s.Submit(r.Context())
	switch {
	case err == nil:
	case errors.Is(err, wizard.ErrSubmissionInFlight):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error(err.Error()))
		return
	case errors.Is(err, wizard.ErrIncompleteSelection):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
		return
	default:
		metrics.RecordSubmission("error")
		log.Error("submission failed", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error(wizard.ErrPaymentInitiation.Error()))
		return
	}

	metrics.RecordSubmission("ok")
	h.sessions.Finish(s.ID())
	log.Info("checkout submitted")
	render.JSON(w, r, models.PaymentResult{URL: url})
}
