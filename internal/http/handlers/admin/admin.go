// Package admin реализует HTTP-обработчики админ-панели: клубы, тарифы,
// промоакции, клиенты, пользователи и настройки сайта.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/club-checkout/internal/http/response"
	"github.com/magabrotheeeer/club-checkout/internal/lib/sl"
	"github.com/magabrotheeeer/club-checkout/internal/models"
	services "github.com/magabrotheeeer/club-checkout/internal/services/admin"
	"github.com/magabrotheeeer/club-checkout/internal/storage/repository"
)

const maxBodyBytes = 64 << 10

// Service описывает операции админки.
type Service interface {
	Clubs(ctx context.Context) ([]models.Club, error)
	CreateClub(ctx context.Context, in models.ClubInput) (*models.Club, error)
	UpdateClub(ctx context.Context, id string, in models.ClubInput) (*models.Club, error)

	Plans(ctx context.Context) ([]models.Plan, error)
	CreatePlan(ctx context.Context, in models.PlanInput) (*models.Plan, error)
	UpdatePlan(ctx context.Context, id string, in models.PlanInput) (*models.Plan, error)
	DeletePlan(ctx context.Context, id string) error

	Promotions(ctx context.Context) ([]models.Promotion, error)
	CreatePromotion(ctx context.Context, in models.PromotionInput) (*models.Promotion, error)
	UpdatePromotion(ctx context.Context, id string, in models.PromotionInput) (*models.Promotion, error)
	DeletePromotion(ctx context.Context, id string) error

	Clients(ctx context.Context, limit, offset int) ([]models.ClientView, error)
	Client(ctx context.Context, id string) (*models.ClientView, error)
	UpdateClient(ctx context.Context, id string, in models.ClientUpdate) (*models.ClientView, error)
	DeleteClient(ctx context.Context, id string) error

	Users(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, in models.UserInput) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Settings читает и меняет глобальные настройки сайта.
type Settings interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, settings models.Settings) error
}

// Handler группирует обработчики админки.
type Handler struct {
	log      *slog.Logger
	service  Service
	settings Settings
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, settings Settings) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		settings: settings,
		validate: validator.New(),
	}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// decode читает тело запроса и проверяет его тегами validate.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		var validateErr validator.ValidationErrors
		if errors.As(err, &validateErr) {
			log.Info("invalid request", sl.Err(err))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(validateErr))
			return false
		}
		log.Error("failed to validate request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return false
	}
	return true
}

// fail переводит ошибку сервиса в HTTP-ответ.
func fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		log.Info("record not found", sl.Err(err))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("not found"))
	case errors.Is(err, services.ErrInvalidWindow):
		log.Info("invalid promotion window", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(services.ErrInvalidWindow.Error()))
	default:
		log.Error(msg, sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(msg))
	}
}

func ok(w http.ResponseWriter, r *http.Request, data any) {
	render.JSON(w, r, response.StatusOKWithData(data))
}

func created(w http.ResponseWriter, r *http.Request, data any) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(data))
}

func deleted(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.Response{Status: response.StatusOK})
}
