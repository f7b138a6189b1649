// Package services содержит операции админ-панели над клубами, тарифами,
// промоакциями, клиентами и пользователями.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/club-checkout/internal/lib/month"
	"github.com/magabrotheeeer/club-checkout/internal/lib/password"
	"github.com/magabrotheeeer/club-checkout/internal/lib/sl"
	"github.com/magabrotheeeer/club-checkout/internal/models"
)

// Repository описывает хранилище, с которым работает админка.
type Repository interface {
	ListClubs(ctx context.Context, activeOnly bool) ([]models.Club, error)
	CreateClub(ctx context.Context, in models.ClubInput) (*models.Club, error)
	UpdateClub(ctx context.Context, id string, in models.ClubInput) (*models.Club, error)

	ListPlans(ctx context.Context) ([]models.Plan, error)
	CreatePlan(ctx context.Context, in models.PlanInput) (*models.Plan, error)
	UpdatePlan(ctx context.Context, id string, in models.PlanInput) (*models.Plan, error)
	DeletePlan(ctx context.Context, id string) error

	ListPromotions(ctx context.Context) ([]models.Promotion, error)
	CreatePromotion(ctx context.Context, in models.PromotionInput) (*models.Promotion, error)
	UpdatePromotion(ctx context.Context, id string, in models.PromotionInput) (*models.Promotion, error)
	DeletePromotion(ctx context.Context, id string) error

	ListClients(ctx context.Context, limit, offset int) ([]models.Client, error)
	GetClient(ctx context.Context, id string) (*models.Client, error)
	UpdateClient(ctx context.Context, id string, in models.ClientUpdate) (*models.Client, error)
	DeleteClient(ctx context.Context, id string) error

	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, user models.User) (string, error)
	DeleteUser(ctx context.Context, id string) error
}

// CatalogInvalidator сбрасывает кэш каталога после изменения тарифов.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context) error
}

// AdminService реализует операции админки.
type AdminService struct {
	repo    Repository
	catalog CatalogInvalidator
	log     *slog.Logger
	now     func() time.Time
}

// NewAdminService создает новый экземпляр AdminService.
func NewAdminService(repo Repository, catalog CatalogInvalidator, log *slog.Logger) *AdminService {
	return &AdminService{repo: repo, catalog: catalog, log: log, now: time.Now}
}

func (s *AdminService) invalidate(ctx context.Context, op string) {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.Invalidate(ctx); err != nil {
		s.log.Warn("failed to invalidate catalog cache", slog.String("op", op), sl.Err(err))
	}
}

// Clubs возвращает все клубы, включая неактивные.
func (s *AdminService) Clubs(ctx context.Context) ([]models.Club, error) {
	const op = "services.admin.Clubs"
	clubs, err := s.repo.ListClubs(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return clubs, nil
}

// CreateClub создаёт клуб.
func (s *AdminService) CreateClub(ctx context.Context, in models.ClubInput) (*models.Club, error) {
	const op = "services.admin.CreateClub"
	in.Province = strings.ToUpper(in.Province)
	club, err := s.repo.CreateClub(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return club, nil
}

// UpdateClub изменяет клуб.
func (s *AdminService) UpdateClub(ctx context.Context, id string, in models.ClubInput) (*models.Club, error) {
	const op = "services.admin.UpdateClub"
	in.Province = strings.ToUpper(in.Province)
	club, err := s.repo.UpdateClub(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return club, nil
}

// Plans возвращает тарифы без применения промоакций.
func (s *AdminService) Plans(ctx context.Context) ([]models.Plan, error) {
	const op = "services.admin.Plans"
	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}

// CreatePlan создаёт тариф и сбрасывает кэш каталога.
func (s *AdminService) CreatePlan(ctx context.Context, in models.PlanInput) (*models.Plan, error) {
	const op = "services.admin.CreatePlan"
	plan, err := s.repo.CreatePlan(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, op)
	return plan, nil
}

// UpdatePlan изменяет тариф и сбрасывает кэш каталога.
func (s *AdminService) UpdatePlan(ctx context.Context, id string, in models.PlanInput) (*models.Plan, error) {
	const op = "services.admin.UpdatePlan"
	plan, err := s.repo.UpdatePlan(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, op)
	return plan, nil
}

// DeletePlan удаляет тариф вместе с его промоакциями.
func (s *AdminService) DeletePlan(ctx context.Context, id string) error {
	const op = "services.admin.DeletePlan"
	if err := s.repo.DeletePlan(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, op)
	return nil
}

// Promotions возвращает все промоакции.
func (s *AdminService) Promotions(ctx context.Context) ([]models.Promotion, error) {
	const op = "services.admin.Promotions"
	promos, err := s.repo.ListPromotions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return promos, nil
}

// CreatePromotion создаёт промоакцию.
func (s *AdminService) CreatePromotion(ctx context.Context, in models.PromotionInput) (*models.Promotion, error) {
	const op = "services.admin.CreatePromotion"
	if err := checkPromotionWindow(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	promo, err := s.repo.CreatePromotion(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, op)
	return promo, nil
}

// UpdatePromotion изменяет промоакцию.
func (s *AdminService) UpdatePromotion(ctx context.Context, id string, in models.PromotionInput) (*models.Promotion, error) {
	const op = "services.admin.UpdatePromotion"
	if err := checkPromotionWindow(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	promo, err := s.repo.UpdatePromotion(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, op)
	return promo, nil
}

// DeletePromotion удаляет промоакцию.
func (s *AdminService) DeletePromotion(ctx context.Context, id string) error {
	const op = "services.admin.DeletePromotion"
	if err := s.repo.DeletePromotion(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, op)
	return nil
}

// Clients возвращает страницу клиентов с датой окончания и остатком абонемента.
func (s *AdminService) Clients(ctx context.Context, limit, offset int) ([]models.ClientView, error) {
	const op = "services.admin.Clients"
	clients, err := s.repo.ListClients(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	now := s.now()
	views := make([]models.ClientView, 0, len(clients))
	for _, c := range clients {
		views = append(views, ClientView(c, now))
	}
	return views, nil
}

// Client возвращает клиента по id.
func (s *AdminService) Client(ctx context.Context, id string) (*models.ClientView, error) {
	const op = "services.admin.Client"
	c, err := s.repo.GetClient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	view := ClientView(*c, s.now())
	return &view, nil
}

// UpdateClient изменяет контакты клиента.
func (s *AdminService) UpdateClient(ctx context.Context, id string, in models.ClientUpdate) (*models.ClientView, error) {
	const op = "services.admin.UpdateClient"
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	c, err := s.repo.UpdateClient(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	view := ClientView(*c, s.now())
	return &view, nil
}

// DeleteClient удаляет клиента.
func (s *AdminService) DeleteClient(ctx context.Context, id string) error {
	const op = "services.admin.DeleteClient"
	if err := s.repo.DeleteClient(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Users возвращает пользователей админки.
func (s *AdminService) Users(ctx context.Context) ([]models.User, error) {
	const op = "services.admin.Users"
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// CreateUser создаёт пользователя админки с хэшированным паролем.
func (s *AdminService) CreateUser(ctx context.Context, in models.UserInput) (*models.User, error) {
	const op = "services.admin.CreateUser"
	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Role:         in.Role,
	}
	user.ID, err = s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// DeleteUser удаляет пользователя админки.
func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	const op = "services.admin.DeleteUser"
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ClientView дополняет клиента датой окончания абонемента и числом
// оставшихся месяцев на момент at.
func ClientView(c models.Client, at time.Time) models.ClientView {
	return models.ClientView{
		Client:          c,
		EndDate:         month.Add(c.StartDate, c.Months),
		RemainingMonths: month.Remaining(c.StartDate, c.Months, at),
	}
}

func checkPromotionWindow(in models.PromotionInput) error {
	if in.StartsAt != nil && in.EndsAt != nil && !in.EndsAt.After(*in.StartsAt) {
		return ErrInvalidWindow
	}
	return nil
}
