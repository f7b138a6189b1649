// Package services отдаёт каталог клубов и тарифов с применёнными
// промоакциями и кэширует его в redis.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/magabrotheeeer/club-checkout/internal/lib/sl"
	"github.com/magabrotheeeer/club-checkout/internal/metrics"
	"github.com/magabrotheeeer/club-checkout/internal/models"
)

const plansKeyPrefix = "plans:"

// Repository описывает чтение каталога из хранилища.
type Repository interface {
	ListClubs(ctx context.Context, activeOnly bool) ([]models.Club, error)
	GetClub(ctx context.Context, id string) (*models.Club, error)
	ListPlans(ctx context.Context) ([]models.Plan, error)
	ActivePromotions(ctx context.Context, clubID string, at time.Time) ([]models.Promotion, error)
}

// Cache описывает JSON-кэш каталога.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// CatalogService отдаёт клубы и тарифы.
type CatalogService struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
	now   func() time.Time
}

// NewCatalogService создает новый экземпляр CatalogService. cache может быть nil.
func NewCatalogService(repo Repository, cache Cache, ttl time.Duration, log *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   log,
		now:   time.Now,
	}
}

// Clubs возвращает активные клубы по алфавиту.
func (s *CatalogService) Clubs(ctx context.Context) ([]models.Club, error) {
	const op = "services.catalog.Clubs"
	clubs, err := s.repo.ListClubs(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return clubs, nil
}

// Club возвращает клуб по id.
func (s *CatalogService) Club(ctx context.Context, id string) (*models.Club, error) {
	const op = "services.catalog.Club"
	club, err := s.repo.GetClub(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return club, nil
}

// Plans возвращает тарифы по возрастанию длительности с промоакциями клуба
// clubID. Пустой clubID даёт цены без привязки к клубу. Пустой каталог
// возвращается как пустой список и не кэшируется.
func (s *CatalogService) Plans(ctx context.Context, clubID string) ([]models.Plan, error) {
	const op = "services.catalog.Plans"
	log := s.log.With(slog.String("op", op), slog.String("club_id", clubID))
	key := plansKeyPrefix + clubID

	if s.cache != nil {
		var cached []models.Plan
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn("failed to read plans from cache", sl.Err(err))
		}
		if found {
			metrics.RecordCatalogRequest("cache")
			return cached, nil
		}
	}

	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	promos, err := s.repo.ActivePromotions(ctx, clubID, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	plans = ApplyPromotions(plans, promos, s.now())
	metrics.RecordCatalogRequest("storage")

	if s.cache != nil && len(plans) > 0 {
		if err := s.cache.Set(ctx, key, plans, s.ttl); err != nil {
			log.Warn("failed to cache plans", sl.Err(err))
		}
	}
	return plans, nil
}

// Invalidate сбрасывает закэшированные списки тарифов всех клубов.
func (s *CatalogService) Invalidate(ctx context.Context) error {
	const op = "services.catalog.Invalidate"
	if s.cache == nil {
		return nil
	}
	if err := s.cache.InvalidatePrefix(ctx, plansKeyPrefix); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ApplyPromotions проставляет тарифам действующие в момент at промоакции и
// сортирует их по длительности. Акция клуба важнее общей, среди равных
// выигрывает первая в списке promos.
func ApplyPromotions(plans []models.Plan, promos []models.Promotion, at time.Time) []models.Plan {
	best := make(map[string]models.Promotion)
	for _, p := range promos {
		if !p.AppliesAt(at) {
			continue
		}
		cur, ok := best[p.PlanID]
		if !ok || (cur.ClubID == nil && p.ClubID != nil) {
			best[p.PlanID] = p
		}
	}

	out := make([]models.Plan, len(plans))
	for i, plan := range plans {
		if promo, ok := best[plan.ID]; ok {
			price := promo.Price
			plan.PromoActive = true
			plan.PromoPrice = &price
			plan.PromoText = promo.Label
		}
		out[i] = plan
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Duration < out[j].Duration })
	return out
}
