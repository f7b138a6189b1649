package wizard

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/club-checkout/internal/lib/sl"
	"github.com/magabrotheeeer/club-checkout/internal/models"
)

// refreshPlansLocked запускает загрузку каталога для clubID в фоне.
// Применяется только ответ на самый последний запрос. Вызывается под s.mu.
func (s *Session) refreshPlansLocked(clubID string) {
	s.catalogSeq++
	seq := s.catalogSeq
	s.pending++

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CatalogTimeout)
		defer cancel()

		plans, err := s.plans.Plans(ctx, clubID)

		s.mu.Lock()
		defer s.mu.Unlock()
		defer func() {
			s.pending--
			s.settled.Broadcast()
		}()

		log := s.log.With(slog.String("club_id", clubID), slog.Uint64("seq", seq))
		if seq != s.catalogSeq {
			log.Debug("discarding stale plan catalog")
			return
		}
		if err != nil {
			log.Warn("failed to refresh plan catalog, keeping previous plans", sl.Err(err))
			return
		}
		if len(plans) == 0 {
			log.Warn("plan catalog is empty, keeping previous plans")
			return
		}
		s.applyCatalogLocked(plans)
		log.Debug("plan catalog refreshed", slog.Int("count", len(plans)))
	}()
}

// applyCatalogLocked заменяет каталог и перечитывает выбранный тариф из
// нового каталога, чтобы в заказ не попала цена другого клуба.
func (s *Session) applyCatalogLocked(plans []models.Plan) {
	s.catalog = plans
	if s.plan == nil {
		return
	}
	for _, p := range plans {
		if p.ID == s.plan.ID {
			plan := p
			s.plan = &plan
			return
		}
	}
	s.plan = nil
}

// Plans возвращает копию текущего каталога.
func (s *Session) Plans() []models.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	plans := make([]models.Plan, len(s.catalog))
	copy(plans, s.catalog)
	return plans
}

// PlansLoading сообщает, идёт ли загрузка каталога.
func (s *Session) PlansLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending > 0
}

// WaitPlans блокируется до завершения всех запущенных загрузок каталога.
// Каждая загрузка ограничена CatalogTimeout.
func (s *Session) WaitPlans() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.pending > 0 {
		s.settled.Wait()
	}
}
