package wizard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/club-checkout/internal/lib/sl"
	"github.com/magabrotheeeer/club-checkout/internal/models"
)

// Submit собирает заказ и передаёт его в точку инициации платежа.
// Полноту формы проверяет вызывающий код. Повторный вызов во время
// отправки отклоняется с ErrSubmissionInFlight. При ошибке шаг и все
// введённые данные сохраняются, а отправку можно повторить.
func (s *Session) Submit(ctx context.Context) (string, error) {
	const op = "wizard.Submit"

	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return "", ErrSubmissionInFlight
	}
	if s.club == nil || s.plan == nil {
		s.mu.Unlock()
		return "", ErrIncompleteSelection
	}
	order := s.orderLocked()
	s.submitting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.SubmitTimeout)
	defer cancel()

	url, err := s.payments.Initiate(ctx, order)
	if err != nil {
		s.log.Error("payment initiation failed", sl.Err(err))
		return "", fmt.Errorf("%s: %w: %w", op, ErrPaymentInitiation, err)
	}
	if url == "" {
		s.log.Error("payment initiation returned no redirect url")
		return "", fmt.Errorf("%s: %w: empty redirect url", op, ErrPaymentInitiation)
	}

	s.log.Info("payment initiated", slog.String("plan_id", order.Plan.ID), slog.String("club_id", order.Club.ID))
	return url, nil
}

// Submitting сообщает, идёт ли отправка.
func (s *Session) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Order возвращает снимок заказа или ErrIncompleteSelection.
func (s *Session) Order() (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.club == nil || s.plan == nil {
		return models.Order{}, ErrIncompleteSelection
	}
	return s.orderLocked(), nil
}

func (s *Session) orderLocked() models.Order {
	d := s.data
	return models.Order{
		Club: models.OrderClub{
			ID:   s.club.ID,
			Name: s.club.Name,
		},
		Plan: models.OrderPlan{
			ID:            s.plan.ID,
			Name:          s.plan.Name,
			Duration:      s.plan.Duration,
			Price:         s.plan.TotalDue(),
			OriginalPrice: s.plan.Price,
			ActivationFee: s.plan.ActivationFee,
			PromoActive:   s.plan.PromoActive,
		},
		Customer: models.Customer{
			Gender:      d.Gender,
			FirstName:   d.FirstName,
			LastName:    d.LastName,
			Email:       d.Email,
			PhonePrefix: d.PhonePrefix,
			Phone:       normalizePhone(d.Phone),
			BirthDate:   d.BirthDate,
			BirthPlace:  d.BirthPlace,
			FiscalCode:  d.FiscalCode,
			Address:     d.Address,
			City:        d.City,
			PostalCode:  d.PostalCode,
			Province:    d.Province,
			Password:    d.Password,
		},
		Subscription: models.Period{
			StartDate: FormatDate(s.startDate),
			EndDate:   FormatDate(EndDate(s.startDate, s.plan.Duration)),
		},
	}
}
