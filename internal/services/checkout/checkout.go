// Package services реализует точку инициации платежа: проверяет заказ,
// сохраняет его в статусе pending и создаёт страницу оплаты у провайдера.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/club-checkout/internal/config"
	"github.com/magabrotheeeer/club-checkout/internal/lib/password"
	"github.com/magabrotheeeer/club-checkout/internal/lib/sl"
	"github.com/magabrotheeeer/club-checkout/internal/models"
	"github.com/magabrotheeeer/club-checkout/internal/paymentprovider"
	"github.com/magabrotheeeer/club-checkout/internal/wizard"
)

// ErrInvalidOrder возвращается, когда заказ не прошёл проверку.
var ErrInvalidOrder = errors.New("invalid order")

// OrderRepository сохраняет заказы.
type OrderRepository interface {
	// CreateOrder сохраняет заказ в статусе pending и возвращает его id.
	CreateOrder(ctx context.Context, order models.StoredOrder) (string, error)
}

// Provider создаёт страницы оплаты.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req paymentprovider.CheckoutSessionRequest) (*paymentprovider.CheckoutSession, error)
}

// CheckoutService принимает заказы из мастера и публичного API.
type CheckoutService struct {
	orders   OrderRepository
	provider Provider
	plans    wizard.PlanSource
	validate *validator.Validate
	cfg      config.PaymentProvider
	loc      *time.Location
	now      func() time.Time
	log      *slog.Logger
}

// NewCheckoutService создает новый экземпляр CheckoutService.
// plans может быть nil, тогда цена сверяется только со встроенными тарифами.
// loc - часовой пояс клуба, в нём считается "сегодня" для даты начала.
func NewCheckoutService(orders OrderRepository, provider Provider, plans wizard.PlanSource,
	cfg config.PaymentProvider, loc *time.Location, log *slog.Logger) *CheckoutService {
	if loc == nil {
		loc = time.UTC
	}
	return &CheckoutService{
		orders:   orders,
		provider: provider,
		plans:    plans,
		validate: NewValidator(),
		cfg:      cfg,
		loc:      loc,
		now:      time.Now,
		log:      log,
	}
}

// NewValidator возвращает валидатор с правилами полей формы: phone, birthdate, fiscalcode.
func NewValidator() *validator.Validate {
	v := validator.New()
	rules := map[string]func(string) bool{
		"phone":      wizard.ValidPhone,
		"birthdate":  wizard.ValidBirthDate,
		"fiscalcode": wizard.ValidFiscalCode,
	}
	for tag, fn := range rules {
		fn := fn
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		})
	}
	return v
}

// Validate проверяет заказ. Ошибки валидатора оборачиваются в ErrInvalidOrder.
func (s *CheckoutService) Validate(order models.Order) error {
	const op = "services.checkout.Validate"
	if err := s.validate.Struct(order); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidOrder, err)
	}
	if !wizard.ValidPhonePrefix(order.Customer.PhonePrefix) {
		return fmt.Errorf("%s: %w: unsupported phone prefix %q", op, ErrInvalidOrder, order.Customer.PhonePrefix)
	}
	return nil
}

// Initiate проверяет заказ, сохраняет его и возвращает URL страницы оплаты.
// Если в заказе нет дат абонемента, начало ставится на сегодня, а окончание
// и длительность берутся из тарифа.
func (s *CheckoutService) Initiate(ctx context.Context, order models.Order) (string, error) {
	const op = "services.checkout.Initiate"
	log := s.log.With(slog.String("op", op), slog.String("club_id", order.Club.ID), slog.String("plan_id", order.Plan.ID))

	if err := s.Validate(order); err != nil {
		return "", err
	}
	plan, err := s.resolvePlan(ctx, order)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.fillPeriod(&order, plan); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.Hash(order.Customer.Password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	orderID, err := s.orders.CreateOrder(ctx, models.StoredOrder{
		Order:        order,
		PasswordHash: hash,
		Status:       models.OrderPending,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	session, err := s.provider.CreateCheckoutSession(ctx, paymentprovider.CheckoutSessionRequest{
		ClientReferenceID: orderID,
		Amount:            paymentprovider.MinorUnits(order.Plan.Price),
		Currency:          s.cfg.Currency,
		Description:       fmt.Sprintf("%s membership, %s", order.Plan.Name, order.Club.Name),
		CustomerEmail:     order.Customer.Email,
		SuccessURL:        s.cfg.SuccessURL,
		CancelURL:         s.cfg.CancelURL,
		Metadata: map[string]string{
			"order_id": orderID,
			"club_id":  order.Club.ID,
			"plan_id":  order.Plan.ID,
		},
	})
	if err != nil {
		log.Error("failed to create checkout session", slog.String("order_id", orderID), sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if session.URL == "" {
		return "", fmt.Errorf("%s: provider returned empty url for order %s", op, orderID)
	}

	log.Info("checkout session created", slog.String("order_id", orderID), slog.String("session_id", session.ID))
	return session.URL, nil
}

// resolvePlan находит тариф заказа в каталоге клуба, а если его там нет,
// среди встроенных тарифов, и сверяет сумму. Пустой каталог принимает любой
// тариф: в этом случае мастер показывает встроенные тарифы. Возвращает nil,
// если тариф не найден, но заказ допустим.
func (s *CheckoutService) resolvePlan(ctx context.Context, order models.Order) (*models.Plan, error) {
	var catalog []models.Plan
	if s.plans != nil {
		plans, err := s.plans.Plans(ctx, order.Club.ID)
		if err != nil {
			return nil, err
		}
		catalog = plans
	}

	plan, ok := findPlan(catalog, order.Plan.ID)
	if !ok {
		plan, ok = findPlan(models.DefaultPlans(), order.Plan.ID)
	}
	if !ok {
		if len(catalog) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: unknown plan %q", ErrInvalidOrder, order.Plan.ID)
	}
	if math.Abs(plan.TotalDue()-order.Plan.Price) >= 0.005 {
		return nil, fmt.Errorf("%w: price %.2f does not match catalog price %.2f", ErrInvalidOrder, order.Plan.Price, plan.TotalDue())
	}
	return &plan, nil
}

func findPlan(plans []models.Plan, id string) (models.Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return models.Plan{}, false
}

// fillPeriod дополняет период абонемента. Дата начала не может быть раньше
// сегодняшнего дня в часовом поясе клуба. Длительность берётся из тарифа,
// затем из заказа; без неё нужна явная дата окончания.
func (s *CheckoutService) fillPeriod(order *models.Order, plan *models.Plan) error {
	today := wizard.Midnight(s.now().In(s.loc))

	start := today
	if order.Subscription.StartDate != "" {
		parsed, err := wizard.ParseDate(order.Subscription.StartDate, s.loc)
		if err != nil {
			return fmt.Errorf("%w: invalid start date %q", ErrInvalidOrder, order.Subscription.StartDate)
		}
		if parsed.Before(today) {
			return fmt.Errorf("%w: start date %s is in the past", ErrInvalidOrder, order.Subscription.StartDate)
		}
		start = parsed
	}
	order.Subscription.StartDate = wizard.FormatDate(start)

	months := order.Plan.Duration
	if plan != nil && plan.Duration > 0 {
		months = plan.Duration
	}
	if months > 0 {
		order.Plan.Duration = months
		order.Subscription.EndDate = wizard.FormatDate(wizard.EndDate(start, months))
		return nil
	}

	if order.Subscription.EndDate == "" {
		return fmt.Errorf("%w: plan duration is unknown", ErrInvalidOrder)
	}
	end, err := wizard.ParseDate(order.Subscription.EndDate, s.loc)
	if err != nil || !end.After(start) {
		return fmt.Errorf("%w: invalid end date %q", ErrInvalidOrder, order.Subscription.EndDate)
	}
	return nil
}
