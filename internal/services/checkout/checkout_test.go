package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/club-checkout/internal/config"
	"github.com/magabrotheeeer/club-checkout/internal/lib/password"
	"github.com/magabrotheeeer/club-checkout/internal/models"
	"github.com/magabrotheeeer/club-checkout/internal/paymentprovider"
	"github.com/magabrotheeeer/club-checkout/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, order models.StoredOrder) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreateCheckoutSession(ctx context.Context, req paymentprovider.CheckoutSessionRequest) (*paymentprovider.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.CheckoutSession), args.Error(1)
}

type MockPlans struct {
	mock.Mock
}

func (m *MockPlans) Plans(ctx context.Context, clubID string) ([]models.Plan, error) {
	args := m.Called(ctx, clubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Plan), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var providerCfg = config.PaymentProvider{
	SuccessURL: "https://club.example/thanks",
	CancelURL:  "https://club.example/checkout",
	Currency:   "eur",
}

var today = time.Date(2025, time.June, 10, 9, 30, 0, 0, time.UTC)

func newTestService(orders OrderRepository, provider Provider, plans *MockPlans) *CheckoutService {
	var source wizard.PlanSource
	if plans != nil {
		source = plans
	}
	s := NewCheckoutService(orders, provider, source, providerCfg, time.UTC, newNoopLogger())
	s.now = func() time.Time { return today }
	return s
}

func validOrder() models.Order {
	return models.Order{
		Club: models.OrderClub{ID: "c1", Name: "Center"},
		Plan: models.OrderPlan{ID: "annual", Name: "Annual", Duration: 12, Price: 199, OriginalPrice: 199, ActivationFee: 30, PromoActive: true},
		Customer: models.Customer{
			Gender:      "female",
			FirstName:   "Maria",
			LastName:    "Rossi",
			Email:       "maria@example.com",
			PhonePrefix: "+39",
			Phone:       "3331234567",
			BirthDate:   "1990-04-12",
			BirthPlace:  "Roma",
			FiscalCode:  "RSSMRA90D52H501X",
			Address:     "Via Roma 1",
			City:        "Roma",
			PostalCode:  "00100",
			Province:    "RM",
			Password:    "secret123",
		},
		Subscription: models.Period{StartDate: "2025-06-10", EndDate: "2026-06-10"},
	}
}

func TestCheckoutService_Validate(t *testing.T) {
	s := newTestService(nil, nil, nil)

	tests := []struct {
		name   string
		modify func(o *models.Order)
		valid  bool
	}{
		{name: "valid", modify: func(o *models.Order) {}, valid: true},
		{name: "phone with spaces", modify: func(o *models.Order) { o.Customer.Phone = "333 123 4567" }, valid: true},
		{name: "no gender", modify: func(o *models.Order) { o.Customer.Gender = "" }, valid: true},
		{name: "short phone", modify: func(o *models.Order) { o.Customer.Phone = "123" }},
		{name: "zero birth month", modify: func(o *models.Order) { o.Customer.BirthDate = "1990-00-12" }},
		{name: "bad fiscal code", modify: func(o *models.Order) { o.Customer.FiscalCode = "RSSMRA90" }},
		{name: "bad email", modify: func(o *models.Order) { o.Customer.Email = "maria" }},
		{name: "short password", modify: func(o *models.Order) { o.Customer.Password = "short" }},
		{name: "unknown prefix", modify: func(o *models.Order) { o.Customer.PhonePrefix = "+999" }},
		{name: "zero price", modify: func(o *models.Order) { o.Plan.Price = 0 }},
		{name: "missing club", modify: func(o *models.Order) { o.Club.ID = "" }},
		{name: "bad gender", modify: func(o *models.Order) { o.Customer.Gender = "other" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := validOrder()
			tt.modify(&order)
			err := s.Validate(order)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidOrder)
		})
	}
}

func TestCheckoutService_Initiate(t *testing.T) {
	ctx := context.Background()
	orders := new(MockOrderRepository)
	provider := new(MockProvider)

	orders.On("CreateOrder", ctx, mock.MatchedBy(func(o models.StoredOrder) bool {
		return o.Status == models.OrderPending &&
			o.Customer.Email == "maria@example.com" &&
			o.PasswordHash != "" &&
			password.Compare(o.PasswordHash, "secret123") == nil
	})).Return("order-1", nil)

	provider.On("CreateCheckoutSession", ctx, mock.MatchedBy(func(req paymentprovider.CheckoutSessionRequest) bool {
		return req.ClientReferenceID == "order-1" &&
			req.Amount == 19900 &&
			req.Currency == "eur" &&
			req.SuccessURL == providerCfg.SuccessURL &&
			req.CancelURL == providerCfg.CancelURL &&
			req.Metadata["order_id"] == "order-1"
	})).Return(&paymentprovider.CheckoutSession{ID: "cs_1", URL: "https://pay.example/cs_1"}, nil)

	s := newTestService(orders, provider, nil)
	url, err := s.Initiate(ctx, validOrder())
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/cs_1", url)

	orders.AssertExpectations(t)
	provider.AssertExpectations(t)
}

func TestCheckoutService_Initiate_InvalidOrder(t *testing.T) {
	orders := new(MockOrderRepository)
	s := newTestService(orders, new(MockProvider), nil)

	order := validOrder()
	order.Customer.FiscalCode = ""
	_, err := s.Initiate(context.Background(), order)
	assert.ErrorIs(t, err, ErrInvalidOrder)
	orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCheckoutService_Initiate_PriceCheck(t *testing.T) {
	ctx := context.Background()
	promo := 199.0
	catalog := []models.Plan{
		{ID: "monthly", Duration: 1, Price: 79},
		{ID: "annual", Duration: 12, Price: 230, PromoActive: true, PromoPrice: &promo},
	}

	t.Run("tampered price", func(t *testing.T) {
		plans := new(MockPlans)
		plans.On("Plans", ctx, "c1").Return(catalog, nil)
		s := newTestService(new(MockOrderRepository), new(MockProvider), plans)

		order := validOrder()
		order.Plan.Price = 1
		_, err := s.Initiate(ctx, order)
		assert.ErrorIs(t, err, ErrInvalidOrder)
	})

	t.Run("unknown plan", func(t *testing.T) {
		plans := new(MockPlans)
		plans.On("Plans", ctx, "c1").Return(catalog, nil)
		s := newTestService(new(MockOrderRepository), new(MockProvider), plans)

		order := validOrder()
		order.Plan.ID = "lifetime"
		_, err := s.Initiate(ctx, order)
		assert.ErrorIs(t, err, ErrInvalidOrder)
	})

	t.Run("empty catalog accepted", func(t *testing.T) {
		plans := new(MockPlans)
		plans.On("Plans", ctx, "c1").Return([]models.Plan{}, nil)
		orders := new(MockOrderRepository)
		orders.On("CreateOrder", ctx, mock.Anything).Return("order-2", nil)
		provider := new(MockProvider)
		provider.On("CreateCheckoutSession", ctx, mock.Anything).
			Return(&paymentprovider.CheckoutSession{URL: "https://pay.example/cs_2"}, nil)

		s := newTestService(orders, provider, plans)
		url, err := s.Initiate(ctx, validOrder())
		require.NoError(t, err)
		assert.Equal(t, "https://pay.example/cs_2", url)
	})

	t.Run("promo price accepted", func(t *testing.T) {
		plans := new(MockPlans)
		plans.On("Plans", ctx, "c1").Return(catalog, nil)
		orders := new(MockOrderRepository)
		orders.On("CreateOrder", ctx, mock.Anything).Return("order-3", nil)
		provider := new(MockProvider)
		provider.On("CreateCheckoutSession", ctx, mock.Anything).
			Return(&paymentprovider.CheckoutSession{URL: "https://pay.example/cs_3"}, nil)

		s := newTestService(orders, provider, plans)
		_, err := s.Initiate(ctx, validOrder())
		assert.NoError(t, err)
	})
}

func TestCheckoutService_Initiate_ProviderFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("provider error", func(t *testing.T) {
		orders := new(MockOrderRepository)
		orders.On("CreateOrder", ctx, mock.Anything).Return("order-1", nil)
		provider := new(MockProvider)
		provider.On("CreateCheckoutSession", ctx, mock.Anything).Return(nil, errors.New("503"))

		_, err := newTestService(orders, provider, nil).Initiate(ctx, validOrder())
		assert.ErrorContains(t, err, "services.checkout.Initiate")
	})

	t.Run("empty url", func(t *testing.T) {
		orders := new(MockOrderRepository)
		orders.On("CreateOrder", ctx, mock.Anything).Return("order-1", nil)
		provider := new(MockProvider)
		provider.On("CreateCheckoutSession", ctx, mock.Anything).Return(&paymentprovider.CheckoutSession{ID: "cs"}, nil)

		_, err := newTestService(orders, provider, nil).Initiate(ctx, validOrder())
		assert.ErrorContains(t, err, "empty url")
	})

	t.Run("storage error", func(t *testing.T) {
		orders := new(MockOrderRepository)
		orders.On("CreateOrder", ctx, mock.Anything).Return("", errors.New("db down"))
		provider := new(MockProvider)

		_, err := newTestService(orders, provider, nil).Initiate(ctx, validOrder())
		assert.Error(t, err)
		provider.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
	})
}

func TestCheckoutService_Initiate_FillsPeriod(t *testing.T) {
	ctx := context.Background()
	catalog := []models.Plan{{ID: "quarterly", Name: "Quarterly", Duration: 3, Price: 150, ActivationFee: 20}}

	publicOrder := func() models.Order {
		o := validOrder()
		o.Plan = models.OrderPlan{ID: "quarterly", Name: "Quarterly", Price: 150, OriginalPrice: 150, ActivationFee: 20}
		o.Subscription = models.Period{}
		return o
	}

	tests := []struct {
		name      string
		modify    func(o *models.Order)
		wantStart string
		wantEnd   string
		wantErr   bool
	}{
		{name: "no dates defaults to today", modify: func(*models.Order) {}, wantStart: "2025-06-10", wantEnd: "2025-09-10"},
		{
			name:      "future start keeps date",
			modify:    func(o *models.Order) { o.Subscription.StartDate = "2025-07-31" },
			wantStart: "2025-07-31",
			wantEnd:   "2025-10-31",
		},
		{name: "past start rejected", modify: func(o *models.Order) { o.Subscription.StartDate = "2025-06-09" }, wantErr: true},
		{name: "malformed start rejected", modify: func(o *models.Order) { o.Subscription.StartDate = "10/06/2025" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plans := new(MockPlans)
			plans.On("Plans", ctx, "c1").Return(catalog, nil)
			orders := new(MockOrderRepository)
			provider := new(MockProvider)
			if !tt.wantErr {
				orders.On("CreateOrder", ctx, mock.MatchedBy(func(o models.StoredOrder) bool {
					return o.Subscription.StartDate == tt.wantStart &&
						o.Subscription.EndDate == tt.wantEnd &&
						o.Plan.Duration == 3
				})).Return("order-7", nil).Once()
				provider.On("CreateCheckoutSession", ctx, mock.Anything).
					Return(&paymentprovider.CheckoutSession{URL: "https://pay.example/cs_7"}, nil)
			}

			order := publicOrder()
			tt.modify(&order)
			_, err := newTestService(orders, provider, plans).Initiate(ctx, order)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOrder)
				orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			orders.AssertExpectations(t)
		})
	}
}

func TestCheckoutService_Initiate_UnknownDuration(t *testing.T) {
	plans := new(MockPlans)
	plans.On("Plans", mock.Anything, "c1").Return([]models.Plan{}, nil)
	orders := new(MockOrderRepository)

	order := validOrder()
	order.Plan.ID = "custom"
	order.Plan.Duration = 0
	order.Subscription = models.Period{}

	_, err := newTestService(orders, new(MockProvider), plans).Initiate(context.Background(), order)
	assert.ErrorIs(t, err, ErrInvalidOrder)
	orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCheckoutService_Initiate_DefaultPlans(t *testing.T) {
	ctx := context.Background()
	monthly := models.DefaultPlans()[0]

	defaultOrder := func() models.Order {
		o := validOrder()
		o.Plan = models.OrderPlan{ID: monthly.ID, Name: monthly.Name, Price: monthly.TotalDue(), OriginalPrice: monthly.Price, ActivationFee: monthly.ActivationFee}
		o.Subscription = models.Period{}
		return o
	}

	t.Run("accepted while catalog is back", func(t *testing.T) {
		plans := new(MockPlans)
		plans.On("Plans", ctx, "c1").Return([]models.Plan{{ID: "annual", Duration: 12, Price: 230}}, nil)
		orders := new(MockOrderRepository)
		orders.On("CreateOrder", ctx, mock.MatchedBy(func(o models.StoredOrder) bool {
			return o.Plan.Duration == 1 && o.Subscription.EndDate == "2025-07-10"
		})).Return("order-8", nil).Once()
		provider := new(MockProvider)
		provider.On("CreateCheckoutSession", ctx, mock.Anything).
			Return(&paymentprovider.CheckoutSession{URL: "https://pay.example/cs_8"}, nil)

		_, err := newTestService(orders, provider, plans).Initiate(ctx, defaultOrder())
		require.NoError(t, err)
		orders.AssertExpectations(t)
	})

	t.Run("tampered default price", func(t *testing.T) {
		plans := new(MockPlans)
		plans.On("Plans", ctx, "c1").Return([]models.Plan{{ID: "annual", Duration: 12, Price: 230}}, nil)

		order := defaultOrder()
		order.Plan.Price = 1
		_, err := newTestService(new(MockOrderRepository), new(MockProvider), plans).Initiate(ctx, order)
		assert.ErrorIs(t, err, ErrInvalidOrder)
	})
}
