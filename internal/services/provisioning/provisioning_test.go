package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/club-checkout/internal/models"
	"github.com/magabrotheeeer/club-checkout/internal/rabbitmq"
	"github.com/magabrotheeeer/club-checkout/internal/storage/repository"
	"github.com/magabrotheeeer/club-checkout/internal/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetOrder(ctx context.Context, id string) (*models.StoredOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoredOrder), args.Error(1)
}

func (m *MockOrderRepository) MarkOrderPaid(ctx context.Context, id, paymentID string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, paymentID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) CreateClient(ctx context.Context, c models.Client) (string, error) {
	args := m.Called(ctx, c)
	return args.String(0), args.Error(1)
}

func (m *MockOrderRepository) CreateInvoice(ctx context.Context, inv models.Invoice) (string, error) {
	args := m.Called(ctx, inv)
	return args.String(0), args.Error(1)
}

func (m *MockOrderRepository) SetInvoiceNumber(ctx context.Context, id, number string) error {
	args := m.Called(ctx, id, number)
	return args.Error(0)
}

type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) CreateAccount(ctx context.Context, acc upstream.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

type MockInvoicing struct {
	mock.Mock
}

func (m *MockInvoicing) CreateInvoice(ctx context.Context, req upstream.InvoiceRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendConfirmation(order models.StoredOrder, invoiceNumber string) error {
	args := m.Called(order, invoiceNumber)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, message any) error {
	args := m.Called(exchange, routingKey, message)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var paidAt = time.Date(2025, 6, 10, 16, 0, 0, 0, time.UTC)

type fixture struct {
	orders    *MockOrderRepository
	accounts  *MockAccounts
	invoicing *MockInvoicing
	mailer    *MockMailer
	publisher *MockPublisher
	svc       *ProvisioningService
}

func newFixture() *fixture {
	f := &fixture{
		orders:    new(MockOrderRepository),
		accounts:  new(MockAccounts),
		invoicing: new(MockInvoicing),
		mailer:    new(MockMailer),
		publisher: new(MockPublisher),
	}
	f.svc = NewProvisioningService(f.orders, f.accounts, f.invoicing, f.mailer, f.publisher, time.UTC, newNoopLogger())
	f.svc.now = func() time.Time { return paidAt }
	return f
}

func pendingOrder() *models.StoredOrder {
	return &models.StoredOrder{
		Order: models.Order{
			ID:   "order-1",
			Club: models.OrderClub{ID: "c1", Name: "Center"},
			Plan: models.OrderPlan{ID: "annual", Name: "Annual", Duration: 12, Price: 122},
			Customer: models.Customer{
				FirstName: "Maria", LastName: "Rossi", Email: "maria@example.com",
				PhonePrefix: "+39", Phone: "3331234567", FiscalCode: "rssmra90d52h501x",
				Address: "Via Roma 1", City: "Roma", PostalCode: "00100", Province: "rm",
			},
			Subscription: models.Period{StartDate: "2025-06-10", EndDate: "2026-06-10"},
		},
		PasswordHash: "$2a$hash",
		Status:       models.OrderPending,
	}
}

func TestSplitVAT(t *testing.T) {
	tests := []struct {
		amount          float64
		net, vat, gross string
	}{
		{amount: 122, net: "100.00", vat: "22.00", gross: "122.00"},
		{amount: 79, net: "64.75", vat: "14.25", gross: "79.00"},
		{amount: 199.99, net: "163.93", vat: "36.06", gross: "199.99"},
		{amount: 0, net: "0.00", vat: "0.00", gross: "0.00"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.2f", tt.amount), func(t *testing.T) {
			net, vat, gross := SplitVAT(tt.amount)
			assert.Equal(t, tt.net, net.StringFixed(2))
			assert.Equal(t, tt.vat, vat.StringFixed(2))
			assert.Equal(t, tt.gross, gross.StringFixed(2))
			assert.True(t, net.Add(vat).Equal(gross))
		})
	}
}

func TestProcess_FullPipeline(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	order := pendingOrder()
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	f.orders.On("GetOrder", ctx, "order-1").Return(order, nil)
	f.orders.On("MarkOrderPaid", ctx, "order-1", "pi_1", paidAt).Return(true, nil)
	f.orders.On("CreateClient", ctx, mock.MatchedBy(func(c models.Client) bool {
		return c.OrderID == "order-1" && c.Months == 12 && c.StartDate.Equal(start) &&
			c.FiscalCode == "RSSMRA90D52H501X" && c.Phone == "+393331234567" &&
			c.PasswordHash == "$2a$hash"
	})).Return("client-1", nil)
	f.accounts.On("CreateAccount", ctx, mock.MatchedBy(func(a upstream.Account) bool {
		return a.Email == "maria@example.com" && a.EndDate == "2026-06-10"
	})).Return(nil)
	f.invoicing.On("CreateInvoice", ctx, mock.MatchedBy(func(r upstream.InvoiceRequest) bool {
		return r.Net == "100.00" && r.VAT == "22.00" && r.Gross == "122.00" &&
			r.Customer.Province == "RM" && len(r.Lines) == 1
	})).Return("2025/0001", nil)
	f.orders.On("CreateInvoice", ctx, models.Invoice{
		OrderID: "order-1", Number: "2025/0001", Net: "100.00", VAT: "22.00", Gross: "122.00",
	}).Return("inv-1", nil)
	f.orders.On("SetInvoiceNumber", ctx, "order-1", "2025/0001").Return(nil)
	f.mailer.On("SendConfirmation", mock.MatchedBy(func(o models.StoredOrder) bool {
		return o.Status == models.OrderPaid && o.PaymentID == "pi_1"
	}), "2025/0001").Return(nil)
	f.publisher.On("Publish", rabbitmq.ExchangeNotifications, rabbitmq.RoutingKeyPush, mock.MatchedBy(func(m models.PushMessage) bool {
		return m.Email == "maria@example.com" && m.Data["order_id"] == "order-1"
	})).Return(nil)

	err := f.svc.Process(ctx, models.PaidOrderMessage{OrderID: "order-1", PaymentID: "pi_1"})
	require.NoError(t, err)

	f.orders.AssertExpectations(t)
	f.accounts.AssertExpectations(t)
	f.invoicing.AssertExpectations(t)
	f.mailer.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestProcess_StepFailuresDoNotStopPipeline(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.orders.On("GetOrder", ctx, "order-1").Return(pendingOrder(), nil)
	f.orders.On("MarkOrderPaid", ctx, "order-1", "pi_1", paidAt).Return(true, nil)
	f.orders.On("CreateClient", ctx, mock.Anything).Return("", errors.New("db down"))
	f.accounts.On("CreateAccount", ctx, mock.Anything).Return(errors.New("accounts unavailable"))
	f.invoicing.On("CreateInvoice", ctx, mock.Anything).Return("", errors.New("invoicing unavailable"))
	f.mailer.On("SendConfirmation", mock.Anything, "").Return(errors.New("smtp down"))
	f.publisher.On("Publish", rabbitmq.ExchangeNotifications, rabbitmq.RoutingKeyPush, mock.Anything).Return(nil)

	err := f.svc.Process(ctx, models.PaidOrderMessage{OrderID: "order-1", PaymentID: "pi_1"})
	require.NoError(t, err)

	f.publisher.AssertExpectations(t)
	f.orders.AssertNotCalled(t, "SetInvoiceNumber", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcess_Idempotent(t *testing.T) {
	ctx := context.Background()

	t.Run("already paid", func(t *testing.T) {
		f := newFixture()
		order := pendingOrder()
		order.Status = models.OrderPaid
		f.orders.On("GetOrder", ctx, "order-1").Return(order, nil)

		require.NoError(t, f.svc.Process(ctx, models.PaidOrderMessage{OrderID: "order-1"}))
		f.orders.AssertNotCalled(t, "MarkOrderPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("concurrent delivery", func(t *testing.T) {
		f := newFixture()
		f.orders.On("GetOrder", ctx, "order-1").Return(pendingOrder(), nil)
		f.orders.On("MarkOrderPaid", ctx, "order-1", "pi_1", paidAt).Return(false, nil)

		require.NoError(t, f.svc.Process(ctx, models.PaidOrderMessage{OrderID: "order-1", PaymentID: "pi_1"}))
		f.orders.AssertNotCalled(t, "CreateClient", mock.Anything, mock.Anything)
		f.mailer.AssertNotCalled(t, "SendConfirmation", mock.Anything, mock.Anything)
	})
}

func TestProcess_LookupErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("not found is dropped", func(t *testing.T) {
		f := newFixture()
		f.orders.On("GetOrder", ctx, "missing").Return(nil, fmt.Errorf("storage.GetOrder: %w", repository.ErrNotFound))
		assert.NoError(t, f.svc.Process(ctx, models.PaidOrderMessage{OrderID: "missing"}))
	})

	t.Run("storage error is retried", func(t *testing.T) {
		f := newFixture()
		f.orders.On("GetOrder", ctx, "order-1").Return(nil, errors.New("connection refused"))
		assert.Error(t, f.svc.Process(ctx, models.PaidOrderMessage{OrderID: "order-1"}))
	})

	t.Run("mark paid error is retried", func(t *testing.T) {
		f := newFixture()
		f.orders.On("GetOrder", ctx, "order-1").Return(pendingOrder(), nil)
		f.orders.On("MarkOrderPaid", ctx, "order-1", "", paidAt).Return(false, errors.New("deadlock"))
		assert.Error(t, f.svc.Process(ctx, models.PaidOrderMessage{OrderID: "order-1"}))
	})
}

func TestHandlePaidOrder_Malformed(t *testing.T) {
	f := newFixture()
	assert.NoError(t, f.svc.HandlePaidOrder([]byte("not json")))
	assert.NoError(t, f.svc.HandlePaidOrder([]byte(`{"payment_id":"pi_1"}`)))
	f.orders.AssertNotCalled(t, "GetOrder", mock.Anything, mock.Anything)
}

func TestPeriod_DerivesMonthsFromDates(t *testing.T) {
	f := newFixture()
	order := pendingOrder()
	order.Plan.Duration = 0
	order.Subscription = models.Period{StartDate: "2025-01-31", EndDate: "2025-07-31"}

	start, months, err := f.svc.period(*order)
	require.NoError(t, err)
	assert.Equal(t, 6, months)
	assert.Equal(t, time.January, start.Month())

	order.Subscription.StartDate = "bad"
	_, _, err = f.svc.period(*order)
	assert.Error(t, err)
}
