package paymentwebhook

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/club-checkout/internal/models"
	"github.com/magabrotheeeer/club-checkout/internal/paymentprovider"
	"github.com/magabrotheeeer/club-checkout/internal/rabbitmq"
)

const secret = "whsec_test"

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

func TestWebhookHandler(t *testing.T) {
	completed := `{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","client_reference_id":"order-1","payment_intent":"pi_1","payment_status":"paid"}}}`
	unpaid := `{"id":"evt_2","type":"checkout.session.completed","data":{"object":{"id":"cs_2","client_reference_id":"order-2","payment_status":"unpaid"}}}`
	metadataOnly := `{"id":"evt_3","type":"checkout.session.completed","data":{"object":{"id":"cs_3","payment_status":"paid","metadata":{"order_id":"order-3"}}}}`
	noStatus := `{"id":"evt_5","type":"checkout.session.completed","data":{"object":{"id":"cs_5","client_reference_id":"order-5"}}}`
	expired := `{"id":"evt_4","type":"checkout.session.expired","data":{"object":{"id":"cs_4"}}}`

	tests := []struct {
		name           string
		body           string
		signature      string
		setupMock      func(*MockPublisher)
		expectedStatus int
	}{
		{
			name:      "completed event is queued",
			body:      completed,
			signature: paymentprovider.Sign(secret, []byte(completed)),
			setupMock: func(m *MockPublisher) {
				m.On("Publish", rabbitmq.ExchangeOrders, rabbitmq.RoutingKeyPaid,
					models.PaidOrderMessage{OrderID: "order-1", PaymentID: "pi_1"}).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "order id from metadata, session id as payment id",
			body:      metadataOnly,
			signature: paymentprovider.Sign(secret, []byte(metadataOnly)),
			setupMock: func(m *MockPublisher) {
				m.On("Publish", rabbitmq.ExchangeOrders, rabbitmq.RoutingKeyPaid,
					models.PaidOrderMessage{OrderID: "order-3", PaymentID: "cs_3"}).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad signature",
			body:           completed,
			signature:      paymentprovider.Sign("other", []byte(completed)),
			setupMock:      func(*MockPublisher) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing signature",
			body:           completed,
			setupMock:      func(*MockPublisher) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid json",
			body:           "{",
			signature:      paymentprovider.Sign(secret, []byte("{")),
			setupMock:      func(*MockPublisher) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unpaid session ignored",
			body:           unpaid,
			signature:      paymentprovider.Sign(secret, []byte(unpaid)),
			setupMock:      func(*MockPublisher) {},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "session without payment status ignored",
			body:           noStatus,
			signature:      paymentprovider.Sign(secret, []byte(noStatus)),
			setupMock:      func(*MockPublisher) {},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "other events ignored",
			body:           expired,
			signature:      paymentprovider.Sign(secret, []byte(expired)),
			setupMock:      func(*MockPublisher) {},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "broker failure asks provider to retry",
			body:      completed,
			signature: paymentprovider.Sign(secret, []byte(completed)),
			setupMock: func(m *MockPublisher) {
				m.On("Publish", rabbitmq.ExchangeOrders, rabbitmq.RoutingKeyPaid, mock.Anything).
					Return(errors.New("channel closed")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := new(MockPublisher)
			tt.setupMock(pub)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewBufferString(tt.body))
			if tt.signature != "" {
				req.Header.Set(SignatureHeader, tt.signature)
			}
			rec := httptest.NewRecorder()

			New(newNoopLogger(), pub, secret).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			pub.AssertExpectations(t)
			if len(pub.ExpectedCalls) == 0 {
				pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}
