package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/club-checkout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Send(ctx context.Context, msg models.PushMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPushService_HandleMessage(t *testing.T) {
	msg := models.PushMessage{Email: "maria@example.com", Title: "Welcome", Body: "Hi", Data: map[string]string{"order_id": "o1"}}
	body := []byte(`{"email":"maria@example.com","title":"Welcome","body":"Hi","data":{"order_id":"o1"}}`)

	tests := []struct {
		name    string
		body    []byte
		sendErr error
		send    bool
		wantErr bool
	}{
		{name: "delivered", body: body, send: true},
		{name: "gateway error requeues", body: body, send: true, sendErr: errors.New("503"), wantErr: true},
		{name: "invalid json dropped", body: []byte("{"), send: false},
		{name: "missing email dropped", body: []byte(`{"title":"x"}`), send: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := new(MockGateway)
			if tt.send {
				gw.On("Send", mock.Anything, msg).Return(tt.sendErr)
			}
			s := NewPushService(gw, time.Second, newNoopLogger())

			err := s.HandleMessage(tt.body)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.send {
				gw.AssertExpectations(t)
			} else {
				gw.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
			}
		})
	}
}
