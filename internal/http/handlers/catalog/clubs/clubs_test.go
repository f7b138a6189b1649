package clubs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/club-checkout/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Clubs(ctx context.Context) ([]models.Club, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]models.Club), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestClubsHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "clubs listed",
			setupMock: func(m *MockService) {
				m.On("Clubs", mock.Anything).Return([]models.Club{{ID: "c1", Name: "Center", Active: true}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"name":"Center"`,
		},
		{
			name: "empty list is an array",
			setupMock: func(m *MockService) {
				m.On("Clubs", mock.Anything).Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"clubs":[]`,
		},
		{
			name: "storage error",
			setupMock: func(m *MockService) {
				m.On("Clubs", mock.Anything).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not list clubs"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			rec := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/clubs", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
