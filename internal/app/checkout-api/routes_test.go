package checkoutapi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/club-checkout/internal/config"
	"github.com/magabrotheeeer/club-checkout/internal/http/handlers/health"
	customjwt "github.com/magabrotheeeer/club-checkout/internal/lib/jwt"
	authservice "github.com/magabrotheeeer/club-checkout/internal/services/auth"
	"github.com/magabrotheeeer/club-checkout/internal/wizard"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T, checks map[string]health.Checker) (chi.Router, *customjwt.Maker) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	maker := customjwt.NewMaker(testSecret, time.Hour)

	cfg := &config.Config{
		PaymentProvider: config.PaymentProvider{WebhookSecret: "whsec"},
		Checkout:        config.Checkout{RateLimit: 100, RateBurst: 100, Timezone: "UTC"},
	}
	r := chi.NewRouter()
	RegisterRoutes(r, logger, cfg, Services{
		Auth:     authservice.NewAuthService(nil, maker),
		Sessions: wizard.NewManager(nil, nil, logger, wizard.Config{}, time.Minute),
		Checks:   checks,
	})
	return r, maker
}

func TestRegisterRoutes_Table(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	registered := make(map[string]bool)
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		registered[method+" "+strings.TrimSuffix(route, "/")] = true
		return nil
	})
	require.NoError(t, err)

	for _, want := range []string{
		"GET /api/v1/clubs",
		"GET /api/v1/clubs/{id}",
		"GET /api/v1/plans",
		"GET /api/v1/settings",
		"POST /api/v1/checkout/sessions",
		"GET /api/v1/checkout/sessions/{id}",
		"PUT /api/v1/checkout/sessions/{id}/club",
		"PATCH /api/v1/checkout/sessions/{id}/personal-data",
		"POST /api/v1/checkout/sessions/{id}/submit",
		"POST /api/v1/payments/initiate",
		"POST /api/v1/payments/webhook",
		"POST /api/v1/admin/login",
		"DELETE /api/v1/admin/plans/{id}",
		"PUT /api/v1/admin/promotions/{id}",
		"GET /api/v1/admin/clients",
		"PUT /api/v1/admin/settings",
		"GET /docs/*",
	} {
		assert.True(t, registered[want], "route %q is not registered", want)
	}
}

func TestRegisterRoutes_Requests(t *testing.T) {
	r, maker := newTestRouter(t, map[string]health.Checker{
		"postgres": func(context.Context) error { return nil },
	})

	editorToken, err := maker.GenerateToken("u1", "editor")
	require.NoError(t, err)

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		headers map[string]string
		status  int
	}{
		{name: "health", method: http.MethodGet, path: "/api/v1/health", status: http.StatusOK},
		{name: "unknown session", method: http.MethodGet, path: "/api/v1/checkout/sessions/missing", status: http.StatusNotFound},
		{name: "admin without token", method: http.MethodGet, path: "/api/v1/admin/clubs", status: http.StatusUnauthorized},
		{
			name:    "admin with foreign token",
			method:  http.MethodGet,
			path:    "/api/v1/admin/clubs",
			headers: map[string]string{"Authorization": "Bearer not-a-token"},
			status:  http.StatusUnauthorized,
		},
		{
			name:    "admin with editor role",
			method:  http.MethodGet,
			path:    "/api/v1/admin/clubs",
			headers: map[string]string{"Authorization": "Bearer " + editorToken},
			status:  http.StatusForbidden,
		},
		{
			name:    "webhook bad signature",
			method:  http.MethodPost,
			path:    "/api/v1/payments/webhook",
			body:    `{"type":"checkout.session.completed"}`,
			headers: map[string]string{"X-Signature": "bogus"},
			status:  http.StatusUnauthorized,
		},
		{name: "metrics", method: http.MethodGet, path: "/metrics", status: http.StatusOK},
		{name: "swagger spec", method: http.MethodGet, path: "/docs/doc.json", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRegisterRoutes_HealthDown(t *testing.T) {
	r, _ := newTestRouter(t, map[string]health.Checker{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSweepInterval(t *testing.T) {
	assert.Equal(t, time.Minute, sweepInterval(0))
	assert.Equal(t, 10*time.Second, sweepInterval(30*time.Second))
	assert.Equal(t, 3*time.Minute, sweepInterval(30*time.Minute))
}
