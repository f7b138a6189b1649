package wizard_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/club-checkout/internal/models"
	"github.com/magabrotheeeer/club-checkout/internal/wizard"
	"github.com/stretchr/testify/mock"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type planReply struct {
	plans []models.Plan
	err   error
}

// gatedPlans отвечает на запрос каталога только после release для этого клуба.
type gatedPlans struct {
	mu    sync.Mutex
	gates map[string]chan planReply
}

func newGatedPlans() *gatedPlans {
	return &gatedPlans{gates: make(map[string]chan planReply)}
}

func (g *gatedPlans) gate(clubID string) chan planReply {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[clubID]
	if !ok {
		ch = make(chan planReply, 1)
		g.gates[clubID] = ch
	}
	return ch
}

func (g *gatedPlans) Plans(ctx context.Context, clubID string) ([]models.Plan, error) {
	select {
	case r := <-g.gate(clubID):
		return r.plans, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gatedPlans) release(clubID string, plans []models.Plan, err error) {
	g.gate(clubID) <- planReply{plans: plans, err: err}
}

// staticPlans сразу отдаёт фиксированный каталог для любого клуба.
type staticPlans struct {
	plans map[string][]models.Plan
	err   error
}

func (s staticPlans) Plans(_ context.Context, clubID string) ([]models.Plan, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.plans[clubID], nil
}

type InitiatorMock struct {
	mock.Mock
}

func (m *InitiatorMock) Initiate(ctx context.Context, order models.Order) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

var fixedNow = time.Date(2025, time.June, 10, 15, 30, 0, 0, time.UTC)

func testConfig() wizard.Config {
	return wizard.Config{
		CatalogTimeout: time.Second,
		SubmitTimeout:  time.Second,
		Now:            func() time.Time { return fixedNow },
	}
}

func ptr(v float64) *float64 { return &v }

func clubPlans(prefix string) []models.Plan {
	return []models.Plan{
		{ID: prefix + "-monthly", Name: "Monthly", Duration: 1, Price: 79},
		{ID: prefix + "-annual", Name: "Annual", Duration: 12, Price: 230, PromoActive: true, PromoPrice: ptr(199)},
	}
}

func fillValidForm(t interface{ Fatalf(string, ...any) }, s *wizard.Session) {
	values := map[string]string{
		wizard.FieldGender:      "female",
		wizard.FieldFirstName:   "maria",
		wizard.FieldLastName:    "rossi",
		wizard.FieldEmail:       "maria.rossi@example.com",
		wizard.FieldPhonePrefix: "+39",
		wizard.FieldPhone:       "333 123 4567",
		wizard.FieldBirthDate:   "1985-08-01",
		wizard.FieldBirthPlace:  "roma",
		wizard.FieldFiscalCode:  "rssmra85m01h501z",
		wizard.FieldAddress:     "via del corso 1",
		wizard.FieldCity:        "roma",
		wizard.FieldPostalCode:  "00186",
		wizard.FieldProvince:    "rm",
		wizard.FieldPassword:    "s3cretpass",
	}
	for field, value := range values {
		if err := s.SetField(field, value); err != nil {
			t.Fatalf("set %s: %v", field, err)
		}
	}
}
