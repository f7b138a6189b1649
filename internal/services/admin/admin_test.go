package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/club-checkout/internal/lib/password"
	"github.com/magabrotheeeer/club-checkout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func ret[T any](args mock.Arguments) (T, error) {
	var zero T
	if args.Get(0) == nil {
		return zero, args.Error(1)
	}
	return args.Get(0).(T), args.Error(1)
}

func (m *MockRepository) ListClubs(ctx context.Context, activeOnly bool) ([]models.Club, error) {
	return ret[[]models.Club](m.Called(ctx, activeOnly))
}

func (m *MockRepository) CreateClub(ctx context.Context, in models.ClubInput) (*models.Club, error) {
	return ret[*models.Club](m.Called(ctx, in))
}

func (m *MockRepository) UpdateClub(ctx context.Context, id string, in models.ClubInput) (*models.Club, error) {
	return ret[*models.Club](m.Called(ctx, id, in))
}

func (m *MockRepository) ListPlans(ctx context.Context) ([]models.Plan, error) {
	return ret[[]models.Plan](m.Called(ctx))
}

func (m *MockRepository) CreatePlan(ctx context.Context, in models.PlanInput) (*models.Plan, error) {
	return ret[*models.Plan](m.Called(ctx, in))
}

func (m *MockRepository) UpdatePlan(ctx context.Context, id string, in models.PlanInput) (*models.Plan, error) {
	return ret[*models.Plan](m.Called(ctx, id, in))
}

func (m *MockRepository) DeletePlan(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) ListPromotions(ctx context.Context) ([]models.Promotion, error) {
	return ret[[]models.Promotion](m.Called(ctx))
}

func (m *MockRepository) CreatePromotion(ctx context.Context, in models.PromotionInput) (*models.Promotion, error) {
	return ret[*models.Promotion](m.Called(ctx, in))
}

func (m *MockRepository) UpdatePromotion(ctx context.Context, id string, in models.PromotionInput) (*models.Promotion, error) {
	return ret[*models.Promotion](m.Called(ctx, id, in))
}

func (m *MockRepository) DeletePromotion(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) ListClients(ctx context.Context, limit, offset int) ([]models.Client, error) {
	return ret[[]models.Client](m.Called(ctx, limit, offset))
}

func (m *MockRepository) GetClient(ctx context.Context, id string) (*models.Client, error) {
	return ret[*models.Client](m.Called(ctx, id))
}

func (m *MockRepository) UpdateClient(ctx context.Context, id string, in models.ClientUpdate) (*models.Client, error) {
	return ret[*models.Client](m.Called(ctx, id, in))
}

func (m *MockRepository) DeleteClient(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	return ret[[]models.User](m.Called(ctx))
}

func (m *MockRepository) CreateUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) DeleteUser(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestService(repo *MockRepository, catalog *MockCatalog) *AdminService {
	var inv CatalogInvalidator
	if catalog != nil {
		inv = catalog
	}
	s := NewAdminService(repo, inv, newNoopLogger())
	s.now = func() time.Time { return testNow }
	return s
}

func TestClientView(t *testing.T) {
	tests := []struct {
		name          string
		start         time.Time
		months        int
		wantEnd       time.Time
		wantRemaining int
	}{
		{
			name:          "annual started in january",
			start:         time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			months:        12,
			wantEnd:       time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			wantRemaining: 7,
		},
		{
			name:          "not started yet",
			start:         time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			months:        3,
			wantEnd:       time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
			wantRemaining: 3,
		},
		{
			name:          "expired",
			start:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			months:        6,
			wantEnd:       time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
			wantRemaining: 0,
		},
		{
			name:          "end of month rolls over",
			start:         time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			months:        1,
			wantEnd:       time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
			wantRemaining: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := ClientView(models.Client{ID: "c", StartDate: tt.start, Months: tt.months}, testNow)
			assert.True(t, tt.wantEnd.Equal(view.EndDate), "end date %s", view.EndDate)
			assert.Equal(t, tt.wantRemaining, view.RemainingMonths)
			assert.Equal(t, "c", view.ID)
		})
	}
}

func TestAdminService_PlanWritesInvalidateCatalog(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	in := models.PlanInput{Name: "Annual", Duration: 12, Price: 450}

	repo.On("CreatePlan", ctx, in).Return(&models.Plan{ID: "p1", Name: "Annual"}, nil)
	repo.On("UpdatePlan", ctx, "p1", in).Return(&models.Plan{ID: "p1"}, nil)
	repo.On("DeletePlan", ctx, "p1").Return(nil)
	catalog.On("Invalidate", ctx).Return(nil).Times(3)

	s := newTestService(repo, catalog)
	plan, err := s.CreatePlan(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "p1", plan.ID)
	_, err = s.UpdatePlan(ctx, "p1", in)
	require.NoError(t, err)
	require.NoError(t, s.DeletePlan(ctx, "p1"))

	catalog.AssertNumberOfCalls(t, "Invalidate", 3)
}

func TestAdminService_FailedWriteKeepsCache(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	repo.On("DeletePromotion", ctx, "x").Return(errors.New("record not found"))

	err := newTestService(repo, catalog).DeletePromotion(ctx, "x")
	assert.ErrorContains(t, err, "services.admin.DeletePromotion")
	catalog.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestAdminService_InvalidateErrorIgnored(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	in := models.PromotionInput{PlanID: "p1", Price: 199, Active: true}
	repo.On("CreatePromotion", ctx, in).Return(&models.Promotion{ID: "pr1"}, nil)
	catalog.On("Invalidate", ctx).Return(errors.New("redis down"))

	promo, err := newTestService(repo, catalog).CreatePromotion(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "pr1", promo.ID)
}

func TestAdminService_PromotionWindow(t *testing.T) {
	start := testNow
	end := testNow.Add(-time.Hour)
	s := newTestService(new(MockRepository), new(MockCatalog))

	_, err := s.CreatePromotion(context.Background(), models.PromotionInput{PlanID: "p1", Price: 1, StartsAt: &start, EndsAt: &end})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = s.UpdatePromotion(context.Background(), "pr1", models.PromotionInput{PlanID: "p1", Price: 1, StartsAt: &start, EndsAt: &start})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestAdminService_Clients(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	repo.On("ListClients", ctx, 50, 0).Return([]models.Client{{ID: "c1", StartDate: start, Months: 12}}, nil)
	repo.On("GetClient", ctx, "c1").Return(&models.Client{ID: "c1", StartDate: start, Months: 12}, nil)
	repo.On("UpdateClient", ctx, "c1", models.ClientUpdate{FirstName: "Maria", LastName: "Rossi", Email: "maria@example.com", Phone: "+39333"}).
		Return(&models.Client{ID: "c1", StartDate: start, Months: 12, Email: "maria@example.com"}, nil)

	s := newTestService(repo, nil)

	views, err := s.Clients(ctx, 50, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 7, views[0].RemainingMonths)

	view, err := s.Client(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2026, view.EndDate.Year())

	updated, err := s.UpdateClient(ctx, "c1", models.ClientUpdate{FirstName: "Maria", LastName: "Rossi", Email: " Maria@Example.com ", Phone: "+39333"})
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", updated.Email)
}

func TestAdminService_CreateUser(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("CreateUser", ctx, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "editor@club.example" && u.Role == "editor" &&
			password.Compare(u.PasswordHash, "editor-pass") == nil
	})).Return("u2", nil)

	user, err := newTestService(repo, nil).CreateUser(ctx, models.UserInput{Email: "Editor@Club.example", Password: "editor-pass", Role: "editor"})
	require.NoError(t, err)
	assert.Equal(t, "u2", user.ID)
	assert.Equal(t, "editor@club.example", user.Email)
}

func TestAdminService_Clubs(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("ListClubs", ctx, false).Return([]models.Club{{ID: "c1"}, {ID: "c2", Active: false}}, nil)
	repo.On("CreateClub", ctx, models.ClubInput{Name: "North", Address: "Via Po 2", City: "Torino", Province: "TO"}).
		Return(&models.Club{ID: "c3", Province: "TO"}, nil)

	s := newTestService(repo, nil)
	clubs, err := s.Clubs(ctx)
	require.NoError(t, err)
	assert.Len(t, clubs, 2)

	club, err := s.CreateClub(ctx, models.ClubInput{Name: "North", Address: "Via Po 2", City: "Torino", Province: "to"})
	require.NoError(t, err)
	assert.Equal(t, "TO", club.Province)
}
