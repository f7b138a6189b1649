package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/club-checkout/internal/migrations"
	"github.com/magabrotheeeer/club-checkout/internal/models"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateClub создает тестовый клуб
func (f *TestDataFactory) CreateClub(t *testing.T, name string, active bool) models.Club {
	t.Helper()
	c, err := f.storage.CreateClub(context.Background(), models.ClubInput{
		Name: name, Address: "Via Roma 1", City: "Roma", PostalCode: "00100", Province: "RM", Active: active,
	})
	require.NoError(t, err)
	return *c
}

// CreatePlan создает тестовый тариф
func (f *TestDataFactory) CreatePlan(t *testing.T, name string, duration int, price float64) models.Plan {
	t.Helper()
	p, err := f.storage.CreatePlan(context.Background(), models.PlanInput{
		Name: name, Duration: duration, Price: price, MonthlyPrice: price / float64(duration),
		ActivationFee: 30, Features: []string{"Gym"},
	})
	require.NoError(t, err)
	return *p
}

// CreateOrder создает тестовый заказ в статусе pending
func (f *TestDataFactory) CreateOrder(t *testing.T, club models.Club, plan models.Plan) string {
	t.Helper()
	id, err := f.storage.CreateOrder(context.Background(), models.StoredOrder{
		Order: models.Order{
			Club: models.OrderClub{ID: club.ID, Name: club.Name},
			Plan: models.OrderPlan{ID: plan.ID, Name: plan.Name, Duration: plan.Duration, Price: plan.Price},
			Customer: models.Customer{
				FirstName: "Maria", LastName: "Rossi", Email: "maria@example.com",
				Phone: "3331234567", FiscalCode: "RSSMRA85M01H501Z", Password: "plain-secret",
			},
			Subscription: models.Period{StartDate: "2025-06-10", EndDate: "2026-06-10"},
		},
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return id
}

func setupTestDatabase(t *testing.T) (*Storage, func()) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, nat.Port("5432/tcp"))
	require.NoError(t, err, "failed to get port")

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	cleanup := func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}
