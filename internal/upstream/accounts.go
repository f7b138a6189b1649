package upstream

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/club-checkout/internal/config"
)

// Account - учётная запись клиента в мобильном приложении.
type Account struct {
	OrderID      string `json:"orderId"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Phone        string `json:"phone"`
	ClubID       string `json:"clubId"`
	PlanID       string `json:"planId"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
}

// AccountsClient создаёт учётные записи в сервисе аккаунтов.
type AccountsClient struct {
	api apiClient
}

// NewAccountsClient создаёт клиент сервиса аккаунтов.
func NewAccountsClient(cfg config.APIClient) *AccountsClient {
	return &AccountsClient{api: newAPIClient(cfg)}
}

// CreateAccount создаёт учётную запись. Существующая запись не считается ошибкой.
func (c *AccountsClient) CreateAccount(ctx context.Context, acc Account) error {
	const op = "upstream.CreateAccount"
	err := c.api.postJSON(ctx, "/accounts", acc, nil)
	if err != nil && !errors.Is(err, ErrConflict) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
