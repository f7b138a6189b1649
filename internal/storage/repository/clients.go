package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/club-checkout/internal/models"
)

const clientColumns = `id, order_id, club_id, plan_id, first_name, last_name, email, phone, fiscal_code,
	password_hash, start_date, months, created_at`

func scanClient(row rowScanner) (models.Client, error) {
	var c models.Client
	err := row.Scan(&c.ID, &c.OrderID, &c.ClubID, &c.PlanID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.FiscalCode, &c.PasswordHash, &c.StartDate, &c.Months, &c.CreatedAt)
	return c, err
}

// CreateClient сохраняет клиента по оплаченному заказу. Для заказа,
// по которому клиент уже создан, возвращает id существующей записи.
func (s *Storage) CreateClient(ctx context.Context, c models.Client) (string, error) {
	const op = "storage.CreateClient"
	var id string
	query := `INSERT INTO clients (order_id, club_id, plan_id, first_name, last_name, email, phone,
			      fiscal_code, password_hash, start_date, months)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  ON CONFLICT (order_id) DO UPDATE SET order_id = EXCLUDED.order_id
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		c.OrderID, c.ClubID, c.PlanID, c.FirstName, c.LastName, c.Email, c.Phone,
		c.FiscalCode, c.PasswordHash, c.StartDate, c.Months).Scan(&id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListClients возвращает страницу клиентов, новые первыми.
func (s *Storage) ListClients(ctx context.Context, limit, offset int) ([]models.Client, error) {
	const op = "storage.ListClients"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	clients := make([]models.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return clients, nil
}

// GetClient возвращает клиента по id.
func (s *Storage) GetClient(ctx context.Context, id string) (*models.Client, error) {
	const op = "storage.GetClient"
	c, err := scanClient(s.DB.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(op, err)
	}
	return &c, nil
}

// UpdateClient изменяет контактные данные клиента.
func (s *Storage) UpdateClient(ctx context.Context, id string, in models.ClientUpdate) (*models.Client, error) {
	const op = "storage.UpdateClient"
	query := `UPDATE clients SET first_name = $2, last_name = $3, email = $4, phone = $5
			  WHERE id = $1
			  RETURNING ` + clientColumns
	c, err := scanClient(s.DB.QueryRowContext(ctx, query, id, in.FirstName, in.LastName, in.Email, in.Phone))
	if err != nil {
		return nil, notFound(op, err)
	}
	return &c, nil
}

// DeleteClient удаляет клиента.
func (s *Storage) DeleteClient(ctx context.Context, id string) error {
	const op = "storage.DeleteClient"
	res, err := s.DB.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affected(op, res)
}
