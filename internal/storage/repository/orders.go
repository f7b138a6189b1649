package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/magabrotheeeer/club-checkout/internal/models"
)

// CreateOrder сохраняет заказ в статусе pending и возвращает его id.
// Открытый пароль в хранилище не попадает.
func (s *Storage) CreateOrder(ctx context.Context, order models.StoredOrder) (string, error) {
	const op = "storage.CreateOrder"

	payload := order.Order
	payload.Customer.Password = ""
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var id string
	query := `INSERT INTO orders (club_id, plan_id, email, amount, payload, password_hash, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		order.Club.ID, order.Plan.ID, order.Customer.Email, order.Plan.Price, string(body),
		order.PasswordHash, string(models.OrderPending)).Scan(&id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetOrder возвращает заказ по id.
func (s *Storage) GetOrder(ctx context.Context, id string) (*models.StoredOrder, error) {
	const op = "storage.GetOrder"

	query := `SELECT id, payload, password_hash, status, payment_id, invoice_number, created_at, paid_at
			  FROM orders WHERE id = $1`
	var (
		o       models.StoredOrder
		payload []byte
		status  string
		paidAt  sql.NullTime
	)
	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &payload, &o.PasswordHash, &status, &o.PaymentID, &o.InvoiceNumber, &o.CreatedAt, &paidAt)
	if err != nil {
		return nil, notFound(op, err)
	}
	orderID := o.ID
	if err := json.Unmarshal(payload, &o.Order); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	o.ID = orderID
	o.Status = models.OrderStatus(status)
	if paidAt.Valid {
		o.PaidAt = &paidAt.Time
	}
	return &o, nil
}

// MarkOrderPaid переводит заказ в статус paid. Возвращает false, если
// заказ уже был оплачен, и ErrNotFound, если заказа нет.
func (s *Storage) MarkOrderPaid(ctx context.Context, id, paymentID string, at time.Time) (bool, error) {
	const op = "storage.MarkOrderPaid"

	res, err := s.DB.ExecContext(ctx, `UPDATE orders
			  SET status = $2, payment_id = $3, paid_at = $4
			  WHERE id = $1 AND status = $5`,
		id, string(models.OrderPaid), paymentID, at, string(models.OrderPending))
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if n == 1 {
		return true, nil
	}

	var exists bool
	if err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return false, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return false, nil
}

// SetInvoiceNumber сохраняет номер выставленного счёта.
func (s *Storage) SetInvoiceNumber(ctx context.Context, id, number string) error {
	const op = "storage.SetInvoiceNumber"
	res, err := s.DB.ExecContext(ctx, `UPDATE orders SET invoice_number = $2 WHERE id = $1`, id, number)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affected(op, res)
}

// CreateInvoice сохраняет счёт. Повторный счёт по тому же заказу не создаётся.
func (s *Storage) CreateInvoice(ctx context.Context, inv models.Invoice) (string, error) {
	const op = "storage.CreateInvoice"
	var id string
	query := `INSERT INTO invoices (order_id, number, net, vat, gross)
			  VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric)
			  ON CONFLICT (order_id) DO UPDATE SET order_id = EXCLUDED.order_id
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query, inv.OrderID, inv.Number, inv.Net, inv.VAT, inv.Gross).Scan(&id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}
