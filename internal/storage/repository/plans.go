package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/magabrotheeeer/club-checkout/internal/models"
)

const planColumns = `id, name, duration, price, monthly_price, activation_fee, popular, features`

func scanPlan(row rowScanner) (models.Plan, error) {
	var (
		p        models.Plan
		features []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Duration, &p.Price, &p.MonthlyPrice, &p.ActivationFee, &p.Popular, &features); err != nil {
		return p, err
	}
	p.Features = make([]string, 0)
	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return p, err
		}
	}
	return p, nil
}

func encodeFeatures(features []string) ([]byte, error) {
	if features == nil {
		features = []string{}
	}
	return json.Marshal(features)
}

// ListPlans возвращает тарифы по возрастанию длительности.
func (s *Storage) ListPlans(ctx context.Context) ([]models.Plan, error) {
	const op = "storage.ListPlans"

	rows, err := s.DB.QueryContext(ctx, `SELECT `+planColumns+` FROM plans ORDER BY duration, price`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	plans := make([]models.Plan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}

// GetPlan возвращает тариф по id.
func (s *Storage) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	const op = "storage.GetPlan"
	p, err := scanPlan(s.DB.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(op, err)
	}
	return &p, nil
}

// CreatePlan добавляет тариф.
func (s *Storage) CreatePlan(ctx context.Context, in models.PlanInput) (*models.Plan, error) {
	const op = "storage.CreatePlan"
	features, err := encodeFeatures(in.Features)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	query := `INSERT INTO plans (name, duration, price, monthly_price, activation_fee, popular, features)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING ` + planColumns
	p, err := scanPlan(s.DB.QueryRowContext(ctx, query,
		in.Name, in.Duration, in.Price, in.MonthlyPrice, in.ActivationFee, in.Popular, string(features)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// UpdatePlan изменяет тариф.
func (s *Storage) UpdatePlan(ctx context.Context, id string, in models.PlanInput) (*models.Plan, error) {
	const op = "storage.UpdatePlan"
	features, err := encodeFeatures(in.Features)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	query := `UPDATE plans
			  SET name = $2, duration = $3, price = $4, monthly_price = $5, activation_fee = $6,
			      popular = $7, features = $8
			  WHERE id = $1
			  RETURNING ` + planColumns
	p, err := scanPlan(s.DB.QueryRowContext(ctx, query,
		id, in.Name, in.Duration, in.Price, in.MonthlyPrice, in.ActivationFee, in.Popular, string(features)))
	if err != nil {
		return nil, notFound(op, err)
	}
	return &p, nil
}

// DeletePlan удаляет тариф вместе с его промоакциями.
func (s *Storage) DeletePlan(ctx context.Context, id string) error {
	const op = "storage.DeletePlan"
	res, err := s.DB.ExecContext(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affected(op, res)
}

const promotionColumns = `id, plan_id, club_id, price, label, active, starts_at, ends_at, created_at`

func scanPromotion(row rowScanner) (models.Promotion, error) {
	var (
		p              models.Promotion
		clubID         sql.NullString
		startsAt, ends sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.PlanID, &clubID, &p.Price, &p.Label, &p.Active, &startsAt, &ends, &p.CreatedAt); err != nil {
		return p, err
	}
	if clubID.Valid {
		p.ClubID = &clubID.String
	}
	if startsAt.Valid {
		p.StartsAt = &startsAt.Time
	}
	if ends.Valid {
		p.EndsAt = &ends.Time
	}
	return p, nil
}

func (s *Storage) queryPromotions(ctx context.Context, op, query string, args ...any) ([]models.Promotion, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	promos := make([]models.Promotion, 0)
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		promos = append(promos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return promos, nil
}

// ListPromotions возвращает все промоакции, новые первыми.
func (s *Storage) ListPromotions(ctx context.Context) ([]models.Promotion, error) {
	const op = "storage.ListPromotions"
	return s.queryPromotions(ctx, op, `SELECT `+promotionColumns+` FROM promotions ORDER BY created_at DESC`)
}

// ActivePromotions возвращает промоакции, действующие в момент at для клуба
// clubID, включая акции без привязки к клубу. Пустой clubID выбирает только их.
func (s *Storage) ActivePromotions(ctx context.Context, clubID string, at time.Time) ([]models.Promotion, error) {
	const op = "storage.ActivePromotions"
	query := `SELECT ` + promotionColumns + ` FROM promotions
			  WHERE active
			    AND (club_id IS NULL OR club_id = NULLIF($1, ''))
			    AND (starts_at IS NULL OR starts_at <= $2)
			    AND (ends_at IS NULL OR ends_at > $2)
			  ORDER BY created_at DESC`
	return s.queryPromotions(ctx, op, query, clubID, at)
}

// CreatePromotion добавляет промоакцию.
func (s *Storage) CreatePromotion(ctx context.Context, in models.PromotionInput) (*models.Promotion, error) {
	const op = "storage.CreatePromotion"
	query := `INSERT INTO promotions (plan_id, club_id, price, label, active, starts_at, ends_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING ` + promotionColumns
	p, err := scanPromotion(s.DB.QueryRowContext(ctx, query,
		in.PlanID, in.ClubID, in.Price, in.Label, in.Active, in.StartsAt, in.EndsAt))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// UpdatePromotion изменяет промоакцию.
func (s *Storage) UpdatePromotion(ctx context.Context, id string, in models.PromotionInput) (*models.Promotion, error) {
	const op = "storage.UpdatePromotion"
	query := `UPDATE promotions
			  SET plan_id = $2, club_id = $3, price = $4, label = $5, active = $6, starts_at = $7, ends_at = $8
			  WHERE id = $1
			  RETURNING ` + promotionColumns
	p, err := scanPromotion(s.DB.QueryRowContext(ctx, query,
		id, in.PlanID, in.ClubID, in.Price, in.Label, in.Active, in.StartsAt, in.EndsAt))
	if err != nil {
		return nil, notFound(op, err)
	}
	return &p, nil
}

// DeletePromotion удаляет промоакцию.
func (s *Storage) DeletePromotion(ctx context.Context, id string) error {
	const op = "storage.DeletePromotion"
	res, err := s.DB.ExecContext(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affected(op, res)
}
