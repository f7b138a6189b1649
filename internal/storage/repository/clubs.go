package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/club-checkout/internal/models"
)

const clubColumns = `id, name, address, city, postal_code, province, phone, active, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClub(row rowScanner) (models.Club, error) {
	var c models.Club
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.City, &c.PostalCode, &c.Province, &c.Phone, &c.Active, &c.CreatedAt)
	return c, err
}

// ListClubs возвращает клубы, отсортированные по названию.
func (s *Storage) ListClubs(ctx context.Context, activeOnly bool) ([]models.Club, error) {
	const op = "storage.ListClubs"

	query := `SELECT ` + clubColumns + ` FROM clubs`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY name`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	clubs := make([]models.Club, 0)
	for rows.Next() {
		c, err := scanClub(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		clubs = append(clubs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return clubs, nil
}

// GetClub возвращает клуб по id.
func (s *Storage) GetClub(ctx context.Context, id string) (*models.Club, error) {
	const op = "storage.GetClub"
	c, err := scanClub(s.DB.QueryRowContext(ctx, `SELECT `+clubColumns+` FROM clubs WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(op, err)
	}
	return &c, nil
}

// CreateClub добавляет клуб.
func (s *Storage) CreateClub(ctx context.Context, in models.ClubInput) (*models.Club, error) {
	const op = "storage.CreateClub"
	query := `INSERT INTO clubs (name, address, city, postal_code, province, phone, active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING ` + clubColumns
	c, err := scanClub(s.DB.QueryRowContext(ctx, query,
		in.Name, in.Address, in.City, in.PostalCode, in.Province, in.Phone, in.Active))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

// UpdateClub изменяет клуб.
func (s *Storage) UpdateClub(ctx context.Context, id string, in models.ClubInput) (*models.Club, error) {
	const op = "storage.UpdateClub"
	query := `UPDATE clubs
			  SET name = $2, address = $3, city = $4, postal_code = $5, province = $6, phone = $7, active = $8
			  WHERE id = $1
			  RETURNING ` + clubColumns
	c, err := scanClub(s.DB.QueryRowContext(ctx, query,
		id, in.Name, in.Address, in.City, in.PostalCode, in.Province, in.Phone, in.Active))
	if err != nil {
		return nil, notFound(op, err)
	}
	return &c, nil
}
