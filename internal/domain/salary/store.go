package salary

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateCalculation(ctx context.Context, userID, label string, regime Regime, componentsEnc []byte) (string, time.Time, error) {
	var id string
	var createdAt time.Time
	err := s.DB.QueryRow(ctx, `
    INSERT INTO salary_calculations (user_id, label, regime, components_enc)
    VALUES ($1, $2, $3, $4)
    RETURNING id, created_at
  `, userID, label, string(regime), componentsEnc).Scan(&id, &createdAt)
	return id, createdAt, err
}

func (s *Store) GetCalculation(ctx context.Context, userID, id string) (StoredCalculation, error) {
	var out StoredCalculation
	var regime string
	err := s.DB.QueryRow(ctx, `
    SELECT id, user_id, label, regime, components_enc, created_at
    FROM salary_calculations
    WHERE user_id = $1 AND id = $2
  `, userID, id).Scan(&out.ID, &out.UserID, &out.Label, &regime, &out.ComponentsEnc, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return StoredCalculation{}, ErrCalculationNotFound
	}
	if err != nil {
		return StoredCalculation{}, err
	}
	out.Regime = Regime(regime)
	return out, nil
}

func (s *Store) CountCalculations(ctx context.Context, userID string) (int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM salary_calculations WHERE user_id = $1", userID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) ListCalculations(ctx context.Context, userID string, limit, offset int) ([]StoredCalculation, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, user_id, label, regime, components_enc, created_at
    FROM salary_calculations
    WHERE user_id = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredCalculation
	for rows.Next() {
		var item StoredCalculation
		var regime string
		if err := rows.Scan(&item.ID, &item.UserID, &item.Label, &regime, &item.ComponentsEnc, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Regime = Regime(regime)
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Store) DeleteCalculation(ctx context.Context, userID, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM salary_calculations WHERE user_id = $1 AND id = $2", userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCalculationNotFound
	}
	return nil
}

func (s *Store) DeleteCalculationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.DB.Exec(ctx, "DELETE FROM salary_calculations WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
