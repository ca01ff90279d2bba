package cart

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("cart not found")

type Repository interface {
	GetByUser(ctx context.Context, userID string) (*Cart, error)
	// Save upserts the user's cart row. Last writer wins: concurrent
	// mutations of the same cart are not isolated against each other.
	Save(ctx context.Context, c *Cart) error
	DeleteByUser(ctx context.Context, userID string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) GetByUser(ctx context.Context, userID string) (*Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c Cart
	// items is JSONB; pgx decodes it straight into the line slice.
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, items, total::text, created_at, updated_at
		FROM carts WHERE user_id=$1
	`, userID).Scan(&c.ID, &c.UserID, &c.Items, &c.Total, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.Items == nil {
		c.Items = []Line{}
	}
	return &c, nil
}

func (r *PGRepo) Save(ctx context.Context, c *Cart) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO carts (id, user_id, items, total, created_at, updated_at)
		VALUES ($1,$2,$3,$4,NOW(),NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET items = EXCLUDED.items, total = EXCLUDED.total, updated_at = NOW()
	`, c.ID, c.UserID, c.Items, c.Total)
	return err
}

func (r *PGRepo) DeleteByUser(ctx context.Context, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM carts WHERE user_id=$1`, userID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
