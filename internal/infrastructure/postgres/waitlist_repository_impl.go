package postgres

import (
	"context"

	"github.com/abiosite/abio-api/internal/domain/entity"
	"github.com/abiosite/abio-api/internal/domain/repository"
)

type WaitlistRepository struct {
	db PgxPool
}

func NewWaitlistRepository(db PgxPool) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

func (r *WaitlistRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM waitlist WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *WaitlistRepository) Create(ctx context.Context, e *entity.WaitlistEntry) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO waitlist (name, email) VALUES ($1, $2)
		RETURNING id, created_at`, e.Name, e.Email).Scan(&e.ID, &e.CreatedAt)
	return mapError(err)
}

func (r *WaitlistRepository) List(ctx context.Context) ([]entity.WaitlistEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, email, created_at FROM waitlist ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []entity.WaitlistEntry{}
	for rows.Next() {
		var e entity.WaitlistEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ repository.WaitlistRepository = (*WaitlistRepository)(nil)
