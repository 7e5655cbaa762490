package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abiosite/abio-api/internal/domain/repository"
)

// PgxPool is the subset of *pgxpool.Pool the repositories use.
// pgxmock.PgxPoolIface satisfies it as well.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

func NewPool(ctx context.Context, dsn string, maxConns, minConns int32, maxConnLife time.Duration) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnLifetime = maxConnLife
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// withTx runs fn inside a transaction, committing only when fn succeeds.
func withTx(ctx context.Context, db PgxPool, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func isUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == "23505"
}

// constraintFields names the entity and columns behind each unique constraint.
var constraintFields = map[string]repository.ConflictError{
	"users_email_key":                    {Entity: "user", Fields: []string{"email"}},
	"users_google_id_key":                {Entity: "user", Fields: []string{"googleId"}},
	"profiles_username_key":              {Entity: "profile", Fields: []string{"username"}},
	"profiles_user_id_key":               {Entity: "profile", Fields: []string{"userId"}},
	"links_profile_id_url_key":           {Entity: "link", Fields: []string{"profileId", "url"}},
	"display_preferences_profile_id_key": {Entity: "display preference", Fields: []string{"profileId"}},
	"waitlist_email_key":                 {Entity: "waitlist entry", Fields: []string{"email"}},
}

// mapError converts driver errors into repository errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pg *pgconn.PgError
	if isUniqueViolation(err) && errors.As(err, &pg) {
		if ce, ok := constraintFields[pg.ConstraintName]; ok {
			return &repository.ConflictError{Entity: ce.Entity, Fields: ce.Fields}
		}
		return &repository.ConflictError{Entity: "record", Fields: []string{"value"}}
	}
	return err
}
