package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/abiosite/abio-api/internal/domain/entity"
	"github.com/abiosite/abio-api/internal/domain/repository"
)

const userColumns = `id, email, name, password_hash, active, is_email_verified,
	email_verification_token, email_verification_expires,
	password_reset_token, password_reset_expires, password_changed_at, password_version,
	google_id, onboarding_completed, created_at, updated_at`

type UserRepository struct {
	db PgxPool
}

func NewUserRepository(db PgxPool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Active, &u.IsEmailVerified,
		&u.EmailVerificationToken, &u.EmailVerificationExpires,
		&u.PasswordResetToken, &u.PasswordResetExpires, &u.PasswordChangedAt, &u.PasswordVersion,
		&u.GoogleID, &u.OnboardingCompleted, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *UserRepository) CreateWithProfile(ctx context.Context, u *entity.User, p *entity.Profile) error {
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (email, name, password_hash, is_email_verified,
				email_verification_token, email_verification_expires, google_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, active, created_at, updated_at`,
			u.Email, u.Name, u.PasswordHash, u.IsEmailVerified,
			u.EmailVerificationToken, u.EmailVerificationExpires, u.GoogleID,
		).Scan(&u.ID, &u.Active, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return err
		}
		p.UserID = u.ID
		if p.Goals == nil {
			p.Goals = []string{}
		}
		return tx.QueryRow(ctx, `
			INSERT INTO profiles (user_id, display_name, avatar_url, is_public, goals)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at`,
			p.UserID, p.DisplayName, p.AvatarURL, p.IsPublic, p.Goals,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	})
	if err != nil {
		return mapError(err)
	}
	u.Profile = p
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = $1`, googleID))
}

func (r *UserRepository) GetByVerificationToken(ctx context.Context, tokenHash string, now time.Time) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users
		WHERE email_verification_token = $1 AND email_verification_expires > $2`, tokenHash, now))
}

func (r *UserRepository) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users
		WHERE password_reset_token = $1 AND password_reset_expires > $2`, tokenHash, now))
}

func (r *UserRepository) exec(ctx context.Context, sql string, args ...any) error {
	res, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetVerificationToken(ctx context.Context, id string, tokenHash *string, expires *time.Time) error {
	return r.exec(ctx, `UPDATE users
		SET email_verification_token = $2, email_verification_expires = $3, updated_at = now()
		WHERE id = $1`, id, tokenHash, expires)
}

func (r *UserRepository) MarkEmailVerified(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE users
		SET is_email_verified = TRUE, email_verification_token = NULL, email_verification_expires = NULL, updated_at = now()
		WHERE id = $1`, id)
}

func (r *UserRepository) SetResetToken(ctx context.Context, id string, tokenHash *string, expires *time.Time) error {
	return r.exec(ctx, `UPDATE users
		SET password_reset_token = $2, password_reset_expires = $3, updated_at = now()
		WHERE id = $1`, id, tokenHash, expires)
}

// UpdatePassword stores the new hash and bumps password_version, which
// invalidates every token signed with the previous version.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) (int, error) {
	var version int
	err := r.db.QueryRow(ctx, `UPDATE users
		SET password_hash = $2, password_changed_at = $3, password_version = password_version + 1,
			password_reset_token = NULL, password_reset_expires = NULL, updated_at = now()
		WHERE id = $1
		RETURNING password_version`, id, passwordHash, changedAt).Scan(&version)
	if err != nil {
		return 0, mapError(err)
	}
	return version, nil
}

func (r *UserRepository) LinkGoogleID(ctx context.Context, id, googleID string) error {
	return r.exec(ctx, `UPDATE users
		SET google_id = $2, is_email_verified = TRUE, updated_at = now()
		WHERE id = $1`, id, googleID)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM users WHERE id = $1`, id)
}

var _ repository.UserRepository = (*UserRepository)(nil)
