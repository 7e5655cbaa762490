package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/abiosite/abio-api/internal/domain/entity"
	"github.com/abiosite/abio-api/internal/domain/repository"
)

const profileColumns = `id, user_id, username, display_name, bio, location, goals, avatar_url, is_public, created_at, updated_at`

type ProfileRepository struct {
	db PgxPool
}

func NewProfileRepository(db PgxPool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func scanProfile(row pgx.Row) (*entity.Profile, error) {
	p := &entity.Profile{}
	if err := row.Scan(&p.ID, &p.UserID, &p.Username, &p.DisplayName, &p.Bio, &p.Location,
		&p.Goals, &p.AvatarURL, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	if p.Goals == nil {
		p.Goals = []string{}
	}
	return p, nil
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*entity.Profile, error) {
	return scanProfile(r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID))
}

func (r *ProfileRepository) GetByUsername(ctx context.Context, username string) (*entity.Profile, error) {
	return scanProfile(r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE username = $1`, username))
}

func (r *ProfileRepository) UsernameTaken(ctx context.Context, username, excludeProfileID string) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM profiles WHERE username = $1 AND ($2 = '' OR id::text <> $2))`,
		username, excludeProfileID).Scan(&taken)
	return taken, err
}

func (r *ProfileRepository) Update(ctx context.Context, p *entity.Profile, completeOnboarding bool) error {
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE profiles
			SET username = $2, display_name = $3, bio = $4, location = $5, goals = $6,
				avatar_url = $7, is_public = $8, updated_at = now()
			WHERE id = $1
			RETURNING updated_at`,
			p.ID, p.Username, p.DisplayName, p.Bio, p.Location, p.Goals, p.AvatarURL, p.IsPublic,
		).Scan(&p.UpdatedAt)
		if err != nil {
			return err
		}
		if !completeOnboarding {
			return nil
		}
		_, err = tx.Exec(ctx, `UPDATE users SET onboarding_completed = TRUE, updated_at = now() WHERE id = $1`, p.UserID)
		return err
	})
	return mapError(err)
}

func (r *ProfileRepository) UpdateAvatar(ctx context.Context, userID, avatarURL string) (*entity.Profile, error) {
	return scanProfile(r.db.QueryRow(ctx, `
		UPDATE profiles SET avatar_url = $2, updated_at = now()
		WHERE user_id = $1
		RETURNING `+profileColumns, userID, avatarURL))
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
