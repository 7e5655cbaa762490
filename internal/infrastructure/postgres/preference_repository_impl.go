package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/abiosite/abio-api/internal/domain/entity"
	"github.com/abiosite/abio-api/internal/domain/repository"
)

const preferenceColumns = `id, profile_id, user_id, wallpaper_config, font_config, corner_config, selected_theme, created_at, updated_at`

type PreferenceRepository struct {
	db PgxPool
}

func NewPreferenceRepository(db PgxPool) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

func scanPreference(row pgx.Row) (*entity.DisplayPreference, error) {
	d := &entity.DisplayPreference{}
	var wallpaper, font, corner []byte
	if err := row.Scan(&d.ID, &d.ProfileID, &d.UserID, &wallpaper, &font, &corner,
		&d.SelectedTheme, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	if err := decodeConfig(wallpaper, &d.WallpaperConfig); err != nil {
		return nil, fmt.Errorf("decode wallpaper_config: %w", err)
	}
	if err := decodeConfig(font, &d.FontConfig); err != nil {
		return nil, fmt.Errorf("decode font_config: %w", err)
	}
	if err := decodeConfig(corner, &d.CornerConfig); err != nil {
		return nil, fmt.Errorf("decode corner_config: %w", err)
	}
	return d, nil
}

func decodeConfig(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func (r *PreferenceRepository) GetByProfileID(ctx context.Context, profileID string) (*entity.DisplayPreference, error) {
	return scanPreference(r.db.QueryRow(ctx, `SELECT `+preferenceColumns+` FROM display_preferences WHERE profile_id = $1`, profileID))
}

func (r *PreferenceRepository) GetOrCreate(ctx context.Context, profileID, userID string) (*entity.DisplayPreference, error) {
	// the no-op update makes RETURNING yield the existing row on conflict
	return scanPreference(r.db.QueryRow(ctx, `
		INSERT INTO display_preferences (profile_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (profile_id) DO UPDATE SET profile_id = EXCLUDED.profile_id
		RETURNING `+preferenceColumns, profileID, userID))
}

func (r *PreferenceRepository) MergeWallpaper(ctx context.Context, profileID, userID string, cfg entity.WallpaperConfig) (*entity.DisplayPreference, error) {
	doc, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return scanPreference(r.db.QueryRow(ctx, `
		INSERT INTO display_preferences (profile_id, user_id, wallpaper_config)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (profile_id) DO UPDATE
		SET wallpaper_config = display_preferences.wallpaper_config || EXCLUDED.wallpaper_config, updated_at = now()
		RETURNING `+preferenceColumns, profileID, userID, doc))
}

func (r *PreferenceRepository) ReplaceFont(ctx context.Context, profileID, userID string, cfg entity.FontConfig) (*entity.DisplayPreference, error) {
	doc, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return scanPreference(r.db.QueryRow(ctx, `
		INSERT INTO display_preferences (profile_id, user_id, font_config)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (profile_id) DO UPDATE
		SET font_config = EXCLUDED.font_config, updated_at = now()
		RETURNING `+preferenceColumns, profileID, userID, doc))
}

func (r *PreferenceRepository) ReplaceCorner(ctx context.Context, profileID, userID string, cfg entity.CornerConfig) (*entity.DisplayPreference, error) {
	doc, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return scanPreference(r.db.QueryRow(ctx, `
		INSERT INTO display_preferences (profile_id, user_id, corner_config)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (profile_id) DO UPDATE
		SET corner_config = EXCLUDED.corner_config, updated_at = now()
		RETURNING `+preferenceColumns, profileID, userID, doc))
}

func (r *PreferenceRepository) SetTheme(ctx context.Context, profileID, userID string, theme *string) (*entity.DisplayPreference, error) {
	return scanPreference(r.db.QueryRow(ctx, `
		INSERT INTO display_preferences (profile_id, user_id, selected_theme)
		VALUES ($1, $2, $3)
		ON CONFLICT (profile_id) DO UPDATE
		SET selected_theme = EXCLUDED.selected_theme, updated_at = now()
		RETURNING `+preferenceColumns, profileID, userID, theme))
}

var _ repository.PreferenceRepository = (*PreferenceRepository)(nil)
