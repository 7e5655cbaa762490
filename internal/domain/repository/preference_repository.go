package repository

import (
	"context"

	"github.com/abiosite/abio-api/internal/domain/entity"
)

type PreferenceRepository interface {
	GetByProfileID(ctx context.Context, profileID string) (*entity.DisplayPreference, error)
	// GetOrCreate returns the row, inserting an empty one when absent.
	GetOrCreate(ctx context.Context, profileID, userID string) (*entity.DisplayPreference, error)
	// MergeWallpaper merges the supplied keys over the stored wallpaper config.
	MergeWallpaper(ctx context.Context, profileID, userID string, cfg entity.WallpaperConfig) (*entity.DisplayPreference, error)
	ReplaceFont(ctx context.Context, profileID, userID string, cfg entity.FontConfig) (*entity.DisplayPreference, error)
	ReplaceCorner(ctx context.Context, profileID, userID string, cfg entity.CornerConfig) (*entity.DisplayPreference, error)
	SetTheme(ctx context.Context, profileID, userID string, theme *string) (*entity.DisplayPreference, error)
}
