package application

import (
	"context"
	"errors"
	"strings"

	"github.com/abiosite/abio-api/internal/domain/entity"
	repo "github.com/abiosite/abio-api/internal/domain/repository"
	"github.com/abiosite/abio-api/pkg/validation"
)

var errBackgroundColor = ValidationError("backgroundColor must be a hex color such as #fff or #1a2b3c")

// PreferenceService stores the display preferences of a profile page.
type PreferenceService struct {
	Profiles repo.ProfileRepository
	Prefs    repo.PreferenceRepository
}

func NewPreferenceService(profiles repo.ProfileRepository, prefs repo.PreferenceRepository) *PreferenceService {
	return &PreferenceService{Profiles: profiles, Prefs: prefs}
}

func (s *PreferenceService) profileOf(ctx context.Context, userID string) (*entity.Profile, error) {
	p, err := s.Profiles.GetByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	return p, err
}

func validateBackground(cfg entity.WallpaperConfig) error {
	bg := cfg.BackgroundColor
	if bg == nil {
		return nil
	}
	if bg.IsGradient() {
		for _, stop := range bg.Gradient {
			if strings.TrimSpace(stop.Color) == "" || stop.Amount < 0 || stop.Amount > 1 {
				return ErrInvalidGradient
			}
		}
		return nil
	}
	if !validation.IsHexColor(bg.Solid) {
		return errBackgroundColor
	}
	return nil
}

// GetPreferences creates an empty row on first access.
func (s *PreferenceService) GetPreferences(ctx context.Context, userID string) (*entity.DisplayPreference, error) {
	p, err := s.profileOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Prefs.GetOrCreate(ctx, p.ID, userID)
}

// UpdateBackground merges the supplied keys over the stored wallpaper config.
func (s *PreferenceService) UpdateBackground(ctx context.Context, userID string, cfg entity.WallpaperConfig) (*entity.DisplayPreference, error) {
	if err := validateBackground(cfg); err != nil {
		return nil, err
	}
	p, err := s.profileOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Prefs.MergeWallpaper(ctx, p.ID, userID, cfg)
}

func (s *PreferenceService) UpdateFont(ctx context.Context, userID string, cfg entity.FontConfig) (*entity.DisplayPreference, error) {
	p, err := s.profileOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Prefs.ReplaceFont(ctx, p.ID, userID, cfg)
}

func (s *PreferenceService) UpdateCorner(ctx context.Context, userID string, cfg entity.CornerConfig) (*entity.DisplayPreference, error) {
	p, err := s.profileOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Prefs.ReplaceCorner(ctx, p.ID, userID, cfg)
}

// SelectTheme sets the theme; an empty name clears it.
func (s *PreferenceService) SelectTheme(ctx context.Context, userID, theme string) (*entity.DisplayPreference, error) {
	p, err := s.profileOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	var sel *string
	if t := strings.TrimSpace(theme); t != "" {
		sel = &t
	}
	return s.Prefs.SetTheme(ctx, p.ID, userID, sel)
}
