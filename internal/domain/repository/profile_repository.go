package repository

import (
	"context"

	"github.com/abiosite/abio-api/internal/domain/entity"
)

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*entity.Profile, error)
	GetByUsername(ctx context.Context, username string) (*entity.Profile, error)
	// UsernameTaken ignores the profile identified by excludeProfileID.
	UsernameTaken(ctx context.Context, username, excludeProfileID string) (bool, error)
	// Update writes the editable fields; completeOnboarding also flags the owner.
	Update(ctx context.Context, p *entity.Profile, completeOnboarding bool) error
	UpdateAvatar(ctx context.Context, userID, avatarURL string) (*entity.Profile, error)
}
