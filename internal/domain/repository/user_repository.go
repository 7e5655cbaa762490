package repository

import (
	"context"
	"time"

	"github.com/abiosite/abio-api/internal/domain/entity"
)

// UserRepository defines the persistence operations of the account lifecycle.
type UserRepository interface {
	// CreateWithProfile stores the user and its profile in one transaction.
	CreateWithProfile(ctx context.Context, u *entity.User, p *entity.Profile) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*entity.User, error)
	// GetByVerificationToken matches the token hash and requires an expiry after now.
	GetByVerificationToken(ctx context.Context, tokenHash string, now time.Time) (*entity.User, error)
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*entity.User, error)
	SetVerificationToken(ctx context.Context, id string, tokenHash *string, expires *time.Time) error
	MarkEmailVerified(ctx context.Context, id string) error
	// SetResetToken stores a reset token; nil values clear it.
	SetResetToken(ctx context.Context, id string, tokenHash *string, expires *time.Time) error
	// UpdatePassword also clears any pending reset token and returns the
	// incremented password version.
	UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) (int, error)
	LinkGoogleID(ctx context.Context, id, googleID string) error
	Delete(ctx context.Context, id string) error
}
