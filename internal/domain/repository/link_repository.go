package repository

import (
	"context"

	"github.com/abiosite/abio-api/internal/domain/entity"
)

// LinkRepository methods taking a userID filter by the owning profile's user
// in the same statement; a foreign link is indistinguishable from a missing one.
type LinkRepository interface {
	ListByProfile(ctx context.Context, profileID string) ([]entity.Link, error)
	URLExists(ctx context.Context, profileID, url, excludeLinkID string) (bool, error)
	// Create appends the link after the current highest display order.
	Create(ctx context.Context, l *entity.Link) error
	GetOwned(ctx context.Context, userID, linkID string) (*entity.Link, error)
	UpdateOwned(ctx context.Context, userID string, l *entity.Link) error
	DeleteOwned(ctx context.Context, userID, linkID string) error
	// Reorder applies every assignment or none of them.
	Reorder(ctx context.Context, profileID string, orders []entity.LinkOrder) error
	IncrementClicks(ctx context.Context, linkID string) error
	SetIcon(ctx context.Context, userID, linkID, iconURL string) (*entity.Link, error)
}
