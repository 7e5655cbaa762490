package repository

import (
	"context"

	"github.com/abiosite/abio-api/internal/domain/entity"
)

type WaitlistRepository interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, e *entity.WaitlistEntry) error
	// List returns every entry, oldest first.
	List(ctx context.Context) ([]entity.WaitlistEntry, error)
}
