package application

import (
	"context"
	"strings"

	"github.com/abiosite/abio-api/internal/domain/entity"
	repo "github.com/abiosite/abio-api/internal/domain/repository"
)

type WaitlistService struct {
	Repo repo.WaitlistRepository
}

func NewWaitlistService(r repo.WaitlistRepository) *WaitlistService {
	return &WaitlistService{Repo: r}
}

// Join adds an email to the waitlist once.
func (s *WaitlistService) Join(ctx context.Context, name, email string) (*entity.WaitlistEntry, error) {
	email = normalizeEmail(email)
	exists, err := s.Repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrWaitlistTaken
	}
	e := &entity.WaitlistEntry{Name: strings.TrimSpace(name), Email: email}
	if err := s.Repo.Create(ctx, e); err != nil {
		if repo.IsConflict(err) {
			return nil, ErrWaitlistTaken
		}
		return nil, err
	}
	return e, nil
}

// List returns all waitlist entries, oldest first.
func (s *WaitlistService) List(ctx context.Context) ([]entity.WaitlistEntry, error) {
	return s.Repo.List(ctx)
}
