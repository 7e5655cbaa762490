package application

import (
	"context"
	"io"
	"time"

	"github.com/abiosite/abio-api/internal/domain/entity"
)

// Notifier delivers the transactional emails of the account lifecycle.
type Notifier interface {
	SendVerificationCode(ctx context.Context, to, name, code string, ttl time.Duration) error
	SendPasswordReset(ctx context.Context, to, name, code string, ttl time.Duration) error
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Generate(userID string, passwordVersion int) (string, time.Time, error)
}

// ObjectStorage stores uploaded files and returns their public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// ProfileIndexer keeps the public profile search index in sync.
type ProfileIndexer interface {
	Index(ctx context.Context, p *entity.Profile) error
	Remove(ctx context.Context, profileID string) error
	Search(ctx context.Context, q string, size int) ([]ProfileHit, error)
}

// ProfileHit is a search result.
type ProfileHit struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatarUrl"`
}

// Counters records business events; metrics.Metrics satisfies it.
type Counters interface {
	IncSignup()
	IncLogin(result string)
	IncLinkClick()
	IncMailFailure(template string)
}

type nopCounters struct{}

func (nopCounters) IncSignup()            {}
func (nopCounters) IncLogin(string)       {}
func (nopCounters) IncLinkClick()         {}
func (nopCounters) IncMailFailure(string) {}

// Upload is an image received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
