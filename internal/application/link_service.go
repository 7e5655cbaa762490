package application

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/abiosite/abio-api/internal/domain/entity"
	repo "github.com/abiosite/abio-api/internal/domain/repository"
	"github.com/abiosite/abio-api/pkg/helpers"
)

// LinkService manages a profile's ordered link collection.
type LinkService struct {
	Profiles repo.ProfileRepository
	Links    repo.LinkRepository
	Storage  ObjectStorage
	Metrics  Counters
	Logger   *logrus.Logger
}

func NewLinkService(profiles repo.ProfileRepository, links repo.LinkRepository, storage ObjectStorage, metrics Counters, logger *logrus.Logger) *LinkService {
	if metrics == nil {
		metrics = nopCounters{}
	}
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &LinkService{Profiles: profiles, Links: links, Storage: storage, Metrics: metrics, Logger: logger}
}

type CreateLinkInput struct {
	Title     string
	URL       string
	Platform  string
	IsVisible *bool
}

// UpdateLinkInput is a patch. Display order is only changed through ReorderLinks.
type UpdateLinkInput struct {
	Title     *string
	URL       *string
	Platform  *string
	IsVisible *bool
}

func isRegistryPlatform(key string) bool {
	for _, p := range Platforms {
		if p.Key == key {
			return true
		}
	}
	return false
}

func normalizePlatform(p string) string { return strings.ToUpper(strings.TrimSpace(p)) }

func validLinkID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *LinkService) profileOf(ctx context.Context, userID string) (*entity.Profile, error) {
	p, err := s.Profiles.GetByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	return p, err
}

func (s *LinkService) ListLinks(ctx context.Context, userID string) ([]entity.Link, error) {
	p, err := s.profileOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	links, err := s.Links.ListByProfile(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if links == nil {
		links = []entity.Link{}
	}
	return links, nil
}

func (s *LinkService) GetLink(ctx context.Context, userID, linkID string) (*entity.Link, error) {
	if !validLinkID(linkID) {
		return nil, ErrLinkNotFound
	}
	l, err := s.Links.GetOwned(ctx, userID, linkID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrLinkNotFound
	}
	return l, err
}

// CreateLink appends a link. The platform is detected from the URL, falling
// back to the declared one.
func (s *LinkService) CreateLink(ctx context.Context, userID string, in CreateLinkInput) (*entity.Link, error) {
	p, err := s.profileOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	url := strings.TrimSpace(in.URL)

	exists, err := s.Links.URLExists(ctx, p.ID, url, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateLinkURL
	}

	platform, ok := DetectPlatform(url)
	if !ok {
		platform = normalizePlatform(in.Platform)
	}
	if platform == "" {
		return nil, ErrPlatformRequired
	}

	l := &entity.Link{
		ProfileID: p.ID,
		Title:     strings.TrimSpace(in.Title),
		URL:       url,
		Platform:  platform,
		IsVisible: in.IsVisible == nil || *in.IsVisible,
	}
	if err := s.Links.Create(ctx, l); err != nil {
		if repo.IsConflict(err) {
			return nil, ErrDuplicateLinkURL
		}
		return nil, err
	}
	return l, nil
}

// UpdateLink applies a patch to an owned link. A new URL re-derives the
// platform; a detected platform wins over a declared one.
func (s *LinkService) UpdateLink(ctx context.Context, userID, linkID string, in UpdateLinkInput) (*entity.Link, error) {
	l, err := s.GetLink(ctx, userID, linkID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		l.Title = strings.TrimSpace(*in.Title)
	}
	if in.IsVisible != nil {
		l.IsVisible = *in.IsVisible
	}
	switch {
	case in.URL != nil:
		url := strings.TrimSpace(*in.URL)
		if url != l.URL {
			exists, err := s.Links.URLExists(ctx, l.ProfileID, url, l.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrDuplicateLinkURL
			}
		}
		l.URL = url
		if detected, ok := DetectPlatform(url); ok {
			l.Platform = detected
		} else if in.Platform != nil && normalizePlatform(*in.Platform) != "" {
			l.Platform = normalizePlatform(*in.Platform)
		} else if isRegistryPlatform(l.Platform) {
			// the old platform described the old URL
			return nil, ErrPlatformRequired
		}
	case in.Platform != nil:
		if pl := normalizePlatform(*in.Platform); pl != "" {
			l.Platform = pl
		}
	}

	if err := s.Links.UpdateOwned(ctx, userID, l); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrLinkNotFound
		case repo.IsConflict(err):
			return nil, ErrDuplicateLinkURL
		}
		return nil, err
	}
	return l, nil
}

// DeleteLink removes an owned link. Remaining orders keep their gaps.
func (s *LinkService) DeleteLink(ctx context.Context, userID, linkID string) error {
	if !validLinkID(linkID) {
		return ErrLinkNotFound
	}
	err := s.Links.DeleteOwned(ctx, userID, linkID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrLinkNotFound
	}
	return err
}

// ReorderLinks assigns every listed order in one transaction, or none when
// any id is foreign, missing or repeated.
func (s *LinkService) ReorderLinks(ctx context.Context, userID string, orders []entity.LinkOrder) error {
	p, err := s.profileOf(ctx, userID)
	if err != nil {
		return err
	}
	for _, o := range orders {
		if !validLinkID(o.ID) || o.DisplayOrder < 0 {
			return ErrReorderMismatch
		}
	}
	err = s.Links.Reorder(ctx, p.ID, orders)
	if errors.Is(err, repo.ErrOwnershipMismatch) {
		return ErrReorderMismatch
	}
	return err
}

// TrackClick counts a visitor click. Clicks are not deduplicated.
func (s *LinkService) TrackClick(ctx context.Context, linkID string) error {
	if !validLinkID(linkID) {
		return ErrClickLinkMissing
	}
	err := s.Links.IncrementClicks(ctx, linkID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrClickLinkMissing
	}
	if err == nil {
		s.Metrics.IncLinkClick()
	}
	return err
}

// UpdateLinkIcon stores the image under icons/<linkID>/ for an owned link.
func (s *LinkService) UpdateLinkIcon(ctx context.Context, userID, linkID string, up Upload) (*entity.Link, error) {
	if _, err := s.GetLink(ctx, userID, linkID); err != nil {
		return nil, err
	}
	url, err := storeImage(ctx, s.Storage, "icons", linkID, up)
	if err != nil {
		return nil, err
	}
	l, err := s.Links.SetIcon(ctx, userID, linkID, url)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrLinkNotFound
	}
	return l, err
}
