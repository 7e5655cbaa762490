package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/abiosite/abio-api/internal/domain/entity"
	repo "github.com/abiosite/abio-api/internal/domain/repository"
	"github.com/abiosite/abio-api/pkg/helpers"
)

type ProfileService struct {
	Profiles repo.ProfileRepository
	Links    repo.LinkRepository
	Prefs    repo.PreferenceRepository
	Storage  ObjectStorage
	Indexer  ProfileIndexer
	Logger   *logrus.Logger
}

func NewProfileService(profiles repo.ProfileRepository, links repo.LinkRepository, prefs repo.PreferenceRepository,
	storage ObjectStorage, indexer ProfileIndexer, logger *logrus.Logger) *ProfileService {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &ProfileService{Profiles: profiles, Links: links, Prefs: prefs, Storage: storage, Indexer: indexer, Logger: logger}
}

// UpdateProfileInput is a patch; nil fields are left unchanged.
type UpdateProfileInput struct {
	Username    *string
	DisplayName *string
	Bio         *string
	Location    *string
	Goals       *[]string
	AvatarURL   *string
	IsPublic    *bool
}

func (s *ProfileService) ownProfile(ctx context.Context, userID string) (*entity.Profile, error) {
	p, err := s.Profiles.GetByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	return p, err
}

// GetProfile returns the caller's profile with ordered links and display preferences.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*entity.Profile, error) {
	p, err := s.ownProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attach(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProfileService) attach(ctx context.Context, p *entity.Profile) error {
	links, err := s.Links.ListByProfile(ctx, p.ID)
	if err != nil {
		return err
	}
	if links == nil {
		links = []entity.Link{}
	}
	p.Links = links
	d, err := s.Prefs.GetByProfileID(ctx, p.ID)
	switch {
	case err == nil:
		p.Preferences = d
	case !errors.Is(err, repo.ErrNotFound):
		return err
	}
	return nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.Profile, error) {
	p, err := s.ownProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if p.Username == nil || *p.Username != username {
			taken, err := s.Profiles.UsernameTaken(ctx, username, p.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrUsernameTaken
			}
		}
		p.Username = &username
	}
	if in.DisplayName != nil {
		p.DisplayName = strings.TrimSpace(*in.DisplayName)
	}
	if in.Bio != nil {
		p.Bio = *in.Bio
	}
	if in.Location != nil {
		p.Location = strings.TrimSpace(*in.Location)
	}
	if in.Goals != nil {
		p.Goals = append([]string{}, (*in.Goals)...)
	}
	if in.AvatarURL != nil {
		p.AvatarURL = *in.AvatarURL
	}
	if in.IsPublic != nil {
		p.IsPublic = *in.IsPublic
	}

	if err := s.Profiles.Update(ctx, p, p.OnboardingReady()); err != nil {
		if repo.IsConflict(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	s.reindex(ctx, p)
	return p, nil
}

// reindex is best effort: private or nameless profiles are removed from search.
func (s *ProfileService) reindex(ctx context.Context, p *entity.Profile) {
	if s.Indexer == nil {
		return
	}
	var err error
	if p.IsPublic && p.Username != nil && *p.Username != "" {
		err = s.Indexer.Index(ctx, p)
	} else {
		err = s.Indexer.Remove(ctx, p.ID)
	}
	if err != nil {
		s.Logger.WithError(err).WithField("profile_id", p.ID).Warn("search index update failed")
	}
}

// GetPublicProfile answers NotFound for unknown and private profiles alike.
func (s *ProfileService) GetPublicProfile(ctx context.Context, username string) (*entity.PublicProfile, error) {
	p, err := s.Profiles.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	if !p.IsPublic {
		return nil, ErrProfileNotFound
	}
	if err := s.attach(ctx, p); err != nil {
		return nil, err
	}
	return p.ToPublic(), nil
}

func (s *ProfileService) CheckUsernameAvailability(ctx context.Context, username string) (bool, error) {
	taken, err := s.Profiles.UsernameTaken(ctx, strings.TrimSpace(username), "")
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// UpdateAvatar stores the image under avatars/<userID>/ and records its URL.
func (s *ProfileService) UpdateAvatar(ctx context.Context, userID string, up Upload) (*entity.Profile, error) {
	if _, err := s.ownProfile(ctx, userID); err != nil {
		return nil, err
	}
	url, err := storeImage(ctx, s.Storage, "avatars", userID, up)
	if err != nil {
		return nil, err
	}
	p, err := s.Profiles.UpdateAvatar(ctx, userID, url)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, p)
	return p, nil
}

// SearchPublicProfiles returns an empty result when search is not configured.
func (s *ProfileService) SearchPublicProfiles(ctx context.Context, q string, size int) ([]ProfileHit, error) {
	q = strings.TrimSpace(q)
	if s.Indexer == nil || q == "" {
		return []ProfileHit{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	hits, err := s.Indexer.Search(ctx, q, size)
	if err != nil {
		return nil, err
	}
	if hits == nil {
		hits = []ProfileHit{}
	}
	return hits, nil
}
