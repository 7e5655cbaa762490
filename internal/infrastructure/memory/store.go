// Package memory is an in-process test double for the repository
// interfaces. Service and router tests run against it; it is not a supported
// storage backend and the server never wires it.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abiosite/abio-api/internal/domain/entity"
	repo "github.com/abiosite/abio-api/internal/domain/repository"
)

// Store backs every repository of this package so cascades behave like the
// SQL schema: deleting a user removes its profile, links and preferences.
type Store struct {
	Mu       sync.Mutex
	clock    time.Time
	Users    map[string]*entity.User
	Profiles map[string]*entity.Profile
	Links    map[string]*entity.Link
	Prefs    map[string]*entity.DisplayPreference
	Waitlist map[string]*entity.WaitlistEntry
}

func NewStore() *Store {
	return &Store{
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Users:    map[string]*entity.User{},
		Profiles: map[string]*entity.Profile{},
		Links:    map[string]*entity.Link{},
		Prefs:    map[string]*entity.DisplayPreference{},
		Waitlist: map[string]*entity.WaitlistEntry{},
	}
}

func (m *Store) tick() time.Time {
	m.clock = m.clock.Add(time.Millisecond)
	return m.clock
}

// ProfileByUser returns the stored profile of userID; the caller must hold Mu
// or be the only goroutine touching the store.
func (m *Store) ProfileByUser(userID string) *entity.Profile {
	for _, p := range m.Profiles {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.Profile = nil
	return &c
}

func cloneProfile(p *entity.Profile) *entity.Profile {
	c := *p
	c.Goals = append([]string{}, p.Goals...)
	c.Links = nil
	c.Preferences = nil
	return &c
}

func clonePref(d *entity.DisplayPreference) *entity.DisplayPreference {
	c := *d
	return &c
}

// UserRepository implements repository.UserRepository.
type UserRepository struct{ *Store }

func (f UserRepository) CreateWithProfile(_ context.Context, u *entity.User, p *entity.Profile) error {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	for _, x := range f.Users {
		if x.Email == u.Email {
			return &repo.ConflictError{Entity: "user", Fields: []string{"email"}}
		}
	}
	now := f.tick()
	u.ID, u.Active, u.CreatedAt, u.UpdatedAt = uuid.NewString(), true, now, now
	p.ID, p.UserID, p.CreatedAt, p.UpdatedAt = uuid.NewString(), u.ID, now, now
	if p.Goals == nil {
		p.Goals = []string{}
	}
	f.Users[u.ID] = cloneUser(u)
	f.Profiles[p.ID] = cloneProfile(p)
	u.Profile = p
	return nil
}

func (f UserRepository) find(match func(*entity.User) bool) (*entity.User, error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	for _, u := range f.Users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	return f.find(func(u *entity.User) bool { return u.ID == id })
}

func (f UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return f.find(func(u *entity.User) bool { return u.Email == email })
}

func (f UserRepository) GetByGoogleID(_ context.Context, gid string) (*entity.User, error) {
	return f.find(func(u *entity.User) bool { return u.GoogleID != nil && *u.GoogleID == gid })
}

func (f UserRepository) GetByVerificationToken(_ context.Context, hash string, now time.Time) (*entity.User, error) {
	return f.find(func(u *entity.User) bool {
		return u.EmailVerificationToken != nil && *u.EmailVerificationToken == hash &&
			u.EmailVerificationExpires != nil && u.EmailVerificationExpires.After(now)
	})
}

func (f UserRepository) GetByResetToken(_ context.Context, hash string, now time.Time) (*entity.User, error) {
	return f.find(func(u *entity.User) bool {
		return u.PasswordResetToken != nil && *u.PasswordResetToken == hash &&
			u.PasswordResetExpires != nil && u.PasswordResetExpires.After(now)
	})
}

func (f UserRepository) update(id string, fn func(*entity.User)) error {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	u, ok := f.Users[id]
	if !ok {
		return repo.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = f.tick()
	return nil
}

func (f UserRepository) SetVerificationToken(_ context.Context, id string, hash *string, exp *time.Time) error {
	return f.update(id, func(u *entity.User) { u.EmailVerificationToken, u.EmailVerificationExpires = hash, exp })
}

func (f UserRepository) MarkEmailVerified(_ context.Context, id string) error {
	return f.update(id, func(u *entity.User) {
		u.IsEmailVerified = true
		u.EmailVerificationToken, u.EmailVerificationExpires = nil, nil
	})
}

func (f UserRepository) SetResetToken(_ context.Context, id string, hash *string, exp *time.Time) error {
	return f.update(id, func(u *entity.User) { u.PasswordResetToken, u.PasswordResetExpires = hash, exp })
}

func (f UserRepository) UpdatePassword(_ context.Context, id, hash string, at time.Time) (int, error) {
	var version int
	err := f.update(id, func(u *entity.User) {
		u.PasswordHash = hash
		u.PasswordChangedAt = &at
		u.PasswordVersion++
		u.PasswordResetToken, u.PasswordResetExpires = nil, nil
		version = u.PasswordVersion
	})
	return version, err
}

func (f UserRepository) LinkGoogleID(_ context.Context, id, gid string) error {
	return f.update(id, func(u *entity.User) {
		u.GoogleID = &gid
		u.IsEmailVerified = true
	})
}

func (f UserRepository) Delete(_ context.Context, id string) error {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	if _, ok := f.Users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.Users, id)
	for pid, p := range f.Profiles {
		if p.UserID != id {
			continue
		}
		for lid, l := range f.Links {
			if l.ProfileID == pid {
				delete(f.Links, lid)
			}
		}
		delete(f.Prefs, pid)
		delete(f.Profiles, pid)
	}
	return nil
}

type ProfileRepository struct{ *Store }

func (f ProfileRepository) GetByUserID(_ context.Context, userID string) (*entity.Profile, error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	if p := f.ProfileByUser(userID); p != nil {
		return cloneProfile(p), nil
	}
	return nil, repo.ErrNotFound
}

func (f ProfileRepository) GetByUsername(_ context.Context, username string) (*entity.Profile, error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	for _, p := range f.Profiles {
		if p.Username != nil && *p.Username == username {
			return cloneProfile(p), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f ProfileRepository) UsernameTaken(_ context.Context, username, exclude string) (bool, error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	for _, p := range f.Profiles {
		if p.Username != nil && *p.Username == username && p.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (f ProfileRepository) Update(_ context.Context, p *entity.Profile, complete bool) error {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	cur, ok := f.Profiles[p.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if p.Username != nil {
		for _, o := range f.Profiles {
			if o.ID != p.ID && o.Username != nil && *o.Username == *p.Username {
				return &repo.ConflictError{Entity: "profile", Fields: []string{"username"}}
			}
		}
	}
	c := cloneProfile(p)
	c.CreatedAt = cur.CreatedAt
	c.UpdatedAt = f.tick()
	f.Profiles[p.ID] = c
	p.UpdatedAt = c.UpdatedAt
	if complete {
		if u, ok := f.Users[p.UserID]; ok {
			u.OnboardingCompleted = true
		}
	}
	return nil
}

func (f ProfileRepository) UpdateAvatar(_ context.Context, userID, url string) (*entity.Profile, error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	p := f.ProfileByUser(userID)
	if p == nil {
		return nil, repo.ErrNotFound
	}
	p.AvatarURL = url
	return cloneProfile(p), nil
}

type LinkRepository struct{ *Store }

func (f LinkRepository) ListByProfile(_ context.Context, profileID string) ([]entity.Link, error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	out := []entity.Link{}
	for _, l := range f.Links {
		if l.ProfileID == profileID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f LinkRepository) URLExists(_ context.Context, profileID, url, exclude string) (bool, error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	for _, l := range f.Links {
		if l.ProfileID == profileID && l.URL == url && l.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (f LinkRepository) Create(_ context.Context, l *entity.Link) error {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	next := 0
	for _, x := range f.Links {
		if x.ProfileID != l.ProfileID {
			continue
		}
		if x.URL == l.URL {
			return &repo.ConflictError{Entity: "link", Fields: []string{"profileId", "url"}}
		}
		if x.DisplayOrder+1 > next {
			next = x.DisplayOrder + 1
		}
	}
	now := f.tick()
	l.ID, l.DisplayOrder, l.CreatedAt, l.UpdatedAt = uuid.NewString(), next, now, now
	c := *l
	f.Links[l.ID] = &c
	return nil
}

func (f LinkRepository) owned(userID, linkID string) *entity.Link {
	l, ok := f.Links[linkID]
	if !ok {
		return nil
	}
	if p, ok := f.Profiles[l.ProfileID]; !ok || p.UserID != userID {
		return nil
	}
	return l
}

func (f LinkRepository) GetOwned(_ context.Context, userID, linkID string) (*entity.Link, error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	if l := f.owned(userID, linkID); l != nil {
		c := *l
		return &c, nil
	}
	return nil, repo.ErrNotFound
}

func (f LinkRepository) UpdateOwned(_ context.Context, userID string, l *entity.Link) error {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	cur := f.owned(userID, l.ID)
	if cur == nil {
		return repo.ErrNotFound
	}
	cur.Title, cur.URL, cur.Platform, cur.IsVisible = l.Title, l.URL, l.Platform, l.IsVisible
	cur.UpdatedAt = f.tick()
	return nil
}

func (f LinkRepository) DeleteOwned(_ context.Context, userID, linkID string) error {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	if f.owned(userID, linkID) == nil {
		return repo.ErrNotFound
	}
	delete(f.Links, linkID)
	return nil
}

func (f LinkRepository) Reorder(_ context.Context, profileID string, orders []entity.LinkOrder) error {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	ids := map[string]bool{}
	for _, o := range orders {
		ids[o.ID] = true
	}
	matched := 0
	for id := range ids {
		if l, ok := f.Links[id]; ok && l.ProfileID == profileID {
			matched++
		}
	}
	if matched != len(orders) {
		return repo.ErrOwnershipMismatch
	}
	for _, o := range orders {
		f.Links[o.ID].DisplayOrder = o.DisplayOrder
	}
	return nil
}

func (f LinkRepository) IncrementClicks(_ context.Context, linkID string) error {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	l, ok := f.Links[linkID]
	if !ok {
		return repo.ErrNotFound
	}
	l.ClickCount++
	return nil
}

func (f LinkRepository) SetIcon(_ context.Context, userID, linkID, url string) (*entity.Link, error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	l := f.owned(userID, linkID)
	if l == nil {
		return nil, repo.ErrNotFound
	}
	l.IconURL = url
	c := *l
	return &c, nil
}

type PreferenceRepository struct{ *Store }

func (f PreferenceRepository) GetByProfileID(_ context.Context, profileID string) (*entity.DisplayPreference, error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	if d, ok := f.Prefs[profileID]; ok {
		return clonePref(d), nil
	}
	return nil, repo.ErrNotFound
}

func (f PreferenceRepository) row(profileID, userID string) *entity.DisplayPreference {
	d, ok := f.Prefs[profileID]
	if !ok {
		now := f.tick()
		d = &entity.DisplayPreference{ID: uuid.NewString(), ProfileID: profileID, UserID: userID, CreatedAt: now, UpdatedAt: now}
		f.Prefs[profileID] = d
	}
	return d
}

func (f PreferenceRepository) GetOrCreate(_ context.Context, profileID, userID string) (*entity.DisplayPreference, error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	return clonePref(f.row(profileID, userID)), nil
}

func (f PreferenceRepository) MergeWallpaper(_ context.Context, profileID, userID string, cfg entity.WallpaperConfig) (*entity.DisplayPreference, error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	d := f.row(profileID, userID)
	if cfg.Type != "" {
		d.WallpaperConfig.Type = cfg.Type
	}
	if cfg.Image != nil {
		d.WallpaperConfig.Image = cfg.Image
	}
	if cfg.BackgroundColor != nil {
		d.WallpaperConfig.BackgroundColor = cfg.BackgroundColor
	}
	return clonePref(d), nil
}

func (f PreferenceRepository) ReplaceFont(_ context.Context, profileID, userID string, cfg entity.FontConfig) (*entity.DisplayPreference, error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	d := f.row(profileID, userID)
	d.FontConfig = cfg
	return clonePref(d), nil
}

func (f PreferenceRepository) ReplaceCorner(_ context.Context, profileID, userID string, cfg entity.CornerConfig) (*entity.DisplayPreference, error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	d := f.row(profileID, userID)
	d.CornerConfig = cfg
	return clonePref(d), nil
}

func (f PreferenceRepository) SetTheme(_ context.Context, profileID, userID string, theme *string) (*entity.DisplayPreference, error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	d := f.row(profileID, userID)
	d.SelectedTheme = theme
	return clonePref(d), nil
}

type WaitlistRepository struct{ *Store }

func (f WaitlistRepository) EmailExists(_ context.Context, email string) (bool, error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	_, ok := f.Waitlist[email]
	return ok, nil
}

func (f WaitlistRepository) Create(_ context.Context, e *entity.WaitlistEntry) error {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	if _, ok := f.Waitlist[e.Email]; ok {
		return &repo.ConflictError{Entity: "waitlist entry", Fields: []string{"email"}}
	}
	e.ID, e.CreatedAt = uuid.NewString(), f.tick()
	c := *e
	f.Waitlist[e.Email] = &c
	return nil
}

func (f WaitlistRepository) List(_ context.Context) ([]entity.WaitlistEntry, error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	out := make([]entity.WaitlistEntry, 0, len(f.Waitlist))
	for _, e := range f.Waitlist {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Repositories returns the five repositories sharing s.
func (m *Store) Repositories() (UserRepository, ProfileRepository, LinkRepository, PreferenceRepository, WaitlistRepository) {
	return UserRepository{m}, ProfileRepository{m}, LinkRepository{m}, PreferenceRepository{m}, WaitlistRepository{m}
}

var (
	_ repo.UserRepository       = UserRepository{}
	_ repo.ProfileRepository    = ProfileRepository{}
	_ repo.LinkRepository       = LinkRepository{}
	_ repo.PreferenceRepository = PreferenceRepository{}
	_ repo.WaitlistRepository   = WaitlistRepository{}
)
