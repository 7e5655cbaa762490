package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abiosite/abio-api/internal/domain/entity"
)

func ptr[T any](v T) *T { return &v }

func TestUpdateProfile_PatchAndOnboarding(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	uid := h.signup(t, "a@x.com").User.ID

	p, err := h.profiles.UpdateProfile(ctx, uid, UpdateProfileInput{Username: ptr("alice")})
	require.NoError(t, err)
	assert.Equal(t, "alice", *p.Username)
	assert.Equal(t, "Test", p.DisplayName, "unset fields stay untouched")
	assert.False(t, h.store.Users[uid].OnboardingCompleted)

	p, err = h.profiles.UpdateProfile(ctx, uid, UpdateProfileInput{Goals: ptr([]string{"grow my audience"}), Bio: ptr("hi")})
	require.NoError(t, err)
	assert.Equal(t, "alice", *p.Username)
	assert.Equal(t, "hi", p.Bio)
	assert.True(t, h.store.Users[uid].OnboardingCompleted)
	assert.Equal(t, "alice", h.index.indexed[p.ID])

	p, err = h.profiles.UpdateProfile(ctx, uid, UpdateProfileInput{IsPublic: ptr(false)})
	require.NoError(t, err)
	assert.NotContains(t, h.index.indexed, p.ID)
}

func TestUpdateProfile_UsernameConflict(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.signup(t, "a@x.com").User.ID
	bob := h.signup(t, "b@x.com").User.ID

	_, err := h.profiles.UpdateProfile(ctx, alice, UpdateProfileInput{Username: ptr("taken")})
	require.NoError(t, err)
	_, err = h.profiles.UpdateProfile(ctx, bob, UpdateProfileInput{Username: ptr("taken")})
	require.ErrorIs(t, err, ErrUsernameTaken)

	// keeping one's own username is fine
	_, err = h.profiles.UpdateProfile(ctx, alice, UpdateProfileInput{Username: ptr("taken"), Location: ptr("Jakarta")})
	require.NoError(t, err)

	available, err := h.profiles.CheckUsernameAvailability(ctx, "taken")
	require.NoError(t, err)
	assert.False(t, available)
	available, err = h.profiles.CheckUsernameAvailability(ctx, "free")
	require.NoError(t, err)
	assert.True(t, available)
}

func TestGetProfile_IncludesOrderedLinks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	uid := h.signup(t, "a@x.com").User.ID
	a := h.link(t, uid, "A", "https://a.example.com")
	b := h.link(t, uid, "B", "https://b.example.com")
	require.NoError(t, h.links.ReorderLinks(ctx, uid, []entity.LinkOrder{{ID: a.ID, DisplayOrder: 3}, {ID: b.ID, DisplayOrder: 2}}))

	p, err := h.profiles.GetProfile(ctx, uid)
	require.NoError(t, err)
	require.Len(t, p.Links, 2)
	assert.Equal(t, b.ID, p.Links[0].ID)

	_, err = h.profiles.GetProfile(ctx, "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestGetPublicProfile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	uid := h.signup(t, "a@x.com").User.ID
	_, err := h.profiles.UpdateProfile(ctx, uid, UpdateProfileInput{Username: ptr("alice"), Goals: ptr([]string{"secret goal"})})
	require.NoError(t, err)
	shown := h.link(t, uid, "Shown", "https://shown.example.com")
	hidden := false
	_, err = h.links.CreateLink(ctx, uid, CreateLinkInput{Title: "Hidden", URL: "https://hidden.example.com", Platform: "WEBSITE", IsVisible: &hidden})
	require.NoError(t, err)

	pub, err := h.profiles.GetPublicProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", pub.Username)
	require.Len(t, pub.Links, 1)
	assert.Equal(t, shown.ID, pub.Links[0].ID)

	_, missing := h.profiles.GetPublicProfile(ctx, "nobody")
	require.ErrorIs(t, missing, ErrProfileNotFound)

	_, err = h.profiles.UpdateProfile(ctx, uid, UpdateProfileInput{IsPublic: ptr(false)})
	require.NoError(t, err)
	_, private := h.profiles.GetPublicProfile(ctx, "alice")
	require.ErrorIs(t, private, ErrProfileNotFound)
	assert.Equal(t, missing.Error(), private.Error())
}

func TestUpdateAvatar(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	uid := h.signup(t, "a@x.com").User.ID

	p, err := h.profiles.UpdateAvatar(ctx, uid, Upload{ContentType: "image/jpeg", Size: 3, Body: strings.NewReader("jpg")})
	require.NoError(t, err)
	require.Len(t, h.storage.paths, 1)
	path := h.storage.paths[0]
	assert.True(t, strings.HasPrefix(path, "avatars/"+uid+"/"))
	assert.Equal(t, "https://cdn.test/"+path, p.AvatarURL)

	_, err = h.profiles.UpdateAvatar(ctx, uid, Upload{ContentType: "application/pdf", Size: 3, Body: strings.NewReader("pdf")})
	require.ErrorIs(t, err, ErrNotAnImage)
}

func TestSearchPublicProfiles(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.index.hits = []ProfileHit{{Username: "alice"}}

	hits, err := h.profiles.SearchPublicProfiles(ctx, "ali", 0)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	hits, err = h.profiles.SearchPublicProfiles(ctx, "  ", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	h.profiles.Indexer = nil
	hits, err = h.profiles.SearchPublicProfiles(ctx, "ali", 10)
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}
