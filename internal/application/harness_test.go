package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/abiosite/abio-api/internal/domain/entity"
	"github.com/abiosite/abio-api/internal/infrastructure/memory"
	"github.com/abiosite/abio-api/pkg/helpers"
)

const testPassword = "Abc12345!"

type harness struct {
	store   *memory.Store
	mail    *fakeNotifier
	storage *fakeStorage
	index   *fakeIndexer
	jwt     *helpers.JWTManager

	accounts *AccountService
	profiles *ProfileService
	links    *LinkService
	prefs    *PreferenceService
	waitlist *WaitlistService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := memory.NewStore()
	h := &harness{
		store:   st,
		mail:    &fakeNotifier{},
		storage: &fakeStorage{},
		index:   newFakeIndexer(),
		jwt:     helpers.NewJWTManager("test-secret-test-secret-test-secret", time.Hour),
	}
	users, profiles, links, prefs, waitlist := st.Repositories()
	h.accounts = NewAccountService(users, profiles, prefs, h.mail, h.jwt, h.index, nil, nil, bcrypt.MinCost)
	h.profiles = NewProfileService(profiles, links, prefs, h.storage, h.index, nil)
	h.links = NewLinkService(profiles, links, h.storage, nil, nil)
	h.prefs = NewPreferenceService(profiles, prefs)
	h.waitlist = NewWaitlistService(waitlist)
	return h
}

// signup registers and verifies an account, returning its session.
func (h *harness) signup(t *testing.T, email string) *Session {
	t.Helper()
	ctx := context.Background()
	_, err := h.accounts.Register(ctx, RegisterInput{Email: email, Name: "Test", Password: testPassword, PasswordConfirm: testPassword})
	require.NoError(t, err)
	sess, err := h.accounts.VerifyEmail(ctx, h.mail.last("verify"))
	require.NoError(t, err)
	return sess
}

// authenticate replays a session token through the gate.
func (h *harness) authenticate(t *testing.T, token string) (*entity.User, error) {
	t.Helper()
	claims, err := h.jwt.Parse(token)
	require.NoError(t, err)
	return h.accounts.Authenticate(context.Background(), claims.UserID, claims.IssuedAt.Time, claims.PasswordVersion)
}

func (h *harness) link(t *testing.T, userID, title, url string) *entity.Link {
	t.Helper()
	l, err := h.links.CreateLink(context.Background(), userID, CreateLinkInput{Title: title, URL: url, Platform: "WEBSITE"})
	require.NoError(t, err)
	return l
}
