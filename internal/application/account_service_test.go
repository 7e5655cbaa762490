package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abiosite/abio-api/pkg/helpers"
)

func register(h *harness, email, password, confirm string) error {
	_, err := h.accounts.Register(context.Background(), RegisterInput{Email: email, Name: "Alice", Password: password, PasswordConfirm: confirm})
	return err
}

func TestRegister_CreatesUnverifiedUserWithProfile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u, err := h.accounts.Register(ctx, RegisterInput{Email: " A@X.com ", Name: "Alice", Password: testPassword, PasswordConfirm: testPassword})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
	assert.False(t, u.IsEmailVerified)
	require.NotNil(t, u.Profile)
	assert.Equal(t, "Alice", u.Profile.DisplayName)
	assert.True(t, u.Profile.IsPublic)

	require.NotNil(t, h.store.ProfileByUser(u.ID))

	code := h.mail.last("verify")
	assert.Regexp(t, `^\d{6}$`, code)
	stored := h.store.Users[u.ID]
	require.NotNil(t, stored.EmailVerificationToken)
	assert.Equal(t, helpers.HashToken(code), *stored.EmailVerificationToken)
	assert.NotEqual(t, code, *stored.EmailVerificationToken)
	assert.WithinDuration(t, time.Now().Add(CodeTTL), *stored.EmailVerificationExpires, 5*time.Second)
	assert.NotEqual(t, testPassword, stored.PasswordHash)
}

func TestRegister_Rejections(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, register(h, "a@x.com", testPassword, testPassword))

	require.ErrorIs(t, register(h, "a@x.com", testPassword, testPassword), ErrEmailTaken)
	require.ErrorIs(t, register(h, "b@x.com", "abcdefgh1", "abcdefgh1"), ErrPasswordRules)
	require.ErrorIs(t, register(h, "b@x.com", "Ab1!", "Ab1!"), ErrPasswordRules)
	require.ErrorIs(t, register(h, "b@x.com", testPassword, "Abc12345?"), ErrPasswordMismatch)

	// an existing address is reported before the password rules
	require.ErrorIs(t, register(h, "A@x.com", "weak", "other"), ErrEmailTaken)
}

func TestRegister_MailFailureKeepsAccount(t *testing.T) {
	h := newHarness(t)
	h.mail.err = errors.New("smtp down")

	u, err := h.accounts.Register(context.Background(), RegisterInput{Email: "a@x.com", Name: "A", Password: testPassword, PasswordConfirm: testPassword})
	require.NoError(t, err)
	assert.Contains(t, h.store.Users, u.ID)
}

func TestVerifyEmail(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, register(h, "a@x.com", testPassword, testPassword))
	code := h.mail.last("verify")

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err := h.accounts.VerifyEmail(ctx, wrong)
	require.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	sess, err := h.accounts.VerifyEmail(ctx, code)
	require.NoError(t, err)
	assert.True(t, sess.User.IsEmailVerified)
	assert.NotEmpty(t, sess.Token)
	require.NotNil(t, sess.User.Profile)

	claims, err := h.jwt.Parse(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims.UserID)

	// codes are single use
	_, err = h.accounts.VerifyEmail(ctx, code)
	require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestVerifyEmail_Expired(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, register(h, "a@x.com", testPassword, testPassword))
	h.accounts.now = func() time.Time { return time.Now().Add(CodeTTL + time.Minute) }

	_, err := h.accounts.VerifyEmail(context.Background(), h.mail.last("verify"))
	require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestResendVerification(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.ErrorIs(t, h.accounts.ResendVerification(ctx, "nobody@x.com"), ErrNoUserWithEmail)

	require.NoError(t, register(h, "a@x.com", testPassword, testPassword))
	first := h.mail.last("verify")
	require.NoError(t, h.accounts.ResendVerification(ctx, "a@x.com"))
	second := h.mail.last("verify")
	if first != second {
		_, err := h.accounts.VerifyEmail(ctx, first)
		require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	}

	h.mail.err = errors.New("smtp down")
	err := h.accounts.ResendVerification(ctx, "a@x.com")
	require.ErrorIs(t, err, ErrVerificationMail)
	ae, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, KindInternal, ae.Kind)

	h.mail.err = nil
	require.NoError(t, h.accounts.ResendVerification(ctx, "a@x.com"))
	_, err = h.accounts.VerifyEmail(ctx, h.mail.last("verify"))
	require.NoError(t, err)
	require.ErrorIs(t, h.accounts.ResendVerification(ctx, "a@x.com"), ErrAlreadyVerified)
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, register(h, "a@x.com", testPassword, testPassword))

	_, err := h.accounts.Login(ctx, "a@x.com", testPassword)
	require.ErrorIs(t, err, ErrEmailNotVerified, "correct password but unverified is forbidden")

	_, err = h.accounts.Login(ctx, "a@x.com", "Wrong123!")
	require.ErrorIs(t, err, ErrIncorrectCredentials)
	_, err = h.accounts.Login(ctx, "nobody@x.com", testPassword)
	require.ErrorIs(t, err, ErrIncorrectCredentials)

	_, err = h.accounts.VerifyEmail(ctx, h.mail.last("verify"))
	require.NoError(t, err)
	sess, err := h.accounts.Login(ctx, "A@x.com", testPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
}

func TestForgotPassword_MailFailureDiscardsCode(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sess := h.signup(t, "a@x.com")

	require.ErrorIs(t, h.accounts.ForgotPassword(ctx, "nobody@x.com"), ErrNoUserWithEmail)

	h.mail.err = errors.New("smtp down")
	require.ErrorIs(t, h.accounts.ForgotPassword(ctx, "a@x.com"), ErrResetMail)
	stored := h.store.Users[sess.User.ID]
	assert.Nil(t, stored.PasswordResetToken)
	assert.Nil(t, stored.PasswordResetExpires)
}

func TestResetPassword(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signup(t, "a@x.com")

	require.NoError(t, h.accounts.ForgotPassword(ctx, "a@x.com"))
	code := h.mail.last("reset")
	require.Regexp(t, `^\d{6}$`, code)

	require.ErrorIs(t, h.accounts.ResetPassword(ctx, code, "weakpassword", "weakpassword"), ErrPasswordRules)
	require.NoError(t, h.accounts.ResetPassword(ctx, code, "NewPass#1", "NewPass#1"))
	require.ErrorIs(t, h.accounts.ResetPassword(ctx, code, "NewPass#2", "NewPass#2"), ErrInvalidOrExpiredToken)

	_, err := h.accounts.Login(ctx, "a@x.com", testPassword)
	require.ErrorIs(t, err, ErrIncorrectCredentials)
	_, err = h.accounts.Login(ctx, "a@x.com", "NewPass#1")
	require.NoError(t, err)
}

func TestUpdatePassword_InvalidatesOlderTokens(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sess := h.signup(t, "a@x.com")
	_, err := h.authenticate(t, sess.Token)
	require.NoError(t, err)

	_, err = h.accounts.UpdatePassword(ctx, sess.User.ID, "Wrong123!", "NewPass#1", "NewPass#1")
	require.ErrorIs(t, err, ErrWrongCurrentPassword)

	fresh, err := h.accounts.UpdatePassword(ctx, sess.User.ID, testPassword, "NewPass#1", "NewPass#1")
	require.NoError(t, err)

	// the token from signup was issued moments ago, usually within the same second
	_, err = h.authenticate(t, sess.Token)
	require.ErrorIs(t, err, ErrPasswordChangedJWT)

	u, err := h.authenticate(t, fresh.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, u.ID)
}

func TestResetPassword_InvalidatesOlderTokens(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sess := h.signup(t, "a@x.com")

	require.NoError(t, h.accounts.ForgotPassword(ctx, "a@x.com"))
	require.NoError(t, h.accounts.ResetPassword(ctx, h.mail.last("reset"), "NewPass#1", "NewPass#1"))

	_, err := h.authenticate(t, sess.Token)
	require.ErrorIs(t, err, ErrPasswordChangedJWT)

	again, err := h.accounts.Login(ctx, "a@x.com", "NewPass#1")
	require.NoError(t, err)
	_, err = h.authenticate(t, again.Token)
	require.NoError(t, err)
}

func TestAuthenticate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sess := h.signup(t, "a@x.com")

	u, err := h.authenticate(t, sess.Token)
	require.NoError(t, err)
	require.NotNil(t, u.Profile)

	_, err = h.accounts.Authenticate(ctx, "00000000-0000-0000-0000-000000000000", time.Now(), 0)
	require.ErrorIs(t, err, ErrUserGone)

	changed := time.Now().Add(2 * time.Second)
	h.store.Users[sess.User.ID].PasswordChangedAt = &changed
	_, err = h.accounts.Authenticate(ctx, sess.User.ID, time.Now(), 0)
	require.ErrorIs(t, err, ErrPasswordChangedJWT)
}

func TestDeleteAccount_Cascades(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sess := h.signup(t, "a@x.com")
	h.link(t, sess.User.ID, "Blog", "https://blog.example.com")
	profileID := sess.User.Profile.ID

	require.ErrorIs(t, h.accounts.DeleteAccount(ctx, sess.User.ID, "Wrong123!"), ErrIncorrectPassword)
	require.NoError(t, h.accounts.DeleteAccount(ctx, sess.User.ID, testPassword))

	assert.Empty(t, h.store.Users)
	assert.Empty(t, h.store.Profiles)
	assert.Empty(t, h.store.Links)
	assert.Contains(t, h.index.removed, profileID)

	_, err := h.accounts.Authenticate(ctx, sess.User.ID, time.Now(), 0)
	require.ErrorIs(t, err, ErrUserGone)
}

func TestCurrentUser_IncludesPreferences(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sess := h.signup(t, "a@x.com")

	u, err := h.accounts.CurrentUser(ctx, sess.User.ID)
	require.NoError(t, err)
	require.NotNil(t, u.Profile)
	assert.Nil(t, u.Profile.Preferences)

	_, err = h.prefs.GetPreferences(ctx, sess.User.ID)
	require.NoError(t, err)
	u, err = h.accounts.CurrentUser(ctx, sess.User.ID)
	require.NoError(t, err)
	assert.NotNil(t, u.Profile.Preferences)
}

func TestLoginWithIdentity(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	id := Identity{Provider: "google", Subject: "g-1", Email: "new@x.com", EmailVerified: true, Name: "New", Picture: "https://img/p.png"}
	sess, err := h.accounts.LoginWithIdentity(ctx, id)
	require.NoError(t, err)
	assert.True(t, sess.User.IsEmailVerified)
	assert.False(t, sess.User.HasPassword())
	p := h.store.ProfileByUser(sess.User.ID)
	require.NotNil(t, p)
	assert.Equal(t, "https://img/p.png", p.AvatarURL)

	again, err := h.accounts.LoginWithIdentity(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, again.User.ID)

	// federated-only accounts cannot use password login
	_, err = h.accounts.Login(ctx, "new@x.com", "")
	require.ErrorIs(t, err, ErrIncorrectCredentials)
}

func TestFederatedAccount_NeedsPasswordFirst(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sess, err := h.accounts.LoginWithIdentity(ctx, Identity{Provider: "google", Subject: "g-9", Email: "fed@x.com", EmailVerified: true})
	require.NoError(t, err)

	_, err = h.accounts.UpdatePassword(ctx, sess.User.ID, "", "NewPass#1", "NewPass#1")
	require.ErrorIs(t, err, ErrNoPasswordSet)
	require.ErrorIs(t, h.accounts.DeleteAccount(ctx, sess.User.ID, ""), ErrNoPasswordSet)
	assert.Contains(t, h.store.Users, sess.User.ID)

	require.NoError(t, h.accounts.ForgotPassword(ctx, "fed@x.com"))
	require.NoError(t, h.accounts.ResetPassword(ctx, h.mail.last("reset"), "NewPass#1", "NewPass#1"))
	require.NoError(t, h.accounts.DeleteAccount(ctx, sess.User.ID, "NewPass#1"))
	assert.NotContains(t, h.store.Users, sess.User.ID)
}

func TestLoginWithIdentity_LinksExistingAccount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, register(h, "a@x.com", testPassword, testPassword))

	_, err := h.accounts.LoginWithIdentity(ctx, Identity{Subject: "g-2", Email: "a@x.com", EmailVerified: false})
	require.ErrorIs(t, err, ErrEmailTaken)

	sess, err := h.accounts.LoginWithIdentity(ctx, Identity{Subject: "g-2", Email: "a@x.com", EmailVerified: true})
	require.NoError(t, err)
	assert.True(t, sess.User.IsEmailVerified)
	stored := h.store.Users[sess.User.ID]
	require.NotNil(t, stored.GoogleID)
	assert.Equal(t, "g-2", *stored.GoogleID)
	assert.True(t, stored.IsEmailVerified)
}
