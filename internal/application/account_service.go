package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abiosite/abio-api/internal/domain/entity"
	repo "github.com/abiosite/abio-api/internal/domain/repository"
	"github.com/abiosite/abio-api/pkg/helpers"
)

// CodeTTL bounds both the verification OTP and the password reset code.
const CodeTTL = 10 * time.Minute

// AccountService runs the account lifecycle: register, verify, authenticate,
// reset password and delete.
type AccountService struct {
	Users    repo.UserRepository
	Profiles repo.ProfileRepository
	Prefs    repo.PreferenceRepository
	Notifier Notifier
	Tokens   TokenIssuer
	Indexer  ProfileIndexer
	Metrics  Counters
	Logger   *logrus.Logger

	BcryptCost int
	now        func() time.Time
}

func NewAccountService(users repo.UserRepository, profiles repo.ProfileRepository, prefs repo.PreferenceRepository,
	notifier Notifier, tokens TokenIssuer, indexer ProfileIndexer, metrics Counters, logger *logrus.Logger, bcryptCost int) *AccountService {
	if metrics == nil {
		metrics = nopCounters{}
	}
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &AccountService{
		Users:      users,
		Profiles:   profiles,
		Prefs:      prefs,
		Notifier:   notifier,
		Tokens:     tokens,
		Indexer:    indexer,
		Metrics:    metrics,
		Logger:     logger,
		BcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// Session is an authenticated user plus the signed token to hand back.
type Session struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

type RegisterInput struct {
	Email           string
	Name            string
	Password        string
	PasswordConfirm string
}

// Identity is a user asserted by an external provider.
type Identity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func checkNewPassword(password, confirm string) error {
	if !helpers.ValidatePasswordStrength(password) {
		return ErrPasswordRules
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// newCode returns a one-time code and the hash and expiry to persist.
func (s *AccountService) newCode() (code, hash string, expires time.Time, err error) {
	code, err = helpers.GenOTPCode()
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("generate code: %w", err)
	}
	return code, helpers.HashToken(code), s.now().Add(CodeTTL), nil
}

func (s *AccountService) issue(u *entity.User) (*Session, error) {
	tok, exp, err := s.Tokens.Generate(u.ID, u.PasswordVersion)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{User: u, Token: tok, ExpiresAt: exp}, nil
}

// Register creates an unverified account with an empty profile and mails the OTP.
// Mail failures are logged; the account is kept.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if err := checkNewPassword(in.Password, in.PasswordConfirm); err != nil {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	code, codeHash, expires, err := s.newCode()
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	u := &entity.User{
		Email:                    email,
		Name:                     name,
		PasswordHash:             hash,
		EmailVerificationToken:   &codeHash,
		EmailVerificationExpires: &expires,
	}
	p := &entity.Profile{DisplayName: name, IsPublic: true, Goals: []string{}}
	if err := s.Users.CreateWithProfile(ctx, u, p); err != nil {
		if repo.IsConflict(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.Metrics.IncSignup()

	if err := s.Notifier.SendVerificationCode(ctx, u.Email, u.Name, code, CodeTTL); err != nil {
		s.Metrics.IncMailFailure("verify_email")
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("verification email not sent on signup")
	}
	return u, nil
}

// VerifyEmail consumes a verification code and signs the user in.
func (s *AccountService) VerifyEmail(ctx context.Context, code string) (*Session, error) {
	u, err := s.Users.GetByVerificationToken(ctx, helpers.HashToken(strings.TrimSpace(code)), s.now())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidOrExpiredToken
	}
	if err != nil {
		return nil, err
	}
	if err := s.Users.MarkEmailVerified(ctx, u.ID); err != nil {
		return nil, err
	}
	u.IsEmailVerified = true
	u.EmailVerificationToken = nil
	u.EmailVerificationExpires = nil
	if u.Profile == nil {
		if p, err := s.Profiles.GetByUserID(ctx, u.ID); err == nil {
			u.Profile = p
		}
	}
	return s.issue(u)
}

// ResendVerification replaces any pending code with a fresh one.
func (s *AccountService) ResendVerification(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNoUserWithEmail
	}
	if err != nil {
		return err
	}
	if u.IsEmailVerified {
		return ErrAlreadyVerified
	}
	code, codeHash, expires, err := s.newCode()
	if err != nil {
		return err
	}
	if err := s.Users.SetVerificationToken(ctx, u.ID, &codeHash, &expires); err != nil {
		return err
	}
	if err := s.Notifier.SendVerificationCode(ctx, u.Email, u.Name, code, CodeTTL); err != nil {
		s.Metrics.IncMailFailure("verify_email")
		return Wrap(ErrVerificationMail, err)
	}
	return nil
}

// Login checks credentials. Unknown email and wrong password fail identically.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if u == nil || !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		s.Metrics.IncLogin("bad_credentials")
		return nil, ErrIncorrectCredentials
	}
	if !u.IsEmailVerified {
		s.Metrics.IncLogin("unverified")
		return nil, ErrEmailNotVerified
	}
	s.Metrics.IncLogin("success")
	return s.issue(u)
}

// ForgotPassword mails a reset code. If the mail cannot be sent the code is
// discarded so no unusable token lingers.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNoUserWithEmail
	}
	if err != nil {
		return err
	}
	code, codeHash, expires, err := s.newCode()
	if err != nil {
		return err
	}
	if err := s.Users.SetResetToken(ctx, u.ID, &codeHash, &expires); err != nil {
		return err
	}
	if err := s.Notifier.SendPasswordReset(ctx, u.Email, u.Name, code, CodeTTL); err != nil {
		s.Metrics.IncMailFailure("forgot_password")
		if clearErr := s.Users.SetResetToken(ctx, u.ID, nil, nil); clearErr != nil {
			s.Logger.WithError(clearErr).WithField("user_id", u.ID).Error("clear reset token failed")
		}
		return Wrap(ErrResetMail, err)
	}
	return nil
}

// ResetPassword sets a new password using a reset code.
func (s *AccountService) ResetPassword(ctx context.Context, code, password, confirm string) error {
	if err := checkNewPassword(password, confirm); err != nil {
		return err
	}
	u, err := s.Users.GetByResetToken(ctx, helpers.HashToken(strings.TrimSpace(code)), s.now())
	if errors.Is(err, repo.ErrNotFound) {
		return ErrInvalidOrExpiredToken
	}
	if err != nil {
		return err
	}
	_, err = s.setPassword(ctx, u.ID, password)
	return err
}

// UpdatePassword changes the password of a signed-in user and returns a fresh session,
// since tokens issued before the change stop being accepted.
func (s *AccountService) UpdatePassword(ctx context.Context, userID, current, password, confirm string) (*Session, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if !u.HasPassword() {
		return nil, ErrNoPasswordSet
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, current) {
		return nil, ErrWrongCurrentPassword
	}
	if err := checkNewPassword(password, confirm); err != nil {
		return nil, err
	}
	version, err := s.setPassword(ctx, u.ID, password)
	if err != nil {
		return nil, err
	}
	u.PasswordVersion = version
	return s.issue(u)
}

// setPassword stores the new hash and returns the bumped password version.
func (s *AccountService) setPassword(ctx context.Context, userID, password string) (int, error) {
	hash, err := helpers.HashPassword(password, s.BcryptCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	return s.Users.UpdatePassword(ctx, userID, hash, s.now())
}

// DeleteAccount removes the user after confirming the password. Profile,
// links and preferences go with it. Federated-only accounts must set a
// password through the reset flow first.
func (s *AccountService) DeleteAccount(ctx context.Context, userID, password string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if !u.HasPassword() {
		return ErrNoPasswordSet
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return ErrIncorrectPassword
	}
	var profileID string
	if p, err := s.Profiles.GetByUserID(ctx, userID); err == nil {
		profileID = p.ID
	}
	if err := s.Users.Delete(ctx, userID); err != nil {
		return err
	}
	if s.Indexer != nil && profileID != "" {
		if err := s.Indexer.Remove(ctx, profileID); err != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("remove profile from search index failed")
		}
	}
	return nil
}

// Authenticate resolves the user a session token was issued to. Tokens signed
// before the last password change are refused.
func (s *AccountService) Authenticate(ctx context.Context, userID string, issuedAt time.Time, passwordVersion int) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserGone
	}
	if err != nil {
		return nil, err
	}
	if u.ChangedPasswordAfter(issuedAt, passwordVersion) {
		return nil, ErrPasswordChangedJWT
	}
	if p, err := s.Profiles.GetByUserID(ctx, u.ID); err == nil {
		u.Profile = p
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	return u, nil
}

// CurrentUser returns the user with profile and display preferences.
func (s *AccountService) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	p, err := s.Profiles.GetByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return u, nil
	}
	if err != nil {
		return nil, err
	}
	if d, err := s.Prefs.GetByProfileID(ctx, p.ID); err == nil {
		p.Preferences = d
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	u.Profile = p
	return u, nil
}

// LoginWithIdentity signs in a federated user: by provider id, then by
// email (linking the account), else a new verified account is created.
func (s *AccountService) LoginWithIdentity(ctx context.Context, id Identity) (*Session, error) {
	if id.Subject == "" || id.Email == "" {
		return nil, ValidationError("The identity provider did not return an email address")
	}
	u, err := s.Users.GetByGoogleID(ctx, id.Subject)
	if err == nil {
		return s.issue(u)
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	email := normalizeEmail(id.Email)
	u, err = s.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !id.EmailVerified {
			return nil, ErrEmailTaken
		}
		if err := s.Users.LinkGoogleID(ctx, u.ID, id.Subject); err != nil {
			return nil, err
		}
		u.GoogleID = &id.Subject
		u.IsEmailVerified = true
		return s.issue(u)
	case !errors.Is(err, repo.ErrNotFound):
		return nil, err
	}

	subject := id.Subject
	u = &entity.User{Email: email, Name: strings.TrimSpace(id.Name), IsEmailVerified: true, GoogleID: &subject}
	p := &entity.Profile{DisplayName: u.Name, AvatarURL: id.Picture, IsPublic: true, Goals: []string{}}
	if err := s.Users.CreateWithProfile(ctx, u, p); err != nil {
		if repo.IsConflict(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.Metrics.IncSignup()
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "provider": id.Provider}).Info("account created from identity provider")
	return s.issue(u)
}
