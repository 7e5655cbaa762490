package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Secret columns are tagged json:"-" so no response can carry them.
type User struct {
	ID                       string     `json:"id"`
	Email                    string     `json:"email"`
	Name                     string     `json:"name"`
	PasswordHash             string     `json:"-"`
	Active                   bool       `json:"active"`
	IsEmailVerified          bool       `json:"isEmailVerified"`
	EmailVerificationToken   *string    `json:"-"`
	EmailVerificationExpires *time.Time `json:"-"`
	PasswordResetToken       *string    `json:"-"`
	PasswordResetExpires     *time.Time `json:"-"`
	PasswordChangedAt        *time.Time `json:"-"`
	PasswordVersion          int        `json:"-"`
	GoogleID                 *string    `json:"-"`
	OnboardingCompleted      bool       `json:"onboardingCompleted"`
	CreatedAt                time.Time  `json:"createdAt"`
	UpdatedAt                time.Time  `json:"updatedAt"`

	Profile *Profile `json:"profile,omitempty"`
}

// HasPassword is false for accounts created through federated login only.
func (u *User) HasPassword() bool { return u.PasswordHash != "" }

// ChangedPasswordAfter reports whether the password changed after a token
// issued at iat for password version pwv was signed. iat carries no fraction,
// so a change within the same second is only caught by the version.
func (u *User) ChangedPasswordAfter(iat time.Time, pwv int) bool {
	if pwv != u.PasswordVersion {
		return true
	}
	if u.PasswordChangedAt == nil {
		return false
	}
	return iat.Before(u.PasswordChangedAt.Truncate(time.Second))
}
