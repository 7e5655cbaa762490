package application

import (
	"errors"
	"net/http"
)

// Kind classifies an AppError for translation to a transport status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBadRequest
	KindUnauthenticated
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// HTTPStatus maps the kind to its response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthenticated, KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// AppError is an error whose message is safe to show to the client.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches sentinels by kind and message so wrapped copies still compare equal.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Kind == e.Kind && t.Message == e.Message
}

func newError(kind Kind, msg string) *AppError { return &AppError{Kind: kind, Message: msg} }

// Wrap returns a copy of the sentinel carrying cause for logging.
func Wrap(sentinel *AppError, cause error) *AppError {
	return &AppError{Kind: sentinel.Kind, Message: sentinel.Message, Err: cause}
}

func ValidationError(msg string) *AppError { return newError(KindValidation, msg) }

func NotFound(msg string) *AppError { return newError(KindNotFound, msg) }

func Conflict(msg string) *AppError { return newError(KindConflict, msg) }

// AsAppError extracts an AppError from err.
func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

var (
	ErrEmailTaken            = newError(KindConflict, "A user with this email already exists.")
	ErrIncorrectCredentials  = newError(KindUnauthorized, "Incorrect email or password")
	ErrEmailNotVerified      = newError(KindForbidden, "Please verify your email address before logging in. Check your inbox for the verification code.")
	ErrInvalidOrExpiredToken = newError(KindBadRequest, "Token is invalid or has expired")
	ErrAlreadyVerified       = newError(KindBadRequest, "Email is already verified")
	ErrNoUserWithEmail       = newError(KindNotFound, "There is no user with that email address")
	ErrWrongCurrentPassword  = newError(KindUnauthorized, "Your current password is wrong")
	ErrIncorrectPassword     = newError(KindUnauthorized, "Incorrect password")
	ErrPasswordRules         = newError(KindValidation, "Password must include a letter, a number, and a special character")
	ErrPasswordMismatch      = newError(KindValidation, "Passwords do not match")
	ErrNoPasswordSet         = newError(KindValidation, "This account has no password yet. Set one with forgot password first.")
	ErrVerificationMail      = newError(KindInternal, "Failed to send verification email. Please try again later.")
	ErrResetMail             = newError(KindInternal, "There was an error sending the email. Try again later!")

	ErrNotLoggedIn        = newError(KindUnauthenticated, "You are not logged in! Please log in to get access.")
	ErrInvalidSession     = newError(KindUnauthenticated, "Invalid token. Please log in again!")
	ErrUserGone           = newError(KindUnauthenticated, "The user belonging to this token no longer exists.")
	ErrPasswordChangedJWT = newError(KindUnauthenticated, "User recently changed password! Please log in again.")

	ErrUserNotFound     = newError(KindNotFound, "User not found")
	ErrProfileNotFound  = newError(KindNotFound, "Profile not found")
	ErrUsernameTaken    = newError(KindConflict, "Username is already taken")
	ErrLinkNotFound     = newError(KindNotFound, "Link not found or you don't have permission")
	ErrDuplicateLinkURL = newError(KindConflict, "A link with this URL already exists on your profile.")
	ErrPlatformRequired = newError(KindValidation, "Platform is required when it cannot be detected from the URL")
	ErrClickLinkMissing = newError(KindNotFound, "Link not found")
	ErrReorderMismatch  = newError(KindBadRequest, "One or more links not found or don't belong to you")
	ErrInvalidGradient  = newError(KindValidation, "Each gradient stop needs a color and an amount between 0 and 1")
	ErrNotAnImage       = newError(KindValidation, "Only image files are allowed")
	ErrImageTooLarge    = newError(KindValidation, "Image must be 5MB or smaller")
	ErrUploadFailed     = newError(KindInternal, "Failed to upload image. Please try again later.")

	ErrWaitlistTaken = newError(KindConflict, "Email already registered on waitlist")
)
