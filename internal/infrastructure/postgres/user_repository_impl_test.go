package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abiosite/abio-api/internal/domain/entity"
	"github.com/abiosite/abio-api/internal/domain/repository"
)

var q = regexp.QuoteMeta

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

var userCols = []string{
	"id", "email", "name", "password_hash", "active", "is_email_verified",
	"email_verification_token", "email_verification_expires",
	"password_reset_token", "password_reset_expires", "password_changed_at", "password_version",
	"google_id", "onboarding_completed", "created_at", "updated_at",
}

func userRow(id, email string, verified bool) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(userCols).AddRow(
		id, email, "Alice", "hash", true, verified,
		(*string)(nil), (*time.Time)(nil),
		(*string)(nil), (*time.Time)(nil), (*time.Time)(nil), 0,
		(*string)(nil), false, now, now,
	)
}

func TestUserRepository_CreateWithProfile(t *testing.T) {
	mock := newMock(t)
	r := NewUserRepository(mock)
	ctx := context.Background()
	now := time.Now()
	tok := "tokenhash"
	exp := now.Add(10 * time.Minute)

	u := &entity.User{Email: "a@x.com", Name: "Alice", PasswordHash: "hash",
		EmailVerificationToken: &tok, EmailVerificationExpires: &exp}
	p := &entity.Profile{DisplayName: "Alice"}

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO users")).
		WithArgs("a@x.com", "Alice", "hash", false, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "active", "created_at", "updated_at"}).AddRow("u1", true, now, now))
	mock.ExpectQuery(q("INSERT INTO profiles")).
		WithArgs("u1", "Alice", "", false, []string{}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("p1", now, now))
	mock.ExpectCommit()

	require.NoError(t, r.CreateWithProfile(ctx, u, p))
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "u1", p.UserID)
	assert.Same(t, p, u.Profile)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateWithProfile_DuplicateEmail(t *testing.T) {
	mock := newMock(t)
	r := NewUserRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	mock.ExpectRollback()

	err := r.CreateWithProfile(context.Background(), &entity.User{Email: "a@x.com"}, &entity.Profile{})
	var ce *repository.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "A user with this email already exists.", ce.Error())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock := newMock(t)
	r := NewUserRepository(mock)
	ctx := context.Background()

	mock.ExpectQuery(q("FROM users WHERE email = $1")).
		WithArgs("a@x.com").
		WillReturnRows(userRow("u1", "a@x.com", true))
	u, err := r.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.True(t, u.IsEmailVerified)
	assert.Nil(t, u.PasswordChangedAt)

	mock.ExpectQuery(q("FROM users WHERE email = $1")).
		WithArgs("nobody@x.com").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByEmail(ctx, "nobody@x.com")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_GetByVerificationToken_RequiresUnexpired(t *testing.T) {
	mock := newMock(t)
	r := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(q("WHERE email_verification_token = $1 AND email_verification_expires > $2")).
		WithArgs("hash", now).
		WillReturnRows(userRow("u1", "a@x.com", false))
	u, err := r.GetByVerificationToken(context.Background(), "hash", now)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	mock := newMock(t)
	r := NewUserRepository(mock)
	ctx := context.Background()
	at := time.Now()

	mock.ExpectQuery(q("password_version = password_version + 1")).
		WithArgs("u1", "newhash", at).
		WillReturnRows(pgxmock.NewRows([]string{"password_version"}).AddRow(3))
	version, err := r.UpdatePassword(ctx, "u1", "newhash", at)
	require.NoError(t, err)
	assert.Equal(t, 3, version)

	mock.ExpectQuery(q("password_version = password_version + 1")).
		WithArgs("gone", "newhash", at).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.UpdatePassword(ctx, "gone", "newhash", at)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SetResetToken_Clear(t *testing.T) {
	mock := newMock(t)
	r := NewUserRepository(mock)

	mock.ExpectExec(q("SET password_reset_token = $2, password_reset_expires = $3")).
		WithArgs("u1", (*string)(nil), (*time.Time)(nil)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.SetResetToken(context.Background(), "u1", nil, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete(t *testing.T) {
	mock := newMock(t)
	r := NewUserRepository(mock)

	mock.ExpectExec(q("DELETE FROM users WHERE id = $1")).
		WithArgs("u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.Delete(context.Background(), "u1"))
}
