package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abiosite/abio-api/internal/domain/entity"
	"github.com/abiosite/abio-api/internal/domain/repository"
)

var profileCols = []string{"id", "user_id", "username", "display_name", "bio", "location", "goals",
	"avatar_url", "is_public", "created_at", "updated_at"}

func TestProfileRepository_GetByUsername(t *testing.T) {
	mock := newMock(t)
	r := NewProfileRepository(mock)
	now := time.Now()
	name := "alice"

	mock.ExpectQuery(q("FROM profiles WHERE username = $1")).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows(profileCols).
			AddRow("p1", "u1", &name, "Alice", "", "", []string{"grow"}, "", true, now, now))

	p, err := r.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, p.Username)
	assert.Equal(t, "alice", *p.Username)
	assert.Equal(t, []string{"grow"}, p.Goals)
}

func TestProfileRepository_Update_CompletesOnboarding(t *testing.T) {
	mock := newMock(t)
	r := NewProfileRepository(mock)
	name := "alice"
	p := &entity.Profile{ID: "p1", UserID: "u1", Username: &name, Goals: []string{"grow"}, IsPublic: true}

	mock.ExpectBegin()
	mock.ExpectQuery(q("UPDATE profiles")).
		WithArgs("p1", &name, "", "", "", []string{"grow"}, "", true).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
	mock.ExpectExec(q("UPDATE users SET onboarding_completed = TRUE")).
		WithArgs("u1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	require.NoError(t, r.Update(context.Background(), p, true))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_Update_UsernameConflict(t *testing.T) {
	mock := newMock(t)
	r := NewProfileRepository(mock)
	name := "taken"

	mock.ExpectBegin()
	mock.ExpectQuery(q("UPDATE profiles")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "profiles_username_key"})
	mock.ExpectRollback()

	err := r.Update(context.Background(), &entity.Profile{ID: "p1", Username: &name}, false)
	require.True(t, repository.IsConflict(err))
	assert.Equal(t, "A profile with this username already exists.", err.Error())
}

func TestProfileRepository_UsernameTaken(t *testing.T) {
	mock := newMock(t)
	r := NewProfileRepository(mock)

	mock.ExpectQuery(q("SELECT EXISTS (SELECT 1 FROM profiles WHERE username = $1")).
		WithArgs("alice", "").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	taken, err := r.UsernameTaken(context.Background(), "alice", "")
	require.NoError(t, err)
	assert.True(t, taken)
}

var prefCols = []string{"id", "profile_id", "user_id", "wallpaper_config", "font_config", "corner_config",
	"selected_theme", "created_at", "updated_at"}

func TestPreferenceRepository_MergeWallpaper(t *testing.T) {
	mock := newMock(t)
	r := NewPreferenceRepository(mock)
	now := time.Now()

	mock.ExpectQuery(q("display_preferences.wallpaper_config || EXCLUDED.wallpaper_config")).
		WithArgs("p1", "u1", []byte(`{"backgroundColor":"#000"}`)).
		WillReturnRows(pgxmock.NewRows(prefCols).AddRow("d1", "p1", "u1",
			[]byte(`{"type":"fill","backgroundColor":"#000"}`), []byte(`{}`), []byte(`{}`), (*string)(nil), now, now))

	d, err := r.MergeWallpaper(context.Background(), "p1", "u1",
		entity.WallpaperConfig{BackgroundColor: &entity.BackgroundColor{Solid: "#000"}})
	require.NoError(t, err)
	assert.Equal(t, "fill", d.WallpaperConfig.Type)
	assert.Equal(t, "#000", d.WallpaperConfig.BackgroundColor.Solid)
	assert.Nil(t, d.SelectedTheme)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepository_ReplaceFont(t *testing.T) {
	mock := newMock(t)
	r := NewPreferenceRepository(mock)
	now := time.Now()

	mock.ExpectQuery(q("SET font_config = EXCLUDED.font_config")).
		WithArgs("p1", "u1", []byte(`{"name":"Inter","fillColor":"#fff"}`)).
		WillReturnRows(pgxmock.NewRows(prefCols).AddRow("d1", "p1", "u1",
			[]byte(`{}`), []byte(`{"name":"Inter","fillColor":"#fff"}`), []byte(`{}`), (*string)(nil), now, now))

	d, err := r.ReplaceFont(context.Background(), "p1", "u1", entity.FontConfig{Name: "Inter", FillColor: "#fff"})
	require.NoError(t, err)
	assert.Equal(t, "Inter", d.FontConfig.Name)
}

func TestPreferenceRepository_GetOrCreate(t *testing.T) {
	mock := newMock(t)
	r := NewPreferenceRepository(mock)
	now := time.Now()

	mock.ExpectQuery(q("ON CONFLICT (profile_id) DO UPDATE SET profile_id = EXCLUDED.profile_id")).
		WithArgs("p1", "u1").
		WillReturnRows(pgxmock.NewRows(prefCols).AddRow("d1", "p1", "u1",
			[]byte(`{}`), []byte(`{}`), []byte(`{}`), (*string)(nil), now, now))

	d, err := r.GetOrCreate(context.Background(), "p1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "d1", d.ID)
	assert.Nil(t, d.WallpaperConfig.BackgroundColor)
}

func TestWaitlistRepository_Create_Duplicate(t *testing.T) {
	mock := newMock(t)
	r := NewWaitlistRepository(mock)

	mock.ExpectQuery(q("INSERT INTO waitlist")).
		WithArgs("Ann", "ann@x.com").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "waitlist_email_key"})

	err := r.Create(context.Background(), &entity.WaitlistEntry{Name: "Ann", Email: "ann@x.com"})
	require.True(t, repository.IsConflict(err))
}

func TestWaitlistRepository_List(t *testing.T) {
	mock := newMock(t)
	r := NewWaitlistRepository(mock)
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q("SELECT id, name, email, created_at FROM waitlist ORDER BY created_at, id")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "created_at"}).
			AddRow("w1", "Ann", "ann@x.com", at).
			AddRow("w2", "Bob", "bob@x.com", at.Add(time.Minute)))

	entries, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ann@x.com", entries[0].Email)
	assert.Equal(t, at.Add(time.Minute), entries[1].CreatedAt)

	mock.ExpectQuery(q("FROM waitlist")).WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "created_at"}))
	entries, err = r.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
