package helpers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestValidatePasswordStrength(t *testing.T) {
	cases := map[string]bool{
		"Abc12345!":   true,
		"abc12345@":   true,
		"abcdefgh!":   false, // no digit
		"12345678!":   false, // no letter
		"Abc123456":   false, // no special
		"Ab1!":        false, // too short
		"pass word1#": true,
	}
	for pw, want := range cases {
		assert.Equal(t, want, ValidatePasswordStrength(pw), pw)
	}
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("Abc12345!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "Abc12345!", hash)
	assert.True(t, CompareHashAndPassword(hash, "Abc12345!"))
	assert.False(t, CompareHashAndPassword(hash, "wrong"))
	assert.False(t, CompareHashAndPassword("", "Abc12345!"))
}

func TestGenOTPCode(t *testing.T) {
	re := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 50; i++ {
		code, err := GenOTPCode()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
	}
}

func TestHashToken(t *testing.T) {
	h := HashToken("123456")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashToken("123456"))
	assert.NotEqual(t, h, HashToken("123457"))
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	tok, exp, err := m.Generate("user-1", 2)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 2*time.Second)

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, 2, claims.PasswordVersion)
	require.NotNil(t, claims.IssuedAt)

	_, err = NewJWTManager("other", time.Hour).Parse(tok)
	assert.Error(t, err)

	expired := NewJWTManager("secret", -time.Minute)
	old, _, err := expired.Generate("user-1", 2)
	require.NoError(t, err)
	_, err = m.Parse(old)
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Parse(unsigned)
	assert.Error(t, err)
}

func TestCookieManager(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	NewCookie("example.com", true, 24*time.Hour).SetSession(c, "tok")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 2)
	byName := map[string]*http.Cookie{}
	for _, ck := range cookies {
		byName[ck.Name] = ck
	}
	access := byName[AccessCookie]
	require.NotNil(t, access)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, http.SameSiteNoneMode, access.SameSite)
	assert.Equal(t, 86400, access.MaxAge)
	flag := byName[LoggedInCookie]
	require.NotNil(t, flag)
	assert.False(t, flag.HttpOnly)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	NewCookie("localhost", false, time.Hour).Clear(c)
	for _, ck := range w.Result().Cookies() {
		assert.False(t, ck.Secure)
		assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
		assert.True(t, ck.MaxAge < 0)
	}
}

func TestNewLogger_StampsAppFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("abio", "production")
	log.SetOutput(&buf)

	log.WithField("env", "override").Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abio", entry["app"])
	assert.Equal(t, "override", entry["env"])
	assert.Equal(t, "hello", entry["msg"])
}
