package handlers

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/abiosite/abio-api/internal/application"
	"github.com/abiosite/abio-api/pkg/helpers"
	"github.com/abiosite/abio-api/pkg/response"
)

const oauthStateCookie = "oauth_state"

// IdentityProvider is an OAuth 2.0 authorization code flow.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*application.Identity, error)
}

type OAuthHandler struct {
	Provider    IdentityProvider
	Accounts    *application.AccountService
	Cookies     *helpers.Manager
	FrontendURL string
	Logger      *logrus.Logger
}

func NewOAuthHandler(p IdentityProvider, accounts *application.AccountService, cookies *helpers.Manager, frontendURL string, logger *logrus.Logger) *OAuthHandler {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &OAuthHandler{Provider: p, Accounts: accounts, Cookies: cookies, FrontendURL: frontendURL, Logger: logger}
}

func newState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Start GET /api/v1/auth/google
func (h *OAuthHandler) Start(c *gin.Context) {
	state, err := newState()
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", h.Cookies.Domain, h.Cookies.Production, true)
	c.Redirect(http.StatusFound, h.Provider.AuthCodeURL(state))
}

// Callback GET /api/v1/auth/google/callback
func (h *OAuthHandler) Callback(c *gin.Context) {
	want, _ := c.Cookie(oauthStateCookie)
	c.SetCookie(oauthStateCookie, "", -1, "/", h.Cookies.Domain, h.Cookies.Production, true)

	got := c.Query("state")
	if want == "" || subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		response.Error(c, http.StatusBadRequest, "Invalid OAuth state", nil)
		return
	}
	if e := c.Query("error"); e != "" {
		h.redirectFrontend(c, "/login", url.Values{"error": {e}})
		return
	}
	code := c.Query("code")
	if code == "" {
		response.Error(c, http.StatusBadRequest, "Missing authorization code", nil)
		return
	}

	id, err := h.Provider.Exchange(c.Request.Context(), code)
	if err != nil {
		h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Warn("oauth exchange failed")
		h.redirectFrontend(c, "/login", url.Values{"error": {"oauth_failed"}})
		return
	}
	s, err := h.Accounts.LoginWithIdentity(c.Request.Context(), *id)
	if err != nil {
		if ae, ok := application.AsAppError(err); ok && ae.Kind != application.KindInternal {
			h.redirectFrontend(c, "/login", url.Values{"error": {ae.Message}})
			return
		}
		respondError(c, h.Logger, err)
		return
	}
	h.Cookies.SetSession(c, s.Token)
	h.redirectFrontend(c, "/", nil)
}

func (h *OAuthHandler) redirectFrontend(c *gin.Context, path string, q url.Values) {
	target := h.FrontendURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	c.Redirect(http.StatusFound, target)
}
