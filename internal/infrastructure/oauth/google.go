package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/abiosite/abio-api/internal/application"
)

const defaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// ErrNoEmail is returned when the provider did not share an email address.
var ErrNoEmail = errors.New("google account has no email address")

// Google runs the authorization code flow against Google and resolves the
// signed-in account to an application.Identity.
type Google struct {
	Config      *oauth2.Config
	UserInfoURL string
}

func NewGoogle(clientID, clientSecret, callbackURL string) *Google {
	return &Google{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		UserInfoURL: defaultUserInfoURL,
	}
}

// AuthCodeURL is where the browser is sent to start the login.
func (g *Google) AuthCodeURL(state string) string {
	return g.Config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

type userInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Exchange trades the callback code for a token and fetches the profile.
func (g *Google) Exchange(ctx context.Context, code string) (*application.Identity, error) {
	tok, err := g.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	res, err := g.Config.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: status %d", res.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Email == "" {
		return nil, ErrNoEmail
	}
	return &application.Identity{
		Provider:      "google",
		Subject:       info.Sub,
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		Name:          info.Name,
		Picture:       info.Picture,
	}, nil
}
