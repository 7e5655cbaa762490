package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/abiosite/abio-api/internal/application"
	"github.com/abiosite/abio-api/internal/domain/entity"
	"github.com/abiosite/abio-api/pkg/helpers"
	"github.com/abiosite/abio-api/pkg/response"
)

const (
	CtxUserIDKey = "userID"
	CtxUserKey   = "user"
)

// SessionResolver loads the user a token was issued to.
type SessionResolver interface {
	Authenticate(ctx context.Context, userID string, issuedAt time.Time, passwordVersion int) (*entity.User, error)
}

func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if t := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); t != "" {
			return t
		}
	}
	if t, err := c.Cookie(helpers.AccessCookie); err == nil && t != "" {
		return t
	}
	return ""
}

// Authenticate accepts a bearer token or the access cookie and puts the
// resolved user into the gin context under "user" and its id under "userID".
func Authenticate(jwt *helpers.JWTManager, users SessionResolver, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c)
		if token == "" {
			abortWith(c, log, application.ErrNotLoggedIn)
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil {
			abortWith(c, log, application.ErrInvalidSession)
			return
		}
		u, err := users.Authenticate(c.Request.Context(), claims.UserID, claims.IssuedAt.Time, claims.PasswordVersion)
		if err != nil {
			abortWith(c, log, err)
			return
		}
		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUserKey, u)
		c.Next()
	}
}

// CurrentUser returns the user set by Authenticate.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok
}

func abortWith(c *gin.Context, log *logrus.Logger, err error) {
	if ae, ok := application.AsAppError(err); ok {
		response.Error(c, ae.Kind.HTTPStatus(), ae.Message, nil)
		return
	}
	if log != nil {
		log.WithError(err).WithField("request_id", c.GetString("request_id")).Error("session lookup failed")
	}
	response.Error(c, http.StatusInternalServerError, "Something went wrong!", nil)
}
