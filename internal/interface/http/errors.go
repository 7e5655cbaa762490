package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/abiosite/abio-api/internal/application"
	repo "github.com/abiosite/abio-api/internal/domain/repository"
	"github.com/abiosite/abio-api/internal/interface/middleware"
	"github.com/abiosite/abio-api/pkg/response"
	"github.com/abiosite/abio-api/pkg/validation"
)

const msgInternal = "Something went wrong!"

// respondError is the single translation point from errors to envelopes.
// Unexpected errors are logged and answered with a generic message.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	if ae, ok := application.AsAppError(err); ok {
		if ae.Kind == application.KindInternal {
			logError(c, log, err)
		}
		response.Error(c, ae.Kind.HTTPStatus(), ae.Message, nil)
		return
	}

	var ce *repo.ConflictError
	if errors.As(err, &ce) {
		response.Error(c, http.StatusConflict, ce.Error(), nil)
		return
	}
	if errors.Is(err, repo.ErrNotFound) {
		response.Error(c, http.StatusNotFound, "Resource not found", nil)
		return
	}

	logError(c, log, err)
	response.Error(c, http.StatusInternalServerError, msgInternal, nil)
}

func logError(c *gin.Context, log *logrus.Logger, err error) {
	if log == nil {
		return
	}
	entry := log.WithError(err).WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	})
	if uid := c.GetString(middleware.CtxUserIDKey); uid != "" {
		entry = entry.WithField("user_id", uid)
	}
	entry.Error("request failed")
}

// bindJSON binds the body and answers 400 with the first violated rule.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		response.Error(c, http.StatusBadRequest, validation.FirstMessage(err), validation.ToDetails(err))
		return
	}
	response.Error(c, http.StatusBadRequest, validation.FirstMessage(err), nil)
}

func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.CtxUserIDKey)
}
