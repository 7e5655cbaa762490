package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse[T any] struct {
	Message    string    `json:"message"`
	Success    bool      `json:"success"`
	Data       T         `json:"data"`
	StatusCode int       `json:"statusCode"`
	RequestID  string    `json:"requestId"`
	Timestamp  time.Time `json:"timestamp"`
	Errors     any       `json:"errors,omitempty"`
}

// Success writes a successful envelope and returns it.
func Success[T any](ctx *gin.Context, status int, data T, message string) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	res := APIResponse[T]{
		Message:    message,
		Success:    true,
		Data:       data,
		StatusCode: status,
		RequestID:  ctx.GetString("request_id"),
		Timestamp:  time.Now().UTC(),
	}
	ctx.JSON(status, res)
	return res
}

// Error writes a failure envelope with data set to null and aborts the chain.
func Error(ctx *gin.Context, status int, message string, errs any) APIResponse[any] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	res := APIResponse[any]{
		Message:    message,
		Success:    false,
		StatusCode: status,
		RequestID:  ctx.GetString("request_id"),
		Timestamp:  time.Now().UTC(),
		Errors:     errs,
	}
	ctx.AbortWithStatusJSON(status, res)
	return res
}
