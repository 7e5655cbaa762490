package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abiosite/abio-api/pkg/response"
)

// OperatorKeyHeader carries the shared key for operator-only routes.
const OperatorKeyHeader = "X-Operator-Key"

// RequireOperatorKey admits requests whose X-Operator-Key matches key. An
// empty key refuses everything.
func RequireOperatorKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(OperatorKeyHeader)
		if got == "" {
			response.Error(c, http.StatusUnauthorized, "Operator key required", nil)
			return
		}
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			response.Error(c, http.StatusForbidden, "You do not have permission to perform this action", nil)
			return
		}
		c.Next()
	}
}
