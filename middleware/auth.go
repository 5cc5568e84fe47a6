package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hyunw00/attendbot/config"
	"github.com/hyunw00/attendbot/utils"
)

// AdminAuth gates admin endpoints on a static bearer token. An empty
// configured token disables the endpoints entirely.
func AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := config.Get().AdminToken
		if token == "" {
			utils.Error(c, http.StatusForbidden, 40301, "admin endpoints disabled")
			c.Abort()
			return
		}

		header := c.GetHeader("Authorization")
		presented, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			utils.Error(c, http.StatusUnauthorized, 40102, "invalid admin token")
			c.Abort()
			return
		}
		c.Next()
	}
}
