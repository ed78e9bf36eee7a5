package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rakapratama/go-admin-backend/pkg/helpers"
	"github.com/rakapratama/go-admin-backend/pkg/response"
)

// ServiceAuth guards machine-to-machine endpoints with a Bearer service
// token issued by JWTManager.
func ServiceAuth(jwtm *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Error[any](c, http.StatusUnauthorized, "missing bearer token", nil)
			c.Abort()
			return
		}
		claims, err := jwtm.ParseServiceToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid service token", nil)
			c.Abort()
			return
		}
		c.Set("service", claims.Service)
		c.Next()
	}
}
