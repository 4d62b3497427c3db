package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kbm-attendance-api/internal/models"
	appErrors "github.com/noah-isme/kbm-attendance-api/pkg/errors"
	"github.com/noah-isme/kbm-attendance-api/pkg/response"
)

// RequireRoles only lets requests through whose claims carry one of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return rbac("", roles)
}

// RequireRolesOrSelf additionally admits a user whose id equals the named path parameter.
func RequireRolesOrSelf(param string, roles ...models.UserRole) gin.HandlerFunc {
	return rbac(param, roles)
}

func rbac(selfParam string, roles []models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}
		if selfParam != "" && c.Param(selfParam) == claims.UserID {
			c.Next()
			return
		}
		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
