package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kbm-attendance-api/internal/middleware"
	"github.com/noah-isme/kbm-attendance-api/internal/models"
	appErrors "github.com/noah-isme/kbm-attendance-api/pkg/errors"
	"github.com/noah-isme/kbm-attendance-api/pkg/response"
)

// requireClaims returns the caller's claims or writes 401 and returns nil.
func requireClaims(c *gin.Context) *models.JWTClaims {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil
	}
	return claims
}

func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

// optionalIntQuery parses an integer query parameter; a missing parameter yields nil.
func optionalIntQuery(c *gin.Context, key string) (*int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, key+" must be an integer")
	}
	return &value, nil
}

func deleted(c *gin.Context, ok bool, notFound string) {
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, notFound))
		return
	}
	response.NoContent(c)
}
