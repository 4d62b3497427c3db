package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username string   `json:"username" validate:"required"`
	Password string   `json:"password" validate:"required"`
	Role     UserRole `json:"role" validate:"required,oneof=teacher coordinator"`
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	User        User      `json:"user"`
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Username string   `json:"username"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}
