package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/kbm-attendance-api/internal/models"
	appErrors "github.com/noah-isme/kbm-attendance-api/pkg/errors"
)

type authUserRepository interface {
	FindByUsernameAndRole(ctx context.Context, username string, role models.UserRole) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// AuthService provides authentication use cases.
type AuthService struct {
	repo      authUserRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	return &AuthService{repo: repo, validator: validate, logger: logger, config: config, now: time.Now}
}

// Login authenticates a user by username, password and role. Wrong credentials, unknown accounts
// and inactive accounts all yield a nil result without an error.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}

	user, err := s.repo.FindByUsernameAndRole(ctx, req.Username, req.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Info("login rejected", zap.String("username", req.Username), zap.String("reason", "unknown"))
			return nil, nil
		}
		return nil, internalError(err, "failed to fetch user")
	}
	if !user.Active {
		s.logger.Info("login rejected", zap.String("username", req.Username), zap.String("reason", "inactive"))
		return nil, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("login rejected", zap.String("username", req.Username), zap.String("reason", "credentials"))
		return nil, nil
	}

	issuedAt := s.now().UTC()
	token, err := s.generateAccessToken(user, issuedAt)
	if err != nil {
		return nil, internalError(err, "failed to create access token")
	}

	return &models.LoginResult{
		User:        *user,
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
	}, nil
}

// CurrentUser returns the active account behind id.
func (s *AuthService) CurrentUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, internalError(err, "failed to load user")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return user, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.AccessTokenSecret), nil
	}, options...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) generateAccessToken(user *models.User, issuedAt time.Time) (string, error) {
	if s.config.AccessTokenSecret == "" {
		return "", fmt.Errorf("access token secret is not configured")
	}
	claims := models.JWTClaims{
		UserID:   user.ID,
		Role:     user.Role,
		Username: user.Username,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}
