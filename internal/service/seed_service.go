package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/kbm-attendance-api/internal/models"
)

type seedUserRepository interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *models.User) error
}

// SeedAccount describes a default account created on startup.
type SeedAccount struct {
	Username string
	Password string
	FullName string
	Role     models.UserRole
}

// SeedService creates the default accounts of a fresh installation.
type SeedService struct {
	repo   seedUserRepository
	logger *zap.Logger
}

// NewSeedService constructs a SeedService.
func NewSeedService(repo seedUserRepository, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{repo: repo, logger: logger}
}

// SeedDefaultUsers creates every account whose username is not taken yet and returns the number
// created. Accounts without a password are skipped.
func (s *SeedService) SeedDefaultUsers(ctx context.Context, accounts []SeedAccount) (int, error) {
	created := 0
	for _, account := range accounts {
		username := strings.TrimSpace(account.Username)
		if username == "" || account.Password == "" {
			s.logger.Warn("seed account skipped", zap.String("username", username), zap.String("reason", "missing username or password"))
			continue
		}
		exists, err := s.repo.ExistsByUsername(ctx, username)
		if err != nil {
			return created, internalError(err, "failed to check seed account")
		}
		if exists {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
		if err != nil {
			return created, internalError(err, "failed to hash seed password")
		}
		user := &models.User{
			Username:     username,
			PasswordHash: string(hash),
			Role:         account.Role,
			FullName:     account.FullName,
			Active:       true,
		}
		if err := s.repo.Create(ctx, user); err != nil {
			return created, internalError(err, "failed to create seed account")
		}
		s.logger.Info("seed account created", zap.String("username", username), zap.String("role", string(account.Role)))
		created++
	}
	return created, nil
}
