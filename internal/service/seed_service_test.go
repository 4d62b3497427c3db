package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/kbm-attendance-api/internal/models"
)

type fakeSeedRepo struct {
	existing map[string]bool
	created  []*models.User
}

func (f *fakeSeedRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return f.existing[username], nil
}

func (f *fakeSeedRepo) Create(ctx context.Context, user *models.User) error {
	f.created = append(f.created, user)
	return nil
}

func TestSeedServiceCreatesMissingAccounts(t *testing.T) {
	repo := &fakeSeedRepo{existing: map[string]bool{"koordinator": true}}
	svc := NewSeedService(repo, nil)

	created, err := svc.SeedDefaultUsers(context.Background(), []SeedAccount{
		{Username: "guru0001", Password: "guru123", FullName: "Guru", Role: models.RoleTeacher},
		{Username: "koordinator", Password: "koor123", FullName: "Koordinator", Role: models.RoleCoordinator},
		{Username: "kosong", FullName: "No Password", Role: models.RoleTeacher},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	require.Len(t, repo.created, 1)

	user := repo.created[0]
	assert.Equal(t, "guru0001", user.Username)
	assert.True(t, user.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("guru123")))
}
