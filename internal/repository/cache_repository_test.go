package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/kbm-attendance-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]int
	err := repo.Get(ctx, "statistics:summary", &dest)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "statistics:summary", map[string]int{"present": 1}, time.Minute))

	removed, err := repo.DeleteByPattern(ctx, "statistics:*")
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.NoError(t, repo.Ping(ctx))
}
