package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/harukisan/fixed-points-backend/internal/domain"
	"github.com/harukisan/fixed-points-backend/internal/repository/postgres"
	"github.com/harukisan/fixed-points-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func timeNowPlusHour() time.Time {
	return time.Now().Add(time.Hour)
}

func TestAuthTokenRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	token := &domain.AuthToken{
		UserID:    user.ID,
		TokenHash: "abc123",
		ExpiresAt: timeNowPlusHour(),
	}
	require.NoError(t, repos.AuthToken.Create(ctx, token))

	got, err := repos.AuthToken.GetByTokenHash(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)

	_, err = repos.AuthToken.GetByTokenHash(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The hash column is unique; the same refresh token cannot be recorded
	// twice.
	err = repos.AuthToken.Create(ctx, &domain.AuthToken{
		UserID:    user.ID,
		TokenHash: "abc123",
		ExpiresAt: timeNowPlusHour(),
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestAuthTokenRepository_Delete(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	for _, hash := range []string{"h1", "h2"} {
		require.NoError(t, repos.AuthToken.Create(ctx, &domain.AuthToken{
			UserID:    user.ID,
			TokenHash: hash,
			ExpiresAt: timeNowPlusHour(),
		}))
	}
	require.NoError(t, repos.AuthToken.Create(ctx, &domain.AuthToken{
		UserID:    other.ID,
		TokenHash: "other1",
		ExpiresAt: timeNowPlusHour(),
	}))

	t.Run("by token hash", func(t *testing.T) {
		require.NoError(t, repos.AuthToken.DeleteByTokenHash(ctx, "h1"))
		_, err := repos.AuthToken.GetByTokenHash(ctx, "h1")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("by user id leaves other users alone", func(t *testing.T) {
		require.NoError(t, repos.AuthToken.DeleteByUserID(ctx, user.ID))

		_, err := repos.AuthToken.GetByTokenHash(ctx, "h2")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		_, err = repos.AuthToken.GetByTokenHash(ctx, "other1")
		require.NoError(t, err)
	})
}

func TestAuthTokenRepository_DeleteExpired(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	require.NoError(t, repos.AuthToken.Create(ctx, &domain.AuthToken{
		UserID:    user.ID,
		TokenHash: "stale",
		ExpiresAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, repos.AuthToken.Create(ctx, &domain.AuthToken{
		UserID:    user.ID,
		TokenHash: "fresh",
		ExpiresAt: timeNowPlusHour(),
	}))

	deleted, err := repos.AuthToken.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repos.AuthToken.GetByTokenHash(ctx, "stale")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repos.AuthToken.GetByTokenHash(ctx, "fresh")
	require.NoError(t, err)
}
