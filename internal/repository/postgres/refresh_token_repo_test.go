package postgres_test

import (
	"context"
	"testing"

	"github.com/ayria/accounts-api/internal/domain"
	"github.com/ayria/accounts-api/internal/repository/postgres"
	"github.com/ayria/accounts-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRefreshTokenRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewRefreshTokenRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	token := &domain.RefreshToken{
		UserID:   user.ID,
		Token:    "opaque-refresh-token",
		IsActive: true,
	}
	require.NoError(t, repo.Create(ctx, token))
	assert.NotZero(t, token.ID)

	byToken, err := repo.GetByToken(ctx, "opaque-refresh-token")
	require.NoError(t, err)
	assert.Equal(t, token.ID, byToken.ID)
	assert.Equal(t, user.ID, byToken.UserID)

	byID, err := repo.GetByID(ctx, token.ID)
	require.NoError(t, err)
	assert.Equal(t, "opaque-refresh-token", byID.Token)

	_, err = repo.GetByToken(ctx, "unknown")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Duplicate token strings violate the unique constraint
	err = repo.Create(ctx, &domain.RefreshToken{UserID: user.ID, Token: "opaque-refresh-token", IsActive: true})
	assert.Error(t, err)
}

func TestRefreshTokenRepository_DeactivateAllForUser(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewRefreshTokenRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	first := testutil.NewRefreshTokenBuilder().ForUser(user).Build(t, testDB.DB)
	second := testutil.NewRefreshTokenBuilder().ForUser(user).Build(t, testDB.DB)
	theirs := testutil.NewRefreshTokenBuilder().ForUser(other).Build(t, testDB.DB)

	require.NoError(t, repo.DeactivateAllForUser(ctx, user.ID))

	for _, id := range []int64{first.ID, second.ID} {
		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.False(t, got.IsActive)
	}

	// Other users' tokens are untouched
	got, err := repo.GetByID(ctx, theirs.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	// Idempotent
	require.NoError(t, repo.DeactivateAllForUser(ctx, user.ID))
}
