// Copyright 2025 Mara Köpke
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mkoepke/accountd/internal/repository"
	"codeberg.org/mkoepke/accountd/internal/testutil"
)

func TestCreateActivationCode(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "a@x.com", "pw1")
	expiresAt := time.Now().Add(48 * time.Hour).UTC()

	err := repo.CreateActivationCode(ctx, user.ID, "hash-1", expiresAt)
	require.NoError(t, err)

	code, err := repo.GetActivationCode(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, code.UserID)
	assert.WithinDuration(t, expiresAt, code.ExpiresAt, time.Second)
}

func TestCreateActivationCode_MultiplePerUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "a@x.com", "pw1")
	expiresAt := time.Now().Add(48 * time.Hour)

	require.NoError(t, repo.CreateActivationCode(ctx, user.ID, "hash-1", expiresAt))
	require.NoError(t, repo.CreateActivationCode(ctx, user.ID, "hash-2", expiresAt))

	_, err := repo.GetActivationCode(ctx, "hash-1")
	assert.NoError(t, err)
	_, err = repo.GetActivationCode(ctx, "hash-2")
	assert.NoError(t, err)
}

func TestGetActivationCode_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetActivationCode(context.Background(), "missing")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestConsumeActivationCode(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "a@x.com", "pw1")
	require.NoError(t, repo.CreateActivationCode(ctx, user.ID, "hash-1", time.Now().Add(time.Hour)))

	code, err := repo.GetActivationCode(ctx, "hash-1")
	require.NoError(t, err)

	consumed, err := repo.ConsumeActivationCode(ctx, code.ID)
	require.NoError(t, err)
	assert.True(t, consumed)

	// A second consume sees no row
	consumed, err = repo.ConsumeActivationCode(ctx, code.ID)
	require.NoError(t, err)
	assert.False(t, consumed)
}

func TestDeleteExpiredActivationCodes(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "a@x.com", "pw1")
	require.NoError(t, repo.CreateActivationCode(ctx, user.ID, "expired", time.Now().Add(-time.Hour)))
	require.NoError(t, repo.CreateActivationCode(ctx, user.ID, "fresh", time.Now().Add(time.Hour)))

	require.NoError(t, repo.DeleteExpiredActivationCodes(ctx))

	_, err := repo.GetActivationCode(ctx, "expired")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetActivationCode(ctx, "fresh")
	assert.NoError(t, err)
}

func TestDeleteUserActivationCodes(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "a@x.com", "pw1")
	other := testutil.NewTestUser(t, repo, "b@x.com", "pw2")
	require.NoError(t, repo.CreateActivationCode(ctx, user.ID, "hash-1", time.Now().Add(time.Hour)))
	require.NoError(t, repo.CreateActivationCode(ctx, other.ID, "hash-2", time.Now().Add(time.Hour)))

	require.NoError(t, repo.DeleteUserActivationCodes(ctx, user.ID))

	_, err := repo.GetActivationCode(ctx, "hash-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetActivationCode(ctx, "hash-2")
	assert.NoError(t, err)
}
