// Copyright 2025 Mara Köpke
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mkoepke/accountd/internal/repository"
	"codeberg.org/mkoepke/accountd/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "a@x.com", "hash")

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.False(t, user.Verified)
	assert.False(t, user.Nickname.Valid)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, "a@x.com", "hash1")
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, "a@x.com", "hash2")
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	// Exactly one account with that email remains
	count, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGetUserByID(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, "a@x.com", "hash")
	require.NoError(t, err)

	retrieved, err := repo.GetUserByID(ctx, created.ID)

	require.NoError(t, err)
	assert.Equal(t, created.ID, retrieved.ID)
	assert.Equal(t, created.Email, retrieved.Email)
}

func TestGetUserByID_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetUserByID(context.Background(), 999)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetUserByEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, "a@x.com", "hash")
	require.NoError(t, err)

	retrieved, err := repo.GetUserByEmail(ctx, "a@x.com")

	require.NoError(t, err)
	assert.Equal(t, created.ID, retrieved.ID)
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetUserByEmail(context.Background(), "nouser@x.com")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserExists(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "a@x.com", "hash")
	require.NoError(t, err)

	exists, err := repo.UserExists(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.UserExists(ctx, user.ID+1)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSetNickname(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "a@x.com", "hash")
	require.NoError(t, err)

	err = repo.SetNickname(ctx, user.ID, "alice")
	require.NoError(t, err)

	updated, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.NicknameOrEmpty())
}

func TestSetNickname_Duplicate(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	holder, err := repo.CreateUser(ctx, "a@x.com", "hash")
	require.NoError(t, err)
	require.NoError(t, repo.SetNickname(ctx, holder.ID, "alice"))

	other, err := repo.CreateUser(ctx, "b@x.com", "hash")
	require.NoError(t, err)

	err = repo.SetNickname(ctx, other.ID, "alice")
	assert.ErrorIs(t, err, repository.ErrDuplicateNickname)

	// The original holder's nickname is unchanged
	unchanged, err := repo.GetUserByID(ctx, holder.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", unchanged.NicknameOrEmpty())
}

func TestSetNickname_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	err := repo.SetNickname(context.Background(), 999, "alice")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSetVerified(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "a@x.com", "hash")
	require.NoError(t, err)
	require.False(t, user.Verified)

	err = repo.SetVerified(ctx, user.ID)
	require.NoError(t, err)

	updated, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, updated.Verified)
}

func TestDeleteUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "a@x.com", "hash")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteUser(ctx, user.ID))

	_, err = repo.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
