package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerSyncReturnsExistingUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, nil)

	created, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name: "Jane", Email: "jane@example.com",
	})
	require.NoError(t, err)

	u, err := svc.LoginUserFromManager(context.Background(), ManagerSyncInput{
		Email: "jane@example.com", Name: "Jane From Manager",
	})
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, u.ID)
	// Existing profile data is not overwritten.
	assert.Equal(t, "Jane", u.Name)
}

func TestManagerSyncBackfillsMissingImage(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, nil)

	created, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name: "Jane", Email: "jane@example.com",
	})
	require.NoError(t, err)
	require.Empty(t, created.User.ImageURL)

	u, err := svc.LoginUserFromManager(context.Background(), ManagerSyncInput{
		Email:    "jane@example.com",
		ImageURL: "https://cdn.example.com/jane.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/jane.png", u.ImageURL)

	stored, err := repo.GetByID(context.Background(), created.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/jane.png", stored.ImageURL)
}

func TestManagerSyncDoesNotOverwriteExistingImage(t *testing.T) {
	repo := newFakeUserRepo()
	images := &fakeImageStore{}
	svc := newTestService(repo, images)

	created, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name: "Jane", Email: "jane@example.com",
		Image: stringsReader("img"), ImageFilename: "a.png",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.User.ImageURL)

	u, err := svc.LoginUserFromManager(context.Background(), ManagerSyncInput{
		Email:    "jane@example.com",
		ImageURL: "https://cdn.example.com/other.png",
	})
	require.NoError(t, err)
	assert.Equal(t, created.User.ImageURL, u.ImageURL)
}

func TestManagerSyncCreatesSeparateUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, nil)
	svc.Cfg.ManagerSeparateUsers = true

	u, err := svc.LoginUserFromManager(context.Background(), ManagerSyncInput{
		Email: "new@example.com", Name: "New Person",
	})
	require.NoError(t, err)
	assert.Equal(t, "manager", u.Role)
	assert.True(t, u.MustChangePassword)

	stored, err := repo.GetByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEmpty(t, stored.RememberToken)
}

func TestManagerSyncFallsBackToSharedAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, nil)

	shared, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name: "Shared Manager", Email: "manager@example.com",
	})
	require.NoError(t, err)

	// Separate accounts disabled: unknown identities map to the shared
	// manager account.
	u, err := svc.LoginUserFromManager(context.Background(), ManagerSyncInput{
		Email: "unknown@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, shared.User.ID, u.ID)
}

func TestManagerSyncCreateFailureFallsThrough(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, nil)
	svc.Cfg.ManagerSeparateUsers = true

	shared, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name: "Shared Manager", Email: "manager@example.com",
	})
	require.NoError(t, err)

	// Force creation to fail; sync must fall through to the shared
	// account instead of erroring.
	repo.failInsert = assert.AnError
	u, err := svc.LoginUserFromManager(context.Background(), ManagerSyncInput{
		Email: "unknown@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, shared.User.ID, u.ID)
}

func TestManagerSyncMissingSharedAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, nil)

	_, err := svc.LoginUserFromManager(context.Background(), ManagerSyncInput{
		Email: "unknown@example.com",
	})
	assert.ErrorIs(t, err, ErrEntityNotFound)
}
