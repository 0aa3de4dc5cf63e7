package wishlist

import (
	"context"
	"fmt"
	"testing"

	"github.com/gamewishlabs/gamewish-backend/pkg/db/models"
	pkgerrors "github.com/gamewishlabs/gamewish-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var userSeq int

func setupService(t *testing.T) (Service, *Repository) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(&models.Game{}, &models.Wishlist{}))

	repo := NewRepository(conn)
	svc, err := NewService(ServiceParams{Repo: repo})
	require.NoError(t, err)
	return svc, repo
}

func nextUser(t *testing.T) (string, string) {
	t.Helper()
	userSeq++
	return fmt.Sprintf("user-%s-%d", t.Name(), userSeq), fmt.Sprintf("tester%d", userSeq)
}

func TestCreateAndGet(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	userID, username := nextUser(t)

	created, err := svc.Create(ctx, CreateInput{UserID: userID, Username: username})
	require.NoError(t, err)
	assert.Equal(t, userID, created.UserID)
	assert.Empty(t, created.Games)

	fetched, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
}

func TestCreateDuplicateIsConflict(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	userID, username := nextUser(t)

	_, err := svc.Create(ctx, CreateInput{UserID: userID, Username: username})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{UserID: userID, Username: username})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "expected conflict, got %v", err)
}

func TestGetMissingWishlistIsNotFound(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Get(context.Background(), "no-such-user")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "expected not found, got %v", err)
}

func TestAddGameIsIdempotent(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	userID, username := nextUser(t)

	_, err := svc.Create(ctx, CreateInput{UserID: userID, Username: username})
	require.NoError(t, err)

	first, err := svc.AddGame(ctx, userID, "Portal 2")
	require.NoError(t, err)
	require.Len(t, first.Games, 1)

	second, err := svc.AddGame(ctx, userID, "Portal 2")
	require.NoError(t, err)
	require.Len(t, second.Games, 1)
	assert.Equal(t, "Portal 2", second.Games[0].Name)
}

func TestAddGameReusesExistingGameRow(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	userA, nameA := nextUser(t)
	userB, nameB := nextUser(t)
	_, err := svc.Create(ctx, CreateInput{UserID: userA, Username: nameA})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{UserID: userB, Username: nameB})
	require.NoError(t, err)

	title := fmt.Sprintf("Shared Title %s", userA)
	_, err = svc.AddGame(ctx, userA, title)
	require.NoError(t, err)
	_, err = svc.AddGame(ctx, userB, title)
	require.NoError(t, err)

	gameA, err := repo.FindGameByName(ctx, title)
	require.NoError(t, err)

	listA, err := svc.Get(ctx, userA)
	require.NoError(t, err)
	listB, err := svc.Get(ctx, userB)
	require.NoError(t, err)
	require.Len(t, listA.Games, 1)
	require.Len(t, listB.Games, 1)
	assert.Equal(t, gameA.ID, listA.Games[0].ID)
	assert.Equal(t, gameA.ID, listB.Games[0].ID)
}

func TestAddGameRequiresName(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	userID, username := nextUser(t)

	_, err := svc.Create(ctx, CreateInput{UserID: userID, Username: username})
	require.NoError(t, err)

	_, err = svc.AddGame(ctx, userID, "   ")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "expected validation error, got %v", err)
}

func TestRemoveGameUnknownGameIsValidationError(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	userID, username := nextUser(t)

	_, err := svc.Create(ctx, CreateInput{UserID: userID, Username: username})
	require.NoError(t, err)

	_, err = svc.RemoveGame(ctx, userID, fmt.Sprintf("Never Added %s", userID))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "expected validation error, got %v", err)
}

func TestRemoveGameNotOnWishlistIsValidationError(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	userA, nameA := nextUser(t)
	userB, nameB := nextUser(t)
	_, err := svc.Create(ctx, CreateInput{UserID: userA, Username: nameA})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{UserID: userB, Username: nameB})
	require.NoError(t, err)

	title := fmt.Sprintf("Only On A %s", userA)
	_, err = svc.AddGame(ctx, userA, title)
	require.NoError(t, err)

	_, err = svc.RemoveGame(ctx, userB, title)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "expected validation error, got %v", err)
}

func TestRemoveGameKeepsGameRow(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()
	userID, username := nextUser(t)

	_, err := svc.Create(ctx, CreateInput{UserID: userID, Username: username})
	require.NoError(t, err)

	title := fmt.Sprintf("Removable %s", userID)
	_, err = svc.AddGame(ctx, userID, title)
	require.NoError(t, err)

	updated, err := svc.RemoveGame(ctx, userID, title)
	require.NoError(t, err)
	assert.Empty(t, updated.Games)

	// removal only deletes the membership edge
	_, err = repo.FindGameByName(ctx, title)
	require.NoError(t, err)
}

func TestListTrackedGroupsOwners(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	userA, nameA := nextUser(t)
	userB, nameB := nextUser(t)
	_, err := svc.Create(ctx, CreateInput{UserID: userA, Username: nameA})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{UserID: userB, Username: nameB})
	require.NoError(t, err)

	title := fmt.Sprintf("Tracked Everywhere %s", userA)
	_, err = svc.AddGame(ctx, userA, title)
	require.NoError(t, err)
	_, err = svc.AddGame(ctx, userB, title)
	require.NoError(t, err)

	tracked, err := repo.ListTracked(ctx)
	require.NoError(t, err)

	var found *TrackedGame
	for i := range tracked {
		if tracked[i].Name == title {
			found = &tracked[i]
			break
		}
	}
	require.NotNil(t, found, "expected %q in tracked games", title)
	assert.ElementsMatch(t, []string{userA, userB}, found.Owners)
}
