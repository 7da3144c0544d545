package repository

import (
	"context"
	"testing"
	"time"

	"bucketlist/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUsersAndItem(t *testing.T, userRepo UserRepository, itemRepo ItemRepository) (owner, viewer *models.User, item *models.Item) {
	t.Helper()
	ctx := context.Background()

	owner = testUser("owner@example.com", 1)
	viewer = testUser("viewer@example.com", 2)
	require.NoError(t, userRepo.Create(ctx, owner))
	require.NoError(t, userRepo.Create(ctx, viewer))

	item = &models.Item{Name: "See the northern lights", Location: "Tromsø, Norway", UserID: owner.ID}
	require.NoError(t, itemRepo.Create(ctx, item))
	return owner, viewer, item
}

func TestItemRepository_LikesCountIsDerived(t *testing.T) {
	db := setupTestDB(t)
	userRepo := NewUserRepository(db)
	itemRepo := NewItemRepository(db)
	ctx := context.Background()

	owner, viewer, item := seedUsersAndItem(t, userRepo, itemRepo)

	got, err := itemRepo.GetByID(ctx, item.ID, viewer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, got.LikesCount)
	assert.False(t, got.Liked)

	require.NoError(t, itemRepo.Like(ctx, viewer.ID, item.ID))
	require.NoError(t, itemRepo.Like(ctx, owner.ID, item.ID))

	got, err = itemRepo.GetByID(ctx, item.ID, viewer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.LikesCount)
	assert.True(t, got.Liked)

	// An anonymous viewer sees the same count but never a liked flag.
	got, err = itemRepo.GetByID(ctx, item.ID, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.LikesCount)
	assert.False(t, got.Liked)
}

func TestItemRepository_DoubleLikeIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	userRepo := NewUserRepository(db)
	itemRepo := NewItemRepository(db)
	ctx := context.Background()

	_, viewer, item := seedUsersAndItem(t, userRepo, itemRepo)

	require.NoError(t, itemRepo.Like(ctx, viewer.ID, item.ID))
	require.NoError(t, itemRepo.Like(ctx, viewer.ID, item.ID))

	got, err := itemRepo.GetByID(ctx, item.ID, viewer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.LikesCount)
}

func TestItemRepository_Unlike(t *testing.T) {
	db := setupTestDB(t)
	userRepo := NewUserRepository(db)
	itemRepo := NewItemRepository(db)
	ctx := context.Background()

	_, viewer, item := seedUsersAndItem(t, userRepo, itemRepo)

	require.NoError(t, itemRepo.Like(ctx, viewer.ID, item.ID))
	require.NoError(t, itemRepo.Unlike(ctx, viewer.ID, item.ID))

	liked, err := itemRepo.IsLiked(ctx, viewer.ID, item.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	got, err := itemRepo.GetByID(ctx, item.ID, viewer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, got.LikesCount)

	// Unliking an item that is not liked succeeds silently.
	assert.NoError(t, itemRepo.Unlike(ctx, viewer.ID, item.ID))
}

func TestItemRepository_GetLikedItemIDs(t *testing.T) {
	db := setupTestDB(t)
	userRepo := NewUserRepository(db)
	itemRepo := NewItemRepository(db)
	ctx := context.Background()

	owner, viewer, first := seedUsersAndItem(t, userRepo, itemRepo)

	second := &models.Item{Name: "Learn to sail", UserID: owner.ID}
	require.NoError(t, itemRepo.Create(ctx, second))

	require.NoError(t, itemRepo.Like(ctx, viewer.ID, second.ID))

	ids, err := itemRepo.GetLikedItemIDs(ctx, viewer.ID, []uint{first.ID, second.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{second.ID}, ids)

	ids, err = itemRepo.GetLikedItemIDs(ctx, viewer.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestItemRepository_GetLikedBy(t *testing.T) {
	db := setupTestDB(t)
	userRepo := NewUserRepository(db)
	itemRepo := NewItemRepository(db)
	ctx := context.Background()

	owner, viewer, item := seedUsersAndItem(t, userRepo, itemRepo)

	require.NoError(t, itemRepo.Like(ctx, viewer.ID, item.ID))
	require.NoError(t, itemRepo.Like(ctx, owner.ID, item.ID))

	users, err := itemRepo.GetLikedBy(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, viewer.ID, users[0].ID)
	assert.Equal(t, owner.ID, users[1].ID)
}

func TestItemRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	userRepo := NewUserRepository(db)
	itemRepo := NewItemRepository(db)
	ctx := context.Background()

	_, viewer, item := seedUsersAndItem(t, userRepo, itemRepo)

	require.NoError(t, itemRepo.Like(ctx, viewer.ID, item.ID))
	require.NoError(t, db.Create(&models.Photo{
		BaseURL: "https://photos.example.com", Salt: "ZYXWVUTS87654321",
		Extension: "jpeg", ItemID: &item.ID,
	}).Error)

	require.NoError(t, itemRepo.Delete(ctx, item.ID))

	_, err := itemRepo.GetByID(ctx, item.ID, 0)
	assert.Error(t, err)

	var photoCount, likeCount int64
	require.NoError(t, db.Model(&models.Photo{}).Count(&photoCount).Error)
	require.NoError(t, db.Model(&models.Like{}).Count(&likeCount).Error)
	assert.EqualValues(t, 0, photoCount)
	assert.EqualValues(t, 0, likeCount)
}

func TestItemRepository_ListOrdersNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	userRepo := NewUserRepository(db)
	itemRepo := NewItemRepository(db)
	ctx := context.Background()

	owner, _, first := seedUsersAndItem(t, userRepo, itemRepo)

	second := &models.Item{Name: "Dive the Great Barrier Reef", UserID: owner.ID}
	require.NoError(t, itemRepo.Create(ctx, second))
	// Nudge the second item ahead; in-memory inserts can share a timestamp.
	require.NoError(t, db.Model(second).Update("created_at", first.CreatedAt.Add(time.Second)).Error)

	items, err := itemRepo.List(ctx, 10, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)
}
