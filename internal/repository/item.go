package repository

import (
	"context"
	"errors"

	"bucketlist/internal/cache"
	"bucketlist/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemRepository defines the interface for bucket-list item data operations
type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Item, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Item, error)
	List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, itemID uint) (bool, error)
	GetLikedItemIDs(ctx context.Context, userID uint, itemIDs []uint) ([]uint, error)
	GetLikedBy(ctx context.Context, itemID uint) ([]models.User, error)
	Like(ctx context.Context, userID, itemID uint) error
	Unlike(ctx context.Context, userID, itemID uint) error
}

// itemRepository implements ItemRepository
type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *models.Item) error {
	err := r.db.WithContext(ctx).Create(item).Error
	if err == nil {
		cache.InvalidateItemsList(ctx)
		cache.InvalidateUser(ctx, item.UserID)
	}
	return err
}

func (r *itemRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Item, error) {
	var item models.Item
	err := r.applyItemDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Preload("Photo").
		First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Item", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &item, nil
}

func (r *itemRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Item, error) {
	var items []*models.Item
	err := r.applyItemDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Preload("Photo").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *itemRepository) List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Item, error) {
	var items []*models.Item
	err := r.applyItemDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Preload("Photo").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

// applyItemDetails adds subqueries to fetch the like count and liked status in
// a single query. likes_count is always derived from the likes table so it can
// never drift from the set of likers.
func (r *itemRepository) applyItemDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "items.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.item_id = items.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.item_id = items.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

func (r *itemRepository) Update(ctx context.Context, item *models.Item) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateItem(ctx, item.ID)
	cache.InvalidateItemsList(ctx)
	cache.InvalidateUser(ctx, item.UserID)
	return nil
}

// Delete removes the item together with its likes and photo in one transaction.
func (r *itemRepository) Delete(ctx context.Context, id uint) error {
	var ownerIDs []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Item{}).Where("id = ?", id).Pluck("user_id", &ownerIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", id).Delete(&models.Photo{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Item{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateItem(ctx, id)
	cache.InvalidateItemsList(ctx)
	if len(ownerIDs) > 0 {
		cache.InvalidateUser(ctx, ownerIDs[0])
	}
	return nil
}

func (r *itemRepository) IsLiked(ctx context.Context, userID, itemID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *itemRepository) GetLikedItemIDs(ctx context.Context, userID uint, itemIDs []uint) ([]uint, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var likedItemIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND item_id IN ?", userID, itemIDs).
		Pluck("item_id", &likedItemIDs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return likedItemIDs, nil
}

func (r *itemRepository) GetLikedBy(ctx context.Context, itemID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN likes ON likes.user_id = users.id").
		Where("likes.item_id = ?", itemID).
		Order("likes.created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *itemRepository) Like(ctx context.Context, userID, itemID uint) error {
	// ON CONFLICT DO NOTHING makes concurrent double-likes a no-op instead of
	// a duplicate key error.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{UserID: userID, ItemID: itemID}).Error
	if err == nil {
		cache.InvalidateItem(ctx, itemID)
	}
	return err
}

func (r *itemRepository) Unlike(ctx context.Context, userID, itemID uint) error {
	// Hard delete the like record
	err := r.db.WithContext(ctx).Where("user_id = ? AND item_id = ?", userID, itemID).Delete(&models.Like{}).Error
	if err == nil {
		cache.InvalidateItem(ctx, itemID)
	}
	return err
}
