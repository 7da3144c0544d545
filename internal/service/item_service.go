package service

import (
	"context"
	"time"

	"bucketlist/internal/cache"
	"bucketlist/internal/middleware"
	"bucketlist/internal/models"
	"bucketlist/internal/repository"
)

const (
	maxNameLen     = 300
	maxLocationLen = 300
	maxNoteLen     = 10000
)

// ItemService implements bucket-list item operations on top of the item
// repository, delegating photo payloads to the photo service.
type ItemService struct {
	itemRepo repository.ItemRepository
	photos   *PhotoService
}

type CreateItemInput struct {
	UserID       uint
	Name         string
	Location     string
	Date         *time.Time
	EndDate      *time.Time
	Note         string
	IsExperience bool
	// Photo is an optional base64 data URI ingested together with the item.
	Photo string
}

type UpdateItemInput struct {
	UserID       uint
	ItemID       uint
	Name         string
	Location     string
	Date         *time.Time
	EndDate      *time.Time
	Note         *string
	IsExperience *bool
}

type ListItemsInput struct {
	Limit         int
	Offset        int
	CurrentUserID uint
}

// NewItemService creates a new item service.
func NewItemService(itemRepo repository.ItemRepository, photos *PhotoService) *ItemService {
	return &ItemService{itemRepo: itemRepo, photos: photos}
}

func (s *ItemService) CreateItem(ctx context.Context, in CreateItemInput) (*models.Item, error) {
	if in.Name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if len(in.Name) > maxNameLen {
		return nil, models.NewValidationError("Name too long (max 300 characters)")
	}
	if len(in.Location) > maxLocationLen {
		return nil, models.NewValidationError("Location too long (max 300 characters)")
	}
	if len(in.Note) > maxNoteLen {
		return nil, models.NewValidationError("Note too long (max 10000 characters)")
	}
	if in.Date != nil && in.EndDate != nil && in.EndDate.Before(*in.Date) {
		return nil, models.NewValidationError("end_date cannot be before date")
	}

	item := &models.Item{
		Name:         in.Name,
		Location:     in.Location,
		Date:         in.Date,
		EndDate:      in.EndDate,
		Note:         in.Note,
		IsExperience: in.IsExperience,
		UserID:       in.UserID,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, models.NewInternalError(err)
	}

	if in.Photo != "" {
		if _, err := s.photos.Ingest(ctx, IngestPhotoInput{ImageData: in.Photo, ItemID: &item.ID}); err != nil {
			// Photo failures are terminal for the whole create: do not leave
			// a photo-less item the client did not ask for.
			_ = s.itemRepo.Delete(ctx, item.ID)
			return nil, err
		}
	}

	return s.itemRepo.GetByID(ctx, item.ID, in.UserID)
}

// GetItem returns a single item including the users who liked it. The
// anonymous detail row is served cache-aside; likes and updates invalidate
// it, and the viewer's liked flag is recomputed on top of the shared copy.
func (s *ItemService) GetItem(ctx context.Context, id uint, currentUserID uint) (*models.Item, error) {
	var item *models.Item
	err := cache.Aside(ctx, cache.ItemKey(id), &item, cache.ItemTTL, func() error {
		var fetchErr error
		item, fetchErr = s.itemRepo.GetByID(ctx, id, 0)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	if currentUserID != 0 {
		liked, likedErr := s.itemRepo.IsLiked(ctx, currentUserID, id)
		if likedErr != nil {
			return nil, likedErr
		}
		item.Liked = liked
	}

	likedBy, err := s.itemRepo.GetLikedBy(ctx, id)
	if err != nil {
		return nil, err
	}
	item.LikedBy = likedBy
	return item, nil
}

func (s *ItemService) ListItems(ctx context.Context, in ListItemsInput) ([]*models.Item, error) {
	var items []*models.Item
	var err error

	if in.Offset == 0 && in.Limit <= 20 {
		// Cache the anonymous first page and re-apply the viewer's liked
		// flags afterwards, so the cached entry stays user independent.
		err = cache.Aside(ctx, cache.ItemsListKey, &items, cache.ItemsListTTL, func() error {
			var fetchErr error
			items, fetchErr = s.itemRepo.List(ctx, in.Limit, in.Offset, 0)
			return fetchErr
		})
		if err != nil {
			return nil, err
		}

		s.applyLikedFlags(ctx, items, in.CurrentUserID)
		return items, nil
	}

	return s.itemRepo.List(ctx, in.Limit, in.Offset, in.CurrentUserID)
}

// GetUserItems lists one user's items. The first page follows the same
// caching scheme as the public feed: the anonymous result is shared and the
// viewer's liked flags are recomputed per request.
func (s *ItemService) GetUserItems(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Item, error) {
	if offset == 0 && limit <= 20 {
		var items []*models.Item
		err := cache.Aside(ctx, cache.UserItemsKey(userID), &items, cache.UserItemsTTL, func() error {
			var fetchErr error
			items, fetchErr = s.itemRepo.GetByUserID(ctx, userID, limit, offset, 0)
			return fetchErr
		})
		if err != nil {
			return nil, err
		}

		s.applyLikedFlags(ctx, items, currentUserID)
		return items, nil
	}

	return s.itemRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
}

// applyLikedFlags recomputes the viewer's liked flags on items that were
// fetched anonymously, e.g. from a shared cache entry.
func (s *ItemService) applyLikedFlags(ctx context.Context, items []*models.Item, currentUserID uint) {
	if currentUserID == 0 || len(items) == 0 {
		return
	}

	itemIDs := make([]uint, len(items))
	for i, it := range items {
		itemIDs[i] = it.ID
	}
	likedIDs, err := s.itemRepo.GetLikedItemIDs(ctx, currentUserID, itemIDs)
	if err != nil {
		return
	}

	likedMap := make(map[uint]bool, len(likedIDs))
	for _, id := range likedIDs {
		likedMap[id] = true
	}
	for _, it := range items {
		it.Liked = likedMap[it.ID]
	}
}

func (s *ItemService) UpdateItem(ctx context.Context, in UpdateItemInput) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, in.ItemID, in.UserID)
	if err != nil {
		return nil, err
	}

	if item.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own items")
	}

	if in.Name != "" {
		if len(in.Name) > maxNameLen {
			return nil, models.NewValidationError("Name too long (max 300 characters)")
		}
		item.Name = in.Name
	}
	if in.Location != "" {
		item.Location = in.Location
	}
	if in.Date != nil {
		item.Date = in.Date
	}
	if in.EndDate != nil {
		item.EndDate = in.EndDate
	}
	if in.Note != nil {
		if len(*in.Note) > maxNoteLen {
			return nil, models.NewValidationError("Note too long (max 10000 characters)")
		}
		item.Note = *in.Note
	}
	if in.IsExperience != nil {
		item.IsExperience = *in.IsExperience
	}
	if item.Date != nil && item.EndDate != nil && item.EndDate.Before(*item.Date) {
		return nil, models.NewValidationError("end_date cannot be before date")
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) DeleteItem(ctx context.Context, userID, itemID uint) error {
	item, err := s.itemRepo.GetByID(ctx, itemID, userID)
	if err != nil {
		return err
	}

	if item.UserID != userID {
		return models.NewForbiddenError("You can only delete your own items")
	}

	return s.itemRepo.Delete(ctx, itemID)
}

// ToggleLike likes the item on the first call and unlikes it on the next.
// The returned item carries the recomputed likes_count and liked flag.
func (s *ItemService) ToggleLike(ctx context.Context, userID, itemID uint) (*models.Item, error) {
	if _, err := s.itemRepo.GetByID(ctx, itemID, userID); err != nil {
		return nil, err
	}

	isLiked, err := s.itemRepo.IsLiked(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if isLiked {
		if err := s.itemRepo.Unlike(ctx, userID, itemID); err != nil {
			return nil, models.NewInternalError(err)
		}
		middleware.LikesToggled.WithLabelValues("unliked").Inc()
	} else {
		if err := s.itemRepo.Like(ctx, userID, itemID); err != nil {
			return nil, models.NewInternalError(err)
		}
		middleware.LikesToggled.WithLabelValues("liked").Inc()
	}

	return s.itemRepo.GetByID(ctx, itemID, userID)
}
