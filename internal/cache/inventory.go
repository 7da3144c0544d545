package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	ItemKeyPrefix      = "item:%d"
	ItemsListKey       = "items:recent"
	UserItemsKeyPrefix = "user:%d:items"
)

const (
	UserTTL = 5 * time.Minute
	ItemTTL = 10 * time.Minute
	// List entries carry like counts that only expire out, so they stay short.
	ItemsListTTL = 1 * time.Minute
	UserItemsTTL = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ItemKey(itemID uint) string {
	return fmt.Sprintf(ItemKeyPrefix, itemID)
}

func UserItemsKey(userID uint) string {
	return fmt.Sprintf(UserItemsKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
	Invalidate(ctx, UserItemsKey(userID))
}

func InvalidateItem(ctx context.Context, itemID uint) {
	Invalidate(ctx, ItemKey(itemID))
}

func InvalidateItemsList(ctx context.Context) {
	Invalidate(ctx, ItemsListKey)
}
