package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ImageKeyPrefix = "image:%d"
	ImagesListKey  = "images:all"
)

const (
	ImageTTL      = 10 * time.Minute
	ImagesListTTL = 1 * time.Minute
)

func ImageKey(imageID uint) string {
	return fmt.Sprintf(ImageKeyPrefix, imageID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateImage(ctx context.Context, imageID uint) {
	Invalidate(ctx, ImageKey(imageID))
}

func InvalidateImagesList(ctx context.Context) {
	Invalidate(ctx, ImagesListKey)
}
