// Package service contains the application's business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"lumen/internal/blob"
	"lumen/internal/middleware"
	"lumen/internal/models"
	"lumen/internal/repository"

	"gorm.io/gorm"
)

// DefaultMaxUploadBytes caps uploaded files when no limit is configured.
const DefaultMaxUploadBytes = 5 * 1024 * 1024

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// FileUpload is the raw uploaded file as received from the transport layer.
type FileUpload struct {
	Filename string
	Size     int64
	Content  []byte
}

type CreateImageInput struct {
	Actor       models.UserContext
	Title       string
	Description string
	File        *FileUpload
}

type UpdateImageInput struct {
	Actor       models.UserContext
	ImageID     uint
	Title       string
	Description string
	File        *FileUpload
}

// UploadConstraints describes the client-side validation limits for uploads.
type UploadConstraints struct {
	MaxSizeBytes      int64    `json:"max_size_bytes"`
	AllowedExtensions []string `json:"allowed_extensions"`
}

// ToggleLikeResult is the outcome of flipping a like.
type ToggleLikeResult struct {
	LikeCount int  `json:"like_count"`
	IsLiked   bool `json:"is_liked"`
}

// GalleryService implements the gallery's business operations on top of the
// image/like repositories and a blob store.
type GalleryService struct {
	imageRepo      repository.ImageRepository
	likeRepo       repository.LikeRepository
	blobs          blob.Store
	maxUploadBytes int64
}

func NewGalleryService(
	imageRepo repository.ImageRepository,
	likeRepo repository.LikeRepository,
	blobs blob.Store,
	maxUploadBytes int64,
) *GalleryService {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &GalleryService{
		imageRepo:      imageRepo,
		likeRepo:       likeRepo,
		blobs:          blobs,
		maxUploadBytes: maxUploadBytes,
	}
}

// Constraints returns the upload limits advertised to clients.
func (s *GalleryService) Constraints() UploadConstraints {
	exts := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		exts = append(exts, strings.TrimPrefix(ext, "."))
	}
	sort.Strings(exts)
	return UploadConstraints{
		MaxSizeBytes:      s.maxUploadBytes,
		AllowedExtensions: exts,
	}
}

// ListImages returns the public gallery, newest first, with likes attached.
func (s *GalleryService) ListImages(ctx context.Context, limit, offset int) ([]*models.Image, error) {
	return s.imageRepo.List(ctx, limit, offset)
}

func (s *GalleryService) CreateImage(ctx context.Context, in CreateImageInput) (*models.Image, error) {
	if err := validateMetadata(in.Title, in.Description); err != nil {
		return nil, err
	}
	if in.File == nil || len(in.File.Content) == 0 {
		return nil, models.NewFieldValidationError("image", "An image file is required")
	}
	if err := s.validateFile(in.File); err != nil {
		return nil, err
	}

	path, err := s.blobs.Save(ctx, in.File.Content, in.File.Filename)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("store image: %w", err))
	}

	image := &models.Image{
		Title:       in.Title,
		Description: in.Description,
		ImagePath:   path,
		CreatorID:   in.Actor.ID,
	}
	if err := s.imageRepo.Create(ctx, image); err != nil {
		s.deleteBlob(ctx, path)
		return nil, err
	}
	return image, nil
}

// GetEditableImage loads an image for editing. Only the creator or an admin
// may see the editable record.
func (s *GalleryService) GetEditableImage(ctx context.Context, actor models.UserContext, id uint) (*models.Image, error) {
	image, err := s.imageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapImageLookupError(err, id)
	}
	if err := authorizeEdit(actor, image); err != nil {
		return nil, err
	}
	return image, nil
}

// UpdateImage applies title/description changes and an optional replacement
// file. Ownership is decided from the persisted record; CreatorID, CreatedAt,
// LikeCount and (absent a new file) ImagePath are carried over from it
// regardless of what the request claims.
func (s *GalleryService) UpdateImage(ctx context.Context, in UpdateImageInput) (*models.Image, error) {
	existing, err := s.imageRepo.GetByID(ctx, in.ImageID)
	if err != nil {
		return nil, mapImageLookupError(err, in.ImageID)
	}
	if err := authorizeEdit(in.Actor, existing); err != nil {
		return nil, err
	}
	if err := validateMetadata(in.Title, in.Description); err != nil {
		return nil, err
	}

	oldPath := existing.ImagePath
	newPath := ""
	if in.File != nil && len(in.File.Content) > 0 {
		if err := s.validateFile(in.File); err != nil {
			return nil, err
		}
		newPath, err = s.blobs.Save(ctx, in.File.Content, in.File.Filename)
		if err != nil {
			return nil, models.NewInternalError(fmt.Errorf("store image: %w", err))
		}
	}

	existing.Title = in.Title
	existing.Description = in.Description
	if newPath != "" {
		existing.ImagePath = newPath
	}

	if err := s.imageRepo.Update(ctx, existing); err != nil {
		if newPath != "" {
			s.deleteBlob(ctx, newPath)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Image", in.ImageID)
		}
		return nil, models.NewInternalError(fmt.Errorf("update image %d: %w", in.ImageID, err))
	}

	if newPath != "" && oldPath != "" {
		s.deleteBlob(ctx, oldPath)
	}
	return existing, nil
}

// DeleteImage removes an image, its likes and its stored file. Admin only.
func (s *GalleryService) DeleteImage(ctx context.Context, actor models.UserContext, id uint) error {
	if !actor.IsAdmin() {
		return models.NewForbiddenError("Only administrators can delete images")
	}

	image, err := s.imageRepo.GetByID(ctx, id)
	if err != nil {
		return mapImageLookupError(err, id)
	}

	if err := s.imageRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Image", id)
		}
		return err
	}

	if image.ImagePath != "" {
		s.deleteBlob(ctx, image.ImagePath)
	}
	return nil
}

// GetImageDetails returns an image with its likes. Admin only.
func (s *GalleryService) GetImageDetails(ctx context.Context, actor models.UserContext, id uint) (*models.Image, error) {
	if !actor.IsAdmin() {
		return nil, models.NewForbiddenError("Only administrators can view image details")
	}
	image, err := s.imageRepo.GetWithLikes(ctx, id)
	if err != nil {
		return nil, mapImageLookupError(err, id)
	}
	return image, nil
}

// ToggleLike flips the caller's like on an image and returns the new state.
func (s *GalleryService) ToggleLike(ctx context.Context, actor models.UserContext, id uint) (*ToggleLikeResult, error) {
	liked, likeCount, err := s.likeRepo.Toggle(ctx, id, actor.ID)
	if err != nil {
		return nil, mapImageLookupError(err, id)
	}
	return &ToggleLikeResult{LikeCount: likeCount, IsLiked: liked}, nil
}

// IsLiked reports whether the viewer has liked the image. Anonymous viewers
// are never "liked" and cost no query.
func (s *GalleryService) IsLiked(ctx context.Context, viewer *models.UserContext, id uint) (bool, error) {
	if viewer == nil || viewer.ID == "" {
		return false, nil
	}
	return s.likeRepo.IsLiked(ctx, id, viewer.ID)
}

func (s *GalleryService) validateFile(f *FileUpload) error {
	size := f.Size
	if size == 0 {
		size = int64(len(f.Content))
	}
	if size > s.maxUploadBytes {
		return models.NewFieldValidationError("image",
			fmt.Sprintf("File too large (max %d MB)", s.maxUploadBytes/(1024*1024)))
	}
	ext := strings.ToLower(filepath.Ext(f.Filename))
	if !allowedExtensions[ext] {
		return models.NewFieldValidationError("image",
			"Unsupported file type (allowed: jpg, jpeg, png, gif, webp)")
	}
	return nil
}

// deleteBlob removes a stored file without letting failures surface; blob
// cleanup never decides the outcome of the surrounding operation.
func (s *GalleryService) deleteBlob(ctx context.Context, path string) {
	if err := s.blobs.Delete(ctx, path); err != nil {
		middleware.Logger.Warn("Failed to delete stored image file",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}

func validateMetadata(title, description string) error {
	if strings.TrimSpace(title) == "" {
		return models.NewFieldValidationError("title", "Title is required")
	}
	if len(title) > 100 {
		return models.NewFieldValidationError("title", "Title too long (max 100 characters)")
	}
	if strings.TrimSpace(description) == "" {
		return models.NewFieldValidationError("description", "Description is required")
	}
	return nil
}

func authorizeEdit(actor models.UserContext, image *models.Image) error {
	if actor.ID != image.CreatorID && !actor.IsAdmin() {
		return models.NewForbiddenError("You can only edit your own images")
	}
	return nil
}

func mapImageLookupError(err error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Image", id)
	}
	return err
}
