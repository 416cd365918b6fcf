package server

import (
	"io"
	"mime/multipart"

	"lumen/internal/models"
	"lumen/internal/repository"
	"lumen/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetImages handles GET /api/images
func (s *Server) GetImages(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePagination(c, repository.DefaultListLimit)

	images, err := s.gallery.ListImages(ctx, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	if images == nil {
		images = []*models.Image{}
	}

	return c.JSON(images)
}

// GetUploadConstraints handles GET /api/images/new. It is the JSON rendition
// of the upload form: the limits a client needs to validate before posting.
func (s *Server) GetUploadConstraints(c *fiber.Ctx) error {
	return c.JSON(s.gallery.Constraints())
}

// CreateImage handles POST /api/images (multipart form)
func (s *Server) CreateImage(c *fiber.Ctx) error {
	ctx := c.Context()
	user := currentUser(c)

	file, err := s.formFile(c, "image")
	if err != nil {
		return nil
	}

	image, err := s.gallery.CreateImage(ctx, service.CreateImageInput{
		Actor:       user,
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		File:        file,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(image)
}

// GetEditableImage handles GET /api/images/:id/edit
func (s *Server) GetEditableImage(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	image, err := s.gallery.GetEditableImage(ctx, currentUser(c), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(image)
}

// UpdateImage handles POST /api/images/:id (multipart form, file optional)
func (s *Server) UpdateImage(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	file, err := s.formFile(c, "image")
	if err != nil {
		return nil
	}

	image, err := s.gallery.UpdateImage(ctx, service.UpdateImageInput{
		Actor:       currentUser(c),
		ImageID:     id,
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		File:        file,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(image)
}

// ConfirmDeleteImage handles GET /api/images/:id/delete. It returns the
// record an admin is about to remove.
func (s *Server) ConfirmDeleteImage(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	image, err := s.gallery.GetImageDetails(ctx, currentUser(c), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(image)
}

// DeleteImage handles POST /api/images/:id/delete
func (s *Server) DeleteImage(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if err := s.gallery.DeleteImage(ctx, currentUser(c), id); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Image deleted"})
}

// GetImageDetails handles GET /api/images/:id
func (s *Server) GetImageDetails(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	image, err := s.gallery.GetImageDetails(ctx, currentUser(c), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(image)
}

// ToggleLike handles POST /api/images/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	result, err := s.gallery.ToggleLike(ctx, currentUser(c), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(result)
}

// IsImageLiked handles GET /api/images/:id/liked. Anonymous callers always
// receive false.
func (s *Server) IsImageLiked(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	viewer, _ := s.optionalUser(c)
	liked, err := s.gallery.IsLiked(ctx, viewer, id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"is_liked": liked})
}

// formFile reads an optional multipart file field into memory. A missing
// field returns (nil, nil); a read failure writes the 400 response and
// returns errResponseWritten.
func (s *Server) formFile(c *fiber.Ctx, field string) (*service.FileUpload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	content, err := readMultipartFile(header)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldValidationError(field, "Could not read uploaded file"))
		return nil, errResponseWritten
	}
	return &service.FileUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  content,
	}, nil
}

func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
