package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"lumen/internal/config"
	"lumen/internal/database"
	"lumen/internal/models"
	"lumen/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func setupGalleryServer(t *testing.T) (*fiber.App, *Server, *testutil.MemoryBlobStore, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:    testSecret,
		Port:         "0",
		MaxUploadMiB: 5,
		BlobBackend:  "disk",
		Env:          "test",
	}
	blobs := testutil.NewMemoryBlobStore()

	s, err := NewServerWithDeps(cfg, db, nil, blobs)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{BodyLimit: 10 * 1024 * 1024})
	s.SetupRoutes(app)
	return app, s, blobs, db
}

func bearerFor(t *testing.T, sub string, roles ...string) string {
	return "Bearer " + testutil.SignToken(t, testSecret, sub, roles)
}

func decodeImage(t *testing.T, resp *http.Response) models.Image {
	t.Helper()
	var image models.Image
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&image))
	return image
}

func createTestImage(t *testing.T, app *fiber.App, auth, title string) models.Image {
	t.Helper()
	body, contentType := testutil.MultipartForm(t, map[string]string{
		"title":       title,
		"description": "generated with a diffusion model",
	}, "render.png", []byte("png-bytes"))

	req := httptest.NewRequest(http.MethodPost, "/api/images", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", auth)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeImage(t, resp)
}

func TestGetImages_PublicAndEmpty(t *testing.T) {
	app, _, _, _ := setupGalleryServer(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/images", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var images []models.Image
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&images))
	assert.Empty(t, images)
}

func TestCreateImage(t *testing.T) {
	app, _, blobs, _ := setupGalleryServer(t)
	auth := bearerFor(t, "user-1")

	t.Run("requires authentication", func(t *testing.T) {
		body, contentType := testutil.MultipartForm(t, map[string]string{
			"title": "T", "description": "d",
		}, "a.png", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/api/images", body)
		req.Header.Set("Content-Type", contentType)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("success", func(t *testing.T) {
		image := createTestImage(t, app, auth, "Neon city")
		assert.Equal(t, "Neon city", image.Title)
		assert.Equal(t, "user-1", image.CreatorID)
		assert.Equal(t, 0, image.LikeCount)
		assert.NotEmpty(t, image.ImagePath)
		assert.Contains(t, blobs.Files, image.ImagePath)
	})

	t.Run("missing title is a field error", func(t *testing.T) {
		body, contentType := testutil.MultipartForm(t, map[string]string{
			"description": "d",
		}, "a.png", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/api/images", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", auth)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var errResp models.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
		assert.Equal(t, models.CodeValidation, errResp.Code)
		assert.Equal(t, "title", errResp.Field)
	})

	t.Run("missing file", func(t *testing.T) {
		body, contentType := testutil.MultipartForm(t, map[string]string{
			"title": "T", "description": "d",
		}, "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/images", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", auth)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("disallowed extension leaves nothing stored", func(t *testing.T) {
		before := len(blobs.Files)
		body, contentType := testutil.MultipartForm(t, map[string]string{
			"title": "T", "description": "d",
		}, "payload.exe", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/api/images", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", auth)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Len(t, blobs.Files, before)
	})
}

func TestGetUploadConstraints(t *testing.T) {
	app, _, _, _ := setupGalleryServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/images/new", nil)
	req.Header.Set("Authorization", bearerFor(t, "user-1"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var constraints struct {
		MaxSizeBytes      int64    `json:"max_size_bytes"`
		AllowedExtensions []string `json:"allowed_extensions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&constraints))
	assert.Equal(t, int64(5*1024*1024), constraints.MaxSizeBytes)
	assert.Contains(t, constraints.AllowedExtensions, "webp")
}

func TestGetEditableImage_Authorization(t *testing.T) {
	app, _, _, _ := setupGalleryServer(t)
	image := createTestImage(t, app, bearerFor(t, "user-1"), "Mine")

	get := func(auth string) *http.Response {
		req := httptest.NewRequest(http.MethodGet, "/api/images/1/edit", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("creator", func(t *testing.T) {
		resp := get(bearerFor(t, "user-1"))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		got := decodeImage(t, resp)
		assert.Equal(t, image.ID, got.ID)
	})

	t.Run("admin", func(t *testing.T) {
		resp := get(bearerFor(t, "admin-1", models.AdminRole))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("stranger", func(t *testing.T) {
		resp := get(bearerFor(t, "user-2"))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("anonymous", func(t *testing.T) {
		resp := get("")
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/images/banana/edit", nil)
		req.Header.Set("Authorization", bearerFor(t, "user-1"))
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing image", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/images/999/edit", nil)
		req.Header.Set("Authorization", bearerFor(t, "user-1"))
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestUpdateImage(t *testing.T) {
	app, _, blobs, _ := setupGalleryServer(t)
	auth := bearerFor(t, "user-1")
	image := createTestImage(t, app, auth, "Before")

	t.Run("metadata-only update keeps the stored file", func(t *testing.T) {
		body, contentType := testutil.MultipartForm(t, map[string]string{
			"title":       "After",
			"description": "updated description",
		}, "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/images/1", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", auth)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		got := decodeImage(t, resp)
		assert.Equal(t, "After", got.Title)
		assert.Equal(t, image.ImagePath, got.ImagePath)
		assert.Equal(t, "user-1", got.CreatorID)
	})

	t.Run("replacement file swaps the stored path", func(t *testing.T) {
		body, contentType := testutil.MultipartForm(t, map[string]string{
			"title":       "After",
			"description": "updated description",
		}, "replacement.jpg", []byte("jpg-bytes"))
		req := httptest.NewRequest(http.MethodPost, "/api/images/1", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", auth)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		got := decodeImage(t, resp)
		assert.NotEqual(t, image.ImagePath, got.ImagePath)
		assert.Contains(t, blobs.Deleted, image.ImagePath)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		body, contentType := testutil.MultipartForm(t, map[string]string{
			"title":       "Hijacked",
			"description": "d",
		}, "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/images/1", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", bearerFor(t, "user-2"))

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestToggleLikeAndIsLiked(t *testing.T) {
	app, _, _, _ := setupGalleryServer(t)
	createTestImage(t, app, bearerFor(t, "user-1"), "Likeable")
	auth := bearerFor(t, "user-2")

	toggle := func() (int, map[string]any) {
		req := httptest.NewRequest(http.MethodPost, "/api/images/1/like", nil)
		req.Header.Set("Authorization", auth)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		var result map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		return resp.StatusCode, result
	}

	status, result := toggle()
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, result["is_liked"])
	assert.Equal(t, float64(1), result["like_count"])

	t.Run("liked state is visible to the author of the like", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/images/1/liked", nil)
		req.Header.Set("Authorization", auth)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var result map[string]bool
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.True(t, result["is_liked"])
	})

	t.Run("anonymous viewers are never liked", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/images/1/liked", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var result map[string]bool
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.False(t, result["is_liked"])
	})

	status, result = toggle()
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, result["is_liked"])
	assert.Equal(t, float64(0), result["like_count"])

	t.Run("missing image", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/images/999/like", nil)
		req.Header.Set("Authorization", auth)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAdminEndpoints(t *testing.T) {
	app, _, blobs, db := setupGalleryServer(t)
	creatorAuth := bearerFor(t, "user-1")
	adminAuth := bearerFor(t, "admin-1", models.AdminRole)
	image := createTestImage(t, app, creatorAuth, "Doomed")

	likeReq := httptest.NewRequest(http.MethodPost, "/api/images/1/like", nil)
	likeReq.Header.Set("Authorization", bearerFor(t, "user-2"))
	likeResp, err := app.Test(likeReq)
	require.NoError(t, err)
	_ = likeResp.Body.Close()
	require.Equal(t, http.StatusOK, likeResp.StatusCode)

	t.Run("details require admin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/images/1", nil)
		req.Header.Set("Authorization", creatorAuth)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("details include likes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/images/1", nil)
		req.Header.Set("Authorization", adminAuth)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decodeImage(t, resp)
		require.Len(t, got.Likes, 1)
		assert.Equal(t, "user-2", got.Likes[0].UserID)
		assert.Equal(t, 1, got.LikeCount)
	})

	t.Run("delete confirmation returns the record", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/images/1/delete", nil)
		req.Header.Set("Authorization", adminAuth)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decodeImage(t, resp)
		assert.Equal(t, "Doomed", got.Title)
	})

	t.Run("delete requires admin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/images/1/delete", nil)
		req.Header.Set("Authorization", creatorAuth)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin delete removes row, likes and file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/images/1/delete", nil)
		req.Header.Set("Authorization", adminAuth)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		assert.Contains(t, blobs.Deleted, image.ImagePath)

		var likes int64
		require.NoError(t, db.Model(&models.Like{}).Where("image_id = ?", image.ID).Count(&likes).Error)
		assert.Zero(t, likes)

		// A second delete finds nothing.
		req = httptest.NewRequest(http.MethodPost, "/api/images/1/delete", nil)
		req.Header.Set("Authorization", adminAuth)
		resp, err = app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestGetImages_ListsWithLikes(t *testing.T) {
	app, _, _, _ := setupGalleryServer(t)
	createTestImage(t, app, bearerFor(t, "user-1"), "One")
	createTestImage(t, app, bearerFor(t, "user-1"), "Two")

	likeReq := httptest.NewRequest(http.MethodPost, "/api/images/1/like", nil)
	likeReq.Header.Set("Authorization", bearerFor(t, "user-2"))
	likeResp, err := app.Test(likeReq)
	require.NoError(t, err)
	_ = likeResp.Body.Close()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/images", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var images []models.Image
	require.NoError(t, json.Unmarshal(raw, &images))
	require.Len(t, images, 2)

	likesByTitle := map[string]int{}
	for _, img := range images {
		likesByTitle[img.Title] = img.LikeCount
	}
	assert.Equal(t, 1, likesByTitle["One"])
	assert.Equal(t, 0, likesByTitle["Two"])
}
