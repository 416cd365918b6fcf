// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MemoryBlobStore is an in-memory blob.Store implementation for tests.
type MemoryBlobStore struct {
	Files   map[string][]byte
	Deleted []string
	SaveErr error
	next    int
}

// NewMemoryBlobStore creates an empty in-memory blob store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{Files: make(map[string][]byte)}
}

// Save stores content under a deterministic per-call path.
func (s *MemoryBlobStore) Save(_ context.Context, content []byte, originalName string) (string, error) {
	if s.SaveErr != nil {
		return "", s.SaveErr
	}
	s.next++
	path := fmt.Sprintf("/uploads/images/%d-%s", s.next, originalName)
	stored := make([]byte, len(content))
	copy(stored, content)
	s.Files[path] = stored
	return path, nil
}

// Delete removes a previously stored path and records the call.
func (s *MemoryBlobStore) Delete(_ context.Context, path string) error {
	delete(s.Files, path)
	s.Deleted = append(s.Deleted, path)
	return nil
}

// MultipartForm builds a multipart request body with the given form fields
// and, when filename is non-empty, a file part under the "image" field.
func MultipartForm(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write form field %s: %v", key, err)
		}
	}
	if filename != "" {
		part, err := writer.CreateFormFile("image", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

// SignToken issues an HS256 token the way the identity provider would.
func SignToken(t *testing.T, secret, sub string, roles []string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if len(roles) > 0 {
		claims["roles"] = roles
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	str, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return str
}
