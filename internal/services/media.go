package services

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/bloghub/apiserver/internal/storage"
	"github.com/google/uuid"
)

// MediaService stores and retrieves uploaded post images in object
// storage. Posts only reference the resulting filename.
type MediaService struct {
	storage *storage.Storage
}

func NewMediaService(store *storage.Storage) *MediaService {
	return &MediaService{storage: store}
}

// Save uploads image data and returns the generated filename. Keys are
// prefixed with a random UUID so two uploads of the same file never
// collide.
func (s *MediaService) Save(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error) {
	base := sanitizeFilename(filename)
	if base == "" {
		return "", errors.New("invalid filename")
	}

	key := uuid.NewString() + "_" + base
	if err := s.storage.Put(ctx, key, r, size, contentType); err != nil {
		return "", err
	}
	return key, nil
}

// Open returns a reader over a previously stored image.
func (s *MediaService) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	key := sanitizeFilename(filename)
	if key == "" {
		return nil, errors.New("invalid filename")
	}
	return s.storage.Get(ctx, key)
}

// sanitizeFilename strips any path components so a client-supplied name
// cannot address objects outside the flat image namespace.
func sanitizeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}
