// Package storage keeps exhibit images on the local filesystem. Files are
// served back to clients by the router's static /uploads route.
package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
	"github.com/exhibit-hub/booking-api/internal/core/ports"
)

const sniffLen = 512

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// LocalImageStore writes images into dir and addresses them under baseURL.
type LocalImageStore struct {
	dir     string
	baseURL string
}

// NewLocalImageStore creates the upload directory if needed.
func NewLocalImageStore(dir, baseURL string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalImageStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save satisfies ports.ImageStore. The content type is taken from the upload
// or, when absent, sniffed from the first bytes of the body.
func (s *LocalImageStore) Save(ctx context.Context, upload ports.Upload) (domain.Image, error) {
	if err := ctx.Err(); err != nil {
		return domain.Image{}, err
	}

	body := bufio.NewReaderSize(upload.Body, sniffLen)
	contentType := upload.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		head, _ := body.Peek(sniffLen)
		contentType = http.DetectContentType(head)
	}
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))]
	if !ok {
		return domain.Image{}, fmt.Errorf("%w: %s is not a supported image type", domain.ErrInvalidInput, upload.Filename)
	}

	name := uuid.NewString() + ext
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return domain.Image{}, fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return domain.Image{}, fmt.Errorf("write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return domain.Image{}, fmt.Errorf("close image file: %w", err)
	}

	return domain.Image{URL: s.baseURL + "/" + name, PublicID: name}, nil
}

// Destroy satisfies ports.ImageStore. A file that is already gone is not an
// error.
func (s *LocalImageStore) Destroy(_ context.Context, publicID string) error {
	if publicID == "" || filepath.Base(publicID) != publicID {
		return fmt.Errorf("%w: invalid image id %q", domain.ErrInvalidInput, publicID)
	}
	err := os.Remove(filepath.Join(s.dir, publicID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image %s: %w", publicID, err)
	}
	return nil
}
