package wallgen

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
)

// Storage is where downloaded wallpapers are written. Implementations can wrap
// a local directory or an object store.
type Storage interface {
	// SaveFile saves data under path and returns where it ended up.
	// The contentType is the image's MIME type (e.g., "image/jpeg").
	SaveFile(ctx context.Context, data []byte, path string, contentType string) (string, error)
}

// StorageResult contains information about a saved wallpaper.
type StorageResult struct {
	// Location is the file path or URL returned by the storage
	Location string

	// Path is the storage path/key the wallpaper was saved under
	Path string

	// Size is the number of bytes saved
	Size int
}

// DownloadName returns the file name a wallpaper is saved as.
func DownloadName(w Wallpaper) string {
	return "wallpaper-" + w.ID + "." + extensionFromMIME(w.MIMEType)
}

// SaveWallpaper decodes w and writes it to storage.
func SaveWallpaper(ctx context.Context, storage Storage, w Wallpaper) (StorageResult, error) {
	if storage == nil {
		return StorageResult{}, ErrStorageNotConfigured
	}

	data, err := base64.StdEncoding.DecodeString(w.Base64)
	if err != nil {
		return StorageResult{}, fmt.Errorf("decoding wallpaper %s: %w", w.ID, err)
	}

	contentType := w.MIMEType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	path := DownloadName(w)
	location, err := storage.SaveFile(ctx, data, path, contentType)
	if err != nil {
		return StorageResult{}, err
	}

	return StorageResult{
		Location: location,
		Path:     path,
		Size:     len(data),
	}, nil
}

// SaveToStorage saves every wallpaper of a batch. It stops at the first
// failure and returns what was saved so far.
func SaveToStorage(ctx context.Context, storage Storage, batch *Batch) ([]StorageResult, error) {
	if storage == nil {
		return nil, ErrStorageNotConfigured
	}
	if batch == nil || len(batch.Images) == 0 {
		return nil, nil
	}

	results := make([]StorageResult, 0, len(batch.Images))
	for _, w := range batch.Images {
		res, err := SaveWallpaper(ctx, storage, w)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}

	return results, nil
}

// LocalStorage writes files under Dir.
type LocalStorage struct {
	Dir string
}

var _ Storage = (*LocalStorage)(nil)

func NewLocalStorage(dir string) *LocalStorage {
	return &LocalStorage{Dir: dir}
}

func (s *LocalStorage) SaveFile(ctx context.Context, data []byte, path string, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	full := filepath.Join(s.Dir, filepath.Clean("/" + path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", full, err)
	}

	return full, nil
}

// extensionFromMIME returns a file extension for common image MIME types.
// Unknown types save as jpg.
func extensionFromMIME(mime string) string {
	switch mime {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "jpg"
	}
}
