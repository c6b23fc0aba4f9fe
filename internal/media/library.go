package media

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/vitrine/internal/apperr"
	"github.com/starford/vitrine/internal/metrics"
)

// Library manages the uploads directory and its thumbnails directory.
type Library struct {
	uploadDir  string
	thumbDir   string
	thumbSize  int
	background color.RGBA
}

// NewLibrary creates a library rooted at the given directories.
func NewLibrary(uploadDir, thumbDir string) *Library {
	return &Library{
		uploadDir:  uploadDir,
		thumbDir:   thumbDir,
		thumbSize:  DefaultThumbSize,
		background: DefaultBackground,
	}
}

// UploadDir returns the directory holding originals.
func (l *Library) UploadDir() string { return l.uploadDir }

// ThumbDir returns the directory holding thumbnails.
func (l *Library) ThumbDir() string { return l.thumbDir }

// EnsureDirs creates both directories if they are missing.
func (l *Library) EnsureDirs() error {
	for _, dir := range []string{l.uploadDir, l.thumbDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("media: mkdir %s: %w", dir, err)
		}
	}
	return nil
}

// StoreOriginal writes an upload under a unique name and returns that name.
// Empty names and disallowed extensions yield apperr.ErrUnsupportedFileType.
func (l *Library) StoreOriginal(name string, r io.Reader) (string, error) {
	if name == "" || !IsAllowedExtension(name) {
		metrics.UploadsTotal.WithLabelValues("skipped").Inc()
		return "", fmt.Errorf("media: %q: %w", name, apperr.ErrUnsupportedFileType)
	}
	unique, err := uniqueName(name)
	if err != nil {
		return "", err
	}

	path := filepath.Join(l.uploadDir, unique)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("media: create %s: %w", unique, err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("media: write %s: %w", unique, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("media: close %s: %w", unique, err)
	}
	metrics.UploadsTotal.WithLabelValues("stored").Inc()
	return unique, nil
}

// MakeThumbnail renders the thumbnail for a stored original and returns its name.
func (l *Library) MakeThumbnail(full string) (string, error) {
	if err := plainName(full); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInvalidFilename, err)
	}
	thumb := ThumbName(full)
	start := time.Now()
	err := MakeSquareThumbnail(
		filepath.Join(l.uploadDir, full),
		filepath.Join(l.thumbDir, thumb),
		l.thumbSize,
		l.background,
	)
	if err != nil {
		metrics.ThumbnailsTotal.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.ThumbnailsTotal.WithLabelValues("ok").Inc()
	metrics.ThumbnailDuration.Observe(time.Since(start).Seconds())
	return thumb, nil
}

// Remove deletes an original and its thumbnail. Empty names are skipped and
// files that are already gone are not an error.
func (l *Library) Remove(full, thumb string) error {
	files := []struct{ dir, name string }{
		{l.uploadDir, full},
		{l.thumbDir, thumb},
	}
	for _, f := range files {
		if f.name == "" {
			continue
		}
		if err := plainName(f.name); err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrInvalidFilename, err)
		}
	}
	for _, f := range files {
		if f.name == "" {
			continue
		}
		if err := os.Remove(filepath.Join(f.dir, f.name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("media: remove %s: %w", f.name, err)
		}
	}
	return nil
}

// UploadPath resolves a stored original by name.
func (l *Library) UploadPath(name string) (string, error) {
	return resolve(l.uploadDir, name)
}

// ThumbPath resolves a stored thumbnail by name.
func (l *Library) ThumbPath(name string) (string, error) {
	return resolve(l.thumbDir, name)
}

func resolve(dir, name string) (string, error) {
	if err := plainName(name); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInvalidFilename, err)
	}
	return filepath.Join(dir, name), nil
}
