// Package testutil provides shared test helpers for content stores and image fixtures.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/vitrine/internal/media"
	"github.com/starford/vitrine/internal/storage"
)

// TestStore creates a content store inside a temporary directory.
func TestStore(t *testing.T) *storage.FS {
	t.Helper()
	store, err := storage.NewFS(filepath.Join(t.TempDir(), "content.json"))
	if err != nil {
		t.Fatal(err)
	}
	return store
}

// TestLibrary creates a media library with uploads/ and uploads/thumbs/ under a temp dir.
func TestLibrary(t *testing.T) *media.Library {
	t.Helper()
	root := t.TempDir()
	lib := media.NewLibrary(filepath.Join(root, "uploads"), filepath.Join(root, "uploads", "thumbs"))
	if err := lib.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	return lib
}

// PNG encodes a w×h image filled with c.
func PNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// WriteFile writes data to dir/name and returns the full path.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
