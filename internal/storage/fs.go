package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/starford/vitrine/internal/apperr"
	"github.com/starford/vitrine/internal/models"
)

// FS implements Provider backed by a single JSON file.
type FS struct {
	path string // absolute path to the content file

	mu      sync.Mutex
	lastSum string
}

// NewFS creates a store for the document at path, creating its directory if needed.
func NewFS(path string) (*FS, error) {
	if path == "" {
		return nil, fmt.Errorf("storage: content path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve path: %w", err)
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return nil, fmt.Errorf("storage: content path is a directory: %s", abs)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir: %w", err)
	}
	return &FS{path: abs}, nil
}

// Path returns the absolute content file path.
func (f *FS) Path() string {
	return f.path
}

// LastWritten returns the hex SHA-256 of the last document written by this store.
func (f *FS) LastWritten() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSum
}

// Load reads the document. A missing file is replaced by the default document.
func (f *FS) Load(_ context.Context) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := f.write(models.DefaultDocument()); err != nil {
			return nil, err
		}
		data, err = os.ReadFile(f.path)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", f.path, err)
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("storage: parse %s: %w: %v", f.path, apperr.ErrFormat, err)
	}
	return &doc, nil
}

// Save overwrites the document.
func (f *FS) Save(_ context.Context, doc *models.Document) error {
	if doc == nil {
		return fmt.Errorf("storage: nil document")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(doc)
}

// Encode renders doc the way it is stored on disk: two-space indent, non-ASCII kept as-is.
func Encode(doc *models.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Checksum returns the hex-encoded SHA-256 digest of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// write atomically replaces the file: tmp file → fsync → rename. Caller holds mu.
func (f *FS) write(doc *models.Document) error {
	content, err := Encode(doc)
	if err != nil {
		return fmt.Errorf("storage: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".content-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("storage: chmod: %w", err)
	}
	// Record the sum before the rename so a watcher never sees our own write as foreign.
	f.lastSum = Checksum(content)
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
