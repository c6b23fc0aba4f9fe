// Package media stores uploaded images and produces their square thumbnails.
package media

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ThumbSuffix replaces the original extension in thumbnail names.
const ThumbSuffix = "_thumb.jpg"

var (
	allowedExtensions = map[string]bool{
		"png": true, "jpg": true, "jpeg": true, "webp": true, "gif": true,
	}

	unsafeFilenameRe = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
)

// IsAllowedExtension reports whether name has an image extension we accept.
func IsAllowedExtension(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	return allowedExtensions[strings.ToLower(name[i+1:])]
}

// SanitizeFilename reduces a client-supplied name to a safe ASCII file name.
// The result may be empty.
func SanitizeFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}

	name = strings.Join(strings.Fields(b.String()), "_")
	name = unsafeFilenameRe.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// ThumbName derives the thumbnail file name for a stored original.
func ThumbName(full string) string {
	return strings.TrimSuffix(full, filepath.Ext(full)) + ThumbSuffix
}

// uniqueName builds "<base>-<8 hex><ext>" from a client-supplied name.
func uniqueName(original string) (string, error) {
	origExt := strings.ToLower(original[strings.LastIndex(original, ".")+1:])

	clean := SanitizeFilename(original)
	ext := filepath.Ext(clean)
	base := strings.TrimSuffix(clean, ext)
	if strings.ToLower(strings.TrimPrefix(ext, ".")) != origExt {
		// Sanitizing swallowed the extension (e.g. an all non-ASCII name).
		base, ext = clean, "."+origExt
	}
	if base == "" {
		base = "image"
	}

	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("media: random suffix: %w", err)
	}
	return base + "-" + hex.EncodeToString(suffix) + ext, nil
}

// plainName rejects anything that is not a bare file name.
func plainName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("media: %q is not a plain file name", name)
	}
	return nil
}
