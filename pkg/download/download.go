// Package download synthesizes filenames for generated artifacts and
// saves them locally.
package download

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Kind distinguishes generated artifact families in filenames.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Filename derives a download name from the current time and the media
// subtype, e.g. "generated-image-1700000000000.png".
func Filename(kind Kind, mediaType string, now time.Time) string {
	sub := "png"
	if kind == KindVideo {
		sub = "mp4"
	}
	if _, s, ok := strings.Cut(mediaType, "/"); ok && s != "" {
		sub = s
	}
	return fmt.Sprintf("generated-%s-%d.%s", kind, now.UnixMilli(), sub)
}

// Save writes artifact bytes under dir, creating the directory when
// needed, and returns the full path.
func Save(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return path, nil
}
