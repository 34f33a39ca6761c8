package download

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFilename(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	tests := []struct {
		kind      Kind
		mediaType string
		want      string
	}{
		{KindImage, "image/png", "generated-image-1700000000000.png"},
		{KindImage, "image/jpeg", "generated-image-1700000000000.jpeg"},
		{KindImage, "", "generated-image-1700000000000.png"},
		{KindVideo, "video/mp4", "generated-video-1700000000000.mp4"},
		{KindVideo, "", "generated-video-1700000000000.mp4"},
	}
	for _, tt := range tests {
		if got := Filename(tt.kind, tt.mediaType, now); got != tt.want {
			t.Errorf("Filename(%s, %q) = %q, want %q", tt.kind, tt.mediaType, got, tt.want)
		}
	}
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	path, err := Save(dir, "generated-image-1.png", []byte("bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(raw) != "bytes" {
		t.Fatalf("content = %q, want %q", raw, "bytes")
	}
}
