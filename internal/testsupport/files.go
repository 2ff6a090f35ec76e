package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"reelpipe/internal/content"
)

// WriteFile fills the target path with size bytes of a repeating pattern,
// creating parent directories. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteContentExport writes items as a content JSON export under dir and
// returns its path.
func WriteContentExport(t testing.TB, dir string, items []content.Item) string {
	t.Helper()

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		t.Fatalf("encode items: %v", err)
	}
	path := filepath.Join(dir, "content_fixture.json")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteReelsDir creates a directory holding count placeholder reels.
func WriteReelsDir(t testing.TB, dir string, count int) string {
	t.Helper()

	for i := range count {
		WriteFile(t, filepath.Join(dir, "reel_"+string(rune('1'+i))+".mp4"), 32)
	}
	return dir
}
