package motd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDefaultTextWhenFileMissing(t *testing.T) {
	c := NewCache(filepath.Join(t.TempDir(), "does-not-exist.json"))
	t.Cleanup(func() { c.Close() })
	if got := c.Text(); got != defaultText {
		t.Fatalf("got %q want %q", got, defaultText)
	}
}

func TestCacheServesConfiguredLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motd.json")
	doc := `{"line1":["Hello"],"line2":["World"]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c := NewCache(path)
	t.Cleanup(func() { c.Close() })
	if got := c.Text(); got != "Hello\nWorld" {
		t.Fatalf("got %q", got)
	}
}

func TestFaviconMissingFileReturnsEmpty(t *testing.T) {
	if got := Favicon(filepath.Join(t.TempDir(), "nope.png")); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestFaviconEncodesDataURI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icon.png")
	if err := os.WriteFile(path, []byte{0x89, 0x50, 0x4E, 0x47}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := Favicon(path)
	const want = "data:image/png;base64,iVBORw"
	if len(got) < len(want) || got[:len(want)] != want {
		t.Fatalf("got %q", got)
	}
}
