package whitelist

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func hexUUID(id uuid.UUID) string {
	return fmt.Sprintf("%x", id[:])
}

func writeWhitelist(t *testing.T, entries string) *FileBacked {
	t.Helper()
	path := filepath.Join(t.TempDir(), "whitelist.json")
	if err := os.WriteFile(path, []byte(entries), 0o644); err != nil {
		t.Fatalf("write whitelist: %v", err)
	}
	wl := NewFileBacked(path)
	t.Cleanup(func() { wl.Close() })
	return wl
}

func TestFileBackedUUIDMissingDeniesImmediately(t *testing.T) {
	wl := writeWhitelist(t, `[]`)
	d := wl.Check(Player{Name: "Steve", HasUUID: false})
	if d.Allowed || d.Reason != UUIDMissingMessage {
		t.Fatalf("got %+v", d)
	}
}

func TestFileBackedExactMatchAllows(t *testing.T) {
	id := uuid.New()
	wl := writeWhitelist(t, fmt.Sprintf(`[{"name":"Steve","uuid":"%s","active":true}]`, hexUUID(id)))
	d := wl.Check(Player{Name: "Steve", HasUUID: true, UUID: id})
	if !d.Allowed {
		t.Fatalf("expected allow, got %+v", d)
	}
}

func TestFileBackedInactiveDenies(t *testing.T) {
	id := uuid.New()
	wl := writeWhitelist(t, fmt.Sprintf(`[{"name":"Steve","uuid":"%s","active":false}]`, hexUUID(id)))
	d := wl.Check(Player{Name: "Steve", HasUUID: true, UUID: id})
	if d.Allowed || d.Reason != InactiveMessage {
		t.Fatalf("got %+v", d)
	}
}

func TestFileBackedNameMatchUUIDMismatchIsUUIDInvalid(t *testing.T) {
	id := uuid.New()
	other := uuid.New()
	wl := writeWhitelist(t, fmt.Sprintf(`[{"name":"Steve","uuid":"%s","active":true}]`, hexUUID(id)))
	d := wl.Check(Player{Name: "Steve", HasUUID: true, UUID: other})
	if d.Allowed || d.Reason != UUIDInvalidMessage {
		t.Fatalf("got %+v", d)
	}
}

func TestFileBackedUUIDMatchNameMismatchIsUsernameInvalid(t *testing.T) {
	id := uuid.New()
	wl := writeWhitelist(t, fmt.Sprintf(`[{"name":"Steve","uuid":"%s","active":true}]`, hexUUID(id)))
	d := wl.Check(Player{Name: "NotSteve", HasUUID: true, UUID: id})
	if d.Allowed || d.Reason != UsernameInvalidMessage {
		t.Fatalf("got %+v", d)
	}
}

func TestFileBackedNoMatchIsNotWhitelisted(t *testing.T) {
	wl := writeWhitelist(t, `[]`)
	d := wl.Check(Player{Name: "Stranger", HasUUID: true, UUID: uuid.New()})
	if d.Allowed || d.Reason != NotWhitelistedMessage {
		t.Fatalf("got %+v", d)
	}
}

func TestFileBackedInactivePrecedesOtherDenials(t *testing.T) {
	id := uuid.New()
	other := uuid.New()
	// One entry matches name only (UUID_INVALID candidate), another
	// matches exactly but inactive: INACTIVE must win.
	wl := writeWhitelist(t, fmt.Sprintf(`[
		{"name":"Steve","uuid":"%s","active":true},
		{"name":"Steve","uuid":"%s","active":false}
	]`, hexUUID(other), hexUUID(id)))
	d := wl.Check(Player{Name: "Steve", HasUUID: true, UUID: id})
	if d.Allowed || d.Reason != InactiveMessage {
		t.Fatalf("got %+v", d)
	}
}

func TestFileBackedMalformedFileDeniesEverything(t *testing.T) {
	wl := writeWhitelist(t, `not json`)
	d := wl.Check(Player{Name: "Steve", HasUUID: true, UUID: uuid.New()})
	if d.Allowed || d.Reason != NotWhitelistedMessage {
		t.Fatalf("got %+v", d)
	}
}
