package whitelist

import (
	"encoding/json"
	"log"
	"math/big"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// expiration is the reload TTL: the file is reloaded at most once per
// this duration, unless fsnotify signals a write first.
const expiration = 60 * time.Second

type entry struct {
	Name   string
	UUID   uuid.UUID
	Active bool
}

// FileBacked loads a JSON array of whitelist entries from disk, caching
// the parsed result for up to expiration. A best-effort fsnotify watch
// invalidates the cache immediately on write, so most reloads are driven
// by the file actually changing rather than the TTL alone.
type FileBacked struct {
	path string

	mu       sync.Mutex
	loaded   []entry
	loadedAt time.Time

	dirty   atomic.Bool
	watcher *fsnotify.Watcher
}

// NewFileBacked opens a whitelist backed by the JSON file at path. The
// file need not exist yet; a missing or malformed file degrades to an
// empty (all-deny) list, per spec.
func NewFileBacked(path string) *FileBacked {
	wl := &FileBacked{path: path, loadedAt: time.Now().Add(-expiration)}
	wl.dirty.Store(true)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("whitelist: fsnotify unavailable, falling back to TTL-only reload: %v", err)
		return wl
	}
	if err := watcher.Add(path); err != nil {
		// The file may not exist yet; that's fine, TTL reload still covers it.
		watcher.Close()
		return wl
	}
	wl.watcher = watcher
	go wl.watchLoop()
	return wl
}

// Close releases the fsnotify watcher, if any.
func (wl *FileBacked) Close() error {
	if wl.watcher != nil {
		return wl.watcher.Close()
	}
	return nil
}

func (wl *FileBacked) watchLoop() {
	for {
		select {
		case event, ok := <-wl.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				wl.dirty.Store(true)
			}
		case err, ok := <-wl.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("whitelist: fsnotify watch error: %v", err)
		}
	}
}

func (wl *FileBacked) reload() {
	data, err := os.ReadFile(wl.path)
	if err != nil {
		wl.loaded = nil
		wl.loadedAt = time.Now()
		return
	}

	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		wl.loaded = nil
		wl.loadedAt = time.Now()
		return
	}

	var parsed []entry
	for _, item := range raw {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name, ok := obj["name"].(string)
		if !ok {
			continue
		}
		uuidStr, ok := obj["uuid"].(string)
		if !ok {
			continue
		}
		u, ok := parseHexUUID(uuidStr)
		if !ok {
			continue
		}
		active, _ := obj["active"].(bool)
		parsed = append(parsed, entry{Name: name, UUID: u, Active: active})
	}

	wl.loaded = parsed
	wl.loadedAt = time.Now()
	log.Printf("whitelist: reloaded %s (%d entries)", wl.path, len(parsed))
}

func parseHexUUID(s string) (uuid.UUID, bool) {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok || n.Sign() < 0 {
		return uuid.UUID{}, false
	}
	b := n.Bytes()
	if len(b) > 16 {
		return uuid.UUID{}, false
	}
	var u uuid.UUID
	copy(u[16-len(b):], b)
	return u, true
}

func (wl *FileBacked) snapshot() []entry {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	if wl.dirty.Swap(false) || time.Since(wl.loadedAt) >= expiration {
		wl.reload()
	}
	out := make([]entry, len(wl.loaded))
	copy(out, wl.loaded)
	return out
}

// Check implements the whitelist precedence rules: a missing UUID denies
// immediately; otherwise the strongest-matching denial category wins in
// the order INACTIVE > USERNAME_INVALID > UUID_INVALID > NOT_WHITELISTED.
func (wl *FileBacked) Check(p Player) Decision {
	if !p.HasUUID {
		return Deny(UUIDMissingMessage)
	}

	list := wl.snapshot()

	var invalidUUID, invalidUsername, inactive bool
	for _, e := range list {
		nameEqual := e.Name == p.Name
		uuidEqual := e.UUID == p.UUID
		switch {
		case nameEqual && uuidEqual:
			if e.Active {
				return Allow()
			}
			inactive = true
		case nameEqual && !uuidEqual:
			invalidUUID = true
		case uuidEqual && !nameEqual:
			invalidUsername = true
		}
	}

	switch {
	case inactive:
		return Deny(InactiveMessage)
	case invalidUsername:
		return Deny(UsernameInvalidMessage)
	case invalidUUID:
		return Deny(UUIDInvalidMessage)
	default:
		return Deny(NotWhitelistedMessage)
	}
}
