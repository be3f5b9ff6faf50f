// Package motd implements the MOTD text cache and favicon loader served
// by the status handler: a TTL-bounded reload of a JSON document of
// candidate line pairs, plus an optional base64-encoded PNG favicon.
package motd

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const expiration = 3600 * time.Second

// defaultText is served when motd.json is absent or malformed.
const defaultText = "A Minecraft Server Proxy"

type document struct {
	Line1 []string `json:"line1"`
	Line2 []string `json:"line2"`
}

// Cache serves a randomly-paired MOTD line, reloading motd.json after
// expiration (or immediately on an fsnotify write event).
type Cache struct {
	path string

	mu       sync.Mutex
	doc      document
	loadedAt time.Time

	dirty   atomic.Bool
	watcher *fsnotify.Watcher

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewCache opens a MOTD cache backed by the JSON file at path.
func NewCache(path string) *Cache {
	c := &Cache{
		path:     path,
		loadedAt: time.Now().Add(-expiration),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	c.dirty.Store(true)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("motd: fsnotify unavailable, falling back to TTL-only reload: %v", err)
		return c
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return c
	}
	c.watcher = watcher
	go c.watchLoop()
	return c
}

// Close releases the fsnotify watcher, if any.
func (c *Cache) Close() error {
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

func (c *Cache) watchLoop() {
	for {
		select {
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				c.dirty.Store(true)
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("motd: fsnotify watch error: %v", err)
		}
	}
}

func (c *Cache) reload() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		c.doc = document{}
		c.loadedAt = time.Now()
		return
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		c.doc = document{}
		c.loadedAt = time.Now()
		return
	}
	c.doc = doc
	c.loadedAt = time.Now()
}

// Text returns a uniformly random line1/line2 pair joined by '\n', or
// defaultText if no usable lines are cached.
func (c *Cache) Text() string {
	c.mu.Lock()
	if c.dirty.Swap(false) || time.Since(c.loadedAt) >= expiration {
		c.reload()
	}
	doc := c.doc
	c.mu.Unlock()

	if len(doc.Line1) == 0 || len(doc.Line2) == 0 {
		return defaultText
	}

	c.rngMu.Lock()
	l1 := doc.Line1[c.rng.Intn(len(doc.Line1))]
	l2 := doc.Line2[c.rng.Intn(len(doc.Line2))]
	c.rngMu.Unlock()

	return l1 + "\n" + l2
}

// Favicon loads and base64-encodes (unpadded standard alphabet) a PNG
// icon file, returning it as a data URI, or "" if the file is absent.
// This re-reads from disk on every call, favoring freshness over an
// extra cache layer for a file that rarely changes.
func Favicon(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return "data:image/png;base64," + base64.RawStdEncoding.EncodeToString(data)
}
