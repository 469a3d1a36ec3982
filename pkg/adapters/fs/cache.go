package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/natefinch/atomic"

	"github.com/aretw0/notebox/pkg/core"
)

// indexEntry represents a parsed document and the mtime it was parsed at.
type indexEntry struct {
	Content      string         `json:"content"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	LastModified time.Time      `json:"lastModified"`
}

// index represents the persistent cache state.
type index struct {
	Version int                    `json:"version"`
	Entries map[string]*indexEntry `json:"entries"` // Key is document path (e.g. "users/u1/notes/01H...")
	dirty   bool
	mu      sync.RWMutex
}

// cache avoids re-parsing unchanged files on every live-query refresh.
// It is never authoritative: entries are keyed by mtime and dropped on
// every write or watch event for the path.
type cache struct {
	Path  string // Path to {systemDir}/index.json
	index *index
}

func newCache(root, systemDir string) *cache {
	return &cache{
		Path: filepath.Join(root, systemDir, "index.json"),
		index: &index{
			Version: 1,
			Entries: make(map[string]*indexEntry),
		},
	}
}

// Load reads the cache from disk. A missing or corrupted file yields an empty index.
func (c *cache) Load() error {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	data, err := os.ReadFile(c.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	if err := json.Unmarshal(data, c.index); err != nil || c.index.Entries == nil {
		c.index.Entries = make(map[string]*indexEntry)
	}
	c.index.dirty = false
	return nil
}

// Save persists the cache to disk if it's dirty.
func (c *cache) Save() error {
	c.index.mu.RLock()
	if !c.index.dirty {
		c.index.mu.RUnlock()
		return nil
	}
	data, err := json.MarshalIndent(c.index, "", "  ")
	c.index.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return err
	}
	if err := atomic.WriteFile(c.Path, bytes.NewReader(data)); err != nil {
		return err
	}

	c.index.mu.Lock()
	c.index.dirty = false
	c.index.mu.Unlock()
	return nil
}

// Get returns the cached document if it was parsed at currentMtime.
func (c *cache) Get(docPath string, currentMtime time.Time) (core.Document, bool) {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()

	entry, ok := c.index.Entries[docPath]
	if !ok || !entry.LastModified.Equal(currentMtime) {
		return core.Document{}, false
	}

	doc := core.Document{Content: entry.Content, Metadata: core.Metadata(entry.Metadata)}
	return doc.Clone(), true
}

// Set records a parsed document.
func (c *cache) Set(docPath string, doc core.Document, mtime time.Time) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	clone := doc.Clone()
	c.index.Entries[docPath] = &indexEntry{
		Content:      clone.Content,
		Metadata:     clone.Metadata,
		LastModified: mtime,
	}
	c.index.dirty = true
}

// Delete removes a single entry from the cache.
func (c *cache) Delete(docPath string) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	if _, ok := c.index.Entries[docPath]; ok {
		delete(c.index.Entries, docPath)
		c.index.dirty = true
	}
}

// Len returns the number of entries in the cache.
func (c *cache) Len() int {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()
	return len(c.index.Entries)
}
