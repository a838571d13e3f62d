// Package scancache caches clang-scan-deps P1689 output keyed by a
// content hash of the scanned source files, grounded on the teacher's
// internal/cache build-artifact cache: the same
// dir+JSON-file+mutex-protected-map shape and sha256 content
// hashing, repurposed from "cache a built release artifact" to "cache
// one module-dependency-scan shard's result" (spec.md §9's supplemented
// "build cache for the module-scan step": clang-scan-deps is the most
// expensive step per build, so an unchanged set of sources should not
// re-invoke it).
package scancache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Entry is one cached scan result.
type Entry struct {
	Hash      string          `json:"hash"`
	Rules     json.RawMessage `json:"rules"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store is a persistent, mutex-protected map from content hash to cached
// P1689 rules, backed by a scan-cache.json file under Dir.
type Store struct {
	dir      string
	metaFile string
	mu       sync.RWMutex
	entries  map[string]Entry
}

// Open loads (or initializes) a Store rooted at dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	s := &Store{
		dir:      dir,
		metaFile: filepath.Join(dir, "scan-cache.json"),
		entries:  make(map[string]Entry),
	}
	s.load()
	return s, nil
}

func (s *Store) load() {
	data, err := os.ReadFile(s.metaFile)
	if err != nil {
		return
	}
	entries := make(map[string]Entry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return
	}
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
}

func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.metaFile, data, 0o644)
}

// Lookup returns the cached rules for hash, if present.
func (s *Store) Lookup(hash string) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[hash]
	if !ok {
		return nil, false
	}
	return e.Rules, true
}

// Put records rules under hash and persists the metadata file.
func (s *Store) Put(hash string, rules json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[hash] = Entry{Hash: hash, Rules: rules, CreatedAt: time.Now()}
	return s.saveLocked()
}

// Len reports how many entries are cached.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// HashFiles returns a deterministic content hash over paths, sorted so
// shard ordering doesn't affect the resulting key. A missing file
// contributes its path alone to the hash (so a shard referencing a file
// that hasn't been fetched yet still yields a stable, distinct key
// rather than erroring).
func HashFiles(paths []string) string {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	h := sha256.New()
	for _, p := range sorted {
		io.WriteString(h, p)
		io.WriteString(h, "\x00")
		f, err := os.Open(p)
		if err != nil {
			continue
		}
		io.Copy(h, f)
		f.Close()
		io.WriteString(h, "\x00")
	}
	return hex.EncodeToString(h.Sum(nil))
}
