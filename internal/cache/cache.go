// Package cache provides a best-effort key/value cache for search
// evidence. Entries are read-only once written, so a key collision can
// at worst short-circuit a fetch with another query's results. Put is
// fire-and-forget: caching must never abort the pipeline.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/msp-research-cli/internal/model"
)

// Cache maps a derived key to previously-fetched evidence. A cached
// empty result is a hit, so known-empty queries are not re-fetched.
type Cache interface {
	Get(key string) ([]model.Evidence, bool)
	Put(key string, items []model.Evidence)
}

var keyPattern = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// maxKeyLen keeps derived keys well under filesystem path limits.
const maxKeyLen = 120

// Key derives a cache key from a query string: alphanumeric runs are
// kept, everything else collapses to a single '-', truncated to
// maxKeyLen. Keys are non-cryptographic identifiers; collisions are an
// accepted risk, not a correctness bug.
func Key(s string) string {
	k := keyPattern.ReplaceAllString(s, "-")
	if len(k) > maxKeyLen {
		k = k[:maxKeyLen]
	}
	return k
}

// FS is a filesystem-backed Cache storing one JSON file per key.
type FS struct {
	dir string
}

// NewFS creates the cache directory if absent and returns a cache
// rooted there.
func NewFS(dir string) (*FS, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "cache: create dir %s", dir)
	}
	return &FS{dir: dir}, nil
}

func (c *FS) Get(key string) ([]model.Evidence, bool) {
	data, err := os.ReadFile(filepath.Join(c.dir, key+".json"))
	if err != nil {
		return nil, false
	}
	var items []model.Evidence
	if err := json.Unmarshal(data, &items); err != nil {
		// Unreadable entry: treat as absent, the next Put overwrites it.
		return nil, false
	}
	if items == nil {
		items = []model.Evidence{}
	}
	return items, true
}

func (c *FS) Put(key string, items []model.Evidence) {
	if items == nil {
		items = []model.Evidence{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := os.WriteFile(filepath.Join(c.dir, key+".json"), data, 0o644); err != nil {
		zap.L().Debug("cache: put failed", zap.String("key", key), zap.Error(err))
	}
}

// Memory is an in-process Cache for tests and dry runs.
type Memory struct {
	entries map[string][]model.Evidence
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]model.Evidence)}
}

func (c *Memory) Get(key string) ([]model.Evidence, bool) {
	items, ok := c.entries[key]
	return items, ok
}

func (c *Memory) Put(key string, items []model.Evidence) {
	if items == nil {
		items = []model.Evidence{}
	}
	c.entries[key] = items
}
