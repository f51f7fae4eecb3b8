// Package cache persists derived compatibility instructions between runs.
// Each entry is one JSON file keyed by (release version, model identifier),
// stored under <cache root>/instructions/. Reads fail open: a missing,
// corrupt, or mismatched entry is a miss, never an error, so cache damage
// can degrade performance but can never break a run.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Entry is the persisted shape of one cached instruction set.
type Entry struct {
	Version      string `json:"version"`
	Instructions string `json:"instructions"`
	CreatedAt    string `json:"created_at"`
	LLMModel     string `json:"llm_model"`
}

var requiredFields = []string{"version", "instructions", "created_at", "llm_model"}

// Stats summarizes the on-disk cache for introspection.
type Stats struct {
	Directory  string
	Exists     bool
	EntryCount int
	TotalSize  int64
	Versions   []string
}

// EntryInfo describes one cache entry for the detailed info view.
type EntryInfo struct {
	Version   string
	LLMModel  string
	CreatedAt string
	Size      int64
}

// Cache is a filesystem-backed instruction store.
type Cache struct {
	root   string // cache root, e.g. ~/.cache/nuverify
	dir    string // root/instructions
	logger *zap.Logger
}

// New creates a cache rooted at the given directory. Nothing is created on
// disk until the first Put.
func New(root string, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		root:   root,
		dir:    filepath.Join(root, "instructions"),
		logger: logger,
	}
}

// Dir returns the directory entries are stored in.
func (c *Cache) Dir() string {
	return c.dir
}

// entryPath builds the filesystem-safe path for a key. Model identifiers use
// the "provider/model" form, so the separator must be substituted to keep
// keys collision-free within one flat directory.
func (c *Cache) entryPath(version, modelID string) string {
	safeModel := strings.ReplaceAll(modelID, "/", "_")
	return filepath.Join(c.dir, version+"_"+safeModel+".json")
}

// Get returns the cached instructions for (version, modelID). The second
// return is false on any miss: no entry, unreadable file, malformed JSON,
// missing or mistyped fields, or stored version/model not matching the key.
func (c *Cache) Get(version, modelID string) (string, bool) {
	data, err := os.ReadFile(c.entryPath(version, modelID))
	if err != nil {
		return "", false
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", false
	}
	for _, f := range requiredFields {
		if _, ok := raw[f]; !ok {
			return "", false
		}
	}

	storedVersion, ok := raw["version"].(string)
	if !ok || storedVersion != version {
		return "", false
	}
	storedModel, ok := raw["llm_model"].(string)
	if !ok || storedModel != modelID {
		return "", false
	}
	instructions, ok := raw["instructions"].(string)
	if !ok {
		return "", false
	}
	return instructions, true
}

// Put writes or overwrites the entry for (version, modelID), stamped with
// the current UTC time. Write failures are logged, not returned: losing a
// cache write must not abort an otherwise successful synthesis.
func (c *Cache) Put(version, modelID, instructions string) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		c.logger.Warn("could not create cache directory",
			zap.String("dir", c.dir), zap.Error(err))
		return
	}

	entry := Entry{
		Version:      version,
		Instructions: instructions,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		LLMModel:     modelID,
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		c.logger.Warn("could not encode cache entry",
			zap.String("version", version), zap.Error(err))
		return
	}
	if err := os.WriteFile(c.entryPath(version, modelID), data, 0o644); err != nil {
		c.logger.Warn("could not save cache entry",
			zap.String("version", version), zap.Error(err))
	}
}

// Clear deletes every cache entry and prunes the now-empty directories,
// returning how many entries were removed. A missing cache yields zero.
func (c *Cache) Clear() int {
	files, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil || len(files) == 0 {
		c.pruneEmptyDirs()
		return 0
	}

	removed := 0
	for _, f := range files {
		if err := os.Remove(f); err != nil {
			c.logger.Warn("could not remove cache entry", zap.String("file", f), zap.Error(err))
			continue
		}
		removed++
	}
	c.pruneEmptyDirs()
	return removed
}

// pruneEmptyDirs removes the instructions directory and the cache root when
// they are empty. os.Remove refuses non-empty directories, which is exactly
// the guard needed here.
func (c *Cache) pruneEmptyDirs() {
	for _, dir := range []string{c.dir, c.root} {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		_ = os.Remove(dir)
	}
}

// Stat reads introspection data about the cache. It never fails: a missing
// cache directory yields a zeroed result.
func (c *Cache) Stat() Stats {
	stats := Stats{Directory: c.dir}

	if _, err := os.Stat(c.dir); err != nil {
		return stats
	}
	stats.Exists = true

	files, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return stats
	}

	seen := make(map[string]bool)
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		stats.EntryCount++
		stats.TotalSize += info.Size()

		// Filename format: <version>_<safe model>.json
		name := strings.TrimSuffix(filepath.Base(f), ".json")
		if idx := strings.Index(name, "_"); idx > 0 {
			seen[name[:idx]] = true
		}
	}
	for v := range seen {
		stats.Versions = append(stats.Versions, v)
	}
	sort.Strings(stats.Versions)
	return stats
}

// Entries lists every readable entry for the detailed info view. Unreadable
// or malformed files are skipped silently, consistent with Get.
func (c *Cache) Entries() []EntryInfo {
	files, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return nil
	}
	sort.Strings(files)

	var out []EntryInfo
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		out = append(out, EntryInfo{
			Version:   entry.Version,
			LLMModel:  entry.LLMModel,
			CreatedAt: entry.CreatedAt,
			Size:      info.Size(),
		})
	}
	return out
}

// Validate re-checks a specific entry's well-formedness: all required fields
// present with the right types, and the stored version consistent with the
// requested one. Used by tooling, not by the lookup hot path.
func (c *Cache) Validate(version, modelID string) bool {
	data, err := os.ReadFile(c.entryPath(version, modelID))
	if err != nil {
		return false
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return false
	}
	for _, f := range requiredFields {
		if _, ok := raw[f]; !ok {
			return false
		}
	}
	for _, f := range []string{"version", "instructions", "llm_model", "created_at"} {
		if _, ok := raw[f].(string); !ok {
			return false
		}
	}
	return raw["version"].(string) == version
}
