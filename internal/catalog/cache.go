package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/everstacklabs/ask/internal/provider"
)

// Freshness is how long a cached discovery result stays valid.
const Freshness = 24 * time.Hour

// cacheFile is the on-disk shape of a discovery result. The degraded
// state is persisted so serving from cache never hides that some entries
// came from the static fallback tables.
type cacheFile struct {
	FetchedAt          time.Time           `json:"fetched_at"`
	Project            string              `json:"project"`
	Region             string              `json:"region"`
	Degraded           bool                `json:"degraded,omitempty"`
	DegradedPublishers []provider.Provider `json:"degraded_publishers,omitempty"`
	Entries            []Descriptor        `json:"entries"`
}

// loadCache reads the cache file. A missing or unreadable file returns
// nil with no error: cache misses are not failures.
func loadCache(path string) (*cacheFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading model cache: %w", err)
	}
	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		// Corrupt cache is treated as a miss; it will be rewritten.
		return nil, nil
	}
	return &cf, nil
}

// saveCache writes the cache with an atomic rename so a concurrent
// invocation never observes a truncated file.
func saveCache(path string, cf *cacheFile) error {
	data, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling model cache: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".models-*.json")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming cache file: %w", err)
	}
	return nil
}
