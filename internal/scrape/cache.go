package scrape

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LinkCache maps supreme court verdict page URLs to the appellate verdict
// URL found on them. "" records a page that was fetched but had no link,
// so it is not fetched again.
type LinkCache map[string]string

// LoadLinkCache reads a cache file. A missing file yields an empty cache.
func LoadLinkCache(path string) (LinkCache, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return LinkCache{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading link cache: %w", err)
	}

	c := LinkCache{}
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing link cache %s: %w", path, err)
	}
	return c, nil
}

// Save writes the cache as indented JSON, replacing the file atomically.
func (c LinkCache) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing link cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("writing link cache: %w", err)
	}
	return nil
}

// Missing returns the URLs not yet in the cache, keeping their order.
func (c LinkCache) Missing(urls []string) []string {
	var out []string
	for _, u := range urls {
		if _, ok := c[u]; !ok {
			out = append(out, u)
		}
	}
	return out
}

// Merge adds links to the cache, overwriting existing entries.
func (c LinkCache) Merge(links map[string]string) {
	for u, l := range links {
		c[u] = l
	}
}
