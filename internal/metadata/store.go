// Package metadata holds the curated product classification loaded from a
// JSON file at startup. The mapping is keyed by exact product title and is
// read-only once loaded.
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	// DefaultCategory is used when a title has no category mapping.
	DefaultCategory = "unclassified"
	// DefaultTier is used when a title has no tier mapping.
	DefaultTier = "unranked"
)

// Entry is the curated metadata for one product title.
type Entry struct {
	Category string `json:"category"`
	Tier     string `json:"tier"`
}

// rawEntry distinguishes an absent field from an explicit empty string.
type rawEntry struct {
	Category *string `json:"category"`
	Tier     *string `json:"tier"`
}

// Store is an immutable title → Entry lookup table.
type Store struct {
	entries map[string]Entry
}

// Load reads the mapping file at path. A missing or malformed file is an error.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a JSON object mapping product titles to entries. A field
// that is absent takes its default; an explicit empty string is kept.
func Parse(data []byte) (*Store, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("metadata file is empty")
	}

	var raw map[string]rawEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse metadata file: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("metadata file must contain a JSON object")
	}

	entries := make(map[string]Entry, len(raw))
	for title, r := range raw {
		entry := Entry{Category: DefaultCategory, Tier: DefaultTier}
		if r.Category != nil {
			entry.Category = *r.Category
		}
		if r.Tier != nil {
			entry.Tier = *r.Tier
		}
		entries[title] = entry
	}

	return &Store{entries: entries}, nil
}

// NewStore builds a Store from an in-memory mapping. The map is copied and
// empty fields take their defaults.
func NewStore(entries map[string]Entry) *Store {
	copied := make(map[string]Entry, len(entries))
	for k, v := range entries {
		if v.Category == "" {
			v.Category = DefaultCategory
		}
		if v.Tier == "" {
			v.Tier = DefaultTier
		}
		copied[k] = v
	}
	return &Store{entries: copied}
}

// Lookup returns the entry for the trimmed title, or the defaults when the
// title is not mapped.
func (s *Store) Lookup(title string) Entry {
	entry, ok := s.entries[strings.TrimSpace(title)]
	if !ok {
		return Entry{Category: DefaultCategory, Tier: DefaultTier}
	}
	return entry
}

// Len returns the number of mapped titles.
func (s *Store) Len() int {
	return len(s.entries)
}
