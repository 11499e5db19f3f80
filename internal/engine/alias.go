package engine

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// AliasTable maps variant team spellings to one canonical spelling, e.g.
// "Olympiakos FC" -> "Olympiacos". Lookups and stored values are compared in
// normalized form, so the file may use natural spellings. The table is safe
// to reload while a run is in progress.
type AliasTable struct {
	mu sync.RWMutex
	m  map[string]string // normalized variant -> normalized canonical
}

// NewAliasTable builds a table from variant -> canonical pairs.
func NewAliasTable(pairs map[string]string) *AliasTable {
	t := &AliasTable{}
	t.Replace(pairs)
	return t
}

// LoadAliasFile reads a YAML mapping of variant -> canonical team names.
func LoadAliasFile(path string) (*AliasTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias file: %w", err)
	}
	var pairs map[string]string
	if err := yaml.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("failed to parse alias file: %w", err)
	}
	return NewAliasTable(pairs), nil
}

// Replace swaps the whole mapping atomically. Used for reloads.
func (t *AliasTable) Replace(pairs map[string]string) {
	m := make(map[string]string, len(pairs))
	for variant, canonical := range pairs {
		v := normalizeName(variant)
		c := normalizeName(canonical)
		if v == "" || c == "" {
			continue
		}
		m[v] = c
	}
	t.mu.Lock()
	t.m = m
	t.mu.Unlock()
}

// Canonical resolves an already-normalized name through the table. Unknown
// names pass through unchanged.
func (t *AliasTable) Canonical(normalized string) string {
	if t == nil {
		return normalized
	}
	t.mu.RLock()
	c, ok := t.m[normalized]
	t.mu.RUnlock()
	if ok {
		return c
	}
	return normalized
}

// Len returns the number of alias entries.
func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.m)
}
