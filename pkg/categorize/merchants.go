package categorize

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/billfold/billfold/pkg/normalize"
)

// Category is the assignment attached to a transaction.
type Category struct {
	Category    string `yaml:"category"`
	SubCategory string `yaml:"subCategory"`
}

// MerchantMap is the exact-merchant mapping: normalized merchant string to
// category. It is append-mostly shared state: every categorization reads
// it, the manual-correction flow writes it. The backing YAML file is
// operator-editable and reloadable while other documents are in flight.
type MerchantMap struct {
	mu      sync.RWMutex
	path    string
	entries map[string]Category
}

// LoadMerchantMap reads the mapping file. A missing file yields an empty
// map so a fresh install works before any corrections exist.
func LoadMerchantMap(path string) (*MerchantMap, error) {
	m := &MerchantMap{path: path, entries: make(map[string]Category)}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload swaps in the current file contents atomically with respect to
// concurrent Lookup calls.
func (m *MerchantMap) Reload() error {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read merchant map: %w", err)
	}

	raw := make(map[string]Category)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse merchant map %s: %w", m.path, err)
	}

	entries := make(map[string]Category, len(raw))
	for merchant, cat := range raw {
		entries[normalize.Merchant(merchant)] = cat
	}

	m.mu.Lock()
	m.entries = entries
	m.mu.Unlock()
	return nil
}

// Lookup matches a normalized merchant key verbatim.
func (m *MerchantMap) Lookup(merchant string) (Category, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cat, ok := m.entries[normalize.Merchant(merchant)]
	return cat, ok
}

// Upsert adds or replaces one mapping and persists the file. Last write
// wins on conflict; the mapping only ever grows.
func (m *MerchantMap) Upsert(merchant string, cat Category) error {
	key := normalize.Merchant(merchant)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = cat

	data, err := yaml.Marshal(m.entries)
	if err != nil {
		return fmt.Errorf("marshal merchant map: %w", err)
	}

	// Write-then-rename so a crash never leaves a truncated rule file.
	tmp := m.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create merchant map dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write merchant map: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("replace merchant map: %w", err)
	}
	return nil
}

// Len reports the number of mappings, for logging.
func (m *MerchantMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
