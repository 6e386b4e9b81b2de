package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Passwords holds per-bank PDF passwords keyed by bank, then by card
// suffix with a "default" fallback. Issuers mail password-protected
// statements; the file lives outside the repo and is never logged.
type Passwords map[string]map[string]string

// LoadPasswords reads the password file at path. A missing file is not an
// error: parsers then open documents without a password.
func LoadPasswords(path string) (Passwords, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Passwords{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read password file: %w", err)
	}
	var p Passwords
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse password file %s: %w", path, err)
	}
	return p, nil
}

// Get returns the password for a bank, preferring a card-suffix entry
// over the bank default. Empty string means no password configured.
func (p Passwords) Get(bank, cardSuffix string) string {
	entries, ok := p[strings.ToUpper(bank)]
	if !ok {
		return ""
	}
	if cardSuffix != "" {
		if pw, ok := entries[cardSuffix]; ok {
			return pw
		}
	}
	return entries["default"]
}
