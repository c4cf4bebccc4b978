package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

//go:embed default.json
var defaultCatalog []byte

// Load parses and validates a catalog from JSON
func Load(r io.Reader) (*Catalog, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(f)
}

// LoadFile loads a catalog from a JSON file on disk
func LoadFile(path string) (*Catalog, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer fh.Close()
	return Load(fh)
}

// Default returns the embedded brand-funnel assessment catalog
func Default() (*Catalog, error) {
	var f File
	if err := json.Unmarshal(defaultCatalog, &f); err != nil {
		return nil, fmt.Errorf("embedded catalog is invalid: %w", err)
	}
	return New(f)
}
