// Package catalog reads exercise catalogs: JSON documents mapping a category
// name to its list of exercises.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mansoorceksport/circuitbot/internal/domain"
)

//go:embed default_catalog.json
var defaultCatalog []byte

// Catalog maps a category to its exercise pool
type Catalog map[domain.Category][]domain.Exercise

// Default returns the built-in catalog
func Default() (Catalog, error) {
	return Parse(bytes.NewReader(defaultCatalog))
}

// Parse decodes a catalog document. Unknown categories and exercises without
// a description are rejected.
func Parse(r io.Reader) (Catalog, error) {
	var raw map[string][]domain.Exercise
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	cat := make(Catalog, len(raw))
	for name, exercises := range raw {
		c, err := domain.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, name)
		}
		for i := range exercises {
			if strings.TrimSpace(exercises[i].Description) == "" {
				return nil, fmt.Errorf("category %s: exercise %d has no description", name, i)
			}
			exercises[i].Category = c
			exercises[i].Description = strings.TrimSpace(exercises[i].Description)
		}
		cat[c] = exercises
	}
	return cat, nil
}

// Exercises flattens the catalog in stable category order
func (c Catalog) Exercises() []domain.Exercise {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	var out []domain.Exercise
	for _, k := range keys {
		out = append(out, c[domain.Category(k)]...)
	}
	return out
}
