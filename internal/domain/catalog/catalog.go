package catalog

import (
	"errors"
	"os"
	"sort"

	"github.com/2sn/starfit-server/internal/common"

	"gopkg.in/yaml.v3"
)

// Database is one selectable model database in the data directory.
type Database struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Default     bool   `yaml:"default,omitempty" json:"default,omitempty"`
}

// Catalog lists the databases a deployment offers.
type Catalog struct {
	Databases []Database `yaml:"databases" json:"databases"`
	byID      map[string]Database
}

// Load reads a YAML catalog. A missing file yields a nil catalog, which
// disables database name checks.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, common.Errorf("failed to read database catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, common.Errorf("failed to parse database catalog: %w", err)
	}
	c.byID = make(map[string]Database, len(c.Databases))
	for _, db := range c.Databases {
		if db.ID == "" {
			return nil, common.Errorf("database catalog entry %q has no id", db.Name)
		}
		if _, dup := c.byID[db.ID]; dup {
			return nil, common.Errorf("database catalog lists %q twice", db.ID)
		}
		c.byID[db.ID] = db
	}
	return c, nil
}

// Has reports whether id is listed. A nil catalog accepts everything.
func (c *Catalog) Has(id string) bool {
	if c == nil {
		return true
	}
	_, ok := c.byID[id]
	return ok
}

// IDs returns the listed database ids in sorted order.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
