// Package catalog loads the exercise library and protocol catalog from YAML
// and seeds it into a store.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/claude/trainday/internal/models"
)

//go:embed default.yaml
var defaultYAML []byte

// Catalog is a flattened exercise library and protocol set.
type Catalog struct {
	Exercises []models.Exercise
	Protocols []models.Protocol
}

// file mirrors the YAML layout: exercises grouped by category, protocols
// grouped by prescription type.
type file struct {
	Categories []struct {
		Category  models.Category   `yaml:"category"`
		Exercises []models.Exercise `yaml:"exercises"`
	} `yaml:"categories"`
	Protocols []struct {
		PrescriptionType models.PrescriptionType `yaml:"prescription_type"`
		Protocols        []models.Protocol       `yaml:"protocols"`
	} `yaml:"protocols"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultYAML))
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses and validates a YAML catalog.
func Load(r io.Reader) (*Catalog, error) {
	var raw file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	c := &Catalog{}
	for _, group := range raw.Categories {
		for _, ex := range group.Exercises {
			if ex.Category == "" {
				ex.Category = group.Category
			}
			c.Exercises = append(c.Exercises, ex)
		}
	}
	for _, group := range raw.Protocols {
		for _, p := range group.Protocols {
			if p.PrescriptionType == "" {
				p.PrescriptionType = group.PrescriptionType
			}
			c.Protocols = append(c.Protocols, p)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks enums, id uniqueness and custom protocol references.
func (c *Catalog) Validate() error {
	protocols := make(map[string]bool, len(c.Protocols))
	for _, p := range c.Protocols {
		if p.ID == "" || p.Name == "" {
			return fmt.Errorf("%w: protocol %q needs an id and a name", models.ErrInvalidInput, p.ID)
		}
		if protocols[p.ID] {
			return fmt.Errorf("%w: duplicate protocol id %q", models.ErrInvalidInput, p.ID)
		}
		if !p.PrescriptionType.Valid() {
			return fmt.Errorf("%w: protocol %s: prescription type %q", models.ErrInvalidInput, p.ID, p.PrescriptionType)
		}
		protocols[p.ID] = true
	}

	exercises := make(map[string]bool, len(c.Exercises))
	for _, ex := range c.Exercises {
		if ex.ID == "" || ex.Name == "" {
			return fmt.Errorf("%w: exercise %q needs an id and a name", models.ErrInvalidInput, ex.ID)
		}
		if exercises[ex.ID] {
			return fmt.Errorf("%w: duplicate exercise id %q", models.ErrInvalidInput, ex.ID)
		}
		exercises[ex.ID] = true

		if !ex.Category.Valid() {
			return fmt.Errorf("%w: exercise %s: category %q", models.ErrInvalidInput, ex.ID, ex.Category)
		}
		if !ex.PrescriptionType.Valid() {
			return fmt.Errorf("%w: exercise %s: prescription type %q", models.ErrInvalidInput, ex.ID, ex.PrescriptionType)
		}
		if len(ex.Equipment) == 0 {
			return fmt.Errorf("%w: exercise %s has no equipment tags", models.ErrInvalidInput, ex.ID)
		}
		for _, eq := range ex.Equipment {
			if !eq.Valid() {
				return fmt.Errorf("%w: exercise %s: equipment %q", models.ErrInvalidInput, ex.ID, eq)
			}
		}
		for _, id := range ex.ProtocolIDs {
			if !protocols[id] {
				return fmt.Errorf("%w: exercise %s references unknown protocol %q", models.ErrInvalidInput, ex.ID, id)
			}
		}
	}
	return nil
}
