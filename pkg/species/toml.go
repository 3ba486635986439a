package species

import (
	"bytes"
	"context"
	_ "embed"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/arbor/pkg/errors"
)

//go:embed catalog.toml
var defaultCatalogTOML []byte

// catalogFile is the on-disk layout: an array of [[species]] tables.
type catalogFile struct {
	Species []Species `toml:"species"`
}

// TOMLCatalog is an immutable catalogue decoded from TOML.
type TOMLCatalog struct {
	list  []Species
	index map[string]int
}

// LoadTOML decodes and validates a catalogue. Duplicate ids are rejected.
func LoadTOML(r io.Reader) (*TOMLCatalog, error) {
	var f catalogFile
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode species catalogue")
	}
	c := &TOMLCatalog{index: make(map[string]int, len(f.Species))}
	for _, s := range f.Species {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.index[s.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidSpecies, "duplicate species id %q", s.ID)
		}
		c.index[s.ID] = len(c.list)
		c.list = append(c.list, s)
	}
	return c, nil
}

// LoadTOMLFile reads a catalogue from path.
func LoadTOMLFile(path string) (*TOMLCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadTOML(f)
}

var (
	defaultCatalog     *TOMLCatalog
	defaultCatalogOnce sync.Once
)

// Default returns the catalogue embedded in the binary.
func Default() *TOMLCatalog {
	defaultCatalogOnce.Do(func() {
		c, err := LoadTOML(bytes.NewReader(defaultCatalogTOML))
		if err != nil {
			panic("species: embedded catalogue is invalid: " + err.Error())
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// List returns a copy of the species in file order.
func (c *TOMLCatalog) List(ctx context.Context) ([]Species, error) {
	return slices.Clone(c.list), nil
}

// Get returns the species with the given id.
func (c *TOMLCatalog) Get(ctx context.Context, id string) (Species, error) {
	i, ok := c.index[id]
	if !ok {
		return Species{}, NotFound(id)
	}
	return c.list[i], nil
}

// Len returns the number of species.
func (c *TOMLCatalog) Len() int { return len(c.list) }

var _ Catalog = (*TOMLCatalog)(nil)
