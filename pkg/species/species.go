package species

import (
	"context"

	"github.com/matzehuels/arbor/pkg/core/lsystem"
	"github.com/matzehuels/arbor/pkg/errors"
)

// Growth parameter defaults and bounds.
const (
	DefaultIterations = 4
	DefaultAngle      = 22.5
	DefaultStep       = 1.0
	DefaultThickness  = 1.0

	MinIterations = 1
	MaxIterations = 7
	MinAngle      = 10.0
	MaxAngle      = 45.0
	MinStep       = 0.5
	MaxStep       = 2.0
	MinThickness  = 0.5
	MaxThickness  = 2.5
)

// Species describes one tree species and its grammar.
type Species struct {
	ID             string            `json:"id" bson:"_id" toml:"id"`
	CommonName     string            `json:"commonName" bson:"common_name" toml:"common_name"`
	ScientificName string            `json:"scientificName" bson:"scientific_name" toml:"scientific_name"`
	Axiom          string            `json:"axiom" bson:"axiom" toml:"axiom"`
	Rules          map[string]string `json:"rules" bson:"rules" toml:"rules"`
	DefaultAngle   float64           `json:"defaultAngle" bson:"default_angle" toml:"default_angle"`
	DefaultStep    float64           `json:"defaultStep" bson:"default_step" toml:"default_step"`
}

// Grammar returns the parsed production rules.
func (s Species) Grammar() (lsystem.Rules, error) {
	return lsystem.ParseRules(s.Rules)
}

// Validate checks the identifier, the grammar and the default parameters.
func (s Species) Validate() error {
	if err := errors.ValidateSpeciesID(s.ID); err != nil {
		return err
	}
	if s.CommonName == "" {
		return errors.New(errors.ErrCodeInvalidSpecies, "species %q: common name is required", s.ID)
	}
	if s.Axiom == "" {
		return errors.New(errors.ErrCodeInvalidSpecies, "species %q: axiom is required", s.ID)
	}
	if _, err := s.Grammar(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSpecies, err, "species %q: invalid rules", s.ID)
	}
	if err := errors.ValidateRange("default angle", s.DefaultAngle, MinAngle, MaxAngle); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSpecies, err, "species %q", s.ID)
	}
	if err := errors.ValidateRange("default step", s.DefaultStep, MinStep, MaxStep); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSpecies, err, "species %q", s.ID)
	}
	return nil
}

// Catalog lists and looks up species.
type Catalog interface {
	// List returns every species in catalogue order.
	List(ctx context.Context) ([]Species, error)
	// Get returns the species with the given id, or an error with code
	// errors.ErrCodeSpeciesNotFound.
	Get(ctx context.Context, id string) (Species, error)
}

// NotFound returns the error catalogues report for an unknown id.
func NotFound(id string) error {
	return errors.New(errors.ErrCodeSpeciesNotFound, "species %q not found", id)
}

// First returns the first species of c, the default selection.
func First(ctx context.Context, c Catalog) (Species, error) {
	list, err := c.List(ctx)
	if err != nil {
		return Species{}, err
	}
	if len(list) == 0 {
		return Species{}, errors.New(errors.ErrCodeSpeciesNotFound, "species catalogue is empty")
	}
	return list[0], nil
}
