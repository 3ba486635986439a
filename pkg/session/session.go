// Package session provides pruning sessions: the mutable state behind an
// interactive pruning simulation.
//
// A session remembers the chosen species, the growth parameters and the set
// of cut branches. The tree itself is never stored; it is regrown from the
// parameters through the pipeline cache whenever a view is needed.
//
// This package defines the [Store] interface for session storage, with
// implementations for different backends:
//   - [MemoryStore]: in-memory storage for development and tests
//   - [RedisStore]: Redis-backed storage for multi-instance servers
//   - [FileStore]: JSON files for the CLI
//
// # Usage
//
// The [Manager] ties a store to a species catalogue and a pipeline runner:
//
//	m := session.NewManager(store, catalog, runner, logger, session.DefaultTTL)
//	sess, err := m.Create(ctx, "english-oak")
//	sess, removed, err := m.Prune(ctx, sess.ID, "root-0-2")
//	full, pruned, err := m.Trees(ctx, sess.ID)
//
// Parameter setters validate their input. Changing the iteration count or
// the species changes every branch identity, so both clear the cuts; the
// angle, step and thickness only move branches and keep them.
package session

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/arbor/pkg/core/tree/prune"
	arborerrors "github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/pipeline"
	"github.com/matzehuels/arbor/pkg/species"
)

// DefaultTTL is how long an untouched session lives.
const DefaultTTL = 7 * 24 * time.Hour

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// Session stores the state of one pruning simulation.
type Session struct {
	ID         string    `json:"id"`
	SpeciesID  string    `json:"speciesId"`
	Iterations int       `json:"iterations"`
	Angle      float64   `json:"angle"`
	Step       float64   `json:"step"`
	Thickness  float64   `json:"thickness"`
	Pruned     []string  `json:"pruned"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// New creates a session for sp with default parameters and a random ID.
func New(sp species.Species, ttl time.Duration) *Session {
	now := time.Now().UTC()
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
	}
	s.Reset(sp)
	s.Touch(ttl)
	return s
}

// ValidateID checks that id is a session identifier.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return arborerrors.New(arborerrors.ErrCodeInvalidInput, "invalid session id: %q", id)
	}
	return nil
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch marks the session as updated and extends its expiry by ttl.
func (s *Session) Touch(ttl time.Duration) {
	s.UpdatedAt = time.Now().UTC()
	s.ExpiresAt = s.UpdatedAt.Add(ttl)
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	c.Pruned = slices.Clone(s.Pruned)
	return &c
}

// SetSpecies switches to sp, resetting angle and step to its defaults and
// clearing every cut.
func (s *Session) SetSpecies(sp species.Species) {
	s.SpeciesID = sp.ID
	s.Angle = sp.DefaultAngle
	s.Step = sp.DefaultStep
	s.ClearPruned()
}

// SetIterations sets the generation count. Cuts are cleared because branch
// identities depend on the expanded string.
func (s *Session) SetIterations(n int) error {
	if n < species.MinIterations || n > species.MaxIterations {
		return arborerrors.New(arborerrors.ErrCodeInvalidArgument,
			"iterations must be between %d and %d, got %d", species.MinIterations, species.MaxIterations, n)
	}
	if n != s.Iterations {
		s.ClearPruned()
	}
	s.Iterations = n
	return nil
}

// SetAngle sets the branching angle in degrees.
func (s *Session) SetAngle(deg float64) error {
	if err := arborerrors.ValidateRange("angle", deg, species.MinAngle, species.MaxAngle); err != nil {
		return err
	}
	s.Angle = deg
	return nil
}

// SetStep sets the segment length.
func (s *Session) SetStep(step float64) error {
	if err := arborerrors.ValidateRange("step size", step, species.MinStep, species.MaxStep); err != nil {
		return err
	}
	s.Step = step
	return nil
}

// SetThickness sets the rendering thickness multiplier.
func (s *Session) SetThickness(v float64) error {
	if err := arborerrors.ValidateRange("thickness", v, species.MinThickness, species.MaxThickness); err != nil {
		return err
	}
	s.Thickness = v
	return nil
}

// AddPruned records cut branches. IDs already present are skipped; the
// others are appended in order.
func (s *Session) AddPruned(ids ...string) error {
	for _, id := range ids {
		if err := arborerrors.ValidateBranchID(id); err != nil {
			return err
		}
	}
	for _, id := range ids {
		if !slices.Contains(s.Pruned, id) {
			s.Pruned = append(s.Pruned, id)
		}
	}
	return nil
}

// ClearPruned removes every cut.
func (s *Session) ClearPruned() {
	s.Pruned = []string{}
}

// Reset restores the default parameters for sp and clears every cut.
func (s *Session) Reset(sp species.Species) {
	s.Iterations = species.DefaultIterations
	s.Thickness = species.DefaultThickness
	s.SetSpecies(sp)
}

// PrunedSet returns the cuts as a set.
func (s *Session) PrunedSet() prune.Set {
	return prune.NewSet(s.Pruned...)
}

// Options returns pipeline options that regrow this session's tree with
// its cuts applied.
func (s *Session) Options(formats ...string) pipeline.Options {
	return pipeline.Options{
		SpeciesID:  s.SpeciesID,
		Iterations: pipeline.Iter(s.Iterations),
		Angle:      s.Angle,
		Step:       s.Step,
		Thickness:  s.Thickness,
		Pruned:     slices.Clone(s.Pruned),
		Formats:    formats,
	}
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (optional, may be no-op for Redis).
	Cleanup(ctx context.Context) error
}
