package session

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arbor/pkg/core/tree"
	"github.com/matzehuels/arbor/pkg/core/tree/prune"
	arborerrors "github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/observability"
	"github.com/matzehuels/arbor/pkg/pipeline"
	"github.com/matzehuels/arbor/pkg/species"
)

// Patch holds a partial parameter update. Nil fields are left unchanged.
// A species change is applied before the other fields, so a patch can
// switch species and override its default angle in one step.
type Patch struct {
	SpeciesID  *string  `json:"speciesId,omitempty"`
	Iterations *int     `json:"iterations,omitempty"`
	Angle      *float64 `json:"angle,omitempty"`
	Step       *float64 `json:"step,omitempty"`
	Thickness  *float64 `json:"thickness,omitempty"`
}

// Manager applies session operations on top of a Store. Mutations are
// serialised per manager, and subscribers registered with Watch receive
// the session after every change.
type Manager struct {
	store   Store
	catalog species.Catalog
	runner  *pipeline.Runner
	logger  *log.Logger
	ttl     time.Duration

	mu sync.Mutex // serialises read-modify-write cycles

	watchMu  sync.Mutex
	watchers map[string]map[int]chan *Session
	nextID   int
}

// NewManager creates a manager. A nil catalog falls back to the runner's
// catalogue, a nil logger discards output and a non-positive ttl means
// DefaultTTL.
func NewManager(store Store, catalog species.Catalog, runner *pipeline.Runner, logger *log.Logger, ttl time.Duration) *Manager {
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, catalog, logger)
	}
	if catalog == nil {
		catalog = runner.Catalog
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:    store,
		catalog:  catalog,
		runner:   runner,
		logger:   logger,
		ttl:      ttl,
		watchers: make(map[string]map[int]chan *Session),
	}
}

// Create starts a session for speciesID, or for the first catalogue
// species when speciesID is empty.
func (m *Manager) Create(ctx context.Context, speciesID string) (*Session, error) {
	sp, err := m.species(ctx, speciesID)
	if err != nil {
		return nil, err
	}
	sess := New(sp, m.ttl)
	if err := m.store.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	observability.Session().OnSessionCreate(ctx, sess.ID, sp.ID)
	m.logger.Debug("created session", "session", sess.ID, "species", sp.ID)
	return sess, nil
}

// Get returns the session or an error with code SESSION_NOT_FOUND.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return nil, arborerrors.Wrap(arborerrors.ErrCodeSessionNotFound, ErrNotFound, "session %q not found", id)
	}
	return sess, nil
}

// Update applies p. Validation failures leave the stored session untouched.
func (m *Manager) Update(ctx context.Context, id string, p Patch) (*Session, error) {
	return m.mutate(ctx, id, func(sess *Session) error {
		if p.SpeciesID != nil && *p.SpeciesID != sess.SpeciesID {
			sp, err := m.species(ctx, *p.SpeciesID)
			if err != nil {
				return err
			}
			sess.SetSpecies(sp)
		}
		if p.Iterations != nil {
			if err := sess.SetIterations(*p.Iterations); err != nil {
				return err
			}
		}
		if p.Angle != nil {
			if err := sess.SetAngle(*p.Angle); err != nil {
				return err
			}
		}
		if p.Step != nil {
			if err := sess.SetStep(*p.Step); err != nil {
				return err
			}
		}
		if p.Thickness != nil {
			if err := sess.SetThickness(*p.Thickness); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the session and closes its watchers.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	m.closeWatchers(id)
	return nil
}

// Prune cuts branchID: the branch and everything beneath it in the full
// tree are added to the session's cuts. It returns the updated session and
// the size of the cut subtree. The root and unknown branches are rejected.
func (m *Manager) Prune(ctx context.Context, id, branchID string) (*Session, int, error) {
	if err := arborerrors.ValidateBranchID(branchID); err != nil {
		return nil, 0, err
	}
	var closure prune.Set
	sess, err := m.mutate(ctx, id, func(sess *Session) error {
		full, err := m.runner.Grow(ctx, sess.Options())
		if err != nil {
			return err
		}
		closure = prune.Subtree(full, branchID)
		if closure.Len() == 0 {
			return arborerrors.New(arborerrors.ErrCodeBranchNotFound, "branch %q not found", branchID)
		}
		return sess.AddPruned(closure.Sorted()...)
	})
	if err != nil {
		return nil, 0, err
	}
	observability.Session().OnPrune(ctx, id, branchID, closure.Len())
	m.logger.Debug("pruned branch", "session", id, "branch", branchID, "removed", closure.Len())
	return sess, closure.Len(), nil
}

// ClearPruned removes every cut.
func (m *Manager) ClearPruned(ctx context.Context, id string) (*Session, error) {
	return m.mutate(ctx, id, func(sess *Session) error {
		sess.ClearPruned()
		return nil
	})
}

// Reset restores the species defaults and removes every cut.
func (m *Manager) Reset(ctx context.Context, id string) (*Session, error) {
	sess, err := m.mutate(ctx, id, func(sess *Session) error {
		sp, err := m.species(ctx, sess.SpeciesID)
		if err != nil {
			return err
		}
		sess.Reset(sp)
		return nil
	})
	if err != nil {
		return nil, err
	}
	observability.Session().OnReset(ctx, id)
	return sess, nil
}

// Trees returns the full control tree and the pruned view of a session.
func (m *Manager) Trees(ctx context.Context, id string) (full, pruned *tree.Tree, err error) {
	sess, err := m.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	full, err = m.runner.Grow(ctx, sess.Options())
	if err != nil {
		return nil, nil, err
	}
	pruned, _, err = m.runner.Prune(ctx, full, sess.Pruned)
	if err != nil {
		return nil, nil, err
	}
	return full, pruned, nil
}

// Execute runs the whole pipeline for a session, rendering formats.
func (m *Manager) Execute(ctx context.Context, id string, formats ...string) (*pipeline.Result, error) {
	sess, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.runner.Execute(ctx, sess.Options(formats...))
}

// Watch subscribes to changes of session id. The channel carries the
// latest state after each change; a slow reader only misses intermediate
// states. The channel is closed by cancel or when the session is deleted.
func (m *Manager) Watch(id string) (<-chan *Session, func()) {
	ch := make(chan *Session, 1)

	m.watchMu.Lock()
	subs := m.watchers[id]
	if subs == nil {
		subs = make(map[int]chan *Session)
		m.watchers[id] = subs
	}
	wid := m.nextID
	m.nextID++
	subs[wid] = ch
	m.watchMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.watchMu.Lock()
			defer m.watchMu.Unlock()
			if subs, ok := m.watchers[id]; ok {
				if c, ok := subs[wid]; ok {
					delete(subs, wid)
					close(c)
				}
				if len(subs) == 0 {
					delete(m.watchers, id)
				}
			}
		})
	}
	return ch, cancel
}

func (m *Manager) mutate(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.Touch(m.ttl)
	if err := m.store.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	m.notify(sess)
	return sess, nil
}

func (m *Manager) notify(sess *Session) {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	for _, ch := range m.watchers[sess.ID] {
		snapshot := sess.Clone()
		select {
		case ch <- snapshot:
			continue
		default:
		}
		// Replace the stale pending value with the latest one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}

func (m *Manager) closeWatchers(id string) {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	for _, ch := range m.watchers[id] {
		close(ch)
	}
	delete(m.watchers, id)
}

func (m *Manager) species(ctx context.Context, id string) (species.Species, error) {
	if id == "" {
		return species.First(ctx, m.catalog)
	}
	if err := arborerrors.ValidateSpeciesID(id); err != nil {
		return species.Species{}, err
	}
	return m.catalog.Get(ctx, id)
}
