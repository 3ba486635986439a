package tree

import (
	"errors"
	"math"
	"slices"
)

// RootID is the identity of the synthetic root segment.
const RootID = "root"

// RootDepth is the depth of the synthetic root segment.
const RootDepth = -1

var (
	// ErrInvalidID is returned by [Tree.Add] when the segment ID is empty.
	ErrInvalidID = errors.New("segment ID must not be empty")

	// ErrDuplicateID is returned by [Tree.Add] when a segment with the same
	// ID already exists. Segment IDs are unique per tree.
	ErrDuplicateID = errors.New("duplicate segment ID")

	// ErrUnknownParent is returned by [Tree.Add] when the parent ID does not
	// name an existing segment.
	ErrUnknownParent = errors.New("unknown parent segment")
)

// Point is a position in world space as (x, y, z).
type Point [3]float64

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p[0] + q[0], p[1] + q[1], p[2] + q[2]} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p[0] - q[0], p[1] - q[1], p[2] - q[2]} }

// Len returns the Euclidean length of p as a vector.
func (p Point) Len() float64 { return math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2]) }

// Segment is one drawn branch unit.
type Segment struct {
	ID       string // Derived identity, see package doc
	ParentID string // Owning segment; empty for the root
	Start    Point  // Start point in world space
	End      Point  // End point in world space
	Depth    int    // Bracket nesting level; RootDepth for the root
}

// IsRoot reports whether s is the synthetic root.
func (s Segment) IsRoot() bool { return s.ID == RootID }

// Length returns the distance between the segment's endpoints.
func (s Segment) Length() float64 { return s.End.Sub(s.Start).Len() }

// Tree is a rooted branch hierarchy stored as an arena of segments.
//
// The zero value is not usable - use New to create a tree with its root.
// Tree is not safe for concurrent mutation; concurrent reads of a fully
// built tree are safe.
type Tree struct {
	nodes    map[string]*Segment
	children map[string][]string // segmentID -> child IDs in creation order
	order    []string            // all IDs in creation order, root first
}

// New creates a tree holding only the synthetic root at the origin.
func New() *Tree {
	root := &Segment{ID: RootID, Depth: RootDepth}
	return &Tree{
		nodes:    map[string]*Segment{RootID: root},
		children: make(map[string][]string),
		order:    []string{RootID},
	}
}

// Add appends s as the last child of parentID. The segment's ParentID is
// set to parentID.
//
// Returns ErrInvalidID for an empty ID, ErrDuplicateID when the ID is taken
// and ErrUnknownParent when parentID does not exist.
func (t *Tree) Add(parentID string, s Segment) error {
	if s.ID == "" {
		return ErrInvalidID
	}
	if _, exists := t.nodes[s.ID]; exists {
		return ErrDuplicateID
	}
	if _, ok := t.nodes[parentID]; !ok {
		return ErrUnknownParent
	}
	t.link(parentID, s)
	return nil
}

// link appends s under parentID. The caller guarantees that parentID
// exists and s.ID is not taken.
func (t *Tree) link(parentID string, s Segment) {
	s.ParentID = parentID
	t.nodes[s.ID] = &s
	t.children[parentID] = append(t.children[parentID], s.ID)
	t.order = append(t.order, s.ID)
}

// Root returns the synthetic root segment.
func (t *Tree) Root() Segment { return *t.nodes[RootID] }

// Node returns a copy of the segment with the given ID and true, or the zero
// segment and false if it does not exist.
func (t *Tree) Node(id string) (Segment, bool) {
	s, ok := t.nodes[id]
	if !ok {
		return Segment{}, false
	}
	return *s, true
}

// Has reports whether a segment with the given ID exists.
func (t *Tree) Has(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

// Children returns the child IDs of id in creation order.
// The returned slice is a copy. Returns nil for leaves and unknown IDs.
func (t *Tree) Children(id string) []string { return slices.Clone(t.children[id]) }

// ChildCount returns the number of direct children of id.
func (t *Tree) ChildCount(id string) int { return len(t.children[id]) }

// Parent returns the parent segment of id. The root and unknown IDs have
// no parent.
func (t *Tree) Parent(id string) (Segment, bool) {
	s, ok := t.nodes[id]
	if !ok || s.ParentID == "" {
		return Segment{}, false
	}
	return t.Node(s.ParentID)
}

// Len returns the number of segments including the root.
func (t *Tree) Len() int { return len(t.nodes) }

// BranchCount returns the number of segments excluding the root.
func (t *Tree) BranchCount() int { return len(t.nodes) - 1 }

// IDs returns every segment ID in creation order, root first.
func (t *Tree) IDs() []string { return slices.Clone(t.order) }

// Branches returns every non-root segment in pre-order (parents before
// children, siblings in creation order).
func (t *Tree) Branches() []Segment {
	out := make([]Segment, 0, t.BranchCount())
	t.Walk(RootID, func(s Segment) bool {
		if !s.IsRoot() {
			out = append(out, s)
		}
		return true
	})
	return out
}

// Clone returns a deep copy of the tree that shares no mutable state with t.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		nodes:    make(map[string]*Segment, len(t.nodes)),
		children: make(map[string][]string, len(t.children)),
		order:    slices.Clone(t.order),
	}
	for id, s := range t.nodes {
		cp := *s
		c.nodes[id] = &cp
	}
	for id, kids := range t.children {
		c.children[id] = slices.Clone(kids)
	}
	return c
}

// Without returns a copy of t minus every segment for which drop reports
// true and everything beneath those segments. The root is always kept.
// Survivors keep their fields and their sibling order, and are stored in
// pre-order.
func (t *Tree) Without(drop func(id string) bool) *Tree {
	out := New()
	stack := []string{RootID}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var kept []string
		for _, id := range t.children[cur] {
			if drop(id) {
				continue
			}
			out.link(cur, *t.nodes[id])
			kept = append(kept, id)
		}
		for i := len(kept) - 1; i >= 0; i-- {
			stack = append(stack, kept[i])
		}
	}
	return out
}

// Equal reports whether t and o hold the same segments with the same child
// order.
func (t *Tree) Equal(o *Tree) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.nodes) != len(o.nodes) {
		return false
	}
	for id, s := range t.nodes {
		os, ok := o.nodes[id]
		if !ok || *s != *os {
			return false
		}
		if !slices.Equal(t.children[id], o.children[id]) {
			return false
		}
	}
	return true
}
