package prune

import (
	"maps"
	"slices"
)

// Set is a set of branch identities.
type Set map[string]struct{}

// NewSet returns a set holding ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts ids into the set.
func (s Set) Add(ids ...string) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Has reports whether id is in the set. A nil set contains nothing.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of identities in the set.
func (s Set) Len() int { return len(s) }

// Union adds every identity of o to s.
func (s Set) Union(o Set) {
	for id := range o {
		s[id] = struct{}{}
	}
}

// Sorted returns the identities in lexical order.
func (s Set) Sorted() []string { return slices.Sorted(maps.Keys(s)) }

// Equal reports whether s and o hold the same identities.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if !o.Has(id) {
			return false
		}
	}
	return true
}
