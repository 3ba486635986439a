package prune

import "github.com/matzehuels/arbor/pkg/core/tree"

// Subtree returns the identity of targetID together with the identities of
// all its descendants. The result is empty when no segment has that ID.
//
// Identities are unique within a tree, so the first match of a depth-first
// search from the root is the only match; the arena lookup finds it
// directly and the closure is collected with a pre-order walk.
func Subtree(t *tree.Tree, targetID string) Set {
	out := NewSet()
	if t == nil || !t.Has(targetID) {
		return out
	}
	t.Walk(targetID, func(s tree.Segment) bool {
		out[s.ID] = struct{}{}
		return true
	})
	return out
}

// Closure returns the union of the subtrees of every id. Unknown ids
// contribute nothing.
func Closure(t *tree.Tree, ids ...string) Set {
	out := NewSet()
	for _, id := range ids {
		if out.Has(id) {
			continue
		}
		out.Union(Subtree(t, id))
	}
	return out
}
