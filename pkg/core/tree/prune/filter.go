package prune

import "github.com/matzehuels/arbor/pkg/core/tree"

// Filter returns a new tree without the segments whose identities are in
// pruned, and without anything beneath them. Surviving segments keep all
// of their fields, and each keeps its surviving children in their original
// order. The root is never removed.
//
// The result shares no mutable state with t. Filtering with an empty set
// yields a copy equal to t, and filtering twice with the same set yields
// the same tree as filtering once.
func Filter(t *tree.Tree, pruned Set) *tree.Tree {
	if t == nil {
		return tree.New()
	}
	return t.Without(pruned.Has)
}

// Removed returns the identities present in full but absent from view.
func Removed(full, view *tree.Tree) Set {
	out := NewSet()
	for _, id := range full.IDs() {
		if !view.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}
