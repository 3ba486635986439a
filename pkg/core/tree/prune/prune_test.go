package prune_test

import (
	"slices"
	"testing"

	"github.com/matzehuels/arbor/pkg/core/lsystem"
	"github.com/matzehuels/arbor/pkg/core/tree"
	"github.com/matzehuels/arbor/pkg/core/tree/prune"
	"github.com/matzehuels/arbor/pkg/core/turtle"
)

// grow builds a bushy test tree from a classic branching grammar.
func grow(t *testing.T, iterations int) *tree.Tree {
	t.Helper()
	rules := lsystem.Rules{'X': "F[+X][-X]FX", 'F': "FF"}
	s, err := lsystem.Expand("X", rules, iterations)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := turtle.Interpret(s, 25.7, 1)
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

// referenceSubtree is a plain recursive search that does not rely on the
// arena index.
func referenceSubtree(tr *tree.Tree, target string) prune.Set {
	out := prune.NewSet()
	var collect func(id string)
	collect = func(id string) {
		out.Add(id)
		for _, c := range tr.Children(id) {
			collect(c)
		}
	}
	var find func(id string) bool
	find = func(id string) bool {
		if id == target {
			collect(id)
			return true
		}
		for _, c := range tr.Children(id) {
			if find(c) {
				return true
			}
		}
		return false
	}
	find(tree.RootID)
	return out
}

func TestSubtreeMatchesReference(t *testing.T) {
	tr := grow(t, 3)
	for _, id := range tr.IDs() {
		got := prune.Subtree(tr, id)
		want := referenceSubtree(tr, id)
		if !got.Equal(want) {
			t.Fatalf("Subtree(%s) = %d ids, want %d", id, got.Len(), want.Len())
		}
		if !got.Has(id) {
			t.Fatalf("Subtree(%s) missing target", id)
		}
	}
}

func TestSubtreeUnknown(t *testing.T) {
	tr := grow(t, 2)
	for _, id := range []string{"", "root-9", "root-0-99", "oak"} {
		if got := prune.Subtree(tr, id); got.Len() != 0 {
			t.Errorf("Subtree(%q) = %v, want empty", id, got.Sorted())
		}
	}
	if got := prune.Subtree(nil, "root"); got.Len() != 0 {
		t.Error("Subtree(nil) should be empty")
	}
}

func TestSubtreeOfLeaf(t *testing.T) {
	tr := grow(t, 2)
	for _, leaf := range tr.Leaves() {
		got := prune.Subtree(tr, leaf)
		if got.Len() != 1 || !got.Has(leaf) {
			t.Errorf("Subtree(%s) = %v", leaf, got.Sorted())
		}
	}
}

func TestSubtreeOfRoot(t *testing.T) {
	tr := grow(t, 2)
	if got := prune.Subtree(tr, tree.RootID); got.Len() != tr.Len() {
		t.Errorf("Subtree(root) has %d ids, tree has %d", got.Len(), tr.Len())
	}
}

func TestClosure(t *testing.T) {
	tr := grow(t, 3)
	ids := tr.Branches()
	a, b := ids[1].ID, ids[len(ids)-1].ID

	want := prune.Subtree(tr, a)
	want.Union(prune.Subtree(tr, b))
	if got := prune.Closure(tr, a, b, "missing"); !got.Equal(want) {
		t.Errorf("Closure = %d ids, want %d", got.Len(), want.Len())
	}
}

func TestFilterEmptySetCopies(t *testing.T) {
	tr := grow(t, 3)
	view := prune.Filter(tr, nil)
	if !view.Equal(tr) {
		t.Fatal("Filter with empty set changed the tree")
	}
	if err := view.Add(tree.RootID, tree.Segment{ID: "root-99"}); err != nil {
		t.Fatal(err)
	}
	if tr.Has("root-99") {
		t.Error("Filter result shares state with input")
	}
}

func TestFilterSound(t *testing.T) {
	tr := grow(t, 3)
	branches := tr.Branches()
	for _, i := range []int{0, 3, len(branches) / 2, len(branches) - 1} {
		target := branches[i].ID
		pruned := prune.Subtree(tr, target)
		view := prune.Filter(tr, pruned)

		if view.Len() != tr.Len()-pruned.Len() {
			t.Errorf("%s: view has %d nodes, want %d", target, view.Len(), tr.Len()-pruned.Len())
		}
		for _, id := range view.IDs() {
			if pruned.Has(id) {
				t.Errorf("%s: pruned id %s survived", target, id)
			}
			orig, _ := tr.Node(id)
			got, _ := view.Node(id)
			if got != orig {
				t.Errorf("%s: %s changed: %+v vs %+v", target, id, got, orig)
			}
			// Surviving children keep their relative order.
			want := slices.DeleteFunc(tr.Children(id), pruned.Has)
			if !slices.Equal(view.Children(id), want) {
				t.Errorf("%s: children of %s = %v, want %v", target, id, view.Children(id), want)
			}
		}
		if removed := prune.Removed(tr, view); !removed.Equal(pruned) {
			t.Errorf("%s: Removed = %v", target, removed.Sorted())
		}
	}
}

func TestFilterIdempotent(t *testing.T) {
	tr := grow(t, 3)
	b := tr.Branches()
	pruned := prune.Closure(tr, b[2].ID, b[len(b)/3].ID)
	once := prune.Filter(tr, pruned)
	twice := prune.Filter(once, pruned)
	if !once.Equal(twice) {
		t.Error("Filter is not idempotent")
	}
}

func TestFilterKeepsRoot(t *testing.T) {
	tr := grow(t, 2)
	view := prune.Filter(tr, prune.NewSet(tree.RootID))
	if !view.Equal(tr) {
		t.Error("root membership should be ignored")
	}
	all := prune.Subtree(tr, tree.RootID)
	view = prune.Filter(tr, all)
	if view.Len() != 1 || view.Root().ID != tree.RootID {
		t.Errorf("pruning everything left %v", view.IDs())
	}
}

func TestFilterNil(t *testing.T) {
	if got := prune.Filter(nil, nil); got.Len() != 1 {
		t.Errorf("Filter(nil) = %v", got.IDs())
	}
}

func TestSet(t *testing.T) {
	s := prune.NewSet("b", "a")
	s.Add("c", "a")
	if s.Len() != 3 || !slices.Equal(s.Sorted(), []string{"a", "b", "c"}) {
		t.Errorf("Sorted() = %v", s.Sorted())
	}
	var nilSet prune.Set
	if nilSet.Has("a") || nilSet.Len() != 0 {
		t.Error("nil set should be empty")
	}
	if s.Equal(prune.NewSet("a", "b")) || !s.Equal(prune.NewSet("c", "b", "a")) {
		t.Error("Equal mismatch")
	}
}
