package graph

import (
	"github.com/matzehuels/arbor/pkg/core/tree"
	"github.com/matzehuels/arbor/pkg/errors"
)

// Vec is a 3D point in the wire format.
type Vec struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	Z float64 `json:"z" bson:"z"`
}

// VecOf converts a tree point.
func VecOf(p tree.Point) Vec { return Vec{p[0], p[1], p[2]} }

// Point converts back to a tree point.
func (v Vec) Point() tree.Point { return tree.Point{v.X, v.Y, v.Z} }

// Branch is one serialized segment with its children nested.
type Branch struct {
	ID       string    `json:"id" bson:"id"`
	ParentID string    `json:"parentId,omitempty" bson:"parent_id,omitempty"`
	Start    Vec       `json:"start" bson:"start"`
	End      Vec       `json:"end" bson:"end"`
	Depth    int       `json:"depth" bson:"depth"`
	Children []*Branch `json:"children" bson:"children"`
}

// MaxDecodeDepth bounds the nesting accepted by ReadTree.
const MaxDecodeDepth = 10000

// FromTree converts a tree to its nested form. Leaves get an empty, non-nil
// Children slice so they encode as [].
func FromTree(t *tree.Tree) *Branch {
	rootSeg := t.Root()
	root := branchOf(rootSeg)
	nodes := map[string]*Branch{tree.RootID: root}

	// Branches is pre-order, so every parent is created before its children.
	for _, s := range t.Branches() {
		b := branchOf(s)
		nodes[s.ID] = b
		p := nodes[s.ParentID]
		p.Children = append(p.Children, b)
	}
	return root
}

func branchOf(s tree.Segment) *Branch {
	return &Branch{
		ID:       s.ID,
		ParentID: s.ParentID,
		Start:    VecOf(s.Start),
		End:      VecOf(s.End),
		Depth:    s.Depth,
		Children: []*Branch{},
	}
}

// ToTree rebuilds a tree from its nested form. The root must carry the id
// "root"; its coordinates and depth are ignored. Child order is preserved.
// Duplicate or empty ids and nesting deeper than MaxDecodeDepth fail with
// errors.ErrCodeInvalidFormat.
func ToTree(root *Branch) (*tree.Tree, error) {
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "tree has no root")
	}
	if root.ID != tree.RootID {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "root id must be %q, got %q", tree.RootID, root.ID)
	}

	type frame struct {
		b      *Branch
		parent string
		level  int
	}

	t := tree.New()
	stack := make([]frame, 0, len(root.Children))
	for i := len(root.Children) - 1; i >= 0; i-- {
		stack = append(stack, frame{root.Children[i], tree.RootID, 1})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.b == nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "null branch under %q", f.parent)
		}
		if f.level > MaxDecodeDepth {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "tree nesting exceeds %d", MaxDecodeDepth)
		}
		seg := tree.Segment{
			ID:    f.b.ID,
			Start: f.b.Start.Point(),
			End:   f.b.End.Point(),
			Depth: f.b.Depth,
		}
		if err := t.Add(f.parent, seg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "branch %q", f.b.ID)
		}
		for i := len(f.b.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.b.Children[i], f.b.ID, f.level + 1})
		}
	}
	return t, nil
}

// Count returns the number of branches in the nested form, root included.
func (b *Branch) Count() int {
	if b == nil {
		return 0
	}
	n := 0
	stack := []*Branch{b}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n++
		stack = append(stack, cur.Children...)
	}
	return n
}
