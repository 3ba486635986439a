package tree

import "math"

// Stats summarises a tree's shape.
type Stats struct {
	Branches    int     `json:"branches"`     // Segments excluding the root
	Leaves      int     `json:"leaves"`       // Branches without children
	MaxDepth    int     `json:"max_depth"`    // Deepest branch depth; RootDepth when empty
	TotalLength float64 `json:"total_length"` // Sum of branch lengths
	Min         Point   `json:"min"`          // Bounding box lower corner
	Max         Point   `json:"max"`          // Bounding box upper corner
}

// Stats computes summary statistics over all branches. The bounding box of
// an empty tree is the origin.
func (t *Tree) Stats() Stats {
	st := Stats{MaxDepth: RootDepth}
	first := true
	t.Walk(RootID, func(s Segment) bool {
		if s.IsRoot() {
			return true
		}
		st.Branches++
		if len(t.children[s.ID]) == 0 {
			st.Leaves++
		}
		st.MaxDepth = max(st.MaxDepth, s.Depth)
		st.TotalLength += s.Length()
		for _, p := range [2]Point{s.Start, s.End} {
			if first {
				st.Min, st.Max = p, p
				first = false
				continue
			}
			for i := range 3 {
				st.Min[i] = math.Min(st.Min[i], p[i])
				st.Max[i] = math.Max(st.Max[i], p[i])
			}
		}
		return true
	})
	return st
}

// MaxDepth returns the deepest branch depth, or RootDepth for a tree
// without branches.
func (t *Tree) MaxDepth() int {
	d := RootDepth
	for id, s := range t.nodes {
		if id != RootID {
			d = max(d, s.Depth)
		}
	}
	return d
}
