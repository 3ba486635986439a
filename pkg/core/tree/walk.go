package tree

// Walk visits the subtree rooted at id in pre-order. Siblings are visited
// in creation order. Returning false from fn stops the walk. Walk does
// nothing when id does not exist.
//
// The traversal uses an explicit stack, so nesting depth is limited only
// by memory.
func (t *Tree) Walk(id string, fn func(Segment) bool) {
	if _, ok := t.nodes[id]; !ok {
		return
	}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(*t.nodes[cur]) {
			return
		}
		kids := t.children[cur]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
}

// Find returns the first segment in pre-order from the root for which
// match returns true.
func (t *Tree) Find(match func(Segment) bool) (Segment, bool) {
	var found Segment
	var ok bool
	t.Walk(RootID, func(s Segment) bool {
		if match(s) {
			found, ok = s, true
			return false
		}
		return true
	})
	return found, ok
}

// Leaves returns the IDs of segments without children, excluding the root,
// in pre-order.
func (t *Tree) Leaves() []string {
	var out []string
	t.Walk(RootID, func(s Segment) bool {
		if !s.IsRoot() && len(t.children[s.ID]) == 0 {
			out = append(out, s.ID)
		}
		return true
	})
	return out
}

// Ancestors returns the IDs from the root down to, but excluding, id.
// Returns nil for the root and for unknown IDs.
func (t *Tree) Ancestors(id string) []string {
	s, ok := t.nodes[id]
	if !ok {
		return nil
	}
	var path []string
	for s.ParentID != "" {
		path = append(path, s.ParentID)
		s = t.nodes[s.ParentID]
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
