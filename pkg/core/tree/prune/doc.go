// Package prune implements subtree closure and filtering over branch trees.
//
// Pruning in Arbor is recorded as a [Set] of branch identities kept by an
// external collaborator (a session). When a user prunes one branch, the
// collaborator first computes the branch's [Subtree] closure and records
// every identity in it. [Filter] then derives the pruned view by dropping
// every node whose own identity is in the set, together with everything
// beneath it.
//
// Because recorded sets always contain complete closures, membership of the
// node itself is enough: Filter never needs to check whether an ancestor
// was pruned.
//
//	full, _ := turtle.Interpret(symbols, 22.5, 1)
//	pruned := prune.NewSet()
//	pruned.Union(prune.Subtree(full, "root-0-1"))
//	view := prune.Filter(full, pruned)
package prune
