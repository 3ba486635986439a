// Package tree provides the branch tree produced by the turtle interpreter.
//
// # Overview
//
// A [Tree] is a rooted hierarchy of branch [Segment] values. Every segment
// has a start and end point in 3D space, a nesting depth and a derived
// identity. The tree always contains a synthetic root with ID [RootID],
// depth -1 and zero length; the root anchors the hierarchy but is not a
// branch itself.
//
// # Identities
//
// Segment identities are derived from the parent identity and a per-parent
// child counter: the first child of "root" is "root-0", its second child
// "root-1", the first child of "root-1" is "root-1-0", and so on. Identities
// therefore encode the full ancestor path and are stable across rebuilds
// for identical grammar inputs. Pruning records stored by identity stay
// meaningful when the tree is regenerated with a different angle or step.
//
// # Storage
//
// Segments live in an arena keyed by identity. Each node stores its child
// identities in creation order, and the parent link is the ParentID string
// resolved by lookup, so there are no pointer cycles between parents and
// children. Traversals are iterative and do not depend on the goroutine
// stack, which keeps very deep bracket nesting safe.
//
// # Immutability
//
// Builders populate a tree with [Tree.Add]. After a builder returns the
// tree, consumers treat it as immutable: accessors return copies, and
// derived views such as pruned trees are new [Tree] values built with
// [Tree.Clone] or package prune.
package tree
