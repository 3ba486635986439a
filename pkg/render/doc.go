// Package render groups the output renderers for branch trees.
//
// The [nodelink] subpackage emits Graphviz DOT for two diagram kinds and
// renders them to SVG in-process:
//
//   - hierarchy: one box per segment, edges from parent to child, laid out
//     top-down by dot. Pruned segments can be drawn dashed.
//   - sketch: segment endpoints pinned to their turtle coordinates
//     projected onto the XY plane, laid out by neato. This is a flat
//     silhouette of the tree.
//
//	dot := nodelink.ToDOT(t, nodelink.Options{Pruned: set})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/arbor/pkg/render/nodelink
package render
