// Package nodelink renders branch trees as Graphviz diagrams.
//
// # Usage
//
// Convert a tree to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(t, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels include depth and segment length
//   - Pruned: segments in this set are drawn dashed and grey, so a full
//     tree can be shown with its cuts marked instead of removed
//   - Sketch: emit a geometric silhouette instead of a hierarchy
//
// # DOT Format
//
// Hierarchy diagrams use bottom-to-top layout (rankdir=BT, so the trunk sits
// at the bottom like a real tree) with rounded box nodes. Sketch diagrams
// pin every segment endpoint with pos="x,y!" and must be laid out with neato;
// [RenderSVG] detects this from the graph's layout attribute.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
