package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/arbor/pkg/core/tree"
	"github.com/matzehuels/arbor/pkg/core/tree/prune"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds depth and length to hierarchy labels.
	Detailed bool

	// Pruned marks segments to draw as cut.
	Pruned prune.Set

	// Sketch emits a geometric silhouette laid out by neato.
	Sketch bool

	// Scale multiplies turtle units into sketch inches. Zero means 0.5.
	Scale float64

	// Thickness multiplies sketch stroke widths. Zero means 1.
	Thickness float64
}

const sketchLayout = "neato"

// ToDOT converts a tree to Graphviz DOT source.
func ToDOT(t *tree.Tree, opts Options) string {
	if opts.Sketch {
		return sketchDOT(t, opts)
	}
	return hierarchyDOT(t, opts)
}

func hierarchyDOT(t *tree.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.1,0.05\"];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("  ranksep=0.3;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	t.Walk(tree.RootID, func(s tree.Segment) bool {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(s, opts.Detailed))}
		switch {
		case s.IsRoot():
			attrs = append(attrs, "shape=point", "width=0.15")
		case opts.Pruned.Has(s.ID):
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=grey40")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", s.ID, strings.Join(attrs, ", "))
		return true
	})

	buf.WriteString("\n")
	t.Walk(tree.RootID, func(s tree.Segment) bool {
		if s.IsRoot() {
			return true
		}
		if opts.Pruned.Has(s.ID) {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, color=grey60];\n", s.ParentID, s.ID)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", s.ParentID, s.ID)
		}
		return true
	})

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(s tree.Segment, detailed bool) string {
	if !detailed || s.IsRoot() {
		return s.ID
	}
	return fmt.Sprintf("%s\ndepth: %d\nlength: %.3g", s.ID, s.Depth, s.Length())
}

// sketchDOT draws every segment as an edge between two pinned points. Each
// segment owns its end point; its start is the parent's end point (or the
// root point), so shared endpoints join up.
func sketchDOT(t *tree.Tree, opts Options) string {
	scale := opts.Scale
	if scale == 0 {
		scale = 0.5
	}
	thickness := opts.Thickness
	if thickness == 0 {
		thickness = 1
	}
	pos := func(p tree.Point) string {
		return fmt.Sprintf("%s,%s!", fmtFloat(p[0]*scale), fmtFloat(p[1]*scale))
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  layout=%s;\n", sketchLayout)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=point, width=0.01, label=\"\"];\n")
	buf.WriteString("  edge [penwidth=2, color=\"#5b3a1e\"];\n")
	buf.WriteString("\n")

	t.Walk(tree.RootID, func(s tree.Segment) bool {
		fmt.Fprintf(&buf, "  %q [pos=%q];\n", s.ID, pos(s.End))
		return true
	})
	buf.WriteString("\n")
	t.Walk(tree.RootID, func(s tree.Segment) bool {
		if s.IsRoot() {
			return true
		}
		// Thinner strokes further out along the branching hierarchy.
		width := max(0.5, 3-0.5*float64(s.Depth)) * thickness
		if opts.Pruned.Has(s.ID) {
			fmt.Fprintf(&buf, "  %q -- %q [penwidth=%s, style=dashed, color=grey70];\n", s.ParentID, s.ID, fmtFloat(width))
		} else {
			fmt.Fprintf(&buf, "  %q -- %q [penwidth=%s];\n", s.ParentID, s.ID, fmtFloat(width))
		}
		return true
	})
	buf.WriteString("}\n")
	return buf.String()
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

var layoutAttrRe = regexp.MustCompile(`(?m)^\s*layout=(\w+);`)

// RenderSVG renders DOT source to SVG using Graphviz. Sketch diagrams are
// laid out with neato, everything else with dot.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	if m := layoutAttrRe.FindStringSubmatch(dot); m != nil && m[1] == sketchLayout {
		gv.SetLayout(graphviz.NEATO)
	}

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's fixed pt-sized <svg> tag with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
