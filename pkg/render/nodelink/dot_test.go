package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/arbor/pkg/core/tree"
	"github.com/matzehuels/arbor/pkg/core/tree/prune"
	"github.com/matzehuels/arbor/pkg/core/turtle"
)

func sample(t *testing.T) *tree.Tree {
	t.Helper()
	tr, err := turtle.Interpret("F[+F]F", 90, 1)
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func TestToDOTBasic(t *testing.T) {
	dot := ToDOT(sample(t), Options{})

	for _, want := range []string{
		"digraph G",
		`"root" [label="root", shape=point`,
		`"root-0-0" [label="root-0-0"]`,
		`"root" -> "root-0";`,
		`"root-0" -> "root-0-0";`,
		`"root-0" -> "root-0-1";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sample(t), Options{Detailed: true})
	if !strings.Contains(dot, `depth: 1`) || !strings.Contains(dot, `length: 1`) {
		t.Errorf("detailed labels missing:\n%s", dot)
	}
}

func TestToDOTPruned(t *testing.T) {
	tr := sample(t)
	dot := ToDOT(tr, Options{Pruned: prune.Subtree(tr, "root-0-0")})

	if !strings.Contains(dot, `"root-0" -> "root-0-0" [style=dashed`) {
		t.Errorf("pruned edge not dashed:\n%s", dot)
	}
	if strings.Contains(dot, `"root-0" -> "root-0-1" [style=dashed`) {
		t.Error("kept edge drawn dashed")
	}
	if strings.Count(dot, "lightgrey") != 1 {
		t.Errorf("want exactly one greyed node:\n%s", dot)
	}
}

func TestToDOTSketch(t *testing.T) {
	dot := ToDOT(sample(t), Options{Sketch: true, Scale: 1})

	for _, want := range []string{
		"graph G {",
		"layout=neato;",
		`"root" [pos="0.000,0.000!"]`,
		`"root-0" [pos="0.000,1.000!"]`,
		`"root-0-1" [pos="0.000,2.000!"]`,
		`"root-0" -- "root-0-0"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("sketch missing %q:\n%s", want, dot)
		}
	}
	if m := layoutAttrRe.FindStringSubmatch(dot); m == nil || m[1] != "neato" {
		t.Errorf("layout attribute not detected: %v", m)
	}
}

func TestFmtLabel(t *testing.T) {
	s := tree.Segment{ID: "root-0-3", End: tree.Point{0, 2, 0}, Depth: 2}
	if got := fmtLabel(s, false); got != "root-0-3" {
		t.Errorf("fmtLabel() simple = %q", got)
	}
	got := fmtLabel(s, true)
	if !strings.Contains(got, "depth: 2") || !strings.Contains(got, "length: 2") {
		t.Errorf("fmtLabel() detailed = %q", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering is slow")
	}
	ctx := context.Background()
	for _, opts := range []Options{{}, {Sketch: true}} {
		svg, err := RenderSVG(ctx, ToDOT(sample(t), opts))
		if err != nil {
			t.Fatalf("RenderSVG(sketch=%v): %v", opts.Sketch, err)
		}
		if !strings.Contains(string(svg), "<svg") {
			t.Errorf("RenderSVG(sketch=%v) returned no svg", opts.Sketch)
		}
	}
}
