package turtle

import (
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/arbor/pkg/core/tree"
	"github.com/matzehuels/arbor/pkg/errors"
)

const eps = 1e-9

func near(a, b tree.Point) bool {
	for i := range 3 {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func mustInterpret(t *testing.T, symbols string, angle, step float64) *tree.Tree {
	t.Helper()
	tr, err := Interpret(symbols, angle, step)
	if err != nil {
		t.Fatalf("Interpret(%q): %v", symbols, err)
	}
	return tr
}

func TestSingleForward(t *testing.T) {
	for _, step := range []float64{1, 0.5, 2.25} {
		tr := mustInterpret(t, "F", 25, step)
		if tr.BranchCount() != 1 {
			t.Fatalf("step %g: BranchCount() = %d, want 1", step, tr.BranchCount())
		}
		s, ok := tr.Node("root-0")
		if !ok {
			t.Fatal("root-0 missing")
		}
		if s.Start != (tree.Point{}) || s.End != (tree.Point{0, step, 0}) {
			t.Errorf("step %g: segment %v -> %v", step, s.Start, s.End)
		}
		if s.Depth != 0 || s.ParentID != tree.RootID {
			t.Errorf("step %g: depth %d parent %q", step, s.Depth, s.ParentID)
		}
	}
}

func TestBranchStructure(t *testing.T) {
	tr := mustInterpret(t, "F[+F]F", 90, 1)

	if got := tr.Children(tree.RootID); len(got) != 1 || got[0] != "root-0" {
		t.Fatalf("root children = %v", got)
	}
	if got := tr.Children("root-0"); len(got) != 2 || got[0] != "root-0-0" || got[1] != "root-0-1" {
		t.Fatalf("root-0 children = %v", got)
	}

	tests := []struct {
		id         string
		start, end tree.Point
		depth      int
	}{
		{"root-0", tree.Point{0, 0, 0}, tree.Point{0, 1, 0}, 0},
		{"root-0-0", tree.Point{0, 1, 0}, tree.Point{-1, 1, 0}, 1},
		{"root-0-1", tree.Point{0, 1, 0}, tree.Point{0, 2, 0}, 0},
	}
	for _, tt := range tests {
		s, ok := tr.Node(tt.id)
		if !ok {
			t.Errorf("%s missing", tt.id)
			continue
		}
		if !near(s.Start, tt.start) || !near(s.End, tt.end) {
			t.Errorf("%s: %v -> %v, want %v -> %v", tt.id, s.Start, s.End, tt.start, tt.end)
		}
		if s.Depth != tt.depth {
			t.Errorf("%s: depth %d, want %d", tt.id, s.Depth, tt.depth)
		}
	}
}

func TestRotations(t *testing.T) {
	// Each case draws one unit segment after a 90° command.
	tests := []struct {
		symbols string
		end     tree.Point
	}{
		{"+F", tree.Point{-1, 0, 0}},
		{"-F", tree.Point{1, 0, 0}},
		{"&F", tree.Point{0, 0, 1}},
		{"^F", tree.Point{0, 0, -1}},
		{"\\F", tree.Point{0, 1, 0}},
		{"/F", tree.Point{0, 1, 0}},
		{"|F", tree.Point{0, -1, 0}},
		{"\\+F", tree.Point{0, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.symbols, func(t *testing.T) {
			tr := mustInterpret(t, tt.symbols, 90, 1)
			s, _ := tr.Node("root-0")
			if !near(s.End, tt.end) {
				t.Errorf("end = %v, want %v", s.End, tt.end)
			}
		})
	}
}

func TestUnmatchedPopIgnored(t *testing.T) {
	base := mustInterpret(t, "F[+F]F", 30, 1)
	for _, symbols := range []string{"F[+F]]F", "]F[+F]F", "F[+F]F]]]"} {
		if got := mustInterpret(t, symbols, 30, 1); !got.Equal(base) {
			t.Errorf("%q differs from %q", symbols, "F[+F]F")
		}
	}
}

func TestUnclosedPush(t *testing.T) {
	tr := mustInterpret(t, "F[+F", 30, 1)
	if tr.BranchCount() != 2 {
		t.Errorf("BranchCount() = %d, want 2", tr.BranchCount())
	}
	s, _ := tr.Node("root-0-0")
	if s.Depth != 1 {
		t.Errorf("depth = %d, want 1", s.Depth)
	}
}

func TestEmptyAndIgnored(t *testing.T) {
	for _, symbols := range []string{"", "XYZ+-&^", "[[]]", "ABéC"} {
		tr := mustInterpret(t, symbols, 22.5, 1)
		if tr.Len() != 1 {
			t.Errorf("%q: Len() = %d, want root only", symbols, tr.Len())
		}
	}
	a := mustInterpret(t, "FXF[Y+F]", 22.5, 1)
	b := mustInterpret(t, "FF[+F]", 22.5, 1)
	if !a.Equal(b) {
		t.Error("non-command symbols changed the tree")
	}
}

func TestInvalidArguments(t *testing.T) {
	tests := []struct {
		name        string
		angle, step float64
	}{
		{"nan angle", math.NaN(), 1},
		{"inf angle", math.Inf(1), 1},
		{"nan step", 22.5, math.NaN()},
		{"-inf step", 22.5, math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Interpret("F", tt.angle, tt.step)
			if !errors.Is(err, errors.ErrCodeInvalidArgument) {
				t.Errorf("err = %v, want invalid argument", err)
			}
		})
	}
}

func TestDeterministic(t *testing.T) {
	symbols := strings.Repeat("F[+F&F][-F^F]\\F", 20)
	a := mustInterpret(t, symbols, 22.5, 1)
	b := mustInterpret(t, symbols, 22.5, 1)
	if !a.Equal(b) {
		t.Error("two runs produced different trees")
	}
}

func TestIDsFollowParentCounters(t *testing.T) {
	tr := mustInterpret(t, "F[F][F]F", 20, 1)
	want := []string{"root", "root-0", "root-0-0", "root-0-1", "root-0-2"}
	got := tr.IDs()
	if len(got) != len(want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IDs() = %v, want %v", got, want)
		}
	}
	for _, s := range tr.Branches() {
		if !strings.HasPrefix(s.ID, s.ParentID+"-") {
			t.Errorf("%s not derived from parent %s", s.ID, s.ParentID)
		}
	}
}

func TestRenormalizeKeepsGeometry(t *testing.T) {
	symbols := strings.Repeat("F+&\\F-^/", 50)
	plain := mustInterpret(t, symbols, 17, 1)
	renorm, err := InterpretWith(symbols, 17, 1, Options{Renormalize: true})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range plain.Branches() {
		r, ok := renorm.Node(s.ID)
		if !ok {
			t.Fatalf("%s missing from renormalized tree", s.ID)
		}
		for i := range 3 {
			if math.Abs(s.End[i]-r.End[i]) > 1e-6 {
				t.Fatalf("%s: %v vs %v", s.ID, s.End, r.End)
			}
		}
	}
}

func TestSegmentLengthsEqualStep(t *testing.T) {
	tr := mustInterpret(t, strings.Repeat("F[+&F][-^F]\\", 30), 33, 1.5)
	for _, s := range tr.Branches() {
		if math.Abs(s.Length()-1.5) > 1e-9 {
			t.Fatalf("%s: length %g", s.ID, s.Length())
		}
	}
}
