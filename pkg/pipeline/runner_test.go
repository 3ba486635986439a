package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/graph"
	"github.com/matzehuels/arbor/pkg/observability"
	"github.com/matzehuels/arbor/pkg/species"
)

func newTestRunner() (*Runner, *cache.MemoryCache) {
	c := cache.NewMemoryCache()
	return NewRunner(c, nil, species.Default(), nil), c
}

// branchOpts grows "F[+F]F" at 90 degrees: a trunk segment carrying one
// side branch and one continuation.
func branchOpts() Options {
	return Options{Axiom: "F[+F]F", Angle: 90, Step: 1, Formats: []string{FormatJSON, FormatDOT, FormatTXT}}
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Catalog == nil || r.Logger == nil {
		t.Fatalf("NewRunner(nil...) left nil fields: %+v", r)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestExecuteCustomGrammar(t *testing.T) {
	r, _ := newTestRunner()
	opts := branchOpts()
	opts.Pruned = []string{"root-0-0"}

	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}

	if res.Species != nil {
		t.Errorf("Species = %+v, want nil for custom grammar", res.Species)
	}
	if res.Full.BranchCount() != 3 || res.Pruned.BranchCount() != 2 {
		t.Errorf("branches full=%d pruned=%d, want 3 and 2", res.Full.BranchCount(), res.Pruned.BranchCount())
	}
	if res.Pruned.Has("root-0-0") || !res.Pruned.Has("root-0-1") {
		t.Errorf("pruned view ids = %v", res.Pruned.IDs())
	}
	if got := res.Removed.Sorted(); len(got) != 1 || got[0] != "root-0-0" {
		t.Errorf("Removed = %v", got)
	}
	if res.Stats.Symbols != len("F[+F]F") {
		t.Errorf("Stats.Symbols = %d", res.Stats.Symbols)
	}
	if res.Stats.Removed != 1 || res.Stats.Full.Branches != 3 || res.Stats.Pruned.Branches != 2 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if res.TreeHash == "" {
		t.Error("TreeHash is empty")
	}

	// JSON carries the pruned view.
	view, err := graph.UnmarshalTree(res.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if !view.Equal(res.Pruned) {
		t.Error("json artifact does not match the pruned view")
	}

	// DOT carries the full tree with the cut marked.
	dot := string(res.Artifacts[FormatDOT])
	if !strings.Contains(dot, `"root-0" -> "root-0-0" [style=dashed`) {
		t.Errorf("dot artifact does not mark the cut:\n%s", dot)
	}

	txt := string(res.Artifacts[FormatTXT])
	for _, want := range []string{"(custom grammar)", "Removed segments: 1", "cut root-0-0"} {
		if !strings.Contains(txt, want) {
			t.Errorf("txt artifact missing %q:\n%s", want, txt)
		}
	}
}

func TestExecuteSpecies(t *testing.T) {
	r, _ := newTestRunner()
	res, err := r.Execute(context.Background(), Options{SpeciesID: "silver-birch", Iterations: Iter(3)})
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	if res.Species == nil || res.Species.ID != "silver-birch" {
		t.Fatalf("Species = %+v", res.Species)
	}
	if res.Options.Angle != res.Species.DefaultAngle || res.Options.Step != res.Species.DefaultStep {
		t.Errorf("species defaults not applied: angle=%g step=%g", res.Options.Angle, res.Options.Step)
	}
	if res.Full.BranchCount() == 0 {
		t.Error("species grew no branches")
	}
	if !res.Full.Equal(res.Pruned) {
		t.Error("unpruned run should yield an identical view")
	}
}

func TestExecuteDefaultsToFirstSpecies(t *testing.T) {
	r, _ := newTestRunner()
	res, err := r.Execute(context.Background(), Options{Iterations: Iter(2)})
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	first, _ := species.First(context.Background(), species.Default())
	if res.Options.SpeciesID != first.ID {
		t.Errorf("SpeciesID = %q, want %q", res.Options.SpeciesID, first.ID)
	}
}

func TestExecuteOverridesSpeciesDefaults(t *testing.T) {
	r, _ := newTestRunner()
	res, err := r.Execute(context.Background(), Options{SpeciesID: "silver-birch", Iterations: Iter(2), Angle: 40, Step: 1.5})
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	if res.Options.Angle != 40 || res.Options.Step != 1.5 {
		t.Errorf("explicit parameters overridden: angle=%g step=%g", res.Options.Angle, res.Options.Step)
	}
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"unknown species", Options{SpeciesID: "baobab"}, errors.ErrCodeSpeciesNotFound},
		{"bad species id", Options{SpeciesID: "Not Valid"}, errors.ErrCodeInvalidSpecies},
		{"unknown branch", Options{Axiom: "F", Pruned: []string{"root-9"}}, errors.ErrCodeBranchNotFound},
		{"root branch", Options{Axiom: "F", Pruned: []string{"root"}}, errors.ErrCodeInvalidBranch},
		{"bad format", Options{Axiom: "F", Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"too large", Options{Axiom: "F", Rules: map[string]string{"F": "FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF"}, Iterations: Iter(7)}, errors.ErrCodeInvalidArgument},
	}

	r, _ := newTestRunner()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(context.Background(), tt.opts)
			if !errors.Is(err, tt.code) {
				t.Fatalf("Execute() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestExecuteCaching(t *testing.T) {
	r, c := newTestRunner()
	ctx := context.Background()

	first, err := r.Execute(ctx, branchOpts())
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.GrowHit || first.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v, want misses", first.CacheInfo)
	}
	if c.Len() == 0 {
		t.Fatal("nothing was cached")
	}

	second, err := r.Execute(ctx, branchOpts())
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.GrowHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want hits", second.CacheInfo)
	}
	if !second.Full.Equal(first.Full) {
		t.Error("cached tree differs from grown tree")
	}
	if string(second.Artifacts[FormatDOT]) != string(first.Artifacts[FormatDOT]) {
		t.Error("cached artifact differs")
	}

	// Different cuts render fresh artifacts from the cached tree.
	opts := branchOpts()
	opts.Pruned = []string{"root-0-1"}
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !third.CacheInfo.GrowHit || third.CacheInfo.RenderHit {
		t.Errorf("new cuts CacheInfo = %+v, want grow hit and render miss", third.CacheInfo)
	}

	opts = branchOpts()
	opts.Refresh = true
	fourth, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.GrowHit {
		t.Error("refresh should bypass the tree cache")
	}
}

func TestGrowCacheSeparatesGrammars(t *testing.T) {
	r, _ := newTestRunner()
	ctx := context.Background()

	// Both grammars print as "F=F; X=F".
	joined := Options{Axiom: "F", Rules: map[string]string{"F": "F; X=F"}, Iterations: Iter(1)}
	split := Options{Axiom: "F", Rules: map[string]string{"F": "F", "X": "F"}, Iterations: Iter(1)}

	first, err := r.Grow(ctx, joined)
	if err != nil {
		t.Fatal(err)
	}
	if first.BranchCount() != 2 {
		t.Fatalf("first grammar: %d branches, want 2", first.BranchCount())
	}

	second, hit, err := r.GrowWithCacheInfo(ctx, split)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("second grammar was served from the first grammar's cache entry")
	}
	if second.BranchCount() != 1 {
		t.Errorf("second grammar: %d branches, want 1", second.BranchCount())
	}
}

func TestGrowIgnoresCorruptCache(t *testing.T) {
	r, c := newTestRunner()
	ctx := context.Background()
	opts := branchOpts()
	opts.SetGrowDefaults()

	key := r.Keyer.TreeKey(opts.TreeKeyOpts())
	if err := c.Set(ctx, key, []byte("not json"), time.Hour); err != nil {
		t.Fatal(err)
	}

	tr, hit, err := r.GrowWithCacheInfo(ctx, opts)
	if err != nil {
		t.Fatalf("Grow() = %v", err)
	}
	if hit {
		t.Error("corrupt entry reported as hit")
	}
	if tr.BranchCount() != 3 {
		t.Errorf("BranchCount() = %d, want 3", tr.BranchCount())
	}
}

func TestGrowCanceled(t *testing.T) {
	r, _ := newTestRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Grow(ctx, branchOpts()); err == nil {
		t.Error("Grow() on canceled context should fail")
	}
}

func TestExpand(t *testing.T) {
	r, _ := newTestRunner()
	got, err := r.Expand(context.Background(), Options{Axiom: "F", Rules: map[string]string{"F": "F+F"}, Iterations: Iter(2)})
	if err != nil {
		t.Fatal(err)
	}
	if got != "F+F+F+F" {
		t.Errorf("Expand() = %q, want %q", got, "F+F+F+F")
	}
}

func TestReportCustomGrammar(t *testing.T) {
	r, _ := newTestRunner()
	opts := Options{Axiom: "F", Rules: map[string]string{"F": "F[+F]"}, Iterations: Iter(0), Formats: []string{FormatTXT}}
	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	txt := string(res.Artifacts[FormatTXT])
	for _, want := range []string{"(custom grammar)", "F=F[+F]", "Branches"} {
		if !strings.Contains(txt, want) {
			t.Errorf("report missing %q:\n%s", want, txt)
		}
	}
}

func TestExpandIterations(t *testing.T) {
	r, _ := newTestRunner()
	tests := []struct {
		name       string
		iterations *int
		want       string
	}{
		{"default", nil, "FFFFFFFFFFFFFFFF"},
		{"zero keeps axiom", Iter(0), "F"},
		{"one", Iter(1), "FF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Expand(context.Background(), Options{Axiom: "F", Rules: map[string]string{"F": "FF"}, Iterations: tt.iterations})
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Expand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGrowZeroIterations(t *testing.T) {
	r, _ := newTestRunner()
	full, err := r.Grow(context.Background(), Options{Axiom: "F[+F]", Rules: map[string]string{"F": "FF"}, Iterations: Iter(0)})
	if err != nil {
		t.Fatal(err)
	}
	if got := full.BranchCount(); got != 2 {
		t.Errorf("BranchCount() = %d, want 2 (axiom only)", got)
	}
}

func TestPruneClosure(t *testing.T) {
	r, _ := newTestRunner()
	full, err := r.Grow(context.Background(), Options{Axiom: "F[+F[-F]]F", Angle: 30})
	if err != nil {
		t.Fatal(err)
	}

	view, removed, err := r.Prune(context.Background(), full, []string{"root-0-0"})
	if err != nil {
		t.Fatal(err)
	}
	if got := removed.Sorted(); len(got) != 2 || got[0] != "root-0-0" || got[1] != "root-0-0-0" {
		t.Errorf("removed = %v, want the branch and its child", got)
	}
	if view.BranchCount() != full.BranchCount()-2 {
		t.Errorf("view has %d branches, want %d", view.BranchCount(), full.BranchCount()-2)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnGrowStart(context.Context, string, int) { h.record("grow") }
func (h *recordingHooks) OnPruneStart(context.Context, int)        { h.record("prune") }
func (h *recordingHooks) OnRenderStart(context.Context, []string)  { h.record("render") }

func TestExecuteHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	t.Cleanup(observability.Reset)

	r, _ := newTestRunner()
	if _, err := r.Execute(context.Background(), branchOpts()); err != nil {
		t.Fatal(err)
	}

	want := []string{"grow", "prune", "render"}
	if strings.Join(h.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", h.events, want)
	}
}

func TestRenderSketch(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering is slow")
	}
	r, _ := newTestRunner()
	opts := branchOpts()
	opts.Formats = []string{FormatSVG, FormatSketch}
	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range opts.Formats {
		if !strings.Contains(string(res.Artifacts[f]), "<svg") {
			t.Errorf("%s artifact is not svg", f)
		}
	}
}
