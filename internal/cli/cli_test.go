package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/graph"
)

// captureStdout redirects user-facing output to a buffer for the rest of
// the test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

// run executes the root command with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	out := captureStdout(t)
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSpeciesCommands(t *testing.T) {
	out, err := run(t, "species", "list")
	if err != nil {
		t.Fatalf("species list: %v", err)
	}
	for _, want := range []string{"silver-birch", "english-oak", "Quercus robur"} {
		if !strings.Contains(out, want) {
			t.Errorf("species list output missing %q", want)
		}
	}

	out, err = run(t, "species", "show", "english-oak")
	if err != nil {
		t.Fatalf("species show: %v", err)
	}
	if !strings.Contains(out, "25°") {
		t.Errorf("species show output missing angle:\n%s", out)
	}

	if _, err := run(t, "species", "show", "baobab"); !errors.Is(err, errors.ErrCodeSpeciesNotFound) {
		t.Errorf("species show baobab: err = %v, want SPECIES_NOT_FOUND", err)
	}
}

func TestExpandCommand(t *testing.T) {
	out, err := run(t, "expand", "--axiom", "F", "--rule", "F=F[+F]F", "-n", "1")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if got := strings.TrimSpace(out); got != "F[+F]F" {
		t.Errorf("expand = %q, want %q", got, "F[+F]F")
	}

	out, err = run(t, "expand", "--axiom", "F", "--rule", "F=F[+F]F", "-n", "2", "--length")
	if err != nil {
		t.Fatalf("expand --length: %v", err)
	}
	if got := strings.TrimSpace(out); got != "21" {
		t.Errorf("expand --length = %q, want 21", got)
	}

	out, err = run(t, "expand", "--axiom", "F[X]", "--rule", "F=FF", "-n", "0")
	if err != nil {
		t.Fatalf("expand -n 0: %v", err)
	}
	if got := strings.TrimSpace(out); got != "F[X]" {
		t.Errorf("expand -n 0 = %q, want the axiom", got)
	}

	out, err = run(t, "expand", "--axiom", "F", "--rule", "F=FF", "--length")
	if err != nil {
		t.Fatalf("expand default iterations: %v", err)
	}
	if got := strings.TrimSpace(out); got != "16" {
		t.Errorf("expand default iterations = %q, want 16", got)
	}

	if _, err := run(t, "expand", "--axiom", "F", "--rule", "FF=F"); !errors.IsInvalid(err) {
		t.Errorf("multi-rune rule key: err = %v, want invalid", err)
	}

	out, err = run(t, "expand", "--axiom", "F", "--rule", "F=F]F", "-n", "1")
	if err != nil {
		t.Fatalf("lenient expand: %v", err)
	}
	if got := strings.TrimSpace(out); got != "F]F" {
		t.Errorf("expand = %q, want %q", got, "F]F")
	}
	if _, err := run(t, "expand", "--axiom", "F", "--rule", "F=F]F", "--strict"); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("strict expand: err = %v, want INVALID_ARGUMENT", err)
	}
}

func TestGrowCommand(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "oak")

	out, err := run(t, "grow", "--species", "english-oak", "-n", "2", "--prune", "root-0-0",
		"--no-cache", "-o", base, "-f", "json,txt", "--tree")
	if err != nil {
		t.Fatalf("grow: %v", err)
	}
	if !strings.Contains(out, "English oak") {
		t.Errorf("grow output missing species name:\n%s", out)
	}
	if !strings.Contains(out, iconCut) {
		t.Errorf("grow --tree output missing cut marker:\n%s", out)
	}

	data, err := os.ReadFile(base + ".json")
	if err != nil {
		t.Fatalf("read json output: %v", err)
	}
	var b graph.Branch
	if err := json.Unmarshal(data, &b); err != nil {
		t.Fatalf("decode json output: %v", err)
	}
	if b.ID != "root" {
		t.Errorf("json root id = %q, want root", b.ID)
	}

	report, err := os.ReadFile(base + ".txt")
	if err != nil {
		t.Fatalf("read txt output: %v", err)
	}
	if !strings.Contains(string(report), "root-0-0") {
		t.Errorf("report does not mention the cut branch:\n%s", report)
	}
}

func TestGrowCommandPrintsReport(t *testing.T) {
	out, err := run(t, "grow", "--axiom", "F", "--rule", "F=F[+F]F", "-n", "1", "--no-cache")
	if err != nil {
		t.Fatalf("grow: %v", err)
	}
	if !strings.Contains(out, "Tree pruning comparison report") {
		t.Errorf("grow without --output should print the report:\n%s", out)
	}
}

func TestGrowCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"watch without catalog", []string{"grow", "--watch"}},
		{"bad format", []string{"grow", "-f", "pdf"}},
		{"too many iterations", []string{"grow", "-n", "9", "--no-cache"}},
		{"root cut", []string{"grow", "-n", "1", "--prune", "root", "--no-cache"}},
		{"bad rule", []string{"grow", "--axiom", "F", "--rule", "F"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Errorf("%v: expected error", tt.args)
			}
		})
	}
}

func TestResolveFormats(t *testing.T) {
	tests := []struct {
		name    string
		flags   growFlags
		want    []string
		wantErr bool
	}{
		{"default report", growFlags{}, []string{"txt"}, false},
		{"explicit list", growFlags{formats: "svg, dot"}, []string{"svg", "dot"}, false},
		{"from extension", growFlags{output: "oak.dot"}, []string{"dot"}, false},
		{"sketch extension", growFlags{output: "oak.sketch.svg"}, []string{"sketch"}, false},
		{"unknown extension", growFlags{output: "oak.out"}, []string{"json"}, false},
		{"invalid", growFlags{formats: "png"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.flags.resolveFormats()
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveFormats() error = %v, wantErr %v", err, tt.wantErr)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("resolveFormats() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseRuleFlags(t *testing.T) {
	tests := []struct {
		name    string
		flags   []string
		want    map[string]string
		wantErr bool
	}{
		{"none", nil, nil, false},
		{"single", []string{"F=F[+F]F"}, map[string]string{"F": "F[+F]F"}, false},
		{"replacement with equals", []string{"X=F=X"}, map[string]string{"X": "F=X"}, false},
		{"empty replacement", []string{"X="}, map[string]string{"X": ""}, false},
		{"missing separator", []string{"F"}, nil, true},
		{"multi-rune key", []string{"FF=F"}, nil, true},
		{"duplicate", []string{"F=F", "F=FF"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRuleFlags(tt.flags)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseRuleFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseRuleFlags() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("rule %q = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	out := captureStdout(t)
	dir := filepath.Join(t.TempDir(), "nested")
	artifacts := map[string][]byte{"json": []byte("{}"), "txt": []byte("report")}

	if err := writeArtifacts(artifacts, []string{"json", "txt"}, filepath.Join(dir, "tree"), false); err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	for _, name := range []string{"tree.json", "tree.txt"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
		if !strings.Contains(out.String(), name) {
			t.Errorf("output does not list %s", name)
		}
	}

	if err := writeArtifacts(artifacts, []string{"svg"}, filepath.Join(dir, "x.svg"), false); err == nil {
		t.Error("expected error for a format that was not produced")
	}
}

func TestSessionCommands(t *testing.T) {
	dir := t.TempDir()

	if _, err := run(t, "session", "--dir", dir, "new", "english-oak"); err != nil {
		t.Fatalf("session new: %v", err)
	}
	files, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	if len(files) != 1 {
		t.Fatalf("expected one session file, got %v", files)
	}
	id := strings.TrimSuffix(filepath.Base(files[0]), ".json")

	if _, err := run(t, "session", "--dir", dir, "set", id, "-n", "2"); err != nil {
		t.Fatalf("session set: %v", err)
	}
	if _, err := run(t, "session", "--dir", dir, "set", id); err == nil {
		t.Error("session set without flags should fail")
	}

	out, err := run(t, "session", "--dir", dir, "prune", id, "root-0-0")
	if err != nil {
		t.Fatalf("session prune: %v", err)
	}
	if !strings.Contains(out, "root-0-0") {
		t.Errorf("prune output missing branch id:\n%s", out)
	}
	if _, err := run(t, "session", "--dir", dir, "prune", id, "root-7-7"); !errors.Is(err, errors.ErrCodeBranchNotFound) {
		t.Errorf("prune unknown branch: err = %v, want BRANCH_NOT_FOUND", err)
	}

	out, err = run(t, "session", "--dir", dir, "show", id)
	if err != nil {
		t.Fatalf("session show: %v", err)
	}
	if !strings.Contains(out, "english-oak") {
		t.Errorf("show output missing species:\n%s", out)
	}

	out, err = run(t, "session", "--dir", dir, "list")
	if err != nil {
		t.Fatalf("session list: %v", err)
	}
	if !strings.Contains(out, id) || strings.Contains(out, " 0 cuts") {
		t.Errorf("list output = %q, want session with cuts", out)
	}

	base := filepath.Join(t.TempDir(), "export")
	if _, err := run(t, "session", "--dir", dir, "export", id, "-o", base, "-f", "json,dot"); err != nil {
		t.Fatalf("session export: %v", err)
	}
	if _, err := os.Stat(base + ".dot"); err != nil {
		t.Errorf("export did not write dot: %v", err)
	}

	for _, sub := range []string{"clear", "reset", "delete"} {
		if _, err := run(t, "session", "--dir", dir, sub, id); err != nil {
			t.Fatalf("session %s: %v", sub, err)
		}
	}
	if _, err := run(t, "session", "--dir", dir, "show", id); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("show deleted session: err = %v, want SESSION_NOT_FOUND", err)
	}
}

func TestCacheCommands(t *testing.T) {
	out, err := run(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), appName) {
		t.Errorf("cache path = %q", out)
	}

	if _, err := run(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range completionShells {
		out, err := run(t, "completion", shell)
		if err != nil {
			t.Fatalf("completion %s: %v", shell, err)
		}
		if !strings.Contains(out, "arbor") {
			t.Errorf("completion %s script does not mention arbor", shell)
		}
	}
	if _, err := run(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh should fail")
	}
}

func TestCompleteSpeciesIDs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
		miss []string
	}{
		{"grow flag", []string{"grow", "--species", "eng"}, []string{"english-oak\tEnglish oak"}, []string{"silver-birch"}},
		{"species show", []string{"species", "show", ""}, []string{"english-oak", "silver-birch"}, nil},
		{"session set flag", []string{"session", "set", "abc", "-s", "sil"}, []string{"silver-birch"}, []string{"english-oak"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CACHE_HOME", t.TempDir())
			var buf bytes.Buffer
			root := New(io.Discard, LogInfo).RootCommand()
			root.SetArgs(append([]string{"__complete"}, tt.args...))
			root.SetOut(&buf)
			root.SetErr(io.Discard)
			if err := root.ExecuteContext(context.Background()); err != nil {
				t.Fatalf("__complete: %v", err)
			}
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("completions missing %q:\n%s", w, out)
				}
			}
			for _, m := range tt.miss {
				if strings.Contains(out, m) {
					t.Errorf("completions should not offer %q:\n%s", m, out)
				}
			}
		})
	}
}
