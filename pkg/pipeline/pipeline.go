// Package pipeline provides the growth pipeline shared by the CLI and the
// HTTP API.
//
// This package implements the complete resolve → grow → prune → render
// pipeline. By centralizing this logic, every entry point grows the same
// tree for the same parameters and shares one cache layout.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Resolve: Look up the species and fill in its grammar and default
//     parameters
//  2. Grow: Expand the grammar and interpret it with the turtle into the
//     full (control) tree
//  3. Prune: Derive the pruned (simulation) view from a set of cut branches
//  4. Render: Generate outputs in various formats (JSON, DOT, SVG, text)
//
// Each stage can be run independently or as part of the complete pipeline.
// Grown trees and rendered artifacts are cached; pruning is cheap and is
// always recomputed.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, species.Default(), logger)
//	opts := pipeline.Options{
//	    SpeciesID:  "silver-birch",
//	    Iterations: pipeline.Iter(5),
//	    Pruned:     []string{"root-0-1"},
//	    Formats:    []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	full, err := runner.Grow(ctx, opts)
//	view, removed, err := runner.Prune(ctx, full, opts.Pruned)
//	artifacts, err := runner.Render(ctx, full, view, removed, opts)
package pipeline

import (
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/core/lsystem"
	"github.com/matzehuels/arbor/pkg/core/tree"
	"github.com/matzehuels/arbor/pkg/core/tree/prune"
	"github.com/matzehuels/arbor/pkg/core/turtle"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/species"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultIterations is the generation count when none is given.
	DefaultIterations = species.DefaultIterations

	// MaxIterations bounds the generation count. Expanded strings grow
	// exponentially, so this is the main guard against runaway requests.
	MaxIterations = species.MaxIterations

	// MaxAngle bounds the magnitude of the branching angle in degrees.
	MaxAngle = 360.0

	// MaxSymbols bounds the length of the expanded string. Grammars that
	// would exceed it are rejected before expansion.
	MaxSymbols = 5_000_000
)

// Format constants for output formats.
const (
	FormatJSON   = "json"   // Pruned tree in nested branch form
	FormatDOT    = "dot"    // Hierarchy diagram source, cuts drawn dashed
	FormatSVG    = "svg"    // Hierarchy diagram rendered by Graphviz
	FormatSketch = "sketch" // Projected silhouette rendered by Graphviz
	FormatTXT    = "txt"    // Comparison report, control vs. pruned
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:   true,
	FormatDOT:    true,
	FormatSVG:    true,
	FormatSketch: true,
	FormatTXT:    true,
}

// formatOrder lists formats in the order they are documented and rendered.
var formatOrder = []string{FormatJSON, FormatDOT, FormatSVG, FormatSketch, FormatTXT}

// FileExt returns the file extension for a format.
func FileExt(format string) string {
	if format == FormatSketch {
		return "sketch.svg"
	}
	return format
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the growth pipeline.
// This struct supports JSON serialization for API requests.
//
// Zero numeric values mean "use the default": the species default for
// Angle and Step, the package default otherwise. Iterations is the
// exception: nil selects DefaultIterations and an explicit zero grows the
// axiom alone.
type Options struct {
	// Grammar options. Either SpeciesID or Axiom selects the grammar; an
	// explicit Axiom with Rules overrides the species grammar.
	SpeciesID string            `json:"species,omitempty"`
	Axiom     string            `json:"axiom,omitempty"`
	Rules     map[string]string `json:"rules,omitempty"`

	// Growth options
	Iterations  *int    `json:"iterations,omitempty"`
	Angle       float64 `json:"angle,omitempty"`
	Step        float64 `json:"step,omitempty"`
	Renormalize bool    `json:"renormalize,omitempty"`
	Refresh     bool    `json:"refresh,omitempty"`

	// Strict rejects grammars whose axiom or rules have unbalanced
	// brackets. The turtle tolerates them, so this is off by default.
	Strict bool `json:"strict,omitempty"`

	// Pruning options
	Pruned []string `json:"pruned,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"`
	Thickness float64  `json:"thickness,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Species is the resolved species, nil for an ad-hoc grammar.
	Species *species.Species

	// Options are the resolved options the run used.
	Options Options

	// Full is the unpruned control tree.
	Full *tree.Tree

	// Pruned is the simulation view with every cut subtree removed.
	Pruned *tree.Tree

	// Removed holds the identities present in Full but not in Pruned.
	Removed prune.Set

	// TreeHash is the content hash of the full tree.
	TreeHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Symbols    int           `json:"symbols"`
	Full       tree.Stats    `json:"full"`
	Pruned     tree.Stats    `json:"pruned"`
	Removed    int           `json:"removed"`
	GrowTime   time.Duration `json:"grow_time"`
	PruneTime  time.Duration `json:"prune_time"`
	RenderTime time.Duration `json:"render_time"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GrowHit   bool // Whether the full tree came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(formatOrder, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, trimming blanks and
// dropping duplicates.
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(out, f) {
			continue
		}
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks parameter ranges and applies defaults.
// Grammar resolution happens in [Runner.Resolve]; this method only requires
// that an axiom is present once it runs.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForGrow(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	for _, id := range o.Pruned {
		if err := errors.ValidateBranchID(id); err != nil {
			return err
		}
	}
	o.validated = true
	return nil
}

// ValidateForGrow checks the grammar and growth parameters.
func (o *Options) ValidateForGrow() error {
	o.SetGrowDefaults()
	if o.Axiom == "" {
		return errors.New(errors.ErrCodeInvalidInput, "axiom or species is required")
	}
	if _, err := lsystem.ParseRules(o.Rules); err != nil {
		return err
	}
	if o.Strict {
		if err := o.checkBrackets(); err != nil {
			return err
		}
	}
	if err := errors.ValidateIterations(o.Generations(), MaxIterations); err != nil {
		return err
	}
	if err := errors.ValidateRange("angle", o.Angle, -MaxAngle, MaxAngle); err != nil {
		return err
	}
	if err := errors.ValidateStep(o.Step); err != nil {
		return err
	}
	if o.Step <= 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "step size must be positive, got %g", o.Step)
	}
	return nil
}

// checkBrackets requires the axiom and every replacement to be balanced,
// which makes every expansion balanced too.
func (o *Options) checkBrackets() error {
	if r := turtle.Analyze(o.Axiom); !r.Balanced() {
		return errors.New(errors.ErrCodeInvalidArgument,
			"axiom has unbalanced brackets (%d unmatched ']', %d unclosed '[')", r.UnmatchedPops, r.UnclosedPushes)
	}
	for _, k := range slices.Sorted(maps.Keys(o.Rules)) {
		if r := turtle.Analyze(o.Rules[k]); !r.Balanced() {
			return errors.New(errors.ErrCodeInvalidArgument,
				"rule %s has unbalanced brackets (%d unmatched ']', %d unclosed '[')", k, r.UnmatchedPops, r.UnclosedPushes)
		}
	}
	return nil
}

// Iter returns a pointer to n for Options.Iterations.
func Iter(n int) *int { return &n }

// Generations returns the rewrite generation count, DefaultIterations when
// none was given.
func (o *Options) Generations() int {
	if o.Iterations == nil {
		return DefaultIterations
	}
	return *o.Iterations
}

// SetGrowDefaults sets default values for growth.
func (o *Options) SetGrowDefaults() {
	if o.Iterations == nil {
		o.Iterations = Iter(DefaultIterations)
	}
	if o.Angle == 0 {
		o.Angle = species.DefaultAngle
	}
	if o.Step == 0 {
		o.Step = species.DefaultStep
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Thickness == 0 {
		o.Thickness = species.DefaultThickness
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return errors.ValidateThickness(o.Thickness)
}

// Grammar returns the parsed production rules.
func (o *Options) Grammar() (lsystem.Rules, error) {
	return lsystem.ParseRules(o.Rules)
}

// TreeKeyOpts returns cache key options for growth.
func (o *Options) TreeKeyOpts() cache.TreeKeyOpts {
	rules, _ := o.Grammar()
	return cache.TreeKeyOpts{
		Axiom:       o.Axiom,
		Rules:       rules,
		Iterations:  o.Generations(),
		Angle:       o.Angle,
		Step:        o.Step,
		Renormalize: o.Renormalize,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string, removed prune.Set) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:    format,
		Pruned:    removed.Sorted(),
		Detailed:  o.Detailed,
		Thickness: o.Thickness,
	}
}
