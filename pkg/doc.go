// Package pkg provides the libraries behind Arbor, an L-system tree grower
// and pruning simulator.
//
// # Overview
//
// Arbor rewrites a grammar into a symbol string, walks the string with a 3D
// turtle to build a tree of branch segments, and lets callers cut whole
// branches. The untouched tree is kept as the control, so every pruned view
// can be compared against it. The pkg directory is organized into:
//
//  1. [core] - Domain logic (grammar expansion, turtle, branch trees, pruning)
//  2. [species] - The catalogue of named grammars (TOML, MongoDB)
//  3. [pipeline] - Orchestration (expand → interpret → prune → render)
//  4. [cache] and [session] - Result caching and persisted pruning sessions
//  5. [graph] and [render/nodelink] - JSON serialization and diagrams
//
// # Architecture
//
// The data flow through Arbor:
//
//	Species or ad-hoc grammar
//	         ↓
//	    [core/lsystem] (rewrite the axiom n times)
//	         ↓
//	    [core/turtle] (interpret symbols as 3D segments)
//	         ↓
//	    [core/tree] full tree ──→ control
//	         ↓
//	    [core/tree/prune] (closure of the cut branches, filtered view)
//	         ↓
//	    JSON / DOT / SVG / text report
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/arbor/pkg/core/lsystem"
//	    "github.com/matzehuels/arbor/pkg/core/tree/prune"
//	    "github.com/matzehuels/arbor/pkg/core/turtle"
//	)
//
//	rules, _ := lsystem.ParseRules(map[string]string{"F": "F[+F]F"})
//	symbols, _ := lsystem.Expand("F", rules, 3)
//	full, _ := turtle.Interpret(symbols, 25, 1)
//	pruned := prune.Filter(full, prune.Subtree(full, "root-0-0"))
//
// Or let the pipeline resolve a species, apply caching and render outputs:
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, species.Default(), nil)
//	res, _ := runner.Execute(ctx, pipeline.Options{
//	    SpeciesID: "english-oak",
//	    Pruned:    []string{"root-0-0"},
//	    Formats:   []string{"txt", "svg"},
//	})
//
// # Main Packages
//
// [core/lsystem] - Context-free, deterministic string rewriting with length
// prediction so callers can bound output before expanding.
//
// [core/turtle] - Stack-based turtle with an orthonormal frame rotated by
// quaternions. Segment ids encode the path from the root.
//
// [core/tree] - Arena-backed branch tree: lookup, ordered children, walks
// and statistics. [core/tree/prune] locates subtrees and filters them out.
//
// [pipeline] - The single entry point used by the CLI and the HTTP API.
//
// [session] - Pruning sessions with file, Redis and in-memory stores, plus
// a Manager that validates cuts against the grown tree.
//
// [errors] - Coded errors shared by every layer and mapped to HTTP statuses
// by [httputil].
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/core/...  # Examples only
//	go test -tags integration ./pkg/...  # Include MongoDB tests
//
// [core]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/core
// [core/lsystem]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/core/lsystem
// [core/turtle]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/core/turtle
// [core/tree]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/core/tree
// [core/tree/prune]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/core/tree/prune
// [species]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/species
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/session
// [graph]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/graph
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/render/nodelink
// [errors]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/httputil
package pkg
