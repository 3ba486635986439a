package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/arbor/pkg/core/tree"
	"github.com/matzehuels/arbor/pkg/core/tree/prune"
	"github.com/matzehuels/arbor/pkg/graph"
	"github.com/matzehuels/arbor/pkg/render/nodelink"
)

// RenderTrees generates output artifacts in the requested formats.
//
// JSON carries the pruned view. Diagrams are drawn from the full tree with
// the removed branches marked, so a single picture shows both the control
// tree and the cuts.
func RenderTrees(ctx context.Context, full, view *tree.Tree, removed prune.Set, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = graph.MarshalTree(view)
		case FormatDOT:
			data = []byte(nodelink.ToDOT(full, hierarchyOptions(removed, opts)))
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, nodelink.ToDOT(full, hierarchyOptions(removed, opts)))
		case FormatSketch:
			data, err = nodelink.RenderSVG(ctx, nodelink.ToDOT(full, nodelink.Options{
				Pruned:    removed,
				Sketch:    true,
				Thickness: opts.Thickness,
			}))
		case FormatTXT:
			data = Report(full, view, removed, opts)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func hierarchyOptions(removed prune.Set, opts Options) nodelink.Options {
	return nodelink.Options{
		Detailed: opts.Detailed,
		Pruned:   removed,
	}
}
