package pipeline

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/matzehuels/arbor/pkg/core/tree"
	"github.com/matzehuels/arbor/pkg/core/tree/prune"
)

// Report renders a plain-text comparison of the control tree and its pruned
// view together with the growth parameters.
func Report(full, view *tree.Tree, removed prune.Set, opts Options) []byte {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "Tree pruning comparison report")
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "Parameters")
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	species := opts.SpeciesID
	if species == "" {
		species = "(custom grammar)"
	}
	fmt.Fprintf(w, "  Species:\t%s\n", species)
	if opts.SpeciesID == "" {
		fmt.Fprintf(w, "  Axiom:\t%s\n", opts.Axiom)
		if rules, err := opts.Grammar(); err == nil {
			fmt.Fprintf(w, "  Rules:\t%s\n", rules)
		}
	}
	fmt.Fprintf(w, "  Iterations:\t%d\n", opts.Generations())
	fmt.Fprintf(w, "  Branch angle:\t%.1f°\n", opts.Angle)
	fmt.Fprintf(w, "  Step size:\t%.1f\n", opts.Step)
	fmt.Fprintf(w, "  Thickness:\t%.1f\n", opts.Thickness)
	fmt.Fprintf(w, "  Pruned branches:\t%d\n", len(opts.Pruned))
	_ = w.Flush()
	fmt.Fprintln(&buf)

	fs, ps := full.Stats(), view.Stats()
	fmt.Fprintln(&buf, "Comparison")
	w = tabwriter.NewWriter(&buf, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "\tControl (unpruned)\tSimulation (pruned)\t")
	fmt.Fprintf(w, "Branches\t%d\t%d\t\n", fs.Branches, ps.Branches)
	fmt.Fprintf(w, "Leaves\t%d\t%d\t\n", fs.Leaves, ps.Leaves)
	fmt.Fprintf(w, "Max depth\t%d\t%d\t\n", fs.MaxDepth, ps.MaxDepth)
	fmt.Fprintf(w, "Total length\t%.2f\t%.2f\t\n", fs.TotalLength, ps.TotalLength)
	fmt.Fprintf(w, "Height\t%.2f\t%.2f\t\n", fs.Max[1]-fs.Min[1], ps.Max[1]-ps.Min[1])
	_ = w.Flush()
	fmt.Fprintln(&buf)

	fmt.Fprintf(&buf, "Removed segments: %d\n", removed.Len())
	for _, id := range opts.Pruned {
		fmt.Fprintf(&buf, "  cut %s\n", id)
	}
	return buf.Bytes()
}
