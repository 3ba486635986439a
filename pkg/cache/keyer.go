package cache

import "github.com/matzehuels/arbor/pkg/core/lsystem"

// Keyer derives cache keys for pipeline stages.
type Keyer interface {
	// TreeKey identifies a grown, unpruned tree.
	TreeKey(opts TreeKeyOpts) string
	// ArtifactKey identifies a rendered output of a (possibly pruned) tree.
	ArtifactKey(treeHash string, opts ArtifactKeyOpts) string
}

// TreeKeyOpts holds every input that determines a grown tree.
type TreeKeyOpts struct {
	Axiom       string
	Rules       lsystem.Rules
	Iterations  int
	Angle       float64
	Step        float64
	Renormalize bool
}

// ArtifactKeyOpts holds the inputs that determine a rendered artifact on
// top of the tree itself.
type ArtifactKeyOpts struct {
	Format    string
	Pruned    []string // sorted
	Detailed  bool
	Thickness float64
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TreeKey returns "tree:<sha256>". Rules are hashed as a JSON object, which
// sorts the symbols and quotes every replacement, so separators inside a
// replacement cannot make two grammars collide.
func (DefaultKeyer) TreeKey(opts TreeKeyOpts) string {
	return hashKey("tree", opts.Axiom, opts.Rules.Strings(), opts.Iterations, opts.Angle, opts.Step, opts.Renormalize)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(treeHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", treeHash, opts.Format, opts.Pruned, opts.Detailed, opts.Thickness)
}

var _ Keyer = DefaultKeyer{}
