package turtle

import (
	"math"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/arbor/pkg/core/tree"
	"github.com/matzehuels/arbor/pkg/errors"
)

// Command symbols understood by the interpreter.
const (
	SymForward    = 'F'
	SymTurnLeft   = '+'
	SymTurnRight  = '-'
	SymPitchDown  = '&'
	SymPitchUp    = '^'
	SymRollLeft   = '\\'
	SymRollRight  = '/'
	SymTurnAround = '|'
	SymPush       = '['
	SymPop        = ']'
)

// Options tunes interpretation.
type Options struct {
	// Renormalize re-orthonormalizes the frame after every rotation.
	// Quaternion rotations keep drift negligible for the iteration counts
	// the pipeline allows, so this is off by default.
	Renormalize bool
}

// saved is one push-stack entry.
type saved struct {
	frame Frame
	depth int
}

// Interpret builds the branch tree described by symbols, turning by
// angleDegrees and drawing segments of length stepSize.
//
// Unknown symbols are ignored and a ']' with nothing saved is a no-op, so
// malformed grammars produce a smaller but valid tree. Non-finite angle or
// step values fail with errors.ErrCodeInvalidArgument. An empty string
// yields a tree holding only the root.
func Interpret(symbols string, angleDegrees, stepSize float64) (*tree.Tree, error) {
	return InterpretWith(symbols, angleDegrees, stepSize, Options{})
}

// InterpretWith is Interpret with explicit options.
func InterpretWith(symbols string, angleDegrees, stepSize float64, opts Options) (*tree.Tree, error) {
	if err := errors.ValidateAngle(angleDegrees); err != nil {
		return nil, err
	}
	if err := errors.ValidateStep(stepSize); err != nil {
		return nil, err
	}

	t := tree.New()
	rad := mgl64.DegToRad(angleDegrees)

	cur := saved{frame: Initial()}
	parent := tree.RootID

	// Frame and parent stacks move in lockstep.
	var stack []saved
	var parents []string

	rotate := func(axis Axis, a float64) {
		cur.frame.Rotate(axis, a)
		if opts.Renormalize {
			cur.frame.Orthonormalize()
		}
	}

	for _, c := range symbols {
		switch c {
		case SymForward:
			end := cur.frame.Forward(stepSize)
			id := parent + "-" + strconv.Itoa(t.ChildCount(parent))
			seg := tree.Segment{
				ID:    id,
				Start: tree.Point(cur.frame.Position),
				End:   tree.Point(end),
				Depth: cur.depth,
			}
			if err := t.Add(parent, seg); err != nil {
				return nil, err
			}
			parent = id
			cur.frame.Position = end
		case SymTurnLeft:
			rotate(AxisUp, rad)
		case SymTurnRight:
			rotate(AxisUp, -rad)
		case SymPitchDown:
			rotate(AxisLeft, rad)
		case SymPitchUp:
			rotate(AxisLeft, -rad)
		case SymRollLeft:
			rotate(AxisHeading, rad)
		case SymRollRight:
			rotate(AxisHeading, -rad)
		case SymTurnAround:
			rotate(AxisUp, math.Pi)
		case SymPush:
			stack = append(stack, cur)
			parents = append(parents, parent)
			cur.depth++
		case SymPop:
			if len(stack) == 0 {
				continue
			}
			cur = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			parent = parents[len(parents)-1]
			parents = parents[:len(parents)-1]
		}
	}
	return t, nil
}
