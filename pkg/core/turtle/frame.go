package turtle

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Frame is the turtle's position and orientation.
type Frame struct {
	Position mgl64.Vec3
	Heading  mgl64.Vec3 // H: direction of travel
	Left     mgl64.Vec3 // L
	Up       mgl64.Vec3 // U
}

// Initial returns the starting frame: origin, heading +Y, left +X, up +Z.
func Initial() Frame {
	return Frame{
		Heading: mgl64.Vec3{0, 1, 0},
		Left:    mgl64.Vec3{1, 0, 0},
		Up:      mgl64.Vec3{0, 0, 1},
	}
}

// Axis names a frame vector used as a rotation axis.
type Axis int

const (
	AxisHeading Axis = iota
	AxisLeft
	AxisUp
)

// Rotate turns the frame by rad radians about one of its own axes. The two
// vectors orthogonal to the axis are rotated; the axis vector is not.
func (f *Frame) Rotate(axis Axis, rad float64) {
	switch axis {
	case AxisHeading:
		q := mgl64.QuatRotate(rad, f.Heading)
		f.Left, f.Up = q.Rotate(f.Left), q.Rotate(f.Up)
	case AxisLeft:
		q := mgl64.QuatRotate(rad, f.Left)
		f.Heading, f.Up = q.Rotate(f.Heading), q.Rotate(f.Up)
	case AxisUp:
		q := mgl64.QuatRotate(rad, f.Up)
		f.Heading, f.Left = q.Rotate(f.Heading), q.Rotate(f.Left)
	}
}

// Forward returns the position reached by moving step along the heading.
func (f Frame) Forward(step float64) mgl64.Vec3 {
	return f.Position.Add(f.Heading.Mul(step))
}

// Orthonormalize re-derives L and U from H with Gram-Schmidt, removing
// accumulated floating-point drift while keeping the frame right-handed
// (U = L × H).
func (f *Frame) Orthonormalize() {
	h := f.Heading.Normalize()
	l := f.Left.Sub(h.Mul(f.Left.Dot(h))).Normalize()
	f.Heading, f.Left, f.Up = h, l, l.Cross(h)
}

// Drift returns the largest deviation of the frame from orthonormality:
// the maximum over |v·v - 1| and |a·b| for the three vectors.
func (f Frame) Drift() float64 {
	d := 0.0
	for _, v := range []mgl64.Vec3{f.Heading, f.Left, f.Up} {
		d = math.Max(d, math.Abs(v.Dot(v)-1))
	}
	d = math.Max(d, math.Abs(f.Heading.Dot(f.Left)))
	d = math.Max(d, math.Abs(f.Heading.Dot(f.Up)))
	d = math.Max(d, math.Abs(f.Left.Dot(f.Up)))
	return d
}
