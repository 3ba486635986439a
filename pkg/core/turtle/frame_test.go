package turtle

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestFrameStaysOrthonormal(t *testing.T) {
	f := Initial()
	rad := mgl64.DegToRad(22.5)
	for i := range 10000 {
		f.Rotate(Axis(i%3), rad*float64(1+i%5))
	}
	if d := f.Drift(); d > 1e-9 {
		t.Errorf("drift after 10000 rotations = %g", d)
	}
}

func TestRotateKeepsAxis(t *testing.T) {
	tests := []struct {
		axis Axis
		get  func(Frame) mgl64.Vec3
	}{
		{AxisHeading, func(f Frame) mgl64.Vec3 { return f.Heading }},
		{AxisLeft, func(f Frame) mgl64.Vec3 { return f.Left }},
		{AxisUp, func(f Frame) mgl64.Vec3 { return f.Up }},
	}
	for _, tt := range tests {
		f := Initial()
		before := tt.get(f)
		f.Rotate(tt.axis, 1.234)
		if !tt.get(f).ApproxEqual(before) {
			t.Errorf("axis %d moved: %v -> %v", tt.axis, before, tt.get(f))
		}
	}
}

func TestOrthonormalize(t *testing.T) {
	f := Frame{
		Heading: mgl64.Vec3{0, 2, 0.1},
		Left:    mgl64.Vec3{1, 0.2, 0},
		Up:      mgl64.Vec3{5, 5, 5},
	}
	f.Orthonormalize()
	if d := f.Drift(); d > 1e-12 {
		t.Errorf("drift = %g", d)
	}
	// Right-handed: U = L × H.
	if !f.Up.ApproxEqual(f.Left.Cross(f.Heading)) {
		t.Errorf("frame not right-handed: %+v", f)
	}
	if math.Abs(f.Heading.Len()-1) > 1e-12 {
		t.Errorf("|H| = %g", f.Heading.Len())
	}
}

func TestInitialFrame(t *testing.T) {
	f := Initial()
	if f.Drift() != 0 {
		t.Errorf("initial drift = %g", f.Drift())
	}
	if !f.Up.ApproxEqual(f.Left.Cross(f.Heading)) {
		t.Error("initial frame should satisfy U = L × H")
	}
}
