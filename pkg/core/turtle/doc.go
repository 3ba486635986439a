// Package turtle interprets expanded L-system strings as 3D turtle
// commands and builds the resulting branch tree.
//
// # Frame
//
// The turtle carries a position and an orthonormal frame of three unit
// vectors: heading (H), left (L) and up (U). It starts at the origin with
// H = +Y, L = +X and U = +Z, so an unrotated tree grows straight up.
//
// # Commands
//
//	F   draw a segment of length step along H and move to its end
//	+ - turn left/right: rotate H and L about U by ±angle
//	& ^ pitch down/up:   rotate H and U about L by ±angle
//	\ / roll left/right: rotate L and U about H by ±angle
//	|   turn around:     rotate H and L about U by 180°
//	[   push position, frame, depth and current parent; depth++
//	]   pop them again (ignored when nothing was pushed)
//
// Every other symbol is ignored. Rotations use an axis-angle quaternion
// applied to the two frame vectors orthogonal to the axis; the axis itself
// is left untouched.
//
// # Identities
//
// Each drawn segment becomes a child of the current parent segment and then
// becomes the current parent itself. Its ID is "{parentID}-{k}" where k
// counts the parent's children from zero, see package tree.
package turtle
