// Package geom provides the primitive geometry used across the board engine:
// points, axis-aligned bounding boxes, and image orientation.
//
// All coordinates are in pixel units as floats. Comparisons that involve cell
// positions use explicit tolerances because board files round-trip through
// text and cells created at different times can drift by fractions of a pixel:
//
//   - ReadingTolerance (0.1px) for reading-order sorts
//   - ClusterTolerance (10px) for row/column clustering
package geom

import "math"

// Positional tolerances in pixels.
const (
	// ReadingTolerance is used when sorting cells into reading order.
	// Two Y coordinates within this distance belong to the same row.
	ReadingTolerance = 0.1

	// ClusterTolerance is used when clustering cell origins into rows and
	// columns to infer the grid shape.
	ClusterTolerance = 10.0
)

// Point is a 2-D pixel coordinate.
type Point struct {
	X float64
	Y float64
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// NewAABB returns the box spanning the two corner points, normalizing the
// coordinate order.
func NewAABB(a, b Point) AABB {
	return AABB{
		MinX: math.Min(a.X, b.X),
		MinY: math.Min(a.Y, b.Y),
		MaxX: math.Max(a.X, b.X),
		MaxY: math.Max(a.Y, b.Y),
	}
}

// Width returns the horizontal extent of the box.
func (b AABB) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent of the box.
func (b AABB) Height() float64 { return b.MaxY - b.MinY }

// Center returns the geometric center of the box.
func (b AABB) Center() Point {
	return Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// Overlaps reports whether the two boxes intersect using the standard open
// interval test: touching edges do not count as overlap.
func (b AABB) Overlaps(o AABB) bool {
	return b.MinX < o.MaxX && b.MaxX > o.MinX && b.MinY < o.MaxY && b.MaxY > o.MinY
}

// ContainsPoint reports whether p falls inside the half-open region
// [MinX,MaxX) x [MinY,MaxY). The half-open bounds keep a point sitting
// exactly on a shared edge from being counted in two adjacent cells.
func (b AABB) ContainsPoint(p Point) bool {
	return p.X >= b.MinX && p.X < b.MaxX && p.Y >= b.MinY && p.Y < b.MaxY
}

// Within reports whether b fits entirely inside o.
func (b AABB) Within(o AABB) bool {
	return b.MinX >= o.MinX && b.MinY >= o.MinY && b.MaxX <= o.MaxX && b.MaxY <= o.MaxY
}

// LeftHalf returns the left half-zone of the box.
func (b AABB) LeftHalf() AABB {
	return AABB{MinX: b.MinX, MinY: b.MinY, MaxX: b.MinX + b.Width()/2, MaxY: b.MaxY}
}

// RightHalf returns the right half-zone of the box.
func (b AABB) RightHalf() AABB {
	return AABB{MinX: b.MinX + b.Width()/2, MinY: b.MinY, MaxX: b.MaxX, MaxY: b.MaxY}
}

// Orientation classifies an image by its aspect.
type Orientation string

// Image orientations. Square images are treated as portrait, matching the
// behavior of the board creation tooling.
const (
	Portrait  Orientation = "Portrait"
	Landscape Orientation = "Landscape"
)

// OrientationOf returns Landscape when width exceeds height, Portrait
// otherwise.
func OrientationOf(width, height int) Orientation {
	if width > height {
		return Landscape
	}
	return Portrait
}

// SameRow reports whether two Y coordinates fall within tol of each other.
func SameRow(y1, y2, tol float64) bool {
	return math.Abs(y1-y2) <= tol
}
