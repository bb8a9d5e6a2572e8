package geom

import "testing"

func TestNewAABBNormalizesCorners(t *testing.T) {
	b := NewAABB(Point{X: 10, Y: 20}, Point{X: 2, Y: 4})

	if b.MinX != 2 || b.MinY != 4 || b.MaxX != 10 || b.MaxY != 20 {
		t.Errorf("NewAABB() = %+v, want normalized corners", b)
	}
	if b.Width() != 8 || b.Height() != 16 {
		t.Errorf("Width()=%g Height()=%g, want 8 and 16", b.Width(), b.Height())
	}
}

func TestContainsPointHalfOpen(t *testing.T) {
	b := AABB{MinX: 0, MinY: 0, MaxX: 100, MaxY: 50}

	if !b.ContainsPoint(Point{X: 0, Y: 0}) {
		t.Error("min corner should be inside")
	}
	if b.ContainsPoint(Point{X: 100, Y: 25}) {
		t.Error("max X edge should be outside (half-open)")
	}
	if b.ContainsPoint(Point{X: 50, Y: 50}) {
		t.Error("max Y edge should be outside (half-open)")
	}
	if !b.ContainsPoint(Point{X: 99.9, Y: 49.9}) {
		t.Error("point just inside max corner should be inside")
	}
}

func TestSharedEdgeBelongsToOneCell(t *testing.T) {
	left := AABB{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}
	right := AABB{MinX: 100, MinY: 0, MaxX: 200, MaxY: 100}
	onEdge := Point{X: 100, Y: 50}

	inLeft := left.ContainsPoint(onEdge)
	inRight := right.ContainsPoint(onEdge)
	if inLeft || !inRight {
		t.Errorf("edge point in left=%v right=%v, want exactly the right cell", inLeft, inRight)
	}
}

func TestOverlapsOpenInterval(t *testing.T) {
	a := AABB{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}

	if !a.Overlaps(AABB{MinX: 5, MinY: 5, MaxX: 15, MaxY: 15}) {
		t.Error("intersecting boxes should overlap")
	}
	if a.Overlaps(AABB{MinX: 10, MinY: 0, MaxX: 20, MaxY: 10}) {
		t.Error("boxes touching at an edge should not overlap")
	}
	if a.Overlaps(AABB{MinX: 30, MinY: 30, MaxX: 40, MaxY: 40}) {
		t.Error("disjoint boxes should not overlap")
	}
}

func TestHalves(t *testing.T) {
	b := AABB{MinX: 10, MinY: 0, MaxX: 30, MaxY: 40}

	l, r := b.LeftHalf(), b.RightHalf()
	if l.MaxX != 20 || r.MinX != 20 {
		t.Errorf("halves split at %g and %g, want 20", l.MaxX, r.MinX)
	}
	if l.Width() != r.Width() {
		t.Errorf("halves have widths %g and %g, want equal", l.Width(), r.Width())
	}
	if l.MinY != b.MinY || l.MaxY != b.MaxY || r.MinY != b.MinY || r.MaxY != b.MaxY {
		t.Error("halves should span the full vertical extent")
	}
}

func TestWithin(t *testing.T) {
	outer := AABB{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}

	if !(AABB{MinX: 10, MinY: 10, MaxX: 90, MaxY: 90}).Within(outer) {
		t.Error("contained box should be within")
	}
	if !outer.Within(outer) {
		t.Error("a box should be within itself")
	}
	if (AABB{MinX: 50, MinY: 50, MaxX: 150, MaxY: 90}).Within(outer) {
		t.Error("box sticking out should not be within")
	}
}

func TestOrientationOf(t *testing.T) {
	if got := OrientationOf(200, 100); got != Landscape {
		t.Errorf("OrientationOf(200,100) = %v, want Landscape", got)
	}
	if got := OrientationOf(100, 200); got != Portrait {
		t.Errorf("OrientationOf(100,200) = %v, want Portrait", got)
	}
	// Square images count as portrait
	if got := OrientationOf(100, 100); got != Portrait {
		t.Errorf("OrientationOf(100,100) = %v, want Portrait", got)
	}
}
