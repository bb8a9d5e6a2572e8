// Package detect determines whether board cells are empty.
//
// Two interchangeable strategies implement the same Checker contract:
//
//   - LayerBounds walks the visible content elements of the canvas and
//     classifies them against the cell geometry. It is fast and precise and
//     is always tried first.
//   - PixelProbe samples a handful of canvas pixels per cell side and
//     compares them against the configured background color. It needs
//     nothing but a raster, which makes it the fallback when the content
//     container is missing or element enumeration fails.
//
// Chain composes the two: any LayerBounds failure falls back to PixelProbe
// transparently, and a detector failure is never surfaced to the caller as
// an error.
//
// Results answer "is this side empty", per side. Single cells have one
// logical side; both flags carry the same value so the result shape is
// identical across cell types.
package detect

import (
	"github.com/ysenez/openboard/pkg/board"
	"github.com/ysenez/openboard/pkg/geom"
)

// WideElementRatio is the width ratio above which an element is classified
// as wide: it is tested against half-zone overlap instead of its center
// point. A narrow element whose bounds barely cross the midline must not be
// counted on both sides.
const WideElementRatio = 0.6

// MinElementSize is the minimum element width and height, in pixels, for an
// element to count toward occupancy. Smaller elements are decorations or
// leftovers, not placed images.
const MinElementSize = 100.0

// Result reports per-side emptiness for one cell. For Single cells both
// fields are equal.
type Result struct {
	LeftEmpty  bool
	RightEmpty bool
}

// AllEmpty reports whether every side of the cell is free.
func (r Result) AllEmpty() bool { return r.LeftEmpty && r.RightEmpty }

// AnyEmpty reports whether at least one side of the cell is free.
func (r Result) AnyEmpty() bool { return r.LeftEmpty || r.RightEmpty }

// SideEmpty returns the emptiness of one named side.
func (r Result) SideEmpty(s board.Side) bool {
	if s == board.Right {
		return r.RightEmpty
	}
	return r.LeftEmpty
}

// Checker is the occupancy detection contract. Implementations must return
// the same result shape regardless of strategy.
type Checker interface {
	Check(cell geom.AABB, cellType board.CellType) (Result, error)
}
