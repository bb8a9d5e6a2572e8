package detect

import (
	"github.com/charmbracelet/log"

	"github.com/ysenez/openboard/pkg/board"
	"github.com/ysenez/openboard/pkg/canvas"
	"github.com/ysenez/openboard/pkg/errors"
	"github.com/ysenez/openboard/pkg/geom"
)

// LayerBounds detects occupancy from the geometry of the elements inside
// the board content container. One instance is meant to live for a single
// batch: the container lookup is cached on first success, and while it is
// missing every Check retries the lookup, so a container created mid-batch
// is picked up on the next call.
type LayerBounds struct {
	surface   canvas.Surface
	container canvas.Container
	logger    *log.Logger
}

// NewLayerBounds returns a detector reading element geometry from surface.
func NewLayerBounds(surface canvas.Surface, logger *log.Logger) *LayerBounds {
	return &LayerBounds{surface: surface, logger: logger}
}

// Check classifies the visible content elements against the cell bounds.
func (d *LayerBounds) Check(cell geom.AABB, cellType board.CellType) (Result, error) {
	if d.container == nil {
		c, ok := d.surface.FindContainer(canvas.ContentGroup)
		if !ok {
			return Result{}, errors.New(errors.ErrCodeDetect, "content container not found")
		}
		d.container = c
	}

	res := Result{LeftEmpty: true, RightEmpty: true}
	for _, el := range d.container.Elements() {
		if !el.Visible || el.Opacity <= 0 {
			continue
		}
		b := el.Bounds
		if b.Width() < MinElementSize || b.Height() < MinElementSize {
			continue
		}

		if cellType == board.Single {
			if cell.ContainsPoint(b.Center()) {
				res.LeftEmpty = false
				res.RightEmpty = false
				return res, nil
			}
			continue
		}

		d.markSpread(cell, b, &res)
		if !res.AnyEmpty() {
			return res, nil
		}
	}
	return res, nil
}

// markSpread clears result flags for the half-zones the element occupies.
// Wide elements are tested by area overlap against each half, narrow ones
// by which side of the cell midline their center falls on.
func (d *LayerBounds) markSpread(cell, el geom.AABB, res *Result) {
	if !cell.ContainsPoint(el.Center()) {
		return
	}
	ratio := el.Width() / cell.Width()
	if ratio > WideElementRatio {
		if cell.LeftHalf().Overlaps(el) {
			res.LeftEmpty = false
		}
		if cell.RightHalf().Overlaps(el) {
			res.RightEmpty = false
		}
		return
	}
	if el.Center().X < cell.Center().X {
		res.LeftEmpty = false
	} else {
		res.RightEmpty = false
	}
}
