package detect

import (
	"github.com/charmbracelet/log"

	"github.com/ysenez/openboard/pkg/board"
	"github.com/ysenez/openboard/pkg/canvas"
	"github.com/ysenez/openboard/pkg/errors"
	"github.com/ysenez/openboard/pkg/geom"
)

// PixelProbe detects occupancy by sampling canvas pixels inside each cell
// zone and comparing them against the board background color. A zone is
// empty only when every sampled pixel matches the background exactly.
//
// Level controls how many points are sampled per zone, from 1 (center
// only) to 5 (center plus four quarter-inset corners). Higher levels catch
// small images placed off-center at the cost of extra probes.
type PixelProbe struct {
	surface    canvas.Surface
	background canvas.Color
	level      int
	logger     *log.Logger
}

// NewPixelProbe returns a pixel sampling detector. Levels outside [1,5] are
// clamped.
func NewPixelProbe(surface canvas.Surface, background canvas.Color, level int, logger *log.Logger) *PixelProbe {
	if level < 1 {
		level = 1
	}
	if level > 5 {
		level = 5
	}
	return &PixelProbe{surface: surface, background: background, level: level, logger: logger}
}

// Check samples each zone of the cell.
func (d *PixelProbe) Check(cell geom.AABB, cellType board.CellType) (Result, error) {
	if cellType == board.Single {
		empty, err := d.zoneEmpty(cell)
		if err != nil {
			return Result{}, err
		}
		return Result{LeftEmpty: empty, RightEmpty: empty}, nil
	}

	left, err := d.zoneEmpty(cell.LeftHalf())
	if err != nil {
		return Result{}, err
	}
	right, err := d.zoneEmpty(cell.RightHalf())
	if err != nil {
		return Result{}, err
	}
	return Result{LeftEmpty: left, RightEmpty: right}, nil
}

// samplePoints returns the probe locations for a zone. The order is fixed
// so repeated checks of an unchanged canvas are deterministic: center
// first, then the quarter-inset corners clockwise from top-left.
func (d *PixelProbe) samplePoints(zone geom.AABB) []geom.Point {
	c := zone.Center()
	dx := zone.Width() * 0.25
	dy := zone.Height() * 0.25
	pts := []geom.Point{
		c,
		{X: c.X - dx, Y: c.Y - dy},
		{X: c.X + dx, Y: c.Y - dy},
		{X: c.X + dx, Y: c.Y + dy},
		{X: c.X - dx, Y: c.Y + dy},
	}
	return pts[:d.level]
}

func (d *PixelProbe) zoneEmpty(zone geom.AABB) (bool, error) {
	for _, pt := range d.samplePoints(zone) {
		match, err := d.probeMatches(pt)
		if err != nil {
			return false, err
		}
		if !match {
			return false, nil
		}
	}
	return true, nil
}

// probeMatches samples one point. The probe is removed on every return
// path so failed batches do not leak probes onto the canvas.
func (d *PixelProbe) probeMatches(pt geom.Point) (bool, error) {
	id, err := d.surface.CreateProbe(pt)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeDetect, err, "creating pixel probe")
	}
	defer d.surface.RemoveProbe(id)

	c, err := d.surface.ProbeColor(id)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeDetect, err, "reading pixel probe")
	}
	return c == d.background, nil
}
