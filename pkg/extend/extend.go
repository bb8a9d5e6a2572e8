// Package extend grows a full board by one row or one column.
package extend

import (
	"github.com/charmbracelet/log"

	"github.com/ysenez/openboard/pkg/board"
	"github.com/ysenez/openboard/pkg/canvas"
	"github.com/ysenez/openboard/pkg/errors"
	"github.com/ysenez/openboard/pkg/geom"
)

// Direction selects the extension axis.
type Direction string

const (
	Bottom Direction = "bottom"
	Right  Direction = "right"

	// Alternate flips between Right and Bottom across runs, using the
	// persisted last direction as the starting point.
	Alternate Direction = "alternate"
)

// ParseDirection maps a config string to a Direction, defaulting to
// Alternate for anything unrecognized.
func ParseDirection(s string) Direction {
	switch Direction(s) {
	case Bottom, Right, Alternate:
		return Direction(s)
	}
	return Alternate
}

// DirectionStore persists the direction used by the previous extension so
// Alternate can flip across process restarts.
type DirectionStore interface {
	LastDirection() string
	SetLastDirection(string) error
}

// DefaultSpacing is the cell gap used when the board metadata carries no
// spacing and no adjacent cell pair reveals one.
const DefaultSpacing = 40.0

// Options bound the extension geometry.
type Options struct {
	Direction Direction
	// LayoutWidth caps the board width in pixels. Zero means unbounded.
	LayoutWidth float64
	// DropZone is the width reserved at the right canvas edge. A rightward
	// extension that would intrude into it is redirected to the bottom.
	DropZone float64
	// MarginInResize adds one spacing of breathing room beyond the new
	// outermost cells when resizing the canvas.
	MarginInResize bool
	Background     canvas.Color
}

// Result reports what an extension did.
type Result struct {
	// FirstCellID is the ID of the first new cell in reading order, valid
	// after any renumbering the extension performed.
	FirstCellID int
	FirstCell   geom.AABB
	Direction   Direction
	Reorganized bool
	Added       int
}

// Extender appends a row or column of cells to a board and resizes the
// canvas to fit them.
type Extender struct {
	store   *board.Store
	surface canvas.Surface
	dirs    DirectionStore
	opts    Options
	logger  *log.Logger
}

// New returns an Extender. dirs may be nil when the direction is fixed.
func New(store *board.Store, surface canvas.Surface, dirs DirectionStore, opts Options, logger *log.Logger) *Extender {
	return &Extender{store: store, surface: surface, dirs: dirs, opts: opts, logger: logger}
}

// Extend grows b by one column (Right) or one row (Bottom), resizes the
// canvas, fills the exposed area with the background color, and saves the
// board. A rightward extension renumbers the whole grid so IDs stay in
// reading order; a bottom extension only appends.
func (e *Extender) Extend(b *board.Board) (Result, error) {
	if len(b.Cells) == 0 {
		return Result{}, errors.New(errors.ErrCodeExtend, "cannot extend an empty board")
	}

	dir := e.resolveDirection()
	shape := b.LayoutShape()
	spacing := e.spacing(b, shape)

	if dir == Right && !e.rightFits(b, spacing) {
		e.logger.Debug("rightward extension exceeds layout width, extending bottom instead")
		dir = Bottom
	}

	var res Result
	var err error
	switch dir {
	case Right:
		res, err = e.extendRight(b, shape, spacing)
	default:
		res, err = e.extendBottom(b, shape, spacing)
	}
	if err != nil {
		return Result{}, err
	}
	res.Direction = dir

	if err := e.store.Save(b); err != nil {
		return Result{}, err
	}
	if e.dirs != nil {
		if err := e.dirs.SetLastDirection(string(dir)); err != nil {
			e.logger.Warn("persisting extension direction failed", "error", err)
		}
	}
	e.logger.Info("board extended", "direction", dir, "cells", res.Added, "firstCell", res.FirstCellID)
	return res, nil
}

// resolveDirection turns Alternate into a concrete axis using the
// persisted previous run.
func (e *Extender) resolveDirection() Direction {
	dir := e.opts.Direction
	if dir != Alternate {
		return dir
	}
	if e.dirs != nil && e.dirs.LastDirection() == string(Right) {
		return Bottom
	}
	return Right
}

// spacing returns the cell gap: board metadata first, then the gap between
// the first pair of same-row neighbors, then the default.
func (e *Extender) spacing(b *board.Board, shape board.Shape) float64 {
	if v, ok := b.Meta.Float("layoutSpacing"); ok && v > 0 {
		return v
	}
	if shape.Cols > 1 && len(b.Cells) > 1 {
		a := b.Cells[0].Bounds()
		n := b.Cells[1].Bounds()
		if geom.SameRow(a.MinY, n.MinY, geom.ClusterTolerance) {
			gap := n.MinX - a.MaxX
			if gap >= 0 && gap <= DefaultSpacing+geom.ClusterTolerance {
				return gap
			}
		}
	}
	return DefaultSpacing
}

func (e *Extender) rightFits(b *board.Board, spacing float64) bool {
	if e.opts.LayoutWidth <= 0 {
		return true
	}
	var right, width float64
	for _, c := range b.Cells {
		bb := c.Bounds()
		if bb.MaxX > right {
			right = bb.MaxX
			width = bb.Width()
		}
	}
	return right+spacing+width <= e.opts.LayoutWidth-e.opts.DropZone
}

// extendRight appends one cell to the right of each row and renumbers the
// grid. The first new cell is the one completing the top row; after
// renumbering its ID is the old column count plus one.
func (e *Extender) extendRight(b *board.Board, shape board.Shape, spacing float64) (Result, error) {
	rows := rowsOf(b)
	var newCells []geom.AABB
	for _, row := range rows {
		last := row[len(row)-1].Bounds()
		newCells = append(newCells, geom.AABB{
			MinX: last.MaxX + spacing,
			MinY: last.MinY,
			MaxX: last.MaxX + spacing + last.Width(),
			MaxY: last.MaxY,
		})
	}

	if err := e.growCanvas(newCells, spacing); err != nil {
		return Result{}, err
	}
	for _, bounds := range newCells {
		if _, err := e.store.AppendCell(b, bounds); err != nil {
			return Result{}, err
		}
		e.fillCell(bounds)
	}
	b.Reorganize()

	firstID := shape.Cols + 1
	first, ok := b.CellByID(firstID)
	if !ok {
		return Result{}, errors.New(errors.ErrCodeExtend, "renumbered board is missing the new column head")
	}
	return Result{
		FirstCellID: firstID,
		FirstCell:   first.Bounds(),
		Reorganized: true,
		Added:       len(newCells),
	}, nil
}

// extendBottom appends one cell below each column. IDs continue the
// existing sequence, which already matches reading order, so no
// renumbering happens.
func (e *Extender) extendBottom(b *board.Board, shape board.Shape, spacing float64) (Result, error) {
	cols := colsOf(b)
	var newCells []geom.AABB
	for _, col := range cols {
		last := col[len(col)-1].Bounds()
		newCells = append(newCells, geom.AABB{
			MinX: last.MinX,
			MinY: last.MaxY + spacing,
			MaxX: last.MaxX,
			MaxY: last.MaxY + spacing + last.Height(),
		})
	}

	if err := e.growCanvas(newCells, spacing); err != nil {
		return Result{}, err
	}
	var firstID int
	var first geom.AABB
	for i, bounds := range newCells {
		id, err := e.store.AppendCell(b, bounds)
		if err != nil {
			return Result{}, err
		}
		if i == 0 {
			firstID, first = id, bounds
		}
		e.fillCell(bounds)
	}
	return Result{FirstCellID: firstID, FirstCell: first, Added: len(newCells)}, nil
}

// growCanvas resizes the surface to contain the new cells, anchored at the
// origin, and paints the newly exposed strip with the background color.
func (e *Extender) growCanvas(newCells []geom.AABB, spacing float64) error {
	old := e.surface.Bounds()
	needed := old
	for _, c := range newCells {
		if c.MaxX > needed.MaxX {
			needed.MaxX = c.MaxX
		}
		if c.MaxY > needed.MaxY {
			needed.MaxY = c.MaxY
		}
	}
	if e.opts.MarginInResize {
		if needed.MaxX > old.MaxX {
			needed.MaxX += spacing
		}
		if needed.MaxY > old.MaxY {
			needed.MaxY += spacing
		}
	}
	if needed == old {
		return nil
	}

	if err := e.surface.Resize(needed.Width(), needed.Height(), geom.Point{}); err != nil {
		return errors.Wrap(errors.ErrCodeExtend, err, "resizing canvas")
	}
	if needed.MaxX > old.MaxX {
		strip := geom.AABB{MinX: old.MaxX, MinY: 0, MaxX: needed.MaxX, MaxY: needed.MaxY}
		if err := e.surface.FillRegion(strip, e.opts.Background); err != nil {
			return errors.Wrap(errors.ErrCodeExtend, err, "filling exposed canvas strip")
		}
	}
	if needed.MaxY > old.MaxY {
		strip := geom.AABB{MinX: 0, MinY: old.MaxY, MaxX: needed.MaxX, MaxY: needed.MaxY}
		if err := e.surface.FillRegion(strip, e.opts.Background); err != nil {
			return errors.Wrap(errors.ErrCodeExtend, err, "filling exposed canvas strip")
		}
	}
	return nil
}

func (e *Extender) fillCell(bounds geom.AABB) {
	if err := e.surface.FillRegion(bounds, e.opts.Background); err != nil {
		e.logger.Debug("filling new cell interior failed", "error", err)
	}
}

// rowsOf groups cells into rows by Y coordinate, top to bottom, each row
// sorted left to right. Cells are assumed already in reading order.
func rowsOf(b *board.Board) [][]board.Cell {
	var rows [][]board.Cell
	for _, c := range b.Cells {
		placed := false
		for i := range rows {
			if geom.SameRow(rows[i][0].Bounds().MinY, c.Bounds().MinY, geom.ClusterTolerance) {
				rows[i] = append(rows[i], c)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, []board.Cell{c})
		}
	}
	return rows
}

// colsOf groups cells into columns by X coordinate, left to right, each
// column sorted top to bottom.
func colsOf(b *board.Board) [][]board.Cell {
	var cols [][]board.Cell
	for _, c := range b.Cells {
		placed := false
		for i := range cols {
			head := cols[i][0].Bounds()
			if diff(head.MinX, c.Bounds().MinX) <= geom.ClusterTolerance {
				cols[i] = append(cols[i], c)
				placed = true
				break
			}
		}
		if !placed {
			cols = append(cols, []board.Cell{c})
		}
	}
	return cols
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
