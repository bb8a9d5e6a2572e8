// Package board implements the persistent board layout: the `.board` file
// format, cell geometry, typed metadata, and the structural operations the
// allocation engine builds on (renumbering, grid-shape inference, metadata
// merging).
//
// # File format
//
// A board file is plain text. Header lines starting with `#` carry
// `key=value` metadata; a blank line separates the header from the cell
// block; each cell line has exactly 9 comma-separated fields:
//
//	id,tlX,tlY,blX,blY,brX,brY,trX,trY
//
// Cell ids are 1-based and contiguous after any reorganization. Metadata
// values are dynamically typed on read: numeric strings become floats,
// `true`/`false` become booleans, everything else stays a string. Two keys
// are special-cased: `overlayFiles` holds a JSON array of file paths, and
// `overlay_index_cell_<row>_<col>` keys carry the per-cell overlay rotation
// state in their own namespace so general metadata writes can never clobber
// rotation state.
//
// # Usage
//
//	store := board.NewStore("layout.board", logger)
//	b, err := store.Load()
//	if err != nil {
//	    return err
//	}
//	shape := b.LayoutShape()
//	fmt.Printf("%d rows x %d cols\n", shape.Rows, shape.Cols)
package board

import (
	"math"
	"sort"

	"github.com/ysenez/openboard/pkg/geom"
)

// CellType distinguishes single-image cells from double-page spreads.
type CellType string

// Cell types.
const (
	// Single cells hold one image and have one occupancy side.
	Single CellType = "single"

	// Spread cells are double-width: one landscape image spanning both
	// halves, or up to two portrait images, one per half.
	Spread CellType = "spread"
)

// Side identifies one half of a spread cell.
type Side string

// Spread sides. Single cells always report Left.
const (
	Left  Side = "left"
	Right Side = "right"
)

// Cell is one grid slot. The four corners are stored independently because
// the file format persists them independently, but in practice they always
// form an axis-aligned rectangle.
type Cell struct {
	ID          int
	TopLeft     geom.Point
	BottomLeft  geom.Point
	BottomRight geom.Point
	TopRight    geom.Point
}

// Bounds returns the axis-aligned bounding box over all four corners.
func (c Cell) Bounds() geom.AABB {
	b := geom.AABB{
		MinX: c.TopLeft.X, MinY: c.TopLeft.Y,
		MaxX: c.TopLeft.X, MaxY: c.TopLeft.Y,
	}
	for _, p := range []geom.Point{c.BottomLeft, c.BottomRight, c.TopRight} {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// NewCell builds a cell from an id and bounds, deriving the four corners.
func NewCell(id int, bounds geom.AABB) Cell {
	return Cell{
		ID:          id,
		TopLeft:     geom.Point{X: bounds.MinX, Y: bounds.MinY},
		BottomLeft:  geom.Point{X: bounds.MinX, Y: bounds.MaxY},
		BottomRight: geom.Point{X: bounds.MaxX, Y: bounds.MaxY},
		TopRight:    geom.Point{X: bounds.MaxX, Y: bounds.MinY},
	}
}

// Board is the in-memory form of one board file: the ordered cell set plus
// its metadata. The row and column counts are derived from cell geometry,
// never stored authoritatively.
type Board struct {
	CellType CellType
	Meta     Metadata
	Cells    []Cell
}

// Shape is the inferred grid dimensions of a board.
type Shape struct {
	Rows int
	Cols int
}

// LayoutShape infers the grid shape by clustering cell origins: unique
// starting Y coordinates (within geom.ClusterTolerance) become rows, unique
// starting X coordinates become columns.
//
// Legacy and hand-edited boards can carry geometry the clustering cannot
// explain (rows*cols < cell count). In that case the shape falls back to the
// squarest grid that holds every cell: cols = ceil(sqrt(n)),
// rows = ceil(n/cols).
func (b *Board) LayoutShape() Shape {
	if len(b.Cells) == 0 {
		return Shape{}
	}

	ys := clusterCoords(b.Cells, func(c Cell) float64 { return c.Bounds().MinY })
	xs := clusterCoords(b.Cells, func(c Cell) float64 { return c.Bounds().MinX })

	shape := Shape{Rows: len(ys), Cols: len(xs)}
	if shape.Rows*shape.Cols < len(b.Cells) {
		n := len(b.Cells)
		shape.Cols = int(math.Ceil(math.Sqrt(float64(n))))
		shape.Rows = int(math.Ceil(float64(n) / float64(shape.Cols)))
	}
	return shape
}

// clusterCoords collects the distinct coordinate values produced by key,
// merging values within geom.ClusterTolerance into one cluster.
func clusterCoords(cells []Cell, key func(Cell) float64) []float64 {
	vals := make([]float64, 0, len(cells))
	for _, c := range cells {
		vals = append(vals, key(c))
	}
	sort.Float64s(vals)

	var clusters []float64
	for _, v := range vals {
		if len(clusters) == 0 || v-clusters[len(clusters)-1] > geom.ClusterTolerance {
			clusters = append(clusters, v)
		}
	}
	return clusters
}

// Reorganize stable-sorts all cells into reading order (Y ascending with
// geom.ReadingTolerance, ties broken by X ascending) and renumbers them
// 1..N. Calling it on an already ordered board is a no-op.
func (b *Board) Reorganize() {
	sort.SliceStable(b.Cells, func(i, j int) bool {
		bi, bj := b.Cells[i].Bounds(), b.Cells[j].Bounds()
		if !geom.SameRow(bi.MinY, bj.MinY, geom.ReadingTolerance) {
			return bi.MinY < bj.MinY
		}
		return bi.MinX < bj.MinX
	})
	for i := range b.Cells {
		b.Cells[i].ID = i + 1
	}
}

// CellByID returns the cell with the given id.
func (b *Board) CellByID(id int) (Cell, bool) {
	for _, c := range b.Cells {
		if c.ID == id {
			return c, true
		}
	}
	return Cell{}, false
}

// GridPosOf returns the 1-based row/column of the cell with the given id,
// derived from the inferred grid clustering. The second return is false when
// the cell's origin does not match any cluster.
func (b *Board) GridPosOf(id int) (GridPos, bool) {
	c, ok := b.CellByID(id)
	if !ok {
		return GridPos{}, false
	}
	ys := clusterCoords(b.Cells, func(c Cell) float64 { return c.Bounds().MinY })
	xs := clusterCoords(b.Cells, func(c Cell) float64 { return c.Bounds().MinX })

	bounds := c.Bounds()
	pos := GridPos{}
	for i, y := range ys {
		if math.Abs(bounds.MinY-y) <= geom.ClusterTolerance {
			pos.Row = i + 1
			break
		}
	}
	for i, x := range xs {
		if math.Abs(bounds.MinX-x) <= geom.ClusterTolerance {
			pos.Col = i + 1
			break
		}
	}
	if pos.Row == 0 || pos.Col == 0 {
		return GridPos{}, false
	}
	return pos, true
}
