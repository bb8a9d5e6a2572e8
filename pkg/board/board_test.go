package board

import (
	"testing"

	"github.com/ysenez/openboard/pkg/geom"
)

// testBounds returns a 100x150 cell with its top-left at (x, y).
func testBounds(x, y float64) geom.AABB {
	return geom.AABB{MinX: x, MinY: y, MaxX: x + 100, MaxY: y + 150}
}

// gridBoard builds rows x cols cells in reading order with 20px spacing.
func gridBoard(rows, cols int) *Board {
	b := &Board{Meta: NewMetadata()}
	id := 1
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			b.Cells = append(b.Cells, NewCell(id, testBounds(float64(c)*120, float64(r)*170)))
			id++
		}
	}
	return b
}

func TestLayoutShape(t *testing.T) {
	b := gridBoard(2, 3)

	shape := b.LayoutShape()
	if shape.Rows != 2 || shape.Cols != 3 {
		t.Errorf("LayoutShape() = %+v, want 2x3", shape)
	}
}

func TestLayoutShapeEmptyBoard(t *testing.T) {
	b := &Board{Meta: NewMetadata()}

	if shape := b.LayoutShape(); shape.Rows != 0 || shape.Cols != 0 {
		t.Errorf("LayoutShape() = %+v, want zero shape", shape)
	}
}

func TestLayoutShapeToleratesDrift(t *testing.T) {
	b := &Board{Meta: NewMetadata()}
	b.Cells = append(b.Cells, NewCell(1, testBounds(0, 0)))
	// Second cell drifted 4px vertically, still the same row
	b.Cells = append(b.Cells, NewCell(2, testBounds(120, 4)))

	shape := b.LayoutShape()
	if shape.Rows != 1 || shape.Cols != 2 {
		t.Errorf("LayoutShape() = %+v, want 1x2 despite drift", shape)
	}
}

func TestLayoutShapeFallback(t *testing.T) {
	// Five cells stacked at the same origin: clustering sees a 1x1 grid,
	// which cannot hold them, so the squarest-fit fallback applies.
	b := &Board{Meta: NewMetadata()}
	for i := 1; i <= 5; i++ {
		b.Cells = append(b.Cells, NewCell(i, testBounds(0, 0)))
	}

	shape := b.LayoutShape()
	if shape.Rows*shape.Cols < 5 {
		t.Errorf("LayoutShape() = %+v, cannot hold 5 cells", shape)
	}
	if shape.Cols != 3 || shape.Rows != 2 {
		t.Errorf("LayoutShape() = %+v, want 2x3 squarest fit", shape)
	}
}

func TestReorganizeReadingOrder(t *testing.T) {
	b := &Board{Meta: NewMetadata()}
	// Shuffled: bottom-right, top-right, top-left, bottom-left
	b.Cells = append(b.Cells, NewCell(7, testBounds(120, 170)))
	b.Cells = append(b.Cells, NewCell(3, testBounds(120, 0)))
	b.Cells = append(b.Cells, NewCell(9, testBounds(0, 0)))
	b.Cells = append(b.Cells, NewCell(1, testBounds(0, 170)))

	b.Reorganize()

	wantOrigins := []geom.Point{{X: 0, Y: 0}, {X: 120, Y: 0}, {X: 0, Y: 170}, {X: 120, Y: 170}}
	for i, c := range b.Cells {
		if c.ID != i+1 {
			t.Errorf("cell %d has id %d, want %d", i, c.ID, i+1)
		}
		if c.TopLeft != wantOrigins[i] {
			t.Errorf("cell %d origin = %+v, want %+v", i, c.TopLeft, wantOrigins[i])
		}
	}
}

func TestReorganizeIdempotent(t *testing.T) {
	b := gridBoard(3, 2)
	before := append([]Cell(nil), b.Cells...)

	b.Reorganize()

	for i := range before {
		if b.Cells[i] != before[i] {
			t.Errorf("cell %d changed on an already ordered board", i)
		}
	}
}

func TestGridPosOf(t *testing.T) {
	b := gridBoard(2, 3)

	pos, ok := b.GridPosOf(5)
	if !ok {
		t.Fatal("GridPosOf(5) not found")
	}
	if pos.Row != 2 || pos.Col != 2 {
		t.Errorf("GridPosOf(5) = %+v, want row 2 col 2", pos)
	}

	if _, ok := b.GridPosOf(99); ok {
		t.Error("GridPosOf(99) should not be found")
	}
}

func TestCellByID(t *testing.T) {
	b := gridBoard(1, 2)

	c, ok := b.CellByID(2)
	if !ok || c.ID != 2 {
		t.Errorf("CellByID(2) = %+v, %v", c, ok)
	}
	if _, ok := b.CellByID(3); ok {
		t.Error("CellByID(3) should not be found")
	}
}

func TestMetadataMergeNamespaces(t *testing.T) {
	m := NewMetadata()
	m.Values["keep"] = 1.0
	m.Values["replace"] = "old"
	m.OverlayIndex[GridPos{Row: 1, Col: 1}] = 4

	updates := NewMetadata()
	updates.Values["replace"] = "new"
	updates.OverlayIndex[GridPos{Row: 2, Col: 1}] = 0

	m.Merge(updates)

	if m.Values["keep"] != 1.0 {
		t.Error("untouched key lost in merge")
	}
	if m.Values["replace"] != "new" {
		t.Errorf("replace = %v, want new", m.Values["replace"])
	}
	if m.OverlayIndex[GridPos{Row: 1, Col: 1}] != 4 {
		t.Error("existing overlay index lost: general merge clobbered the namespace")
	}
	if m.OverlayIndex[GridPos{Row: 2, Col: 1}] != 0 {
		t.Error("new overlay index not merged")
	}
}
