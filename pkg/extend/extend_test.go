package extend

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ysenez/openboard/pkg/board"
	"github.com/ysenez/openboard/pkg/canvas"
	"github.com/ysenez/openboard/pkg/geom"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// memDirections is an in-memory DirectionStore.
type memDirections struct {
	last string
}

func (m *memDirections) LastDirection() string { return m.last }

func (m *memDirections) SetLastDirection(d string) error {
	m.last = d
	return nil
}

// grid22 builds a 2x2 board of 400x300 cells with 20px spacing, starting at
// the origin, persisted in a temp store.
func grid22(t *testing.T) (*board.Store, *board.Board) {
	t.Helper()
	s := board.NewStore(filepath.Join(t.TempDir(), "layout.board"), quietLogger())
	b := &board.Board{CellType: board.Single, Meta: board.NewMetadata()}
	id := 1
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			bounds := geom.AABB{
				MinX: float64(c) * 420, MinY: float64(r) * 320,
				MaxX: float64(c)*420 + 400, MaxY: float64(r)*320 + 300,
			}
			b.Cells = append(b.Cells, board.NewCell(id, bounds))
			id++
		}
	}
	if err := s.Save(b); err != nil {
		t.Fatal(err)
	}
	return s, b
}

func newTestExtender(s *board.Store, surface canvas.Surface, dirs DirectionStore, opts Options) *Extender {
	opts.Background = canvas.White
	return New(s, surface, dirs, opts, quietLogger())
}

func TestExtendBottomAppendsWithoutRenumbering(t *testing.T) {
	s, b := grid22(t)
	surface := canvas.NewMemory(840, 620, canvas.White)
	e := newTestExtender(s, surface, nil, Options{Direction: Bottom})

	res, err := e.Extend(b)
	if err != nil {
		t.Fatalf("Extend() error: %v", err)
	}
	if res.Direction != Bottom || res.Added != 2 || res.Reorganized {
		t.Errorf("result = %+v, want 2 bottom cells, no renumbering", res)
	}
	if res.FirstCellID != 5 {
		t.Errorf("FirstCellID = %d, want 5 (appended ids continue)", res.FirstCellID)
	}
	if len(b.Cells) != 6 || b.Cells[4].ID != 5 || b.Cells[5].ID != 6 {
		t.Errorf("cells after extension: %+v", b.Cells)
	}

	// New row sits one spacing below the old bottom row
	first := res.FirstCell
	if first.MinY != 640 || first.MinX != 0 || first.Height() != 300 {
		t.Errorf("first new cell = %+v, want origin (0,640) height 300", first)
	}
}

func TestExtendRightRenumbersIntoReadingOrder(t *testing.T) {
	s, b := grid22(t)
	surface := canvas.NewMemory(840, 620, canvas.White)
	e := newTestExtender(s, surface, nil, Options{Direction: Right})

	res, err := e.Extend(b)
	if err != nil {
		t.Fatalf("Extend() error: %v", err)
	}
	if !res.Reorganized || res.Added != 2 {
		t.Errorf("result = %+v, want 2 renumbered right cells", res)
	}
	// Old shape was 2 cols, so the new top-row cell becomes id 3
	if res.FirstCellID != 3 {
		t.Errorf("FirstCellID = %d, want 3", res.FirstCellID)
	}
	if res.FirstCell.MinX != 840 || res.FirstCell.MinY != 0 {
		t.Errorf("first new cell = %+v, want origin (840,0)", res.FirstCell)
	}

	// Reading order holds across the whole board
	for i, c := range b.Cells {
		if c.ID != i+1 {
			t.Fatalf("cell %d has id %d after renumbering", i, c.ID)
		}
	}
	if shape := b.LayoutShape(); shape.Rows != 2 || shape.Cols != 3 {
		t.Errorf("shape = %+v, want 2x3", shape)
	}
}

func TestExtendGrowsCanvas(t *testing.T) {
	s, b := grid22(t)
	surface := canvas.NewMemory(840, 620, canvas.White)
	e := newTestExtender(s, surface, nil, Options{Direction: Right, MarginInResize: true})

	res, err := e.Extend(b)
	if err != nil {
		t.Fatal(err)
	}

	// New column ends at x=1240, plus one spacing of margin
	bounds := surface.Bounds()
	if bounds.MaxX != 1260 {
		t.Errorf("canvas width = %g, want 1260", bounds.MaxX)
	}
	if bounds.MaxY != 620 {
		t.Errorf("canvas height = %g, want unchanged 620", bounds.MaxY)
	}

	// New cell interiors are background-colored, ready for detection
	id, err := surface.CreateProbe(res.FirstCell.Center())
	if err != nil {
		t.Fatal(err)
	}
	defer surface.RemoveProbe(id)
	if c, _ := surface.ProbeColor(id); c != canvas.White {
		t.Errorf("new cell interior = %+v, want background", c)
	}
}

func TestExtendPersistsBoard(t *testing.T) {
	s, b := grid22(t)
	surface := canvas.NewMemory(840, 620, canvas.White)
	e := newTestExtender(s, surface, nil, Options{Direction: Bottom})

	if _, err := e.Extend(b); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Cells) != 6 {
		t.Errorf("stored board has %d cells, want 6", len(loaded.Cells))
	}
}

func TestAlternateFlipsAcrossRuns(t *testing.T) {
	dirs := &memDirections{}

	s, b := grid22(t)
	surface := canvas.NewMemory(840, 620, canvas.White)
	e := newTestExtender(s, surface, dirs, Options{Direction: Alternate})

	res, err := e.Extend(b)
	if err != nil {
		t.Fatal(err)
	}
	if res.Direction != Right {
		t.Errorf("first alternate run = %s, want right", res.Direction)
	}
	if dirs.last != string(Right) {
		t.Errorf("persisted direction = %q, want right", dirs.last)
	}

	res, err = e.Extend(b)
	if err != nil {
		t.Fatal(err)
	}
	if res.Direction != Bottom {
		t.Errorf("second alternate run = %s, want bottom", res.Direction)
	}

	res, err = e.Extend(b)
	if err != nil {
		t.Fatal(err)
	}
	if res.Direction != Right {
		t.Errorf("third alternate run = %s, want right", res.Direction)
	}
}

func TestLayoutWidthRedirectsRightToBottom(t *testing.T) {
	s, b := grid22(t)
	surface := canvas.NewMemory(840, 620, canvas.White)
	// A new column would end at 1240; cap the layout below that
	e := newTestExtender(s, surface, nil, Options{Direction: Right, LayoutWidth: 1000})

	res, err := e.Extend(b)
	if err != nil {
		t.Fatal(err)
	}
	if res.Direction != Bottom {
		t.Errorf("direction = %s, want bottom when the cap is hit", res.Direction)
	}
}

func TestDropZoneTightensTheCap(t *testing.T) {
	s, b := grid22(t)
	surface := canvas.NewMemory(840, 620, canvas.White)
	// 1300 would fit the new column (ends at 1240), but the 100px drop
	// zone must stay clear
	e := newTestExtender(s, surface, nil, Options{Direction: Right, LayoutWidth: 1300, DropZone: 100})

	res, err := e.Extend(b)
	if err != nil {
		t.Fatal(err)
	}
	if res.Direction != Bottom {
		t.Errorf("direction = %s, want bottom when the drop zone blocks", res.Direction)
	}
}

func TestSpacingFromMetadata(t *testing.T) {
	s, b := grid22(t)
	b.Meta.SetFloat("layoutSpacing", 50)
	surface := canvas.NewMemory(840, 620, canvas.White)
	e := newTestExtender(s, surface, nil, Options{Direction: Bottom})

	res, err := e.Extend(b)
	if err != nil {
		t.Fatal(err)
	}
	if res.FirstCell.MinY != 670 {
		t.Errorf("new row at y=%g, want 670 (620 + 50 metadata spacing)", res.FirstCell.MinY)
	}
}

func TestSpacingInferredFromNeighbors(t *testing.T) {
	s, b := grid22(t)
	surface := canvas.NewMemory(840, 620, canvas.White)
	e := newTestExtender(s, surface, nil, Options{Direction: Right})

	res, err := e.Extend(b)
	if err != nil {
		t.Fatal(err)
	}
	// Cells 1 and 2 sit 20px apart, so the new column starts 20px after
	// the old right edge
	if res.FirstCell.MinX != 840 {
		t.Errorf("new column at x=%g, want 840", res.FirstCell.MinX)
	}
}

func TestExtendEmptyBoardFails(t *testing.T) {
	s := board.NewStore(filepath.Join(t.TempDir(), "layout.board"), quietLogger())
	b := &board.Board{Meta: board.NewMetadata()}
	surface := canvas.NewMemory(100, 100, canvas.White)
	e := newTestExtender(s, surface, nil, Options{Direction: Bottom})

	if _, err := e.Extend(b); err == nil {
		t.Error("extending an empty board should fail")
	}
}
