// Package alloc finds the cell, or half cell, an image should land in.
//
// Allocation is batch oriented: a BatchContext carries the scan cursor and
// the partial-spread registry across consecutive Find calls so a run over
// many images does not re-examine cells already known to be full, and
// portrait images pair up into the two halves of one spread cell instead
// of each claiming a fresh one.
package alloc

import (
	"sort"

	"github.com/charmbracelet/log"

	"github.com/ysenez/openboard/pkg/board"
	"github.com/ysenez/openboard/pkg/detect"
	"github.com/ysenez/openboard/pkg/geom"
)

// BatchContext is the per-run allocation state. A fresh context must be
// created for every batch; carrying one across runs would trust occupancy
// observations the canvas may no longer match.
type BatchContext struct {
	// Registry maps cell ID to the side of a spread cell still free after
	// a portrait image took the other half. Entries are hints: they are
	// re-verified against the canvas before use and evicted when stale.
	Registry map[int]board.Side

	// FirstFreeCellID is the scan cursor. Cells below it were fully
	// occupied when last examined in this batch and are skipped.
	FirstFreeCellID int

	// LastProcessedCellID is the highest cell ID examined so far.
	LastProcessedCellID int
}

// NewBatchContext returns an empty context with the cursor at the first
// cell.
func NewBatchContext() *BatchContext {
	return &BatchContext{Registry: make(map[int]board.Side), FirstFreeCellID: 1}
}

func (bc *BatchContext) register(cellID int, free board.Side) {
	bc.Registry[cellID] = free
}

func (bc *BatchContext) unregister(cellID int) {
	delete(bc.Registry, cellID)
}

// sortedRegistryIDs returns the registered cell IDs in ascending order so
// pairing fills the board in reading order regardless of map iteration.
func (bc *BatchContext) sortedRegistryIDs() []int {
	ids := make([]int, 0, len(bc.Registry))
	for id := range bc.Registry {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ExtendOutcome is what an extension reports back: the definitive identity
// and bounds of the first newly created cell. Reorganized is set when the
// extension renumbered the existing cells, which invalidates every cell ID
// observed before it.
type ExtendOutcome struct {
	FirstCellID int
	FirstCell   geom.AABB
	Reorganized bool
}

// Extender grows the board when no free cell remains.
type Extender interface {
	Extend() (ExtendOutcome, error)
}

// BoundsProvider reports the current canvas extent. Bounds are queried per
// scan rather than captured once because extension grows the canvas
// mid-batch.
type BoundsProvider interface {
	Bounds() geom.AABB
}

// Placement describes where an image goes. Zone is the exact region to
// fill; for a portrait image on a spread board it is one half of Cell and
// Side names which one.
type Placement struct {
	CellID   int
	Cell     geom.AABB
	Zone     geom.AABB
	Side     board.Side
	Half     bool
	Extended bool
}

// Allocator scans one board for free cells on behalf of a batch.
type Allocator struct {
	board    *board.Board
	checker  detect.Checker
	canvas   BoundsProvider
	extender Extender
	batch    *BatchContext
	logger   *log.Logger
}

// New returns an allocator over b. extender may be nil, in which case a
// full board ends the search instead of growing.
func New(b *board.Board, checker detect.Checker, canvas BoundsProvider, extender Extender, batch *BatchContext, logger *log.Logger) *Allocator {
	return &Allocator{
		board:    b,
		checker:  checker,
		canvas:   canvas,
		extender: extender,
		batch:    batch,
		logger:   logger,
	}
}

// Find locates a free zone for an image of the given orientation. The
// second return value is false when the board is full and could not be
// extended; that is not an error, the caller decides the fallback.
func (a *Allocator) Find(orientation geom.Orientation) (Placement, bool, error) {
	wantHalf := a.board.CellType == board.Spread && orientation == geom.Portrait

	if wantHalf {
		if p, ok := a.pairFromRegistry(); ok {
			return p, true, nil
		}
	}

	p, ok, err := a.scan(wantHalf)
	if err != nil || ok {
		return p, ok, err
	}

	if a.extender == nil {
		return Placement{}, false, nil
	}
	outcome, err := a.extender.Extend()
	if err != nil {
		a.logger.Warn("board extension failed", "error", err)
		return Placement{}, false, nil
	}
	return a.claimFresh(outcome, wantHalf), true, nil
}

// pairFromRegistry tries to complete a partially used spread cell. Every
// entry is re-verified before use: metadata merges, manual edits, or a
// failed earlier placement can leave the hint pointing at an occupied
// half.
func (a *Allocator) pairFromRegistry() (Placement, bool) {
	for _, id := range a.batch.sortedRegistryIDs() {
		side := a.batch.Registry[id]
		cell, ok := a.board.CellByID(id)
		if !ok {
			a.batch.unregister(id)
			continue
		}
		res, err := a.checker.Check(cell.Bounds(), a.board.CellType)
		if err != nil {
			a.logger.Debug("registry verification failed", "cell", id, "error", err)
			a.batch.unregister(id)
			continue
		}
		if !res.SideEmpty(side) {
			a.logger.Debug("evicting stale registry entry", "cell", id, "side", side)
			a.batch.unregister(id)
			continue
		}
		a.batch.unregister(id)
		bounds := cell.Bounds()
		return Placement{
			CellID: id,
			Cell:   bounds,
			Zone:   halfZone(bounds, side),
			Side:   side,
			Half:   true,
		}, true
	}
	return Placement{}, false
}

// scan walks the cells in reading order from the batch cursor. Fully
// occupied cells seen at the front of the scan advance the cursor so later
// calls in the same batch skip them.
//
// The walk trusts board.Cells: the file format keeps cells in reading
// order, and Reorganize restores it after any structural change.
func (a *Allocator) scan(wantHalf bool) (Placement, bool, error) {
	advancing := true
	canvasBounds := a.canvas.Bounds()
	for _, cell := range a.board.Cells {
		if cell.ID < a.batch.FirstFreeCellID {
			continue
		}
		if cell.ID > a.batch.LastProcessedCellID {
			a.batch.LastProcessedCellID = cell.ID
		}
		bounds := cell.Bounds()
		if !bounds.Within(canvasBounds) {
			a.logger.Debug("skipping cell outside canvas", "cell", cell.ID)
			advancing = false
			continue
		}

		res, err := a.checker.Check(bounds, a.board.CellType)
		if err != nil {
			return Placement{}, false, err
		}

		if !wantHalf {
			if res.AllEmpty() {
				return Placement{CellID: cell.ID, Cell: bounds, Zone: bounds}, true, nil
			}
			if advancing && a.occupiedForCursor(cell.ID, res) {
				a.batch.FirstFreeCellID = cell.ID + 1
			} else {
				advancing = false
			}
			continue
		}

		if res.AnyEmpty() {
			side := board.Left
			if !res.LeftEmpty {
				side = board.Right
			}
			if res.AllEmpty() {
				a.batch.register(cell.ID, opposite(side))
			} else {
				a.batch.unregister(cell.ID)
			}
			return Placement{
				CellID: cell.ID,
				Cell:   bounds,
				Zone:   halfZone(bounds, side),
				Side:   side,
				Half:   true,
			}, true, nil
		}
		a.batch.unregister(cell.ID)
		if advancing {
			a.batch.FirstFreeCellID = cell.ID + 1
		}
	}
	return Placement{}, false, nil
}

// occupiedForCursor reports whether the cell can never serve a later image
// in this batch. A spread cell with one free half still can: a portrait
// image may pair into it, so the cursor must not pass it.
func (a *Allocator) occupiedForCursor(cellID int, res detect.Result) bool {
	if a.board.CellType == board.Spread && res.AnyEmpty() {
		return false
	}
	return !res.AllEmpty()
}

// claimFresh builds the placement inside a cell created by extension. The
// cell is known empty, no detection pass is needed.
func (a *Allocator) claimFresh(outcome ExtendOutcome, wantHalf bool) Placement {
	if outcome.Reorganized {
		// Renumbering shifted the IDs behind the cursor and registry
		// observations; both must restart from scratch.
		a.batch.FirstFreeCellID = 1
		a.batch.LastProcessedCellID = 0
		a.batch.Registry = make(map[int]board.Side)
	}
	p := Placement{
		CellID:   outcome.FirstCellID,
		Cell:     outcome.FirstCell,
		Zone:     outcome.FirstCell,
		Extended: true,
	}
	if wantHalf {
		p.Side = board.Left
		p.Zone = halfZone(outcome.FirstCell, board.Left)
		p.Half = true
		a.batch.register(outcome.FirstCellID, board.Right)
	}
	return p
}

func halfZone(cell geom.AABB, s board.Side) geom.AABB {
	if s == board.Right {
		return cell.RightHalf()
	}
	return cell.LeftHalf()
}

func opposite(s board.Side) board.Side {
	if s == board.Left {
		return board.Right
	}
	return board.Left
}
