// Package batch runs a sequence of images through the allocation engine.
//
// A run owns all per-batch state: the detection chain, the allocation
// context with its cursor and pairing registry, and the optional extension
// and overlay collaborators. Each image is probed for orientation, placed
// into the cell or half cell the allocator finds, and recorded in the run
// report. A full board grows when auto-extension is on; otherwise the
// image is centered on the canvas as a last resort.
package batch

import (
	"context"
	"image"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ysenez/openboard/pkg/alloc"
	"github.com/ysenez/openboard/pkg/board"
	"github.com/ysenez/openboard/pkg/canvas"
	"github.com/ysenez/openboard/pkg/config"
	"github.com/ysenez/openboard/pkg/detect"
	"github.com/ysenez/openboard/pkg/extend"
	"github.com/ysenez/openboard/pkg/geom"
	"github.com/ysenez/openboard/pkg/overlay"
)

// placeholderFill is the color placed content is painted with on surfaces
// that render regions rather than real pixels. Anything other than the
// background works; detection only compares against the background.
var placeholderFill = canvas.Color{R: 96, G: 96, B: 96}

// Placer is the canvas capability a batch needs: everything detection and
// extension use, plus adding placed content.
type Placer interface {
	canvas.Surface
	AddElement(e canvas.Element, fill canvas.Color)
}

// Options selects the optional behaviors of one run.
type Options struct {
	// AutoExtend grows the board when it fills up instead of centering
	// leftover images.
	AutoExtend bool

	// OverlayPath is a file or directory of overlay decorations. Empty
	// disables overlay assignment.
	OverlayPath string

	// Margin is the padding in pixels between a zone border and the
	// placed image. Board metadata key adjustedMargin overrides it.
	Margin float64
}

// Runner executes batches against one board file and canvas.
type Runner struct {
	store   *board.Store
	surface Placer
	cfg     *config.Config
	logger  *log.Logger
}

// NewRunner wires a runner. The config is read for detection level,
// background color, resize and landscape modes, and extension geometry.
func NewRunner(store *board.Store, surface Placer, cfg *config.Config, logger *log.Logger) *Runner {
	return &Runner{store: store, surface: surface, cfg: cfg, logger: logger}
}

// extendAdapter narrows an Extender to the allocation contract, binding it
// to the board of the current run.
type extendAdapter struct {
	ext *extend.Extender
	b   *board.Board
}

func (a extendAdapter) Extend() (alloc.ExtendOutcome, error) {
	res, err := a.ext.Extend(a.b)
	if err != nil {
		return alloc.ExtendOutcome{}, err
	}
	return alloc.ExtendOutcome{FirstCellID: res.FirstCellID, FirstCell: res.FirstCell, Reorganized: res.Reorganized}, nil
}

// Run places each image in order. The context is polled between images;
// cancellation stops the run and returns the context error alongside the
// report for the images already processed.
func (r *Runner) Run(ctx context.Context, images []string, opts Options) (*Report, error) {
	b, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	checker := detect.NewChain(
		detect.NewLayerBounds(r.surface, r.logger),
		detect.NewPixelProbe(r.surface, r.cfg.Background(), r.cfg.CellDetectionLevel, r.logger),
		r.logger,
	)

	var extender alloc.Extender
	if opts.AutoExtend {
		ext := extend.New(r.store, r.surface, r.cfg, extend.Options{
			Direction:      extend.ParseDirection(r.cfg.ExtensionDirection),
			LayoutWidth:    r.cfg.LayoutWidth,
			DropZone:       r.cfg.DropZone,
			MarginInResize: r.cfg.UseMarginInResize,
			Background:     r.cfg.Background(),
		}, r.logger)
		extender = extendAdapter{ext: ext, b: b}
	}

	var overlays *overlay.Allocator
	if opts.OverlayPath != "" {
		files, err := overlay.FindFiles(opts.OverlayPath)
		if err != nil {
			return nil, err
		}
		overlays = overlay.NewAllocator(r.store, files, r.logger)
	}

	allocator := alloc.New(b, checker, r.surface, extender, alloc.NewBatchContext(), r.logger)

	report := &Report{RunID: uuid.NewString(), Board: r.store.Path()}
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			report.Canceled = true
			report.tally()
			return report, err
		}
		report.Images = append(report.Images, r.placeOne(b, allocator, overlays, img, opts))
	}
	report.tally()
	return report, nil
}

// placeOne runs the whole pipeline for a single image. Failures are per
// image: they are recorded in the result and never abort the batch.
func (r *Runner) placeOne(b *board.Board, allocator *alloc.Allocator, overlays *overlay.Allocator, path string, opts Options) ImageResult {
	res := ImageResult{Path: path}

	w, h, err := probeDimensions(path)
	if err != nil {
		r.logger.Warn("cannot read image dimensions, assuming portrait", "image", path, "error", err)
		w, h = 1, 2
	}
	orientation := geom.OrientationOf(w, h)
	if orientation == geom.Landscape && r.cfg.LandscapeMode == "single" {
		orientation = geom.Portrait
	}
	res.Orientation = string(orientation)

	placement, found, err := allocator.Find(orientation)
	if err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()
		return res
	}
	if !found {
		r.centerOnCanvas(path, w, h, &res)
		return res
	}

	margin := opts.Margin
	if m, ok := b.Meta.Float("adjustedMargin"); ok {
		margin = m
	}
	target := placeRect(placement.Zone, w, h, r.cfg.ResizeMode, margin)
	r.surface.AddElement(canvas.Element{
		Name:    filepath.Base(path),
		Bounds:  target,
		Visible: true,
		Opacity: 1,
	}, placeholderFill)

	res.Status = StatusPlaced
	res.CellID = placement.CellID
	if placement.Half {
		res.Side = string(placement.Side)
	}
	res.Extended = placement.Extended

	if overlays != nil {
		if pos, ok := b.GridPosOf(placement.CellID); ok {
			file, err := overlays.Assign(b, pos, b.LayoutShape())
			if err != nil {
				r.logger.Warn("overlay assignment failed", "cell", placement.CellID, "error", err)
			} else {
				res.OverlayFile = file
			}
		}
	}
	return res
}

// centerOnCanvas is the no-cell fallback: the image keeps its natural size
// and lands in the middle of the canvas.
func (r *Runner) centerOnCanvas(path string, w, h int, res *ImageResult) {
	cb := r.surface.Bounds()
	c := cb.Center()
	half := geom.Point{X: float64(w) / 2, Y: float64(h) / 2}
	r.surface.AddElement(canvas.Element{
		Name:    filepath.Base(path),
		Bounds:  geom.AABB{MinX: c.X - half.X, MinY: c.Y - half.Y, MaxX: c.X + half.X, MaxY: c.Y + half.Y},
		Visible: true,
		Opacity: 1,
	}, placeholderFill)
	res.Status = StatusCentered
	r.logger.Info("no free cell, centered image on canvas", "image", path)
}

// probeDimensions reads the image header only.
func probeDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// placeRect computes the rectangle an image of natural size w x h occupies
// inside zone under the given resize mode, always centered:
//
//   - fit scales to the largest size fully inside the padded zone
//   - cover scales to the smallest size covering the padded zone and clips
//   - none keeps the natural size
func placeRect(zone geom.AABB, w, h int, mode string, margin float64) geom.AABB {
	inner := geom.AABB{
		MinX: zone.MinX + margin,
		MinY: zone.MinY + margin,
		MaxX: zone.MaxX - margin,
		MaxY: zone.MaxY - margin,
	}
	if inner.Width() <= 0 || inner.Height() <= 0 {
		inner = zone
	}

	iw, ih := float64(w), float64(h)
	if iw <= 0 || ih <= 0 {
		return inner
	}

	var scale float64
	switch mode {
	case "none":
		scale = 1
	case "cover":
		scale = maxf(inner.Width()/iw, inner.Height()/ih)
	default: // fit
		scale = minf(inner.Width()/iw, inner.Height()/ih)
	}

	sw, sh := iw*scale, ih*scale
	c := inner.Center()
	out := geom.AABB{
		MinX: c.X - sw/2,
		MinY: c.Y - sh/2,
		MaxX: c.X + sw/2,
		MaxY: c.Y + sh/2,
	}
	if mode == "cover" {
		out = clip(out, inner)
	}
	return out
}

func clip(b, limit geom.AABB) geom.AABB {
	if b.MinX < limit.MinX {
		b.MinX = limit.MinX
	}
	if b.MinY < limit.MinY {
		b.MinY = limit.MinY
	}
	if b.MaxX > limit.MaxX {
		b.MaxX = limit.MaxX
	}
	if b.MaxY > limit.MaxY {
		b.MaxY = limit.MaxY
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
