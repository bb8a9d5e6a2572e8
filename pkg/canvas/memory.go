package canvas

import (
	"image"
	"image/draw"

	"github.com/ysenez/openboard/pkg/errors"
	"github.com/ysenez/openboard/pkg/geom"
)

// Memory is an image-backed Surface. It keeps both a pixel raster (for probe
// sampling and PNG round-trips) and an element list per container (for
// layer-bounds detection), so either occupancy strategy observes the same
// placements.
//
// Memory is not safe for concurrent use; the engine is single-threaded by
// design.
type Memory struct {
	img        *image.RGBA
	containers map[string]*memContainer
	probes     map[ProbeID]geom.Point
	nextProbe  ProbeID

	// rasterOnly surfaces carry no element structure at all: placements
	// paint pixels but are never recorded as elements. Layer-bounds
	// detection cannot run against them and must fall back to probing.
	rasterOnly bool
}

type memContainer struct {
	name     string
	elements []Element
}

func (c *memContainer) Name() string { return c.name }

func (c *memContainer) Elements() []Element {
	out := make([]Element, len(c.elements))
	copy(out, c.elements)
	return out
}

// NewMemory creates a blank surface of the given pixel size filled with the
// background color. The content container exists but is empty.
func NewMemory(width, height int, background Color) *Memory {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background.RGBA()), image.Point{}, draw.Src)
	return &Memory{
		img:        img,
		containers: map[string]*memContainer{ContentGroup: {name: ContentGroup}},
		probes:     make(map[ProbeID]geom.Point),
	}
}

// FromImage wraps an existing raster (e.g. a decoded PNG of the board) as a
// surface. No element information is recoverable from pixels, so the surface
// has no content container at all: layer-bounds detection fails against it
// and occupancy relies on pixel probing. If a container existed but were
// empty, painted cells would wrongly read as free.
func FromImage(src image.Image) *Memory {
	b := src.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(img, img.Bounds(), src, b.Min, draw.Src)
	return &Memory{
		img:        img,
		containers: map[string]*memContainer{},
		probes:     make(map[ProbeID]geom.Point),
		rasterOnly: true,
	}
}

// Image returns the backing raster.
func (m *Memory) Image() image.Image { return m.img }

// Bounds implements Surface.
func (m *Memory) Bounds() geom.AABB {
	b := m.img.Bounds()
	return geom.AABB{MaxX: float64(b.Dx()), MaxY: float64(b.Dy())}
}

// FindContainer implements Surface.
func (m *Memory) FindContainer(name string) (Container, bool) {
	c, ok := m.containers[name]
	if !ok {
		return nil, false
	}
	return c, true
}

// RemoveContainer drops a container. Used by tests to simulate a host
// document without a content group.
func (m *Memory) RemoveContainer(name string) {
	delete(m.containers, name)
}

// AddElement records a content element in the content container and paints
// its rectangle with the given color so pixel probing observes it too. On
// raster-only surfaces the element list is not maintained; only the pixels
// change.
func (m *Memory) AddElement(e Element, fill Color) {
	if !m.rasterOnly {
		c, ok := m.containers[ContentGroup]
		if !ok {
			c = &memContainer{name: ContentGroup}
			m.containers[ContentGroup] = c
		}
		c.elements = append(c.elements, e)
	}
	if e.Visible && e.Opacity > 0 {
		_ = m.FillRegion(e.Bounds, fill)
	}
}

// CreateProbe implements Surface.
func (m *Memory) CreateProbe(p geom.Point) (ProbeID, error) {
	if !m.Bounds().ContainsPoint(p) {
		return 0, errors.New(errors.ErrCodeCanvas, "probe at (%g,%g) outside canvas", p.X, p.Y)
	}
	m.nextProbe++
	m.probes[m.nextProbe] = p
	return m.nextProbe, nil
}

// ProbeColor implements Surface.
func (m *Memory) ProbeColor(id ProbeID) (Color, error) {
	p, ok := m.probes[id]
	if !ok {
		return Color{}, errors.New(errors.ErrCodeCanvas, "unknown probe %d", id)
	}
	return FromRGBA(m.img.At(int(p.X), int(p.Y))), nil
}

// RemoveProbe implements Surface.
func (m *Memory) RemoveProbe(id ProbeID) {
	delete(m.probes, id)
}

// ProbeCount returns the number of live probes. Detection is required to
// clean up every probe it creates; tests assert this returns to zero.
func (m *Memory) ProbeCount() int {
	return len(m.probes)
}

// Resize implements Surface. Existing pixels are copied at the anchor
// offset; newly exposed pixels start black and are expected to be backfilled
// by the caller.
func (m *Memory) Resize(width, height float64, anchor geom.Point) error {
	if width <= 0 || height <= 0 {
		return errors.New(errors.ErrCodeCanvas, "invalid canvas size %gx%g", width, height)
	}
	next := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	offset := image.Pt(int(anchor.X), int(anchor.Y))
	draw.Draw(next, m.img.Bounds().Add(offset), m.img, m.img.Bounds().Min, draw.Src)
	m.img = next
	return nil
}

// FillRegion implements Surface. The region is clipped to the canvas.
func (m *Memory) FillRegion(region geom.AABB, c Color) error {
	r := image.Rect(int(region.MinX), int(region.MinY), int(region.MaxX), int(region.MaxY))
	r = r.Intersect(m.img.Bounds())
	if r.Empty() {
		return nil
	}
	draw.Draw(m.img, r, image.NewUniform(c.RGBA()), image.Point{}, draw.Src)
	return nil
}

var _ Surface = (*Memory)(nil)
