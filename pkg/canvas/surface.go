// Package canvas defines the Canvas Surface collaborator: the host-side
// drawing surface the allocation engine queries and mutates. The engine only
// ever talks to the Surface interface; it never composites pixels itself.
//
// Two capabilities matter to the engine:
//
//   - Content inspection: enumerate the placed content elements of a named
//     container (layer-bounds occupancy detection), or sample pixel colors
//     through short-lived probes (pixel-sampling occupancy detection).
//   - Structural mutation: grow the canvas along one axis and backfill the
//     newly exposed regions with configured colors (board extension).
//
// Memory is an image-backed implementation used by the CLI and the test
// suite. A host application embedding the engine supplies its own Surface.
package canvas

import (
	"github.com/ysenez/openboard/pkg/geom"
)

// ContentGroup is the container name that holds placed image content.
// Occupancy detection only inspects elements inside this container.
const ContentGroup = "Board Content"

// Element is one unit of placed content on the canvas, as seen by occupancy
// detection.
type Element struct {
	Name    string
	Bounds  geom.AABB
	Visible bool
	Opacity float64
}

// Container is a named group of content elements.
type Container interface {
	Name() string
	Elements() []Element
}

// ProbeID identifies a temporary color probe on the surface.
type ProbeID int

// Surface is the collaborator contract the engine consumes.
//
// FindContainer is an explicit lookup returning an absence flag; a missing
// container is an expected state, not an error. Probes created with
// CreateProbe must be removed with RemoveProbe by the caller once sampled,
// whatever the outcome of the sampling.
type Surface interface {
	// Bounds returns the current canvas extent, origin at (0,0).
	Bounds() geom.AABB

	// FindContainer looks up a content container by name.
	FindContainer(name string) (Container, bool)

	// CreateProbe places a temporary color probe at p.
	CreateProbe(p geom.Point) (ProbeID, error)

	// ProbeColor samples the color under an existing probe.
	ProbeColor(id ProbeID) (Color, error)

	// RemoveProbe deletes a probe. Unknown ids are ignored.
	RemoveProbe(id ProbeID)

	// Resize grows or shrinks the canvas to width x height. The anchor is
	// the offset of the existing content in the new canvas; extension
	// always anchors at the origin.
	Resize(width, height float64, anchor geom.Point) error

	// FillRegion paints a rectangular region with a solid color.
	FillRegion(region geom.AABB, c Color) error
}
