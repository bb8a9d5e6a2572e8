package cli

import (
	"image"
	"image/png"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/charmbracelet/log"

	"github.com/ysenez/openboard/pkg/board"
	"github.com/ysenez/openboard/pkg/canvas"
)

// loadSurface opens the canvas image backing a board. When the file does not
// exist a fresh background-colored canvas sized to the board extents is
// created instead, so a board file alone is enough to start importing.
func loadSurface(path string, b *board.Board, background canvas.Color, logger *log.Logger) (*canvas.Memory, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		w, h := boardExtent(b)
		logger.Debug("canvas not found, creating blank surface", "path", path, "width", w, "height", h)
		return canvas.NewMemory(w, h, background), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return canvas.FromImage(img), nil
}

// saveSurface writes the canvas back as PNG via a temp file rename, matching
// how board files are replaced.
func saveSurface(path string, m *canvas.Memory) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".canvas-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	werr := png.Encode(tmp, m.Image())
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(tmpName)
		if werr == nil {
			werr = cerr
		}
		return werr
	}
	return os.Rename(tmpName, path)
}

// boardExtent returns the pixel size covering every cell with a small
// margin, used when creating a canvas from scratch.
func boardExtent(b *board.Board) (int, int) {
	var maxX, maxY float64
	for _, c := range b.Cells {
		bb := c.Bounds()
		if bb.MaxX > maxX {
			maxX = bb.MaxX
		}
		if bb.MaxY > maxY {
			maxY = bb.MaxY
		}
	}
	const margin = 40
	return int(maxX) + margin, int(maxY) + margin
}
