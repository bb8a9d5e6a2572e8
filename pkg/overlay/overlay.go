// Package overlay rotates decoration files across board cells.
//
// Each cell remembers the overlay index it last used in the board
// metadata. The first assignment for a cell is derived from its grid
// position so neighboring cells start on different files; subsequent
// assignments step away from the stored index, alternating direction by
// parity, which settles each cell into ping-ponging between two adjacent
// pool entries.
package overlay

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ysenez/openboard/pkg/board"
	"github.com/ysenez/openboard/pkg/errors"
)

// InitialIndex returns the first overlay index for the cell at linear
// reading-order position i (zero based) in a pool of n files.
func InitialIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	return (i * 2) % n
}

// NextIndex returns the index following stored in a pool of n files. Even
// indices step forward, odd ones step back; both wrap.
func NextIndex(stored, n int) int {
	if n <= 0 {
		return 0
	}
	if stored%2 == 0 {
		return (stored + 1) % n
	}
	return (stored - 1 + n) % n
}

// Allocator hands out overlay files per cell and persists the used index
// immediately, so an interrupted batch never reuses an index it already
// handed out.
type Allocator struct {
	store  *board.Store
	files  []string
	logger *log.Logger
}

// NewAllocator returns an allocator over the given file pool.
func NewAllocator(store *board.Store, files []string, logger *log.Logger) *Allocator {
	return &Allocator{store: store, files: files, logger: logger}
}

// Files returns the pool in assignment order.
func (a *Allocator) Files() []string { return a.files }

// Assign picks the overlay file for the cell at pos and records the choice
// in the board metadata on disk.
func (a *Allocator) Assign(b *board.Board, pos board.GridPos, shape board.Shape) (string, error) {
	if len(a.files) == 0 {
		return "", errors.New(errors.ErrCodeConfig, "overlay pool is empty")
	}

	var idx int
	if stored, ok := b.Meta.OverlayIndex[pos]; ok {
		idx = NextIndex(stored, len(a.files))
	} else {
		linear := (pos.Row-1)*shape.Cols + (pos.Col - 1)
		idx = InitialIndex(linear, len(a.files))
	}

	updates := board.NewMetadata()
	updates.OverlayIndex[pos] = idx
	if err := a.store.MergeMetadata(b, updates); err != nil {
		return "", err
	}
	file := a.files[idx]
	a.logger.Debug("overlay assigned", "row", pos.Row, "col", pos.Col, "index", idx, "file", filepath.Base(file))
	return file, nil
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// FindFiles resolves an overlay source to a sorted file pool. A file path
// yields a single-entry pool; a directory yields every image file directly
// inside it, sorted by name so the rotation order is stable across runs.
func FindFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "overlay source not found")
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "reading overlay directory")
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, errors.New(errors.ErrCodeConfig, "overlay directory contains no image files")
	}
	return files, nil
}
