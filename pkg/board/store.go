package board

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/ysenez/openboard/pkg/errors"
	"github.com/ysenez/openboard/pkg/geom"
)

// Store reads and writes one board file. Every mutating operation is a full
// read-modify-write of the file: the board is parsed into memory, changed,
// and rewritten in one atomic replace. A single writer is assumed; there is
// no file locking, and concurrent external writers are unsupported.
type Store struct {
	path   string
	logger *log.Logger
}

// NewStore creates a store for the board file at path.
// A nil logger falls back to log.Default().
func NewStore(path string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the board file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and parses the board file. A missing or unreadable file returns
// ErrCodeBoardNotFound; callers treat that as "no board" and move on rather
// than aborting their batch.
func (s *Store) Load() (*Board, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBoardNotFound, err, "reading board file %s", s.path)
	}
	return Parse(string(data), s.logger), nil
}

// Save serializes the board and atomically replaces the file: the content is
// written to a temp file in the same directory and renamed over the target,
// so readers never observe a half-written board.
func (s *Store) Save(b *Board) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".board-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "creating temp board file in %s", dir)
	}
	tmpName := tmp.Name()

	_, werr := tmp.WriteString(b.Serialize())
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(tmpName)
		if werr == nil {
			werr = cerr
		}
		return errors.Wrap(errors.ErrCodeInternal, werr, "writing board file %s", s.path)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeInternal, err, "replacing board file %s", s.path)
	}
	return nil
}

// AppendCell adds a new cell with the given bounds to the board and persists
// it. The new id is the current cell count plus one. Appending does not
// reorganize; callers that break reading order must call Reorganize
// themselves.
func (s *Store) AppendCell(b *Board, bounds geom.AABB) (int, error) {
	id := len(b.Cells) + 1
	b.Cells = append(b.Cells, NewCell(id, bounds))
	if err := s.Save(b); err != nil {
		return 0, err
	}
	s.logger.Debug("appended cell", "id", id,
		"minX", bounds.MinX, "minY", bounds.MinY, "maxX", bounds.MaxX, "maxY", bounds.MaxY)
	return id, nil
}

// Reorganize renumbers the board into reading order and persists the result.
func (s *Store) Reorganize(b *Board) error {
	b.Reorganize()
	return s.Save(b)
}

// MergeMetadata applies updates onto the stored board's metadata with
// per-key last-writer-wins semantics and rewrites the file. The overlay
// rotation namespace merges independently of general values.
func (s *Store) MergeMetadata(b *Board, updates Metadata) error {
	b.Meta.Merge(updates)
	return s.Save(b)
}
