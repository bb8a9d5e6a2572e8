package board

import (
	"fmt"
	"strconv"
	"strings"
)

// GridPos is a 1-based row/column position in the board grid.
type GridPos struct {
	Row int
	Col int
}

// overlayIndexPrefix is the header-key prefix carrying per-cell overlay
// rotation state.
const overlayIndexPrefix = "overlay_index_cell_"

// overlayFilesKey is the header key carrying the JSON list of overlay files.
const overlayFilesKey = "overlayFiles"

// Metadata provides typed access to board header data.
//
// General keys live in Values with their file representation coerced on
// read: floats for numeric strings, booleans for the literals true/false,
// strings otherwise. Overlay rotation state lives in its own OverlayIndex
// namespace so a general metadata write can never clobber rotation state and
// vice versa.
type Metadata struct {
	// Values holds general header keys. Each value is float64, bool, or
	// string depending on how the file text coerced.
	Values map[string]any

	// OverlayFiles is the ordered list of decorative overlay file paths.
	OverlayFiles []string

	// OverlayIndex maps a cell's grid position to the last-used overlay
	// file index.
	OverlayIndex map[GridPos]int
}

// NewMetadata returns an empty metadata set with initialized maps.
func NewMetadata() Metadata {
	return Metadata{
		Values:       make(map[string]any),
		OverlayIndex: make(map[GridPos]int),
	}
}

// Float returns the named value as a float64.
func (m Metadata) Float(key string) (float64, bool) {
	v, ok := m.Values[key].(float64)
	return v, ok
}

// String returns the named value as a string.
func (m Metadata) String(key string) (string, bool) {
	v, ok := m.Values[key].(string)
	return v, ok
}

// Bool returns the named value as a bool.
func (m Metadata) Bool(key string) (bool, bool) {
	v, ok := m.Values[key].(bool)
	return v, ok
}

// SetFloat stores a numeric value under key.
func (m Metadata) SetFloat(key string, v float64) {
	m.Values[key] = v
}

// Merge applies updates onto m with last-writer-wins semantics per key.
// General values and the overlay-index namespace merge independently: keys
// absent from updates are left untouched in both.
func (m *Metadata) Merge(updates Metadata) {
	if m.Values == nil {
		m.Values = make(map[string]any)
	}
	if m.OverlayIndex == nil {
		m.OverlayIndex = make(map[GridPos]int)
	}
	for k, v := range updates.Values {
		m.Values[k] = v
	}
	for pos, idx := range updates.OverlayIndex {
		m.OverlayIndex[pos] = idx
	}
	if updates.OverlayFiles != nil {
		m.OverlayFiles = append([]string(nil), updates.OverlayFiles...)
	}
}

// coerceValue converts raw header text into its dynamic type: float64 when
// numeric, bool for the literals true/false, string otherwise.
func coerceValue(raw string) any {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}

// formatValue renders a dynamic metadata value back to header text.
// Floats drop trailing zeros so round-trips stay byte-stable.
func formatValue(v any) string {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// parseOverlayIndexKey extracts the grid position from an
// overlay_index_cell_<row>_<col> key. Returns false for keys outside the
// namespace or with malformed positions.
func parseOverlayIndexKey(key string) (GridPos, bool) {
	if !strings.HasPrefix(key, overlayIndexPrefix) {
		return GridPos{}, false
	}
	parts := strings.Split(strings.TrimPrefix(key, overlayIndexPrefix), "_")
	if len(parts) != 2 {
		return GridPos{}, false
	}
	row, err1 := strconv.Atoi(parts[0])
	col, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || row < 1 || col < 1 {
		return GridPos{}, false
	}
	return GridPos{Row: row, Col: col}, true
}

// overlayIndexKey renders a grid position as its header key.
func overlayIndexKey(pos GridPos) string {
	return fmt.Sprintf("%s%d_%d", overlayIndexPrefix, pos.Row, pos.Col)
}
