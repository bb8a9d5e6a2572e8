package board

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ysenez/openboard/pkg/geom"
)

// cellFieldCount is the number of comma-separated fields in a cell line.
const cellFieldCount = 9

// Parse reads board text into a Board. Header lines (`#key=value`) populate
// metadata; remaining non-blank lines are parsed as cells. Malformed cell
// lines and malformed header lines are skipped with a warning, never a
// failure - a damaged line must not take the whole board down with it.
//
// A nil logger falls back to log.Default().
func Parse(text string, logger *log.Logger) *Board {
	if logger == nil {
		logger = log.Default()
	}

	b := &Board{Meta: NewMetadata()}
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			parseHeaderLine(b, line, i+1, logger)
			continue
		}

		cell, err := parseCellLine(line)
		if err != nil {
			logger.Warn("skipping malformed cell line", "line", i+1, "err", err)
			continue
		}
		b.Cells = append(b.Cells, cell)
	}

	if ct, ok := b.Meta.String("cellType"); ok {
		switch CellType(strings.ToLower(ct)) {
		case Single:
			b.CellType = Single
		case Spread:
			b.CellType = Spread
		}
	}
	return b
}

// parseHeaderLine splits one `#key=value` line into the metadata set,
// routing overlay keys into their namespaces.
func parseHeaderLine(b *Board, line string, lineNo int, logger *log.Logger) {
	body := strings.TrimPrefix(line, "#")
	key, value, ok := strings.Cut(body, "=")
	if !ok {
		logger.Warn("skipping malformed header line", "line", lineNo)
		return
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	switch {
	case key == overlayFilesKey:
		var files []string
		if err := json.Unmarshal([]byte(value), &files); err != nil {
			logger.Warn("skipping unreadable overlayFiles header", "line", lineNo, "err", err)
			return
		}
		b.Meta.OverlayFiles = files
	case strings.HasPrefix(key, overlayIndexPrefix):
		pos, ok := parseOverlayIndexKey(key)
		if !ok {
			logger.Warn("skipping malformed overlay index key", "line", lineNo, "key", key)
			return
		}
		idx, err := strconv.Atoi(value)
		if err != nil {
			logger.Warn("skipping non-integer overlay index", "line", lineNo, "key", key)
			return
		}
		b.Meta.OverlayIndex[pos] = idx
	default:
		b.Meta.Values[key] = coerceValue(value)
	}
}

// parseCellLine parses one 9-field cell line:
// id,tlX,tlY,blX,blY,brX,brY,trX,trY.
func parseCellLine(line string) (Cell, error) {
	parts := strings.Split(line, ",")
	if len(parts) != cellFieldCount {
		return Cell{}, errFieldCount(len(parts))
	}

	id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Cell{}, err
	}

	var coords [8]float64
	for i := 0; i < 8; i++ {
		coords[i], err = strconv.ParseFloat(strings.TrimSpace(parts[i+1]), 64)
		if err != nil {
			return Cell{}, err
		}
	}

	return Cell{
		ID:          id,
		TopLeft:     geom.Point{X: coords[0], Y: coords[1]},
		BottomLeft:  geom.Point{X: coords[2], Y: coords[3]},
		BottomRight: geom.Point{X: coords[4], Y: coords[5]},
		TopRight:    geom.Point{X: coords[6], Y: coords[7]},
	}, nil
}

type errFieldCount int

func (e errFieldCount) Error() string {
	return "want " + strconv.Itoa(cellFieldCount) + " fields, got " + strconv.Itoa(int(e))
}

// Serialize renders the board back to file text: the header block, one blank
// separator line, then one line per cell in the board's current order.
//
// Header keys are written in a stable order (general keys sorted, then the
// overlay file list, then overlay index keys sorted by position) so
// serializing the same board twice produces identical bytes.
func (b *Board) Serialize() string {
	var sb strings.Builder

	keys := make([]string, 0, len(b.Meta.Values))
	for k := range b.Meta.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString("#")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(formatValue(b.Meta.Values[k]))
		sb.WriteString("\n")
	}

	if len(b.Meta.OverlayFiles) > 0 {
		data, err := json.Marshal(b.Meta.OverlayFiles)
		if err == nil {
			sb.WriteString("#")
			sb.WriteString(overlayFilesKey)
			sb.WriteString("=")
			sb.Write(data)
			sb.WriteString("\n")
		}
	}

	positions := make([]GridPos, 0, len(b.Meta.OverlayIndex))
	for pos := range b.Meta.OverlayIndex {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Row != positions[j].Row {
			return positions[i].Row < positions[j].Row
		}
		return positions[i].Col < positions[j].Col
	})
	for _, pos := range positions {
		sb.WriteString("#")
		sb.WriteString(overlayIndexKey(pos))
		sb.WriteString("=")
		sb.WriteString(strconv.Itoa(b.Meta.OverlayIndex[pos]))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")

	for _, c := range b.Cells {
		sb.WriteString(formatCellLine(c))
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatCellLine(c Cell) string {
	fields := []string{
		strconv.Itoa(c.ID),
		formatCoord(c.TopLeft.X), formatCoord(c.TopLeft.Y),
		formatCoord(c.BottomLeft.X), formatCoord(c.BottomLeft.Y),
		formatCoord(c.BottomRight.X), formatCoord(c.BottomRight.Y),
		formatCoord(c.TopRight.X), formatCoord(c.TopRight.Y),
	}
	return strings.Join(fields, ",")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
