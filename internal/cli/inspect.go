package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ysenez/openboard/pkg/board"
)

// newInspectCmd creates the inspect command, which prints the cell grid and
// metadata of a board file.
func newInspectCmd() *cobra.Command {
	var boardPath string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the cell grid and metadata of a board file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			store := board.NewStore(boardPath, logger)
			b, err := store.Load()
			if err != nil {
				return fmt.Errorf("load board: %w", err)
			}

			shape := b.LayoutShape()
			fmt.Println(StyleTitle.Render("Board ") + StyleValue.Render(store.Path()))
			printDetail("Type: %s", b.CellType)
			printDetail("Shape: %d rows x %d cols (%d cells)", shape.Rows, shape.Cols, len(b.Cells))
			if len(b.Meta.OverlayFiles) > 0 {
				printDetail("Overlay files: %d", len(b.Meta.OverlayFiles))
			}

			fmt.Println(cellTable(b).Render())

			if len(b.Meta.Values) > 0 {
				fmt.Println()
				fmt.Println(StyleTitle.Render("Metadata"))
				keys := make([]string, 0, len(b.Meta.Values))
				for k := range b.Meta.Values {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					printDetail("%s = %v", k, b.Meta.Values[k])
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&boardPath, "board", "b", "layout.board", "board layout file")
	return cmd
}

// cellTable renders one row per cell: id, grid position, bounds, and the
// stored overlay rotation index if any.
func cellTable(b *board.Board) *table.Table {
	rows := make([][]string, 0, len(b.Cells))
	for _, c := range b.Cells {
		bb := c.Bounds()
		pos := "?"
		overlayIdx := ""
		if p, ok := b.GridPosOf(c.ID); ok {
			pos = fmt.Sprintf("r%d c%d", p.Row, p.Col)
			if idx, stored := b.Meta.OverlayIndex[p]; stored {
				overlayIdx = strconv.Itoa(idx)
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(c.ID),
			pos,
			fmt.Sprintf("(%.0f, %.0f)", bb.MinX, bb.MinY),
			fmt.Sprintf("%.0f x %.0f", bb.Width(), bb.Height()),
			overlayIdx,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Pos", "Origin", "Size", "Overlay").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}
