package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ysenez/openboard/pkg/board"
	"github.com/ysenez/openboard/pkg/config"
	"github.com/ysenez/openboard/pkg/extend"
)

// newExtendCmd creates the extend command, which grows the board by one row
// or column.
func newExtendCmd() *cobra.Command {
	var (
		boardPath  string
		canvasPath string
		configPath string
		direction  string
	)

	cmd := &cobra.Command{
		Use:   "extend",
		Short: "Grow the board by one row or column",
		Long: `Extend appends one cell per existing row (right) or per existing column
(bottom) and resizes the canvas to fit. With --direction alternate the axis
flips on every run, persisted in the settings file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			cfg, err := config.Load(configPath, logger)
			if err != nil {
				return err
			}
			if direction != "" {
				cfg.ExtensionDirection = direction
			}

			store := board.NewStore(boardPath, logger)
			b, err := store.Load()
			if err != nil {
				return fmt.Errorf("load board: %w", err)
			}
			surface, err := loadSurface(canvasPath, b, cfg.Background(), logger)
			if err != nil {
				return fmt.Errorf("load canvas: %w", err)
			}

			ext := extend.New(store, surface, cfg, extend.Options{
				Direction:      extend.ParseDirection(cfg.ExtensionDirection),
				LayoutWidth:    cfg.LayoutWidth,
				DropZone:       cfg.DropZone,
				MarginInResize: cfg.UseMarginInResize,
				Background:     cfg.Background(),
			}, logger)

			res, err := ext.Extend(b)
			if err != nil {
				return err
			}
			if err := saveSurface(canvasPath, surface); err != nil {
				return fmt.Errorf("save canvas: %w", err)
			}

			printSuccess("Added %d cells (%s)", res.Added, res.Direction)
			printDetail("First new cell: %d", res.FirstCellID)
			if res.Reorganized {
				printDetail("Cells renumbered into reading order")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&boardPath, "board", "b", "layout.board", "board layout file")
	cmd.Flags().StringVarP(&canvasPath, "canvas", "c", "canvas.png", "canvas image file")
	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath(), "settings file")
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "bottom, right, or alternate (overrides config)")

	return cmd
}

// newReorganizeCmd creates the reorganize command, which renumbers cells
// into reading order.
func newReorganizeCmd() *cobra.Command {
	var boardPath string

	cmd := &cobra.Command{
		Use:   "reorganize",
		Short: "Renumber board cells into reading order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			store := board.NewStore(boardPath, logger)
			b, err := store.Load()
			if err != nil {
				return fmt.Errorf("load board: %w", err)
			}
			if err := store.Reorganize(b); err != nil {
				return err
			}
			printSuccess("Renumbered %d cells", len(b.Cells))
			printDetail("Board: %s", store.Path())
			return nil
		},
	}

	cmd.Flags().StringVarP(&boardPath, "board", "b", "layout.board", "board layout file")
	return cmd
}
