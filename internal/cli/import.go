package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ysenez/openboard/pkg/batch"
	"github.com/ysenez/openboard/pkg/board"
	"github.com/ysenez/openboard/pkg/config"
)

// importOpts holds the command-line flags for the import command.
type importOpts struct {
	boardPath   string // board layout file
	canvasPath  string // canvas image backing the board
	configPath  string // settings file, defaults to the per-user location
	overlayPath string // overlay decoration file or directory
	reportPath  string // YAML run report destination, "-" for stdout
	margin      float64
	autoExtend  bool
}

// newImportCmd creates the import command, which places one or more images
// into the free cells of a board.
func newImportCmd() *cobra.Command {
	opts := importOpts{}

	cmd := &cobra.Command{
		Use:   "import [images...]",
		Short: "Place images into the free cells of a board",
		Long: `Import places each image into the first free cell of the board, in
reading order. Portrait images on spread boards pair up into half cells;
with --auto-extend a full board grows by one row or column instead of
centering leftover images on the canvas.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)

			cfg, err := config.Load(opts.configPath, logger)
			if err != nil {
				return err
			}

			store := board.NewStore(opts.boardPath, logger)
			b, err := store.Load()
			if err != nil {
				return fmt.Errorf("load board: %w", err)
			}

			surface, err := loadSurface(opts.canvasPath, b, cfg.Background(), logger)
			if err != nil {
				return fmt.Errorf("load canvas: %w", err)
			}

			runner := batch.NewRunner(store, surface, cfg, logger)
			report, err := runner.Run(cmd.Context(), args, batch.Options{
				AutoExtend:  opts.autoExtend,
				OverlayPath: opts.overlayPath,
				Margin:      opts.margin,
			})
			if err != nil {
				if report != nil && report.Canceled {
					printWarning("Import canceled after %d of %d images", len(report.Images), len(args))
				}
				return err
			}

			if err := saveSurface(opts.canvasPath, surface); err != nil {
				return fmt.Errorf("save canvas: %w", err)
			}

			prog.done(fmt.Sprintf("Placed %d images", report.Placed))
			if report.Centered > 0 {
				printWarning("%d images had no free cell and were centered", report.Centered)
			}
			if report.Failed > 0 {
				printError("%d images failed", report.Failed)
				for _, img := range report.Images {
					if img.Status == batch.StatusFailed {
						printDetail("%s: %s", img.Path, img.Error)
					}
				}
			}
			printDetail("Board: %s", store.Path())
			printDetail("Canvas: %s", opts.canvasPath)

			return writeReport(report, opts.reportPath)
		},
	}

	cmd.Flags().StringVarP(&opts.boardPath, "board", "b", "layout.board", "board layout file")
	cmd.Flags().StringVarP(&opts.canvasPath, "canvas", "c", "canvas.png", "canvas image file")
	cmd.Flags().StringVar(&opts.configPath, "config", config.DefaultPath(), "settings file")
	cmd.Flags().StringVar(&opts.overlayPath, "overlay", "", "overlay decoration file or directory")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "write a YAML run report to this path (\"-\" for stdout)")
	cmd.Flags().Float64Var(&opts.margin, "margin", 0, "padding between zone border and image in pixels")
	cmd.Flags().BoolVar(&opts.autoExtend, "auto-extend", false, "grow the board when it fills up")

	return cmd
}

// writeReport emits the YAML run report when requested.
func writeReport(report *batch.Report, path string) error {
	if path == "" {
		return nil
	}
	if path == "-" {
		return report.WriteYAML(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return report.WriteYAML(f)
}
