package commands

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/linestat/internal/archive"
	"github.com/Sumatoshi-tech/linestat/internal/config"
	"github.com/Sumatoshi-tech/linestat/internal/plot"
	"github.com/Sumatoshi-tech/linestat/internal/progress"
	"github.com/Sumatoshi-tech/linestat/internal/snapshot"
)

const (
	renderArgCount = 1
	chartTitle     = "Lines of code over time"
)

// renderFlags holds the render command's flag values.
type renderFlags struct {
	width   int
	height  int
	filter  []string
	workers int
	output  string
}

// NewRenderCommand creates the render subcommand.
func NewRenderCommand(configPath *string) *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render <archive>",
		Short: "Render a stats archive as an HTML chart",
		Args:  cobra.ExactArgs(renderArgCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cfgErr := config.LoadConfig(*configPath)
			if cfgErr != nil {
				return cfgErr
			}

			applyRenderFlags(cmd, flags, &cfg.Render)

			// Flags bypass the loader, so revalidate the merged result.
			validateErr := cfg.Validate()
			if validateErr != nil {
				return validateErr
			}

			return runRender(cmd, args[0], cfg.Render)
		},
	}

	cmd.Flags().IntVar(&flags.width, "width", config.DefaultRenderWidth, "chart width in pixels")
	cmd.Flags().IntVar(&flags.height, "height", config.DefaultRenderHeight, "chart height in pixels")
	cmd.Flags().StringSliceVar(&flags.filter, "filter", nil, "languages to include (default all)")
	cmd.Flags().IntVar(&flags.workers, "workers", config.DefaultRenderWorkers, "worker count (0 = all CPUs)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", config.DefaultRenderOutput, "chart output path")

	return cmd
}

func applyRenderFlags(cmd *cobra.Command, flags *renderFlags, cfg *config.RenderConfig) {
	if cmd.Flags().Changed("width") {
		cfg.Width = flags.width
	}

	if cmd.Flags().Changed("height") {
		cfg.Height = flags.height
	}

	if cmd.Flags().Changed("filter") {
		cfg.Filter = flags.filter
	}

	if cmd.Flags().Changed("workers") {
		cfg.Workers = flags.workers
	}

	if cmd.Flags().Changed("output") {
		cfg.Output = flags.output
	}
}

func runRender(cmd *cobra.Command, archivePath string, cfg config.RenderConfig) error {
	reader, openErr := archive.Open(archivePath)
	if openErr != nil {
		return openErr
	}
	defer func() { _ = reader.Close() }()

	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	slog.Debug("render started",
		"records", reader.Total(),
		"chunks", reader.ChunkCount(),
		"workers", workers,
	)

	reporter := progress.NewReporter(reader.Total(), "loading records", os.Stderr)
	reporter.Start()

	filter := snapshot.NewLanguageFilter(cfg.Filter)

	series, loadErr := reader.LoadSeries(cmd.Context(), filter, workers, reporter.Counter())
	if loadErr != nil {
		reporter.Abort()
		reporter.Wait()

		return loadErr
	}

	// An overstated info total would leave the counter short of the
	// target forever; release the poller before waiting.
	if uint64(len(series)) < reader.Total() {
		reporter.Abort()
	}

	reporter.Wait()

	page, createErr := os.Create(cfg.Output)
	if createErr != nil {
		return fmt.Errorf("create chart page: %w", createErr)
	}

	renderErr := plot.RenderSeries(series, plot.Options{
		Title:  chartTitle,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, page)

	closeErr := page.Close()

	if renderErr != nil {
		return renderErr
	}

	if closeErr != nil {
		return fmt.Errorf("close chart page: %w", closeErr)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "rendered %s points to %s\n",
		humanize.Comma(int64(len(series))), cfg.Output)

	return nil
}
