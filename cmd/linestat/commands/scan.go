// Package commands implements the linestat subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/linestat/internal/config"
	"github.com/Sumatoshi-tech/linestat/internal/progress"
	"github.com/Sumatoshi-tech/linestat/internal/scan"
)

const scanArgCount = 1

// scanFlags holds the scan command's flag values. Flags override the
// config file only when set on the command line.
type scanFlags struct {
	chunks       int
	minChunkSize int
	level        int
	workers      int
	output       string
}

// NewScanCommand creates the scan subcommand. configPath points at the
// root command's --config flag value.
func NewScanCommand(configPath *string) *cobra.Command {
	flags := &scanFlags{}

	cmd := &cobra.Command{
		Use:   "scan <repo-path>",
		Short: "Scan a repository's history into a stats archive",
		Args:  cobra.ExactArgs(scanArgCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cfgErr := config.LoadConfig(*configPath)
			if cfgErr != nil {
				return cfgErr
			}

			applyScanFlags(cmd, flags, &cfg.Scan)

			// Flags bypass the loader, so revalidate the merged result.
			validateErr := cfg.Validate()
			if validateErr != nil {
				return validateErr
			}

			return runScan(cmd, args[0], cfg.Scan)
		},
	}

	cmd.Flags().IntVar(&flags.chunks, "chunks", config.DefaultScanChunks, "soft target number of chunks")
	cmd.Flags().IntVar(&flags.minChunkSize, "min-chunk-size", config.DefaultScanMinChunkSize, "minimum commits per chunk")
	cmd.Flags().IntVar(&flags.level, "level", config.DefaultScanLevel, "LZ4 compression level (0-9)")
	cmd.Flags().IntVar(&flags.workers, "workers", config.DefaultScanWorkers, "worker count (0 = all CPUs)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", config.DefaultScanOutput, "archive output path")

	return cmd
}

func applyScanFlags(cmd *cobra.Command, flags *scanFlags, cfg *config.ScanConfig) {
	if cmd.Flags().Changed("chunks") {
		cfg.Chunks = flags.chunks
	}

	if cmd.Flags().Changed("min-chunk-size") {
		cfg.MinChunkSize = flags.minChunkSize
	}

	if cmd.Flags().Changed("level") {
		cfg.Level = flags.level
	}

	if cmd.Flags().Changed("workers") {
		cfg.Workers = flags.workers
	}

	if cmd.Flags().Changed("output") {
		cfg.Output = flags.output
	}
}

func runScan(cmd *cobra.Command, repoPath string, cfg config.ScanConfig) error {
	scanner := scan.NewScanner(scan.Options{
		RepoPath:     repoPath,
		OutputPath:   cfg.Output,
		TargetChunks: cfg.Chunks,
		MinChunkSize: cfg.MinChunkSize,
		Level:        cfg.Level,
		Workers:      cfg.Workers,
	})

	hashes, historyErr := scanner.History()
	if historyErr != nil {
		return historyErr
	}

	chunks := scan.Plan(hashes, cfg.Chunks, cfg.MinChunkSize)

	slog.Debug("scan planned",
		"commits", len(hashes),
		"chunks", len(chunks),
		"level", cfg.Level,
	)

	reporter := progress.NewReporter(uint64(len(hashes)), "scanning commits", os.Stderr)
	reporter.Start()

	result, runErr := scanner.Run(cmd.Context(), chunks, reporter.Counter())
	if runErr != nil {
		reporter.Abort()
		reporter.Wait()

		return runErr
	}

	reporter.Wait()

	fmt.Fprintf(cmd.OutOrStdout(), "scanned %s commits in %s chunks, archive %s (%s)\n",
		humanize.Comma(int64(result.Commits)),
		humanize.Comma(int64(result.Chunks)),
		cfg.Output,
		humanize.Bytes(uint64(result.ArchiveBytes)),
	)

	return nil
}
