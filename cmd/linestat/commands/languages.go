package commands

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/linestat/internal/linecount"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown format (want text or yaml)")

// NewLanguagesCommand creates the languages subcommand, listing every
// language the classifier can attribute files to.
func NewLanguagesCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List the languages the classifier recognizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLanguages(cmd, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatText, "output format (text or yaml)")

	return cmd
}

func runLanguages(cmd *cobra.Command, format string) error {
	languages := linecount.KnownLanguages()
	out := cmd.OutOrStdout()

	switch format {
	case formatText:
		heading := color.New(color.FgCyan, color.Bold)
		heading.Fprintf(out, "%d languages\n", len(languages))

		for _, language := range languages {
			fmt.Fprintln(out, language)
		}

		return nil
	case formatYAML:
		payload := struct {
			Languages []string `yaml:"languages"`
		}{Languages: languages}

		encoded, marshalErr := yaml.Marshal(payload)
		if marshalErr != nil {
			return fmt.Errorf("marshal languages: %w", marshalErr)
		}

		_, writeErr := out.Write(encoded)

		return writeErr
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
