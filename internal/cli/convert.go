package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/beatline/internal/chart"
	"github.com/roach88/beatline/internal/chartio"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	Output     string
	Difficulty string
	Title      string
	Artist     string
	Level      int
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <midi-file>",
		Short: "Convert a Standard MIDI File into a YAML chart",
		Long: `Import a Standard MIDI File as a single-difficulty chart and write it
as YAML. Note-ons map to lanes by key, percussion notes become background
notes and tempo changes become tempo events.

Examples:
  beatline convert song.mid -o song.yaml
  beatline convert song.mid --difficulty hard --level 7 --title "Song"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output YAML file (default: stdout)")
	cmd.Flags().StringVarP(&opts.Difficulty, "difficulty", "d", "", "difficulty name (default: normal)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "chart title")
	cmd.Flags().StringVar(&opts.Artist, "artist", "", "chart artist")
	cmd.Flags().IntVar(&opts.Level, "level", 0, "difficulty level")

	return cmd
}

func runConvert(opts *ConvertOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	f, err := os.Open(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, err)
	}
	defer f.Close()

	c, err := chartio.ImportSMF(f, chartio.SMFOptions{
		Title:      opts.Title,
		Artist:     opts.Artist,
		Difficulty: chart.Difficulty(opts.Difficulty),
		Level:      opts.Level,
	})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDecode, err)
	}

	var buf bytes.Buffer
	if err := chartio.EncodeYAML(&buf, c); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}

	if opts.Output == "" {
		_, err := formatter.Writer.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(opts.Output, buf.Bytes(), 0644); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err)
	}

	summary, err := summarizeChart(opts.Output, c)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}
	if formatter.Format == "json" {
		return formatter.Success(summary)
	}
	d := c.Difficulties()[0]
	fmt.Fprintf(formatter.Writer, "%s wrote %s: %d events [%s]\n",
		passMark(true), opts.Output, c.EventCount(d), d)
	return nil
}
