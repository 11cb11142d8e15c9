package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <chart>",
		Short: "Show chart metadata and per-difficulty statistics",
		Long: `Show a chart's title, bpm and content hash, and for every difficulty its
level, event counts and playback duration. Durations follow the chart's
tempo events, including skips and stops.

Examples:
  beatline inspect song.yaml
  beatline inspect song.mid --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runInspect(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	c, code, err := loadChart(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, code, err)
	}
	summary, err := summarizeChart(path, c)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	w := formatter.Writer
	fmt.Fprintln(w, headerStyle.Render(summary.Title))
	if summary.Artist != "" {
		field(w, "Artist", summary.Artist)
	}
	field(w, "BPM", fmt.Sprintf("%g", summary.BPM))
	field(w, "Hash", dimStyle.Render(summary.Hash))
	for _, d := range summary.Difficulties {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render(d.Name))
		field(w, "Level", d.Level)
		field(w, "Events", d.Events)
		field(w, "Playable", d.Playable)
		field(w, "Tempos", d.Tempos)
		field(w, "Duration", fmt.Sprintf("%.2fs", d.Duration))
	}
	return nil
}
