package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/beatline/internal/chartio"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Chart  *ChartSummary     `json:"chart,omitempty"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError is one chart problem, with its source position when
// known.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <chart>",
		Short: "Validate a chart file",
		Long: `Load a chart file and report its event counts.

YAML charts are decoded strictly, CUE charts are unified with the chart
schema, and MIDI files are imported. Any problem exits with code 2.

Examples:
  beatline validate song.yaml
  beatline validate song.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	c, code, err := loadChart(path)
	if err != nil {
		return outputValidationError(formatter, toValidationError(code, err))
	}

	summary, err := summarizeChart(path, c)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}
	formatter.VerboseLog("Loaded %s (%d difficulties)", path, len(summary.Difficulties))

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Chart: &summary})
	}

	w := formatter.Writer
	events := 0
	for _, d := range summary.Difficulties {
		events += d.Events
	}
	fmt.Fprintf(w, "%s %s valid: %d difficulties, %d events\n",
		passMark(true), headerStyle.Render(summary.Title), len(summary.Difficulties), events)
	for _, d := range summary.Difficulties {
		fmt.Fprintf(w, "  %s %d events (%d playable)\n", labelStyle.Render(d.Name), d.Events, d.Playable)
	}
	return nil
}

// toValidationError extracts the source position of decode errors.
func toValidationError(code string, err error) ValidationError {
	v := ValidationError{Code: code, Message: err.Error()}
	var decodeErr *chartio.DecodeError
	if errors.As(err, &decodeErr) && decodeErr.Pos.IsValid() {
		v.Message = decodeErr.Message
		v.Line = decodeErr.Pos.Line()
		v.Column = decodeErr.Pos.Column()
	}
	return v
}

// outputValidationError reports a chart that failed to load.
func outputValidationError(formatter *OutputFormatter, v ValidationError) error {
	if formatter.Format == "json" {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: []ValidationError{v}},
			Error:  &CLIError{Code: v.Code, Message: v.Message},
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "%s Validation failed\n", passMark(false))
		if v.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d, column %d\n", v.Line, v.Column)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", v.Code, v.Message)
	}
	// Invalid charts are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", v.Code, v.Message))
}
