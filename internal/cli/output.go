package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // scenarios failed, simulation aborted
	ExitCommandError = 2 // bad input: missing file, invalid chart, database error
)

// Error codes reported in CLIError.Code.
const (
	ErrCodeGeneric     = "E001"
	ErrCodeNotFound    = "E002" // path not found
	ErrCodeDecode      = "E003" // chart or scenario could not be decoded
	ErrCodeConfig      = "E004" // invalid engine or profile configuration
	ErrCodeSimulation  = "E005" // simulation did not complete
	ErrCodeStore       = "E006"
	ErrCodeWriteFailed = "E007"
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError creates an ExitError without an underlying cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError creates an ExitError around err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps an error returned by a command to a process exit code.
// Errors that are not ExitErrors map to ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	default:
		return ExitFailure
	}
}

// CLIResponse is the envelope of every JSON response.
type CLIResponse struct {
	Status  string    `json:"status"` // "ok" or "error"
	Data    any       `json:"data,omitempty"`
	Error   *CLIError `json:"error,omitempty"`
	Session string    `json:"session,omitempty"` // set by commands that render
}

// CLIError describes a failure in a JSON response.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter writes command results as JSON or text.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; falls back to Writer
	Verbose   bool
}

func newFormatter(opts *RootOptions, out, errOut io.Writer) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   opts.Verbose,
	}
}

func (f *OutputFormatter) isJSON() bool { return f.Format == "json" }

// Success writes data. Text mode prints it with %v; commands with a richer
// text rendering print their own and only call Success for JSON.
func (f *OutputFormatter) Success(data any) error {
	return f.SuccessWithSession(data, "")
}

// SuccessWithSession is Success for commands that ran a render session.
func (f *OutputFormatter) SuccessWithSession(data any, session string) error {
	if f.isJSON() {
		return f.encode(CLIResponse{Status: "ok", Data: data, Session: session})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error writes a failure. Details are printed in text mode only when
// verbose.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.isJSON() {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "%s %s\n", failStyle.Render("Error ["+code+"]:"), message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "%s %v\n", dimStyle.Render("Details:"), details)
	}
	return nil
}

// Fail reports err and returns the ExitError a command should return.
func (f *OutputFormatter) Fail(exitCode int, code string, err error) error {
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(exitCode, code, err)
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}

// VerboseLog writes a diagnostic line when verbose. It goes to ErrWriter so
// JSON on Writer stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if f.Verbose {
		fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
	}
}

// GetErrWriter returns ErrWriter, or Writer when unset.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter == nil {
		return f.Writer
	}
	return f.ErrWriter
}
