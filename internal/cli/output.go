package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/tinkerharness/internal/config"
	"github.com/roach88/tinkerharness/internal/param"
	"github.com/roach88/tinkerharness/internal/remote"
	"github.com/roach88/tinkerharness/internal/wire"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Comparison failed
	ExitCommandError = 2 // Command error (bad literal, missing config, unreachable server)
)

// Error codes reported in CLI output.
const (
	ErrCodeGeneric         = "E001"
	ErrCodeConfigMissing   = "E101"
	ErrCodeConfigMalformed = "E102"
	ErrCodeConnection      = "E201"
	ErrCodeInvalidAlias    = "E202"
	ErrCodeServer          = "E203"
	ErrCodeParse           = "E301"
	ErrCodeMismatch        = "E302"
	ErrCodeJournal         = "E401"
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Errors that are not an ExitError map to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// errorCode maps a domain error onto a CLI error code.
func errorCode(err error) string {
	var (
		parseErr    *param.ParseError
		mismatchErr *param.MismatchError
		respErr     *wire.ResponseError
	)
	switch {
	case config.IsMissing(err):
		return ErrCodeConfigMissing
	case config.IsMalformed(err):
		return ErrCodeConfigMalformed
	case remote.IsConnectionFailure(err):
		return ErrCodeConnection
	case remote.IsInvalidAlias(err):
		return ErrCodeInvalidAlias
	case errors.As(err, &respErr):
		return ErrCodeServer
	case errors.As(err, &parseErr):
		return ErrCodeParse
	case errors.As(err, &mismatchErr):
		return ErrCodeMismatch
	default:
		return ErrCodeGeneric
	}
}

// OutputFormatter writes command results as text or JSON.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; defaults to Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope for every command.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// textRenderer is implemented by results with a custom text form.
type textRenderer interface {
	Text() string
}

// Success outputs a result. In text mode results implementing Text() use
// it; others print with %v.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	if r, ok := data.(textRenderer); ok {
		_, err := fmt.Fprintln(f.Writer, r.Text())
		return err
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	if _, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message); err != nil {
		return err
	}
	if f.Verbose && details != nil {
		if r, ok := details.(textRenderer); ok {
			fmt.Fprintln(f.Writer, r.Text())
		} else {
			fmt.Fprintf(f.Writer, "Details: %v\n", details)
		}
	}
	return nil
}

// Fail reports err and returns an ExitError with exitCode. The error code
// is derived from err.
func (f *OutputFormatter) Fail(exitCode int, message string, err error, details any) error {
	return f.FailCode(exitCode, errorCode(err), message, err, details)
}

// FailCode is like Fail with an explicit error code. If the report cannot
// be written, the write error is returned instead.
func (f *OutputFormatter) FailCode(exitCode int, code, message string, err error, details any) error {
	text := message
	if err != nil {
		text = fmt.Sprintf("%s: %v", message, err)
	}
	if outErr := f.Error(code, text, details); outErr != nil {
		return outErr
	}
	return WrapExitError(exitCode, message, err)
}

// VerboseLog writes to ErrWriter when verbose is enabled, keeping JSON
// output on Writer clean.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.errWriter(), format+"\n", args...)
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
