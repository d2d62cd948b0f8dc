package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-profile-cache/domain"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation rejected (validation, conflict, not found)
	ExitCommandError = 2 // Command error (bad flags, config, unreachable store)
)

// ExitError carries the exit code a command failure maps to.
type ExitError struct {
	Code    int
	Message string
	Err     error

	// reported is set once the failure was already written to the output.
	reported bool
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

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// Reported tells whether err was already written by the command that failed.
func Reported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.reported
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure if the error is not an ExitError.
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

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
}

// CLIResponse is the JSON envelope of every command result.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

type CLIError struct {
	Category         goerrors.Category         `json:"category"`
	TextCode         string                    `json:"text_code"`
	Message          string                    `json:"message"`
	ValidationErrors goerrors.ValidationErrors `json:"validation_errors,omitempty"`
}

// Success outputs a successful result in the configured format. Text output
// is indented JSON.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Fail reports a domain error and returns it as an ExitError.
func (f *OutputFormatter) Fail(err error) error {
	var typed *goerrors.Error
	if !errors.As(domain.ToTypedError(err), &typed) {
		typed = domain.UpstreamFailure(err, "generic error")
	}

	out := &CLIError{
		Category:         typed.Category,
		TextCode:         typed.TextCode,
		Message:          typed.Message,
		ValidationErrors: typed.ValidationErrors,
	}

	if f.Format == "json" {
		_ = json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "error", Error: out})
	} else {
		w := f.ErrWriter
		if w == nil {
			w = f.Writer
		}
		fmt.Fprintf(w, "Error [%s]: %s\n", out.TextCode, out.Message)
		for _, fe := range out.ValidationErrors {
			fmt.Fprintf(w, "  %s: %s\n", fe.Field, fe.Message)
		}
	}

	code := ExitFailure
	if typed.Category == goerrors.CategoryExternal {
		code = ExitCommandError
	}
	exitErr := WrapExitError(code, typed.TextCode, err)
	exitErr.reported = true
	return exitErr
}
