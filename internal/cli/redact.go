package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-profile-cache/redact"
)

// RedactOptions holds flags for the redact command.
type RedactOptions struct {
	*RootOptions
	Patterns []string
}

// NewRedactCommand creates the redact command.
func NewRedactCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RedactOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "redact [file]",
		Short: "Mask secrets in a JSON document",
		Long: `Read a JSON document from [file], or stdin when omitted or "-", and print
it with every value under a secret-looking key masked.

Patterns come from redact.patterns in the config unless --pattern is given.

Example:
  echo '{"user":{"password":"hunter22"}}' | profilectl redact`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRedact(cmd, opts, args)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Patterns, "pattern", "p", nil, "key pattern to mask (repeatable)")

	return cmd
}

func runRedact(cmd *cobra.Command, opts *RedactOptions, args []string) error {
	patterns := opts.Patterns
	if len(patterns) == 0 {
		cfg, err := opts.loadConfig()
		if err != nil {
			return err
		}
		patterns = cfg.Redact.Patterns
	}

	redactor, err := redact.New(patterns...)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid pattern", err)
	}

	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open input", err)
		}
		defer f.Close()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read input", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("input is not JSON (%d bytes)", len(data)), err)
	}

	return opts.formatter(cmd).Success(redactor.Redact(doc))
}
