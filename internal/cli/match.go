package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tinkerharness/internal/param"
)

// MatchResult is the output of the match command.
type MatchResult struct {
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Matched  bool   `json:"matched"`
}

func (r MatchResult) Text() string {
	if r.Matched {
		return fmt.Sprintf("match: %s", r.Expected)
	}
	return fmt.Sprintf("mismatch:\n  Expected: %s\n  Actual: %s", r.Expected, r.Actual)
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "match <expected> <actual>",
		Short: "Compare two parameter literals",
		Long: `Parse both literals and compare them with parameter equality.
Exits 1 when they differ.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(rootOpts, args[0], args[1], cmd)
		},
	}
}

func runMatch(opts *RootOptions, expectedLit, actualLit string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	expected, err := param.Parse(expectedLit)
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot parse expected", err, nil)
	}
	actual, err := param.Parse(actualLit)
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot parse actual", err, nil)
	}

	result := MatchResult{
		Expected: string(expected.Canonical()),
		Actual:   string(actual.Canonical()),
		Matched:  expected.Equal(actual),
	}
	if err := formatter.Success(result); err != nil {
		return err
	}
	if !result.Matched {
		return NewExitError(ExitFailure, "parameters differ")
	}
	return nil
}
