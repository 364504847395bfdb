package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tinkerharness/internal/journal"
	"github.com/roach88/tinkerharness/internal/param"
)

// CheckOptions holds check-specific flags.
type CheckOptions struct {
	connectionFlags
	Traversal   string
	Expect      []string
	JournalPath string
}

// CheckResult is the output of the check command.
type CheckResult struct {
	TraversalSource string   `json:"traversal_source"`
	Traversal       string   `json:"traversal"`
	Expected        []string `json:"expected"`
	Actual          []string `json:"actual"`
	Matched         bool     `json:"matched"`
	Mismatch        string   `json:"mismatch,omitempty"`
	Journaled       int      `json:"journaled,omitempty"`
}

func (r CheckResult) Text() string {
	if r.Matched {
		return fmt.Sprintf("ok: %s on %s (%d result(s))", r.Traversal, r.TraversalSource, len(r.Actual))
	}
	return fmt.Sprintf("FAIL: %s on %s\n%s", r.Traversal, r.TraversalSource, r.Mismatch)
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate a traversal and compare its results to expected literals",
		Long: `Submit --traversal to the server and compare the results, in order,
against the --expect literals. Each comparison is journaled when --journal
names a SQLite file. Exits 1 on any mismatch.`,
		Example: `  tinkerharness check --traversal "g.V().hasLabel('person').values('name')" \
    --expect '"marko"' --expect '"vadas"' --expect '"josh"' --expect '"peter"'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, opts, cmd)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.Traversal, "traversal", "", "traversal to evaluate (required)")
	cmd.Flags().StringArrayVar(&opts.Expect, "expect", nil, "expected result literal, in order (repeatable)")
	cmd.Flags().StringVar(&opts.JournalPath, "journal", "", "SQLite journal to record comparisons in")
	cmd.MarkFlagRequired("traversal")

	return cmd
}

func runCheck(rootOpts *RootOptions, opts *CheckOptions, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)
	defer logMetrics(rootOpts)

	expected, err := param.ParseAll(opts.Expect)
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot parse --expect", err, nil)
	}

	var j *journal.Journal
	if opts.JournalPath != "" {
		j, err = journal.Open(opts.JournalPath, journal.WithLogger(rootOpts.Logger))
		if err != nil {
			return formatter.FailCode(ExitCommandError, ErrCodeJournal, "cannot open journal", err, nil)
		}
		defer j.Close()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
	defer cancel()

	conn, _, err := connect(ctx, rootOpts, &opts.connectionFlags)
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot connect", err, nil)
	}
	defer conn.Close()

	results, err := conn.Submit(ctx, opts.Traversal)
	if err != nil {
		return formatter.Fail(ExitCommandError, "evaluation failed", err, nil)
	}
	formatter.VerboseLog("%s returned %d result(s)", opts.Traversal, len(results))

	result := CheckResult{
		TraversalSource: conn.TraversalSource(),
		Traversal:       opts.Traversal,
		Expected:        make([]string, 0, len(expected)),
		Actual:          make([]string, 0, len(results)),
	}
	for _, p := range expected {
		result.Expected = append(result.Expected, p.String())
	}
	for _, r := range results {
		result.Actual = append(result.Actual, param.Describe(r))
	}

	if j != nil {
		n := min(len(expected), len(results))
		for i := 0; i < n; i++ {
			if _, err := j.Record(ctx, conn.TraversalSource(), opts.Traversal, expected[i], results[i]); err != nil {
				return formatter.FailCode(ExitCommandError, ErrCodeJournal, "cannot journal comparison", err, nil)
			}
			result.Journaled++
		}
	}

	mismatch := param.MatchSequence(expected, results)
	result.Matched = mismatch == nil
	if mismatch != nil {
		result.Mismatch = strings.TrimSpace(mismatch.Error())
	}

	if err := formatter.Success(result); err != nil {
		return err
	}
	if mismatch != nil {
		var me *param.MismatchError
		if errors.As(mismatch, &me) && me.Index < 0 {
			return WrapExitError(ExitFailure, "result count differs", mismatch)
		}
		return WrapExitError(ExitFailure, "results differ", mismatch)
	}
	return nil
}
