package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// ProbeTraversal is submitted by ping.
const ProbeTraversal = "g.inject(0)"

// PingResult is the output of the ping command.
type PingResult struct {
	Address         string `json:"address"`
	TraversalSource string `json:"traversal_source"`
	Results         int    `json:"results"`
}

func (r PingResult) Text() string {
	return fmt.Sprintf("%s (%s): %d result(s)", r.Address, r.TraversalSource, r.Results)
}

// NewPingCommand creates the ping command.
func NewPingCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &connectionFlags{}

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Open a connection and submit a probe traversal",
		Long: `Resolve TestServerIpAddress and TestServerPort from the environment
(and --config, if given), open one connection bound to --source, and submit
a probe traversal.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPing(rootOpts, flags, cmd)
		},
	}
	flags.register(cmd)
	return cmd
}

func runPing(opts *RootOptions, flags *connectionFlags, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	defer logMetrics(opts)

	ctx, cancel := context.WithTimeout(cmd.Context(), flags.Timeout)
	defer cancel()

	conn, p, err := connect(ctx, opts, flags)
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot connect", err, nil)
	}
	defer conn.Close()
	server := p.Server()

	formatter.VerboseLog("Connected to %s as %s", server.Address(), conn.TraversalSource())

	results, err := conn.Submit(ctx, ProbeTraversal)
	if err != nil {
		return formatter.Fail(ExitCommandError, "probe failed", err, nil)
	}

	return formatter.Success(PingResult{
		Address:         server.Address(),
		TraversalSource: conn.TraversalSource(),
		Results:         len(results),
	})
}
