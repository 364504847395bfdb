package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/tinkerharness/internal/config"
	"github.com/roach88/tinkerharness/internal/remote"
)

// connectionFlags are shared by commands that talk to the server.
type connectionFlags struct {
	Source     string
	ConfigPath string
	Timeout    time.Duration
}

func (f *connectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Source, "source", remote.DefaultTraversalSource, "traversal source alias")
	cmd.Flags().StringVar(&f.ConfigPath, "config", "", "YAML config file with TestServerIpAddress and TestServerPort")
	cmd.Flags().DurationVar(&f.Timeout, "timeout", 30*time.Second, "deadline for connecting and evaluating")
}

// connect resolves configuration and opens one bound connection. Config
// errors are returned before any dial. The provisioner reports the endpoint
// that was dialed.
func connect(ctx context.Context, opts *RootOptions, flags *connectionFlags) (remote.Connection, *remote.Provisioner, error) {
	server, err := config.NewLoader(opts.Logger).WithEnv(opts.env).Load(flags.ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	p, err := remote.NewProvisioner(server, opts.newDialer(opts.Logger),
		remote.WithLogger(opts.Logger),
		remote.WithMetrics(remote.NewMetrics(opts.Registry)),
	)
	if err != nil {
		return nil, nil, err
	}

	conn, err := p.CreateConnectionFor(ctx, flags.Source)
	if err != nil {
		return nil, p, err
	}
	return conn, p, nil
}

// logMetrics writes every gathered counter at debug level.
func logMetrics(opts *RootOptions) {
	if opts.Registry == nil {
		return
	}
	families, err := opts.Registry.Gather()
	if err != nil {
		opts.Logger.Debug("Gather metrics", slog.Any("error", err))
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			attrs := []any{slog.String("metric", mf.GetName()), slog.Float64("value", m.GetCounter().GetValue())}
			for _, lp := range m.GetLabel() {
				attrs = append(attrs, slog.String(lp.GetName(), lp.GetValue()))
			}
			opts.Logger.Debug("Metric", attrs...)
		}
	}
}
