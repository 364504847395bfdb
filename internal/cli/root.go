package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/tinkerharness/internal/config"
	"github.com/roach88/tinkerharness/internal/remote"
	"github.com/roach88/tinkerharness/internal/wire"
)

// RootOptions holds global flags and the dependencies built from them.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	LogLevel string

	// Logger is installed by PersistentPreRunE.
	Logger *slog.Logger

	// Registry collects provisioner metrics for the current run.
	Registry *prometheus.Registry

	// newDialer and env are swapped out by tests.
	newDialer func(*slog.Logger) remote.Dialer
	env       config.Source
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ValidLogLevels defines the allowed --log-level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// NewRootCommand creates the root command for the tinkerharness CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{
		newDialer: func(logger *slog.Logger) remote.Dialer {
			return wire.NewDialer(logger)
		},
		env: config.EnvSource{},
	})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tinkerharness",
		Short: "tinkerharness - traversal parameter harness",
		Long: `Parse, compare, and check traversal parameters against a running
traversal server. Expected values are scalar literals ("marko", d[29].i)
or token chains (T.label, Column.values.Order.desc).`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.LogLevel = strings.ToLower(strings.TrimSpace(opts.LogLevel))
			level, err := parseLevel(opts.LogLevel)
			if err != nil {
				return err
			}
			if opts.Verbose && level > slog.LevelDebug {
				level = slog.LevelDebug
			}
			opts.Logger = newLogger(cmd.ErrOrStderr(), level)
			opts.Registry = prometheus.NewRegistry()
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewCanonCommand(opts))
	cmd.AddCommand(NewMatchCommand(opts))
	cmd.AddCommand(NewPingCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
