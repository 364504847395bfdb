package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tinkerharness/internal/param"
)

// CanonEntry describes one parsed literal.
type CanonEntry struct {
	Literal   string `json:"literal"`
	Kind      string `json:"kind"`
	Type      string `json:"type"`
	Canonical string `json:"canonical"`
	Hash      string `json:"hash"`
}

// CanonResult is the output of the canon command.
type CanonResult struct {
	Entries []CanonEntry `json:"entries"`
}

// Text renders one tab-separated line per literal.
func (r CanonResult) Text() string {
	lines := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		lines = append(lines, strings.Join([]string{e.Literal, e.Kind, e.Type, e.Canonical, e.Hash}, "\t"))
	}
	return strings.Join(lines, "\n")
}

// NewCanonCommand creates the canon command.
func NewCanonCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "canon <literal>...",
		Short: "Print the canonical form and hash of parameter literals",
		Long: `Parse each literal and print its kind, type witness, canonical form,
and hash. Two literals denote equal parameters iff their hashes match.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCanon(rootOpts, args, cmd)
		},
	}
}

func runCanon(opts *RootOptions, literals []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	result := CanonResult{Entries: make([]CanonEntry, 0, len(literals))}
	for _, lit := range literals {
		p, err := param.Parse(lit)
		if err != nil {
			return formatter.Fail(ExitCommandError, fmt.Sprintf("cannot parse %q", lit), err, nil)
		}
		formatter.VerboseLog("Parsed %q as %s", lit, p.Kind())
		result.Entries = append(result.Entries, CanonEntry{
			Literal:   lit,
			Kind:      p.Kind().String(),
			Type:      typeName(p),
			Canonical: string(p.Canonical()),
			Hash:      p.Hash(),
		})
	}

	return formatter.Success(result)
}

// typeName renders the type witness. The null literal has none.
func typeName(p param.Parameter) string {
	if t := p.Type(); t != nil {
		return t.String()
	}
	return "null"
}
