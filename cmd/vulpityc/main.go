// Command vulpityc is the CLI driver around internal/check: it reads one
// expression in the internal/toy grammar, runs check.Infer over it, and
// renders diagnostics. None of this lives in the checker itself (spec.md 5,
// 6) — it is the thin collaborator layer spec.md marks out of scope,
// grounded on the teacher's cmd/ailang/cmd/typecheck cobra-less CLIs
// rebuilt here on Cobra per SPEC_FULL.md 1.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info, set by ldflags during release builds.
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "vulpityc",
		Short:         "A bidirectional type checker for the vulpine language family",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().String("config", "", "path to .vulpityc.yaml (defaults to ./.vulpityc.yaml)")
	cmd.PersistentFlags().Bool("no-color", false, "disable colorized diagnostic output")

	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newReplCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("vulpityc %s (%s)\n", Version, Commit)
			return nil
		},
	}
}
