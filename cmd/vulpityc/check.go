package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vulpine-lang/vulpityc/internal/check"
	"github.com/vulpine-lang/vulpityc/internal/config"
	"github.com/vulpine-lang/vulpityc/internal/diag"
	"github.com/vulpine-lang/vulpityc/internal/tenv"
	"github.com/vulpine-lang/vulpityc/internal/toy"
	"github.com/vulpine-lang/vulpityc/internal/types"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Infer the type of a single toy-syntax expression and report diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.DefaultPath
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	expr, err := toy.Parse(string(src))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	sink := diag.NewCollectingSink()
	ctx := tenv.New(sink)
	env := types.NewEnv()

	inferred, _ := check.Infer(ctx, env, expr)

	renderer := diag.NewRenderer(cfg.UseColor() && !noColor)
	renderer.SourceLines = map[string][]string{path: strings.Split(string(src), "\n")}
	renderer.RenderAll(cmd.OutOrStdout(), sink.Diagnostics)

	fmt.Fprintf(cmd.OutOrStdout(), "%s : %s\n", path, types.Print(types.Quote(inferred, env.Level)))
	if sink.HasErrors() {
		os.Exit(1)
	}
	return nil
}
