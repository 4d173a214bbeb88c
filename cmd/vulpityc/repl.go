package main

import (
	"github.com/spf13/cobra"

	"github.com/vulpine-lang/vulpityc/internal/config"
	"github.com/vulpine-lang/vulpityc/internal/repl"
)

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session for probing inference over the toy surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			configPath, _ := cmd.Flags().GetString("config")
			if configPath == "" {
				configPath = config.DefaultPath
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			r := repl.New(Version, cfg.UseColor() && !noColor)
			r.Start(cmd.OutOrStdout())
			return nil
		},
	}
}
