// Package commands implements the drogon-orm CLI commands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/Orochi-Adde/drogon/cli/internal/config"
	"github.com/Orochi-Adde/drogon/cli/internal/version"
	"github.com/Orochi-Adde/drogon/internal/debug"
)

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "drogon-orm",
		Short:         "Inspect and exercise the drogon ORM mapper",
		Long:          "drogon-orm prints the SQL the mapper generates for each backend and runs a smoke test against a configured database.",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			debug.Init(verbose || cfg.Debug)
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every statement to stderr")

	root.AddCommand(NewInitCommand())
	root.AddCommand(NewSQLCommand())
	root.AddCommand(NewSmokeCommand())
	root.AddCommand(NewVersionCommand())
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}
