package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Orochi-Adde/drogon/cli/internal/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, info.FullString())

			names := make([]string, 0, len(info.Drivers))
			for name := range info.Drivers {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "Driver %s: %s\n", name, info.Drivers[name])
			}
		},
	}
}
