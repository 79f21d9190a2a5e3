package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Orochi-Adde/drogon/cli/internal/config"
	"github.com/Orochi-Adde/drogon/cli/internal/ui"
	"github.com/Orochi-Adde/drogon/query/dialect"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var (
		provider     string
		url          string
		maxOpen      int
		maxInFlight  int64
		queryTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a drogon-orm configuration file",
		Long: `Save the database settings to ~/.config/drogon-orm/.drogon-orm.yaml so that
smoke can run without flags. The provider is detected from the URL when it
is not given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &config.Config{
				Provider:     provider,
				DatabaseURL:  url,
				MaxOpenConns: maxOpen,
				MaxInFlight:  maxInFlight,
				QueryTimeout: queryTimeout,
			}
			if cfg.Provider == "" {
				cfg.Provider = config.DetectProvider(url)
			}
			if _, err := dialect.Parse(cfg.Provider); err != nil {
				return err
			}

			path, err := config.SaveConfig(cfg)
			if err != nil {
				return err
			}
			ui.PrintSuccess("Wrote %s", path)
			ui.PrintInfo("provider %s, run `drogon-orm smoke` to try it", cfg.Provider)
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "Backend: postgresql, mysql, sqlite3 or duckdb")
	cmd.Flags().StringVar(&url, "url", "", "Database URL")
	cmd.Flags().IntVar(&maxOpen, "max-open-conns", 0, "Connection pool size (0 = default)")
	cmd.Flags().Int64Var(&maxInFlight, "max-in-flight", 0, "Statements running at once (0 = pool size)")
	cmd.Flags().DurationVar(&queryTimeout, "query-timeout", 0, "Per-statement timeout (0 = none)")
	return cmd
}
