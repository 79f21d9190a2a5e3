package commands

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/Orochi-Adde/drogon/cli/internal/config"
	"github.com/Orochi-Adde/drogon/cli/internal/ui"
	"github.com/Orochi-Adde/drogon/internal/debug"
	"github.com/Orochi-Adde/drogon/internal/demo"
	"github.com/Orochi-Adde/drogon/runtime/client"
	"github.com/Orochi-Adde/drogon/runtime/future"
)

// NewSmokeCommand creates the smoke command.
func NewSmokeCommand() *cobra.Command {
	var (
		provider string
		url      string
		rows     int
	)

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run the users lifecycle against a database",
		Long: `Create the users table if needed, then insert, update, read back and delete
one user and read several pages of seeded users concurrently.

The database comes from DATABASE_URL, .drogon-orm.yaml or the flags below.
Without any of them an in-memory SQLite database is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if url != "" {
				cfg.DatabaseURL = url
				cfg.Provider = config.DetectProvider(url)
			}
			if provider != "" {
				cfg.Provider = provider
			}

			ui.PrintHeader("drogon-orm smoke", cfg.Provider)
			report, err := Smoke(cmd.Context(), cfg.ClientConfig(), rows)
			if report != nil {
				printReport(report)
			}
			if err != nil {
				return err
			}
			ui.PrintSuccess("%d statements in %s", report.Statements, report.Elapsed.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "Backend: postgresql, mysql, sqlite3 or duckdb")
	cmd.Flags().StringVar(&url, "url", "", "Database URL (overrides configuration)")
	cmd.Flags().IntVar(&rows, "rows", 10, "Users to seed for the concurrent page reads")
	return cmd
}

// SmokeReport is what a smoke run did.
type SmokeReport struct {
	Steps      []demo.Step
	Pages      map[demo.Page][]int64
	Statements int
	Elapsed    time.Duration
}

// Smoke opens cfg, creates the users table and runs the lifecycle and
// concurrent page scenarios. The report is returned even on failure.
func Smoke(ctx context.Context, cfg client.Config, rows int) (*SmokeReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if rows < 1 {
		return nil, fmt.Errorf("rows must be at least 1, got %d", rows)
	}
	report := &SmokeReport{}

	var mu sync.Mutex
	timing := client.TimingMiddleware(func(query string, d time.Duration) {
		mu.Lock()
		report.Statements++
		report.Elapsed += d
		mu.Unlock()
	})

	const total = 2
	ui.PrintStep(1, total, "Connecting")
	c, err := client.Open(ctx, cfg, client.WithLogger(debug.Logger()), client.WithMiddleware(timing))
	if err != nil {
		return report, err
	}
	defer c.Close()

	if _, err := client.Exec(ctx, c, demo.Schema(c.Type())); err != nil {
		return report, fmt.Errorf("create users table: %w", err)
	}

	// the lifecycle touches only its own row, so it runs beside the page reads
	ui.PrintStep(2, total, "Lifecycle and concurrent pages")
	lifecycle := future.Go(func() ([]demo.Step, error) {
		return demo.Lifecycle(ctx, c)
	})
	pages := []demo.Page{
		{Limit: 3},
		{Limit: 3, Offset: 3},
		{Limit: 5, Offset: uint64(rows) / 2},
		{Offset: uint64(rows) - 1},
	}
	got, pagesErr := demo.ConcurrentPages(ctx, c, rows, pages)
	steps, lifecycleErr := lifecycle.Wait()

	report.Steps = steps
	report.Pages = got
	if err := future.Combine(lifecycleErr, pagesErr); err != nil {
		return report, err
	}
	return report, nil
}

func printReport(report *SmokeReport) {
	if len(report.Steps) > 0 {
		rows := make([][]string, 0, len(report.Steps))
		for _, s := range report.Steps {
			rows = append(rows, []string{s.Op, s.Result})
		}
		if err := ui.PrintTable([]string{"Operation", "Result"}, rows); err != nil {
			ui.PrintWarning("render steps: %v", err)
		}
	}

	if len(report.Pages) > 0 {
		pages := make([]demo.Page, 0, len(report.Pages))
		for p := range report.Pages {
			pages = append(pages, p)
		}
		sort.Slice(pages, func(i, j int) bool {
			if pages[i].Offset != pages[j].Offset {
				return pages[i].Offset < pages[j].Offset
			}
			return pages[i].Limit < pages[j].Limit
		})
		rows := make([][]string, 0, len(pages))
		for _, p := range pages {
			rows = append(rows, []string{fmt.Sprint(p.Limit), fmt.Sprint(p.Offset), fmt.Sprint(report.Pages[p])})
		}
		if err := ui.PrintTable([]string{"Limit", "Offset", "Ids"}, rows); err != nil {
			ui.PrintWarning("render pages: %v", err)
		}
	}
}
