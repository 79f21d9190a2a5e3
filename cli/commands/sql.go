package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Orochi-Adde/drogon/cli/internal/ui"
	"github.com/Orochi-Adde/drogon/internal/demo"
	"github.com/Orochi-Adde/drogon/query/criteria"
	"github.com/Orochi-Adde/drogon/query/dialect"
	"github.com/Orochi-Adde/drogon/query/sqlgen"
	"github.com/Orochi-Adde/drogon/runtime/client"
)

// NewSQLCommand creates the sql command.
func NewSQLCommand() *cobra.Command {
	var (
		provider string
		plain    bool
	)

	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Print the SQL each mapper operation sends",
		Long:  "Run every mapper operation on the users model against a recording client and print the statements for the chosen backend. No database is contacted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := dialect.Parse(provider)
			if err != nil {
				return err
			}
			statements, err := DryRun(cmd.Context(), typ)
			if err != nil {
				return err
			}
			if plain {
				ui.PrintStatements(statements)
				return nil
			}
			heading := fmt.Sprintf("%s (%s dialect)", typ, typ.Dialect())
			return ui.PrintMarkdown(ui.StatementsMarkdown(heading, statements))
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "postgresql", "Backend: postgresql, mysql, sqlite3 or duckdb")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print highlighted SQL instead of rendered markdown")
	return cmd
}

// dryRunResponder answers like a users table holding one row with id 1.
func dryRunResponder(call client.Call) (*client.Result, error) {
	if !client.ReturnsRows(call.Query) {
		return client.NewResult(nil, nil, 1, 1), nil
	}
	if strings.HasPrefix(call.Query, "select count(*)") {
		return client.NewResult([]string{"count(*)"}, [][]any{{int64(1)}}, 1, 0), nil
	}
	return client.NewResult(
		[]string{"id", "name", "email"},
		[][]any{{int64(1), "a", "a@x"}},
		1, 0,
	), nil
}

// DryRun runs each mapper operation against a recording client for typ and
// returns the statements in submission order.
func DryRun(ctx context.Context, typ dialect.ClientType) ([]ui.Statement, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rec := client.NewRecorder(typ, dryRunResponder)
	users := demo.NewUserMapper(rec)

	rename := demo.User{ID: 1}
	rename.SetName("b")

	ops := []struct {
		title string
		run   func() error
	}{
		{"insert", func() error {
			_, err := users.Insert(ctx, demo.NewUser("a", "a@x"))
			return err
		}},
		{"findByPrimaryKey (for update)", func() error {
			_, err := users.ForUpdate().FindByPrimaryKey(ctx, 1)
			return err
		}},
		{"findAll (page 2 of 10, newest first)", func() error {
			_, err := users.OrderBy("id", sqlgen.DESC).Paginate(2, 10).FindAll(ctx)
			return err
		}},
		{"findOne", func() error {
			_, err := users.FindOne(ctx, criteria.Eq("email", "a@x"))
			return err
		}},
		{"findBy", func() error {
			where := criteria.New("name", criteria.Like, "a%").And(criteria.New("email", criteria.IsNotNull))
			_, err := users.OrderBy("name", sqlgen.ASC).Offset(5).FindBy(ctx, where)
			return err
		}},
		{"count", func() error {
			_, err := users.Count(ctx, criteria.New("id", criteria.In, []int64{1, 2, 3}))
			return err
		}},
		{"update (name dirty)", func() error {
			_, err := users.Update(ctx, rename)
			return err
		}},
		{"update (nothing dirty)", func() error {
			_, err := users.Update(ctx, demo.User{ID: 1})
			return err
		}},
		{"deleteOne", func() error {
			_, err := users.DeleteOne(ctx, demo.User{ID: 1})
			return err
		}},
		{"deleteBy", func() error {
			_, err := users.DeleteBy(ctx, criteria.New("email", criteria.IsNull))
			return err
		}},
		{"deleteByPrimaryKey", func() error {
			_, err := users.DeleteByPrimaryKey(ctx, 1)
			return err
		}},
	}

	var statements []ui.Statement
	for _, op := range ops {
		before := len(rec.Calls())
		if err := op.run(); err != nil {
			return nil, fmt.Errorf("%s: %w", op.title, err)
		}
		for i, call := range rec.Calls()[before:] {
			title := op.title
			if i > 0 {
				title += " (follow-up)"
			}
			statements = append(statements, ui.Statement{Title: title, SQL: call.Query, Args: call.Args})
		}
	}
	return statements, nil
}
