package cli

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-progress/internal/adapters/repository/migrations"
	"github.com/comitanigiacomo/kanso-progress/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		list bool
		dsn  string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded Postgres schema",
		Long: `Apply every embedded migration in file name order. The connection
comes from --dsn or, when omitted, from the DB_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := migrations.Files()
			if err != nil {
				return err
			}
			if list {
				if rootOpts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), names)
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			if dsn == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				dsn = cfg.DSN()
			}

			db, err := sqlx.ConnectContext(cmd.Context(), "pgx", dsn)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer db.Close()

			if err := migrations.Apply(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migrations\n", len(names))
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "print the migration files instead of applying them")
	cmd.Flags().StringVar(&dsn, "dsn", "", "postgres connection string")
	return cmd
}
