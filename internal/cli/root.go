package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
)

type RootOptions struct {
	Format string
}

var ValidFormats = []string{"text", "json"}

// NewRootCommand builds the kansoctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "kansoctl",
		Short: "Kanso Progress admin tool",
		Long:  "Applies the database schema, checks level tables and previews installment and recurring schedules.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewTiersCommand(opts))
	cmd.AddCommand(NewLevelCommand(opts))
	cmd.AddCommand(NewAllocateCommand(opts))
	cmd.AddCommand(NewSeriesCommand(opts))

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
