package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-progress/internal/config"
	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

func NewTiersCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "tiers",
		Short: "Validate and print a level tier table",
		Long:  "Loads the TOML tier table given by --file (the built-in table when omitted) and prints it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tiers, err := config.LoadTiers(file)
			if err != nil {
				return err
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), tiers)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "INDEX\tNAME\tMIN XP\tMAX XP")
			for _, t := range tiers {
				maxXP := "-"
				if t.MaxXP != nil {
					maxXP = strconv.FormatInt(*t.MaxXP, 10)
				}
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", t.Index, t.Name, t.MinXP, maxXP)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "TOML tier table")
	return cmd
}

func NewLevelCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "level <xp-total>",
		Short: "Resolve the level for an XP total",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid xp total %q: %w", args[0], err)
			}
			tiers, err := config.LoadTiers(file)
			if err != nil {
				return err
			}

			info := domain.ResolveLevel(total, tiers)
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), info)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "level %d (%s), %d xp into level", info.Index, info.Name, info.XPIntoLevel)
			if info.IsMax() {
				fmt.Fprintln(cmd.OutOrStdout(), ", max level")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), ", %d to %s\n", info.XPToNext, info.NextName)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "TOML tier table")
	return cmd
}
