package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

type installmentRow struct {
	Number   int          `json:"number"`
	DueDate  string       `json:"due_date"`
	MonthKey string       `json:"month_key"`
	Amount   domain.Cents `json:"amount"`
}

func NewAllocateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		total        string
		installments int
		first        string
	)

	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Preview the installment schedule of a card purchase",
		Example: `  kansoctl allocate --total 100.00 --installments 3 --first 2024-01-31`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := domain.ParseCents(total)
			if err != nil {
				return err
			}
			firstDate, err := time.Parse(domain.DateLayout, first)
			if err != nil {
				return fmt.Errorf("invalid --first %q: use YYYY-MM-DD", first)
			}

			_, schedule, err := domain.NewCardPurchase("preview", domain.CardPurchaseFields{
				TotalAmount:       amount,
				InstallmentsCount: installments,
				FirstPaymentDate:  firstDate,
			}, time.Now())
			if err != nil {
				return err
			}

			rows := make([]installmentRow, len(schedule))
			for i, inst := range schedule {
				rows[i] = installmentRow{
					Number:   inst.InstallmentNumber,
					DueDate:  inst.DueDate.Format(domain.DateLayout),
					MonthKey: inst.MonthKey,
					Amount:   inst.InstallmentAmount,
				}
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), rows)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tDUE\tMONTH\tAMOUNT")
			for _, r := range rows {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.Number, r.DueDate, r.MonthKey, r.Amount)
			}
			fmt.Fprintf(tw, "\t\ttotal\t%s\n", domain.SumInstallments(schedule))
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&total, "total", "", "purchase total, e.g. 100.00")
	cmd.Flags().IntVarP(&installments, "installments", "n", 1, "number of installments")
	cmd.Flags().StringVar(&first, "first", "", "first payment date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("total")
	_ = cmd.MarkFlagRequired("first")
	return cmd
}

func NewSeriesCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		anchor  string
		horizon int
	)

	cmd := &cobra.Command{
		Use:     "series",
		Short:   "Preview the dates of a monthly recurring series",
		Example: `  kansoctl series --anchor 2024-01-31 --horizon 6`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			anchorDate, err := time.Parse(domain.DateLayout, anchor)
			if err != nil {
				return fmt.Errorf("invalid --anchor %q: use YYYY-MM-DD", anchor)
			}

			dates, err := domain.GenerateSeries(anchorDate, horizon, domain.FrequencyMonthly)
			if err != nil {
				return err
			}

			out := make([]string, len(dates))
			for i, d := range dates {
				out[i] = d.Format(domain.DateLayout)
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			for i, d := range out {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i+1, d)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&anchor, "anchor", "", "anchor date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&horizon, "horizon", domain.DefaultHorizon, "number of future members")
	_ = cmd.MarkFlagRequired("anchor")
	return cmd
}
