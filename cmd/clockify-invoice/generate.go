package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jordanamos/clockify-invoice/internal/app"
)

func newGenerateCmd() *cobra.Command {
	now := time.Now()
	var (
		year   int
		month  int
		number int
		save   bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an invoice for a calendar month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if month < 1 || month > 12 {
				return fmt.Errorf("invalid month %d: must be 1-12", month)
			}
			log := newLogger()
			a, _, err := setup(log)
			if err != nil {
				return err
			}

			start, end := app.MonthPeriod(year, time.Month(month))
			inv, err := a.BuildInvoice(cmd.Context(), number, start, end)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), inv.Summary())

			if save {
				id, err := a.SaveInvoice(cmd.Context(), inv)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved invoice %s [%d]\n", inv.Name(), id)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", now.Year(), "Invoice period year")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "Invoice period month (1-12)")
	cmd.Flags().IntVar(&number, "number", 0, "Invoice number (default: next available)")
	cmd.Flags().BoolVar(&save, "save", false, "Persist the invoice and its rendered document")

	return cmd
}
