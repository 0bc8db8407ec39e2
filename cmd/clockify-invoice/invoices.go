package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newInvoicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Manage saved invoices",
	}
	cmd.AddCommand(newInvoicesListCmd())
	cmd.AddCommand(newInvoicesDeleteCmd())
	return cmd
}

func newInvoicesListCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved invoices for a fiscal year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := newLogger()
			a, _, err := setup(log)
			if err != nil {
				return err
			}

			records, total, err := a.Invoices(cmd.Context(), year)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"ID", "Number", "Date", "Period Start", "Period End", "Payer", "Total"})
			for _, rec := range records {
				t.AppendRow(table.Row{
					rec.ID,
					rec.Number,
					rec.Date,
					rec.PeriodStart,
					rec.PeriodEnd,
					rec.Client.Name,
					fmt.Sprintf("%.2f", rec.Total),
				})
			}
			t.AppendFooter(table.Row{"", "", "", "", "", "Total", fmt.Sprintf("%.2f", total)})
			t.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "Fiscal year starting 1 July")
	return cmd
}

func newInvoicesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved invoice by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid invoice id %q", args[0])
			}
			log := newLogger()
			a, _, err := setup(log)
			if err != nil {
				return err
			}
			return a.DeleteInvoice(cmd.Context(), id)
		},
	}
}
