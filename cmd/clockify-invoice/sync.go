package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Refresh the local store from Clockify",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := newLogger()
			a, _, err := setup(log)
			if err != nil {
				return err
			}

			sp := startSpinner(os.Stderr)
			err = a.Sync(cmd.Context())
			sp.stop()
			return err
		},
	}
}
