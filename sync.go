package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Download the pinned corpus if it is missing or stale",
		Long: `Download the pinned corpus if it is missing or stale.

The corpus directory is deleted and refetched in full whenever its COMMIT
marker does not name the pinned revision. The marker is written last, so an
interrupted sync is retried from scratch on the next run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			refreshed, err := opts.ensure(cmd.Context())
			if err != nil {
				return err
			}

			state := "up to date"
			if refreshed {
				state = "refreshed"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s at %s\n", opts.root, state, opts.revision)
			return nil
		},
	}
}
