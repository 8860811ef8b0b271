package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phobologic/rustcorpus/internal/revision"
)

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the pinned and installed corpus revisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stale, err := opts.syncer().NeedsRefresh()
			if err != nil {
				return err
			}
			current, err := revision.Current(opts.root)
			if err != nil {
				return err
			}
			if current == "" {
				current = "none"
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "root: %s\n", opts.root)
			_, _ = fmt.Fprintf(out, "pinned: %s\n", opts.revision)
			_, _ = fmt.Fprintf(out, "installed: %s\n", current)
			_, _ = fmt.Fprintf(out, "stale: %t\n", stale)
			return nil
		},
	}
}
