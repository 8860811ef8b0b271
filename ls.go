package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phobologic/rustcorpus/internal/discover"
	"github.com/phobologic/rustcorpus/internal/filter"
)

func newLsCmd(opts *options) *cobra.Command {
	var (
		excluded bool
		match    []string
	)

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List the corpus files admitted to the test run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.root); err != nil {
				return fmt.Errorf("corpus not present (run sync first): %w", err)
			}

			res, err := discover.Files(opts.root, filter.New(opts.root), match)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if excluded {
				for _, e := range res.Excluded {
					if e.Rule == filter.RuleNotSource {
						continue
					}
					_, _ = fmt.Fprintf(out, "%s\t%s\n", e.Path, e.Rule)
				}
				return nil
			}
			for _, f := range res.Files {
				_, _ = fmt.Fprintln(out, f.Path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&excluded, "excluded", false, "list excluded source files and the rule that excluded them")
	cmd.Flags().StringSliceVarP(&match, "match", "m", nil, "only consider paths matching these globs (** supported)")
	return cmd
}
