package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/rustcorpus/internal/discover"
	"github.com/phobologic/rustcorpus/internal/filter"
	"github.com/phobologic/rustcorpus/internal/lang"
	"github.com/phobologic/rustcorpus/internal/model"
	"github.com/phobologic/rustcorpus/internal/parse"
	"github.com/phobologic/rustcorpus/internal/toon"
)

func newCheckCmd(opts *options) *cobra.Command {
	var (
		offline bool
		format  string
		jobs    int
		match   []string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Sync the corpus and parse every admitted file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "toon" && format != "yaml" {
				return fmt.Errorf("unsupported format %q (want toon or yaml)", format)
			}

			ctx := cmd.Context()
			if !offline {
				if _, err := opts.ensure(ctx); err != nil {
					return err
				}
			}

			res, err := discover.Files(opts.root, filter.New(opts.root), match)
			if err != nil {
				return fmt.Errorf("discovering files: %w", err)
			}
			if len(res.Files) == 0 {
				return fmt.Errorf("no corpus files admitted under %s", opts.root)
			}

			failures, err := parseFilesConcurrent(ctx, opts.root, res.Files, jobs, opts.logger)
			if err != nil {
				return err
			}

			report := buildReport(opts, res, failures)
			if err := writeReport(cmd.OutOrStdout(), report, format); err != nil {
				return err
			}

			if !report.OK() {
				return fmt.Errorf("%d of %d files failed to parse", len(report.Failures), report.Parsed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "use the corpus on disk without syncing")
	cmd.Flags().StringVarP(&format, "format", "f", "toon", "report format: toon or yaml")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.GOMAXPROCS(0), "number of files parsed in parallel")
	cmd.Flags().StringSliceVarP(&match, "match", "m", nil, "only parse paths matching these globs (** supported)")
	return cmd
}

// parseFilesConcurrent parses files with a pool of workers, each owning its
// own tree-sitter parser, and returns failures in input order.
func parseFilesConcurrent(ctx context.Context, root string, files []discover.FileEntry, jobs int, logger *slog.Logger) ([]model.Failure, error) {
	numWorkers := jobs
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	results := make([]*model.SyntaxError, len(files))
	work := make(chan int)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(work)
		for i := range files {
			select {
			case work <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for range numWorkers {
		g.Go(func() error {
			parser := lang.NewParser()
			defer parser.Close()

			for idx := range work {
				f := files[idx]
				source, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f.Path)))
				if err != nil {
					return fmt.Errorf("reading %s: %w", f.Path, err)
				}
				se, err := parse.Check(ctx, parser, source)
				if err != nil {
					return fmt.Errorf("parsing %s: %w", f.Path, err)
				}
				if se != nil {
					logger.Debug("syntax error", slog.String("path", f.Path), slog.Int("line", se.Line))
				}
				results[idx] = se
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var failures []model.Failure
	for i, se := range results {
		if se != nil {
			failures = append(failures, model.Failure{Path: files[i].Path, SyntaxError: *se})
		}
	}
	return failures, nil
}

func buildReport(opts *options, res *discover.Result, failures []model.Failure) *model.Report {
	report := &model.Report{
		Revision: opts.revision,
		Root:     opts.root,
		Parsed:   len(res.Files),
		Failures: failures,
	}
	for rule, count := range res.Counts() {
		report.Excluded = append(report.Excluded, model.Exclusion{Rule: rule.String(), Count: count})
	}
	sort.Slice(report.Excluded, func(i, j int) bool {
		return report.Excluded[i].Rule < report.Excluded[j].Rule
	})
	return report
}

func writeReport(w io.Writer, report *model.Report, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		return enc.Close()
	}
	_, err := fmt.Fprintln(w, toon.Encode(report))
	return err
}
