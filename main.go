// rustcorpus keeps the rust-lang/rust test suite on disk at a pinned revision
// and runs the admitted files through the tree-sitter Rust parser.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/phobologic/rustcorpus/internal/archive"
	"github.com/phobologic/rustcorpus/internal/corpus"
	"github.com/phobologic/rustcorpus/internal/logger"
	"github.com/phobologic/rustcorpus/internal/progress"
)

var version = "dev"

const (
	defaultRoot = "tests/rust"

	dotStep = 1 << 20  // 1 MiB per '.' on CI
	logStep = 16 << 20 // 16 MiB per progress record
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

// options are the persistent flags shared by every subcommand.
type options struct {
	root     string
	baseURL  string
	revision string
	digest   string
	verbose  bool

	stderr io.Writer
	logger *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{stderr: stderr}

	cmd := &cobra.Command{
		Use:           "rustcorpus",
		Short:         "Maintain the pinned Rust parser test corpus",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger = logger.New(stderr, logger.Options{
				Verbose:  opts.verbose,
				Terminal: logger.IsTerminal(stderr),
			})
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.root, "root", defaultRoot, "corpus directory")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&opts.baseURL, "base-url", corpus.DefaultBaseURL, "host serving upstream tarballs")
	pf.StringVar(&opts.revision, "revision", corpus.Rust.Revision, "upstream revision to pin")
	pf.StringVar(&opts.digest, "digest", "", "expected sha256:<hex> of the tarball")
	_ = pf.MarkHidden("base-url")
	_ = pf.MarkHidden("revision")
	_ = pf.MarkHidden("digest")

	cmd.AddCommand(
		newSyncCmd(opts),
		newStatusCmd(opts),
		newLsCmd(opts),
		newCheckCmd(opts),
	)
	return cmd
}

func (o *options) source() corpus.Source {
	s := corpus.Rust
	s.BaseURL = o.baseURL
	s.Revision = o.revision
	s.Digest = o.digest
	return s
}

func (o *options) syncer() *corpus.Syncer {
	return &corpus.Syncer{
		Source: o.source(),
		Root:   o.root,
		Logger: o.logger,
		Fetcher: &archive.Fetcher{
			Observer: o.observer(),
			Logger:   o.logger,
		},
	}
}

// observer picks how download progress is shown. CI gets keep-alive dots;
// --verbose gets debug records.
func (o *options) observer() progress.Observer {
	switch {
	case os.Getenv("CI") != "":
		return progress.Dots(o.stderr, dotStep)
	case o.verbose:
		return progress.Log(o.logger, logStep)
	}
	return progress.Nop
}

// ensure brings the corpus up to date while holding the root's lock.
func (o *options) ensure(ctx context.Context) (bool, error) {
	unlock, err := o.lock()
	if err != nil {
		return false, err
	}
	defer unlock()

	return o.syncer().Ensure(ctx)
}

// lock takes an advisory lock next to the root, since the root itself is
// deleted on refresh.
func (o *options) lock() (func(), error) {
	root := filepath.Clean(o.root)
	if err := os.MkdirAll(filepath.Dir(root), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(root), err)
	}

	fl := flock.New(root + ".lock")
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", fl.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("%s is locked by another rustcorpus process", o.root)
	}
	return func() { _ = fl.Unlock() }, nil
}
