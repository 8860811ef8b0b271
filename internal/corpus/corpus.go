// Package corpus keeps an on-disk snapshot of an upstream repository at a
// pinned revision, refetching it whenever the recorded revision differs.
package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phobologic/rustcorpus/internal/archive"
	"github.com/phobologic/rustcorpus/internal/revision"
)

// DefaultBaseURL is where upstream tarballs are downloaded from.
const DefaultBaseURL = "https://github.com"

// Source identifies an upstream snapshot.
type Source struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL  string
	Org      string
	Project  string
	Revision string
	// Digest optionally pins the tarball contents as "sha256:<hex>".
	Digest string
}

// Rust is the rust-lang/rust snapshot the parser tests are run against.
var Rust = Source{
	Org:      "rust-lang",
	Project:  "rust",
	Revision: "5e8897b7b51636f157630e6639b711d698e1d101",
}

// URL returns the tarball location for the snapshot.
func (s Source) URL() string {
	base := s.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return fmt.Sprintf("%s/%s/%s/archive/%s.tar.gz", strings.TrimRight(base, "/"), s.Org, s.Project, s.Revision)
}

// Prefix returns the top-level directory every tarball entry lives under.
func (s Source) Prefix() string {
	return s.Project + "-" + s.Revision
}

// Syncer materializes Source under Root. Only one Syncer may work on a
// given Root at a time; it does no locking of its own.
type Syncer struct {
	Source  Source
	Root    string
	Fetcher *archive.Fetcher
	Logger  *slog.Logger
}

// NeedsRefresh reports whether Root does not yet hold Source.Revision.
func (s *Syncer) NeedsRefresh() (bool, error) {
	stale, err := revision.NeedsRefresh(s.Root, s.Source.Revision)
	if err != nil {
		return false, &StaleCheckError{Root: s.Root, Err: err}
	}
	return stale, nil
}

// Ensure brings Root up to date, downloading only when it is stale.
// It reports whether a refresh happened. The revision marker is written
// only after every archive entry has been extracted.
func (s *Syncer) Ensure(ctx context.Context) (bool, error) {
	logger := s.logger()

	stale, err := s.NeedsRefresh()
	if err != nil {
		return false, err
	}
	if !stale {
		logger.Debug("corpus up to date", slog.String("root", s.Root), slog.String("revision", s.Source.Revision))
		return false, nil
	}

	url := s.Source.URL()
	logger.Info("fetching corpus", slog.String("url", url), slog.String("root", s.Root))

	f := s.fetcher()
	if err := f.Fetch(ctx, url, s.Root, s.Source.Prefix()); err != nil {
		return false, &FetchError{URL: url, Err: err}
	}

	if err := revision.Commit(s.Root, s.Source.Revision); err != nil {
		return false, &CommitError{Root: s.Root, Err: err}
	}

	logger.Info("corpus refreshed", slog.String("revision", s.Source.Revision))
	return true, nil
}

func (s *Syncer) fetcher() *archive.Fetcher {
	f := archive.Fetcher{Logger: s.logger()}
	if s.Fetcher != nil {
		f = *s.Fetcher
		if f.Logger == nil {
			f.Logger = s.logger()
		}
	}
	if s.Source.Digest != "" {
		f.Digest = s.Source.Digest
	}
	return &f
}

func (s *Syncer) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
