// Package archive downloads a gzip-compressed tarball and unpacks it into a
// directory, re-rooting every entry under a fixed top-level prefix.
package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/phobologic/rustcorpus/internal/progress"
)

var (
	// ErrPrefixMismatch means an entry is not rooted under the expected prefix,
	// i.e. the archive is not the one that was requested.
	ErrPrefixMismatch = errors.New("archive entry outside expected prefix")
	// ErrUnsafePath means an entry or link would land outside the destination.
	ErrUnsafePath = errors.New("archive entry escapes destination")
	// ErrDigestMismatch means the downloaded bytes do not hash to the expected digest.
	ErrDigestMismatch = errors.New("archive digest mismatch")
)

// StatusError is returned for a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %s", e.URL, e.Status)
}

// Fetcher streams an archive from the network straight into a directory.
// The zero value is usable.
type Fetcher struct {
	// Client defaults to http.DefaultClient.
	Client *http.Client
	// Observer is told about every chunk read off the network.
	Observer progress.Observer
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Digest, when set, is the expected "sha256:<hex>" of the compressed body.
	Digest string
}

// Fetch downloads url and extracts it into dest, replacing whatever dest held.
// Every entry must live under stripPrefix, which is removed from its path.
// Extraction stops at the first error; dest may then be partially populated.
func (f *Fetcher) Fetch(ctx context.Context, url, dest, stripPrefix string) error {
	logger := f.logger()

	var want string
	if f.Digest != "" {
		var err error
		if want, err = parseDigest(f.Digest); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if err := reset(dest, logger); err != nil {
		return err
	}

	body := progress.NewReader(resp.Body, f.Observer)
	var src io.Reader = body
	var h hash.Hash
	if want != "" {
		h = sha256.New()
		src = io.TeeReader(body, h)
	}

	if err := Extract(src, dest, stripPrefix, logger); err != nil {
		return err
	}

	if h != nil {
		if _, err := io.Copy(io.Discard, src); err != nil {
			return fmt.Errorf("draining archive: %w", err)
		}
		if got := hex.EncodeToString(h.Sum(nil)); got != want {
			return fmt.Errorf("%w: got sha256:%s, want sha256:%s", ErrDigestMismatch, got, want)
		}
	}

	logger.Debug("archive extracted", slog.String("url", url), slog.Int64("bytes", body.Total()))
	return nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

func (f *Fetcher) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

// reset leaves dest as an empty directory.
func reset(dest string, logger *slog.Logger) error {
	if _, err := os.Lstat(dest); err == nil {
		logger.Info("removing existing corpus", slog.String("path", dest))
		if err := os.RemoveAll(dest); err != nil {
			return fmt.Errorf("removing %s: %w", dest, err)
		}
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	return nil
}

func parseDigest(s string) (string, error) {
	hexPart, ok := strings.CutPrefix(s, "sha256:")
	if !ok {
		return "", fmt.Errorf("invalid digest %q: want sha256:<hex>", s)
	}
	hexPart = strings.ToLower(hexPart)
	if b, err := hex.DecodeString(hexPart); err != nil || len(b) != sha256.Size {
		return "", fmt.Errorf("invalid digest %q: want sha256:<hex>", s)
	}
	return hexPart, nil
}
