package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/rustcorpus/internal/archive/archivetest"
	"github.com/phobologic/rustcorpus/internal/model"
)

const testRevision = "abc123"

// sampleArchive mimics a rust-lang/rust tarball at testRevision.
func sampleArchive(t *testing.T, extra ...archivetest.Entry) []byte {
	t.Helper()
	entries := []archivetest.Entry{
		archivetest.GlobalHeader(testRevision),
		archivetest.Dir("rust-abc123/"),
		archivetest.File("rust-abc123/README.md", "# rust\n"),
		archivetest.File("rust-abc123/src/libcore/lib.rs", "pub fn core() {}\n"),
		archivetest.File("rust-abc123/src/test/ui/ok.rs", "fn main() { let x = 1; }\n"),
		archivetest.File("rust-abc123/src/test/ui/diag.rs", "fn main() { let x: u8 = 256; }\n"),
		archivetest.File("rust-abc123/src/test/ui/diag.stderr", "error: literal out of range\n"),
		archivetest.File("rust-abc123/src/test/parse-fail/bad.rs", "fn main( {\n"),
		archivetest.File("rust-abc123/src/test/ui/obsolete-in-place/bad.rs", "fn main() { x <- y; }\n"),
	}
	return archivetest.Build(t, append(entries, extra...)...)
}

type env struct {
	srv  *archivetest.Server
	root string
}

func newEnv(t *testing.T, body []byte) *env {
	t.Helper()
	return &env{
		srv:  archivetest.Serve(t, body),
		root: filepath.Join(t.TempDir(), "tests", "rust"),
	}
}

func (e *env) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{
		"--root", e.root,
		"--base-url", e.srv.URL,
		"--revision", testRevision,
	}, args...)
	err := run(full, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRunVersion(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"--version"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "rustcorpus version dev")
}

func TestRunSync(t *testing.T) {
	t.Parallel()
	e := newEnv(t, sampleArchive(t))

	out, stderr, err := e.run(t, "sync")
	require.NoError(t, err, stderr)
	assert.Contains(t, out, "refreshed at abc123")
	assert.FileExists(t, filepath.Join(e.root, "src", "test", "ui", "ok.rs"))

	marker, err := os.ReadFile(filepath.Join(e.root, "COMMIT"))
	require.NoError(t, err)
	assert.Equal(t, testRevision, string(marker))

	out, stderr, err = e.run(t, "sync")
	require.NoError(t, err, stderr)
	assert.Contains(t, out, "up to date at abc123")
	assert.Equal(t, 1, e.srv.Hits())
	assert.Equal(t, []string{"/rust-lang/rust/archive/abc123.tar.gz"}, e.srv.Paths())
}

func TestRunSyncDigestMismatch(t *testing.T) {
	t.Parallel()
	e := newEnv(t, sampleArchive(t))

	_, _, err := e.run(t, "--digest", archivetest.Digest([]byte("other")), "sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "digest mismatch")
	assert.NoFileExists(t, filepath.Join(e.root, "COMMIT"))
}

func TestRunSyncLocked(t *testing.T) {
	t.Parallel()
	e := newEnv(t, sampleArchive(t))

	require.NoError(t, os.MkdirAll(filepath.Dir(e.root), 0o755))
	held := flock.New(e.root + ".lock")
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer held.Unlock()

	_, _, err = e.run(t, "sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked by another rustcorpus process")
	assert.Zero(t, e.srv.Hits())
}

func TestRunStatus(t *testing.T) {
	t.Parallel()
	e := newEnv(t, sampleArchive(t))

	out, _, err := e.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "pinned: abc123")
	assert.Contains(t, out, "installed: none")
	assert.Contains(t, out, "stale: true")
	assert.Zero(t, e.srv.Hits())

	_, _, err = e.run(t, "sync")
	require.NoError(t, err)

	out, _, err = e.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "installed: abc123")
	assert.Contains(t, out, "stale: false")
}

func TestRunLs(t *testing.T) {
	t.Parallel()
	e := newEnv(t, sampleArchive(t))

	_, _, err := e.run(t, "ls")
	require.Error(t, err, "ls must not fetch")

	_, _, err = e.run(t, "sync")
	require.NoError(t, err)

	out, _, err := e.run(t, "ls")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/libcore/lib.rs", "src/test/ui/ok.rs"}, strings.Fields(out))

	out, _, err = e.run(t, "ls", "--match", "src/test/**")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/test/ui/ok.rs"}, strings.Fields(out))

	out, _, err = e.run(t, "ls", "--excluded")
	require.NoError(t, err)
	assert.Contains(t, out, "src/test/parse-fail/bad.rs\tinvalid-syntax")
	assert.Contains(t, out, "src/test/ui/diag.rs\texpected-failure")
	assert.Contains(t, out, "src/test/ui/obsolete-in-place/bad.rs\tknown-exception")
	assert.NotContains(t, out, "README.md")
}

func TestRunCheck(t *testing.T) {
	t.Parallel()
	e := newEnv(t, sampleArchive(t))

	out, stderr, err := e.run(t, "check")
	require.NoError(t, err, stderr)
	assert.Contains(t, out, "revision: abc123")
	assert.Contains(t, out, "parsed: 2")
	assert.Contains(t, out, "failures[0]")
	assert.Contains(t, out, "  invalid-syntax,1")
}

func TestRunCheckYAML(t *testing.T) {
	t.Parallel()
	e := newEnv(t, sampleArchive(t))

	out, stderr, err := e.run(t, "check", "--format", "yaml", "--jobs", "1")
	require.NoError(t, err, stderr)

	var report model.Report
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.Equal(t, testRevision, report.Revision)
	assert.Equal(t, 2, report.Parsed)
	assert.Empty(t, report.Failures)
	assert.Contains(t, report.Excluded, model.Exclusion{Rule: "expected-failure", Count: 1})
	assert.Contains(t, report.Excluded, model.Exclusion{Rule: "known-exception", Count: 1})
}

func TestRunCheckReportsSyntaxErrors(t *testing.T) {
	t.Parallel()
	e := newEnv(t, sampleArchive(t,
		archivetest.File("rust-abc123/src/test/ui/new-syntax.rs", "fn main() {}\nfn broken( {\n"),
	))

	out, _, err := e.run(t, "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 files failed to parse")
	assert.Contains(t, out, "failures[1]{path,line,column,kind}:")
	assert.Contains(t, out, "src/test/ui/new-syntax.rs")
}

func TestRunCheckOffline(t *testing.T) {
	t.Parallel()
	e := newEnv(t, sampleArchive(t))

	_, _, err := e.run(t, "check", "--offline")
	require.Error(t, err)
	assert.Zero(t, e.srv.Hits())

	_, _, err = e.run(t, "sync")
	require.NoError(t, err)

	out, _, err := e.run(t, "check", "--offline", "--match", "src/libcore/**")
	require.NoError(t, err)
	assert.Contains(t, out, "parsed: 1")
	assert.Equal(t, 1, e.srv.Hits())
}

func TestRunCheckBadFormat(t *testing.T) {
	t.Parallel()
	e := newEnv(t, sampleArchive(t))

	_, _, err := e.run(t, "check", "--format", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
	assert.Zero(t, e.srv.Hits())
}
