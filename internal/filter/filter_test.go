package filter

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestClassify(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "src/test/ui/fails.rs", "fn main() { let }")
	writeFile(t, root, "src/test/ui/fails.stderr", "error: expected pattern")
	writeFile(t, root, "src/test/ui/passes.rs", "fn main() {}")
	writeFile(t, root, "src/test/ui/passes.run.stderr", "not the same stem")
	writeFile(t, root, "src/test/run-pass/other.rs", "fn main() {}")
	writeFile(t, root, "src/test/run-pass/other.stderr", "outside ui, ignored")

	tests := []struct {
		name string
		path string
		want Rule
	}{
		{"plain source file", "foo/bar.rs", RuleNone},
		{"wrong extension", "foo/bar.txt", RuleNotSource},
		{"no extension", "foo/Makefile", RuleNotSource},
		{"stderr file itself", "src/test/ui/fails.stderr", RuleNotSource},
		{"parse-fail", "src/test/parse-fail/bad.rs", RuleInvalidSyntax},
		{"parse-fail wrong extension", "src/test/parse-fail/bad.txt", RuleNotSource},
		{"compile-fail", "src/test/compile-fail/nested/deep.rs", RuleInvalidSyntax},
		{"rustfix", "src/test/rustfix/fixme.rs", RuleInvalidSyntax},
		{"parse-fail lookalike", "src/test/parse-failures/ok.rs", RuleNone},
		{"ui with stderr sibling", "src/test/ui/fails.rs", RuleExpectedFailure},
		{"ui without sibling", "src/test/ui/passes.rs", RuleNone},
		{"ui missing file no sibling", "src/test/ui/ghost.rs", RuleNone},
		{"stderr sibling outside ui", "src/test/run-pass/other.rs", RuleNone},
		{"known exception", "src/test/ui/obsolete-in-place/bad.rs", RuleKnownException},
		{"known auxiliary", "src/test/ui/macros/auxiliary/macro-comma-support.rs", RuleKnownException},
		{"directory", "src/test/ui", RuleNone},
		{"invalid syntax directory", "src/test/ui/../parse-fail", RuleNone},
	}

	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "test", "parse-fail"), 0o755))
	f := New(root)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := f.Classify(filepath.FromSlash(tt.path))
			assert.Equal(t, tt.want, got, "Classify(%q) = %s", tt.path, got)
			assert.Equal(t, tt.want == RuleNone, f.Include(filepath.FromSlash(tt.path)))
		})
	}
}

func TestIncludeAbsolutePath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "src/test/ui/fails.rs", "")
	writeFile(t, root, "src/test/ui/fails.stderr", "")
	f := New(root)

	assert.False(t, f.Include(filepath.Join(root, "src", "test", "ui", "fails.rs")))
	assert.False(t, f.Include(filepath.Join(root, "src", "test", "parse-fail", "x.rs")))
	assert.True(t, f.Include(filepath.Join(root, "src", "lib.rs")))
}

func TestKnownExceptionsWinOverStructuralPass(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for path := range knownExceptions {
		writeFile(t, root, path, "fn main() {}")
	}
	f := New(root)

	for path := range knownExceptions {
		assert.False(t, f.Include(filepath.FromSlash(path)), path)
	}
}

func TestKnownExceptionsAreSourceFiles(t *testing.T) {
	t.Parallel()

	for path := range knownExceptions {
		assert.Equal(t, ".rs", filepath.Ext(path), path)
		assert.NotContains(t, path, `\`, path)
	}
}

func TestIncludeEntryMatchesWalk(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "src/test/ui/a.rs", "")
	writeFile(t, root, "src/test/ui/a.stderr", "")
	writeFile(t, root, "src/test/ui/b.rs", "")
	writeFile(t, root, "src/test/parse-fail/c.rs", "")
	writeFile(t, root, "README.md", "")
	f := New(root)

	var included []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		if !f.IncludeEntry(rel, d) {
			return nil
		}
		assert.True(t, f.Include(rel), rel)
		if !d.IsDir() {
			included = append(included, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/test/ui/b.rs"}, included)
}

func TestRuleString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "included", RuleNone.String())
	assert.Equal(t, "expected-failure", RuleExpectedFailure.String())
	assert.Equal(t, "unknown", Rule(99).String())
}
