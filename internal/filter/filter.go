// Package filter decides which corpus files are fed to the parser.
//
// The policy is a denylist: every Rust source file is admitted unless it sits
// in a directory of deliberately invalid code, is a UI test that expects a
// compiler diagnostic, or is listed in knownExceptions. New upstream files
// are therefore exercised until they are shown not to parse.
package filter

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/rustcorpus/internal/lang"
)

// Rule names the reason a path was excluded.
type Rule int

const (
	// RuleNone means the path is included.
	RuleNone Rule = iota
	// RuleNotSource means the path is not a Rust source file.
	RuleNotSource
	// RuleInvalidSyntax means the path is a parse-fail, compile-fail or rustfix fixture.
	RuleInvalidSyntax
	// RuleExpectedFailure means the path is a UI test with a .stderr expectation.
	RuleExpectedFailure
	// RuleKnownException means the path is listed in knownExceptions.
	RuleKnownException
)

var ruleNames = map[Rule]string{
	RuleNone:            "included",
	RuleNotSource:       "not-source",
	RuleInvalidSyntax:   "invalid-syntax",
	RuleExpectedFailure: "expected-failure",
	RuleKnownException:  "known-exception",
}

func (r Rule) String() string {
	if s, ok := ruleNames[r]; ok {
		return s
	}
	return "unknown"
}

// diagnosticExt marks a UI test whose compilation is expected to emit errors.
const diagnosticExt = ".stderr"

var (
	invalidSyntaxDirs = ignore.CompileIgnoreLines(
		"/src/test/parse-fail/",
		"/src/test/compile-fail/",
		"/src/test/rustfix/",
	)
	uiTestDirs = ignore.CompileIgnoreLines(
		"/src/test/ui/",
	)
)

// Filter classifies paths relative to a corpus root.
type Filter struct {
	root string
}

// New returns a Filter for the corpus extracted at root.
func New(root string) *Filter {
	return &Filter{root: root}
}

// Include reports whether path takes part in the test run. Directories are
// always included so a walk keeps descending. path is relative to the
// corpus root; an absolute path under the root is accepted too.
func (f *Filter) Include(path string) bool {
	return f.Classify(path) == RuleNone
}

// Classify returns the first rule that excludes path, or RuleNone.
func (f *Filter) Classify(path string) Rule {
	rel := f.relative(path)
	full := filepath.Join(f.root, rel)
	if info, err := os.Stat(full); err == nil && info.IsDir() {
		return RuleNone
	}
	return f.classifyFile(rel)
}

// IncludeEntry is Include for a directory walk, using d instead of a stat.
func (f *Filter) IncludeEntry(rel string, d fs.DirEntry) bool {
	return f.ClassifyEntry(rel, d) == RuleNone
}

// ClassifyEntry is Classify for a directory walk.
func (f *Filter) ClassifyEntry(rel string, d fs.DirEntry) Rule {
	if d.IsDir() {
		return RuleNone
	}
	return f.classifyFile(f.relative(rel))
}

func (f *Filter) classifyFile(rel string) Rule {
	ext := filepath.Ext(rel)
	if lang.ForExtension(ext) != lang.Rust {
		return RuleNotSource
	}

	slashed := filepath.ToSlash(rel)

	if invalidSyntaxDirs.MatchesPath(slashed) {
		return RuleInvalidSyntax
	}

	if uiTestDirs.MatchesPath(slashed) {
		sibling := filepath.Join(f.root, strings.TrimSuffix(rel, ext)+diagnosticExt)
		if exists(sibling) {
			return RuleExpectedFailure
		}
	}

	if _, ok := knownExceptions[slashed]; ok {
		return RuleKnownException
	}

	return RuleNone
}

func (f *Filter) relative(path string) string {
	if filepath.IsAbs(path) && f.root != "" {
		if root, err := filepath.Abs(f.root); err == nil {
			if rel, err := filepath.Rel(root, path); err == nil && filepath.IsLocal(rel) {
				return rel
			}
		}
	}
	return filepath.Clean(path)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
