// Package discover walks an extracted corpus and collects the files the
// filter admits.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/phobologic/rustcorpus/internal/filter"
	"github.com/phobologic/rustcorpus/internal/lang"
)

// FileEntry represents an admitted corpus file.
type FileEntry struct {
	Path     string // Relative to corpus root, slash-separated
	Language string
}

// Exclusion is a file the filter rejected.
type Exclusion struct {
	Path string
	Rule filter.Rule
}

// Result is the outcome of a corpus walk.
type Result struct {
	Files    []FileEntry
	Excluded []Exclusion
}

// Counts returns how many files each rule excluded.
func (r *Result) Counts() map[filter.Rule]int {
	counts := make(map[filter.Rule]int)
	for _, e := range r.Excluded {
		counts[e.Rule]++
	}
	return counts
}

// Files walks root and classifies every regular file with f. When match is
// non-empty, only files whose slash-separated path matches one of the
// doublestar patterns are considered at all.
func Files(root string, f *filter.Filter, match []string) (*Result, error) {
	for _, p := range match {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}

	res := &Result{}

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		// Excluded directories are still walked so every file is counted
		// against the rule that dropped it.
		if d.IsDir() {
			return nil
		}

		// Skip symlinks
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		slashed := filepath.ToSlash(rel)
		if len(match) > 0 && !matchesAny(match, slashed) {
			return nil
		}

		if rule := f.ClassifyEntry(rel, d); rule != filter.RuleNone {
			res.Excluded = append(res.Excluded, Exclusion{Path: slashed, Rule: rule})
			return nil
		}

		res.Files = append(res.Files, FileEntry{
			Path:     slashed,
			Language: lang.ForExtension(filepath.Ext(rel)),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Slice(res.Files, func(i, j int) bool {
		return res.Files[i].Path < res.Files[j].Path
	})
	sort.Slice(res.Excluded, func(i, j int) bool {
		return res.Excluded[i].Path < res.Excluded[j].Path
	})

	return res, nil
}

func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}
