// Package model defines the data produced by a corpus check.
package model

// SyntaxError locates the first problem tree-sitter found in a file.
// Line and Column are 1-based.
type SyntaxError struct {
	Line   int    `yaml:"line"`
	Column int    `yaml:"column"`
	Kind   string `yaml:"kind"`
}

// Failure is an admitted corpus file that did not parse cleanly.
type Failure struct {
	Path        string `yaml:"path"`
	SyntaxError `yaml:",inline"`
}

// Exclusion counts files removed from the run by one filter rule.
type Exclusion struct {
	Rule  string `yaml:"rule"`
	Count int    `yaml:"count"`
}

// Report summarizes one check of the corpus.
type Report struct {
	Revision string      `yaml:"revision"`
	Root     string      `yaml:"root"`
	Parsed   int         `yaml:"parsed"`
	Excluded []Exclusion `yaml:"excluded"`
	Failures []Failure   `yaml:"failures"`
}

// OK reports whether every admitted file parsed.
func (r *Report) OK() bool {
	return len(r.Failures) == 0
}
