// Package lang binds the tree-sitter Rust grammar used to check corpus files.
package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

// Rust is the language name reported for corpus source files.
const Rust = "rust"

var extensions = map[string]string{
	".rs": Rust,
}

// ForExtension returns the language name for a file extension, or "" if unsupported.
func ForExtension(ext string) string {
	return extensions[ext]
}

// NewParser creates a fresh tree-sitter parser for Rust.
// Each goroutine must use its own parser (not thread-safe).
func NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(rust.GetLanguage())
	return p
}
