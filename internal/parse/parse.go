// Package parse runs tree-sitter over corpus files and reports syntax errors.
package parse

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/rustcorpus/internal/model"
)

// Check parses source and returns the first syntax error in document order,
// or nil if the tree is clean. The parser must be created for the correct
// language and must not be shared between goroutines.
func Check(ctx context.Context, parser *sitter.Parser, source []byte) (*model.SyntaxError, error) {
	if len(source) == 0 {
		return nil, nil
	}

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil, nil
	}

	bad := firstError(root)
	if bad == nil {
		bad = root
	}
	return describe(bad), nil
}

// firstError descends only into subtrees that report errors.
func firstError(node *sitter.Node) *sitter.Node {
	if node.IsMissing() || node.Type() == "ERROR" {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := firstError(child); found != nil {
			return found
		}
	}
	return nil
}

func describe(node *sitter.Node) *model.SyntaxError {
	kind := "syntax error"
	if node.IsMissing() {
		kind = "missing " + node.Type()
	}
	start := node.StartPoint()
	return &model.SyntaxError{
		Line:   int(start.Row) + 1,
		Column: int(start.Column) + 1,
		Kind:   kind,
	}
}
