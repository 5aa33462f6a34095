package visitor

import (
	sitter "github.com/smacker/go-tree-sitter"

	"kaizen/parser"
)

type jsxDetector struct {
	Base
	found bool
}

func (d *jsxDetector) VisitJSXElement(n *sitter.Node, ctx *VisitorContext) ControlFlow {
	d.found = true
	return Break
}

// FileContainsJSX reports whether pf's AST contains any JSX element,
// stopping the walk at the first one found.
func FileContainsJSX(pf *parser.ParsedFile) bool {
	d := &jsxDetector{}
	Walk(pf.Root, d, &VisitorContext{File: pf})
	return d.found
}
