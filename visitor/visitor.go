// Package visitor provides a typed AST-walk abstraction over tree-sitter
// JS/TS trees: a polymorphic hook interface with early-stop, driven by a
// single depth-first walk in source order. Component B.
package visitor

import (
	sitter "github.com/smacker/go-tree-sitter"

	"kaizen/parser"
)

// ControlFlow is returned by every hook: Continue lets the walk descend into
// and past this node as usual; Break stops the entire walk immediately.
type ControlFlow int

const (
	Continue ControlFlow = iota
	Break
)

// VisitorContext carries the ParsedFile reference used for span mapping and
// source-slice lookups while walking.
type VisitorContext struct {
	File *parser.ParsedFile
}

// Text returns the source slice covered by a node.
func (c *VisitorContext) Text(n *sitter.Node) string {
	return c.File.SourceText(parser.NodeSpan(n))
}

// Location returns the 1-based (line, column) a node starts at.
func (c *VisitorContext) Location(n *sitter.Node) parser.Location {
	return c.File.SpanToLocation(parser.NodeSpan(n))
}

// EndLocation returns the 1-based (line, column) a node ends at.
func (c *VisitorContext) EndLocation(n *sitter.Node) parser.Location {
	return c.File.SpanToLocation(parser.Span{Lo: n.EndByte(), Hi: n.EndByte()})
}

// AstVisitor offers per-node-kind hooks. Embedding Base makes every hook
// default to Continue, so concrete visitors override only what they need.
type AstVisitor interface {
	VisitFunction(n *sitter.Node, ctx *VisitorContext) ControlFlow
	VisitArrowFunction(n *sitter.Node, ctx *VisitorContext) ControlFlow
	VisitVariableDeclaration(n *sitter.Node, ctx *VisitorContext) ControlFlow
	VisitCallExpression(n *sitter.Node, ctx *VisitorContext) ControlFlow
	VisitMemberExpression(n *sitter.Node, ctx *VisitorContext) ControlFlow
	VisitBinaryExpression(n *sitter.Node, ctx *VisitorContext) ControlFlow
	VisitIdentifier(n *sitter.Node, ctx *VisitorContext) ControlFlow
	VisitNewExpression(n *sitter.Node, ctx *VisitorContext) ControlFlow
	VisitAssignmentExpression(n *sitter.Node, ctx *VisitorContext) ControlFlow
	VisitUpdateExpression(n *sitter.Node, ctx *VisitorContext) ControlFlow
	VisitRegex(n *sitter.Node, ctx *VisitorContext) ControlFlow
	VisitJSXElement(n *sitter.Node, ctx *VisitorContext) ControlFlow
	VisitClassDeclaration(n *sitter.Node, ctx *VisitorContext) ControlFlow
}

// Base implements AstVisitor with every hook returning Continue. Embed it in
// concrete visitors and override only the hooks you need.
type Base struct{}

func (Base) VisitFunction(*sitter.Node, *VisitorContext) ControlFlow             { return Continue }
func (Base) VisitArrowFunction(*sitter.Node, *VisitorContext) ControlFlow        { return Continue }
func (Base) VisitVariableDeclaration(*sitter.Node, *VisitorContext) ControlFlow  { return Continue }
func (Base) VisitCallExpression(*sitter.Node, *VisitorContext) ControlFlow       { return Continue }
func (Base) VisitMemberExpression(*sitter.Node, *VisitorContext) ControlFlow     { return Continue }
func (Base) VisitBinaryExpression(*sitter.Node, *VisitorContext) ControlFlow     { return Continue }
func (Base) VisitIdentifier(*sitter.Node, *VisitorContext) ControlFlow           { return Continue }
func (Base) VisitNewExpression(*sitter.Node, *VisitorContext) ControlFlow        { return Continue }
func (Base) VisitAssignmentExpression(*sitter.Node, *VisitorContext) ControlFlow { return Continue }
func (Base) VisitUpdateExpression(*sitter.Node, *VisitorContext) ControlFlow     { return Continue }
func (Base) VisitRegex(*sitter.Node, *VisitorContext) ControlFlow                { return Continue }
func (Base) VisitJSXElement(*sitter.Node, *VisitorContext) ControlFlow           { return Continue }
func (Base) VisitClassDeclaration(*sitter.Node, *VisitorContext) ControlFlow     { return Continue }

// dispatch maps a tree-sitter node kind to the matching hook, or returns
// Continue when no hook covers this kind.
func dispatch(n *sitter.Node, v AstVisitor, ctx *VisitorContext) ControlFlow {
	switch n.Type() {
	case "function_declaration", "function_expression", "method_definition", "generator_function_declaration":
		return v.VisitFunction(n, ctx)
	case "arrow_function":
		return v.VisitArrowFunction(n, ctx)
	case "variable_declaration", "lexical_declaration":
		return v.VisitVariableDeclaration(n, ctx)
	case "call_expression":
		return v.VisitCallExpression(n, ctx)
	case "member_expression", "subscript_expression":
		return v.VisitMemberExpression(n, ctx)
	case "binary_expression":
		return v.VisitBinaryExpression(n, ctx)
	case "identifier", "property_identifier", "shorthand_property_identifier":
		return v.VisitIdentifier(n, ctx)
	case "new_expression":
		return v.VisitNewExpression(n, ctx)
	case "assignment_expression", "augmented_assignment_expression":
		return v.VisitAssignmentExpression(n, ctx)
	case "update_expression":
		return v.VisitUpdateExpression(n, ctx)
	case "regex":
		return v.VisitRegex(n, ctx)
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return v.VisitJSXElement(n, ctx)
	case "class_declaration", "class":
		return v.VisitClassDeclaration(n, ctx)
	default:
		return Continue
	}
}

// Walk performs a depth-first traversal of root in source order, calling the
// matching hook for each node kind. Once any hook returns Break the walk
// stops visiting further nodes and Walk itself returns Break.
func Walk(root *sitter.Node, v AstVisitor, ctx *VisitorContext) ControlFlow {
	if root == nil {
		return Continue
	}
	if dispatch(root, v, ctx) == Break {
		return Break
	}
	count := int(root.ChildCount())
	for i := 0; i < count; i++ {
		if Walk(root.Child(i), v, ctx) == Break {
			return Break
		}
	}
	return Continue
}
