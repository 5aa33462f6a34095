package rules

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"kaizen/diagnostic"
	"kaizen/parser"
	"kaizen/semantic"
	"kaizen/visitor"
)

// NoVar is Q030: flags `var` declarations, fixing them to `let`.
type NoVar struct{}

func (NoVar) Metadata() Metadata {
	return Metadata{
		ID:              "Q030",
		Name:            "no-var",
		Description:     "Require let or const instead of var",
		Category:        Quality,
		DefaultSeverity: diagnostic.Warning,
		MinTier:         Free,
		Examples:        "// Bad\nvar x = 1;\n\n// Good\nlet x = 1;",
	}
}

type noVarVisitor struct {
	visitor.Base
	ctx         *visitor.VisitorContext
	diagnostics []diagnostic.Diagnostic
	file        string
}

func (v *noVarVisitor) VisitVariableDeclaration(n *sitter.Node, ctx *visitor.VisitorContext) visitor.ControlFlow {
	if n.Type() != "variable_declaration" || n.ChildCount() == 0 || n.Child(0).Type() != "var" {
		return visitor.Continue
	}
	kw := n.Child(0)
	start := ctx.Location(kw)
	end := ctx.EndLocation(kw)
	v.diagnostics = append(v.diagnostics, diagnostic.Diagnostic{
		RuleID:     "Q030",
		RuleName:   "no-var",
		Category:   "quality",
		Severity:   diagnostic.Warning,
		Confidence: diagnostic.High,
		Message:    "Unexpected var, use let or const instead",
		File:       v.file,
		Start:      diagnostic.Location{Line: start.Line, Column: start.Column},
		End:        diagnostic.Location{Line: end.Line, Column: end.Column},
		Suggestion: "Replace 'var' with 'let'",
		Fixes: []diagnostic.Fix{{
			Title: "Replace 'var' with 'let'",
			Kind:    diagnostic.ReplaceWith,
			Start:   diagnostic.Location{Line: start.Line, Column: start.Column},
			End:     diagnostic.Location{Line: end.Line, Column: end.Column},
			NewText: "let",
		}},
	})
	return visitor.Continue
}

func (NoVar) Check(ctx *Context) []diagnostic.Diagnostic {
	v := &noVarVisitor{file: ctx.File.Filename}
	visitor.Walk(ctx.File.Root, v, &visitor.VisitorContext{File: ctx.File})
	return v.diagnostics
}

// NoConsole is Q032: flags console.<x>(...) calls outside files isTestFile
// recognizes; example, script and CLI files are still checked.
type NoConsole struct{}

func (NoConsole) Metadata() Metadata {
	return Metadata{
		ID:              "Q032",
		Name:            "no-console",
		Description:     "Disallow console statements in production code",
		Category:        Quality,
		DefaultSeverity: diagnostic.Warning,
		MinTier:         Free,
		Examples:        "// Bad\nconsole.log(x);",
	}
}

type noConsoleVisitor struct {
	visitor.Base
	diagnostics []diagnostic.Diagnostic
	file        string
}

func (v *noConsoleVisitor) VisitCallExpression(n *sitter.Node, ctx *visitor.VisitorContext) visitor.ControlFlow {
	callee := n.ChildByFieldName("function")
	if callee == nil || callee.Type() != "member_expression" {
		return visitor.Continue
	}
	obj := callee.ChildByFieldName("object")
	if obj == nil || obj.Type() != "identifier" || ctx.Text(obj) != "console" {
		return visitor.Continue
	}
	start := ctx.Location(n)
	end := ctx.EndLocation(n)
	v.diagnostics = append(v.diagnostics, diagnostic.Diagnostic{
		RuleID:     "Q032",
		RuleName:   "no-console",
		Category:   "quality",
		Severity:   diagnostic.Warning,
		Confidence: diagnostic.High,
		Message:    "Unexpected console statement",
		File:       v.file,
		Start:      diagnostic.Location{Line: start.Line, Column: start.Column},
		End:        diagnostic.Location{Line: end.Line, Column: end.Column},
	})
	return visitor.Continue
}

func (NoConsole) Check(ctx *Context) []diagnostic.Diagnostic {
	if isTestFile(ctx.File.Filename) {
		return nil
	}
	v := &noConsoleVisitor{file: ctx.File.Filename}
	visitor.Walk(ctx.File.Root, v, &visitor.VisitorContext{File: ctx.File})
	return v.diagnostics
}

// Eqeqeq is Q033: flags == and != except when comparing against a null
// literal (the null-check idiom, which also catches undefined).
type Eqeqeq struct{}

func (Eqeqeq) Metadata() Metadata {
	return Metadata{
		ID:              "Q033",
		Name:            "eqeqeq",
		Description:     "Require === and !== instead of == and !=",
		Category:        Quality,
		DefaultSeverity: diagnostic.Warning,
		MinTier:         Free,
		Examples:        "// Bad\nif (x == y) { }\n\n// Good\nif (x === y) { }",
	}
}

type eqeqeqVisitor struct {
	visitor.Base
	ctx         *visitor.VisitorContext
	diagnostics []diagnostic.Diagnostic
	file        string
	source      []byte
}

func isNullLiteral(n *sitter.Node) bool {
	return n != nil && n.Type() == "null"
}

func (v *eqeqeqVisitor) VisitBinaryExpression(n *sitter.Node, ctx *visitor.VisitorContext) visitor.ControlFlow {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if left == nil || right == nil {
		return visitor.Continue
	}
	if isNullLiteral(left) || isNullLiteral(right) {
		return visitor.Continue
	}

	sp, op, ok := parser.OperatorBetween(v.source, left, right)
	if !ok {
		return visitor.Continue
	}
	switch op {
	case "==":
		v.emit(ctx, sp, "==", "===")
	case "!=":
		v.emit(ctx, sp, "!=", "!==")
	}
	return visitor.Continue
}

func (v *eqeqeqVisitor) emit(ctx *visitor.VisitorContext, sp parser.Span, op, replacement string) {
	start := ctx.File.SpanToLocation(sp)
	end := ctx.File.SpanToLocation(parser.Span{Lo: sp.Hi, Hi: sp.Hi})
	loc := func(l parser.Location) diagnostic.Location {
		return diagnostic.Location{Line: l.Line, Column: l.Column}
	}
	v.diagnostics = append(v.diagnostics, diagnostic.Diagnostic{
		RuleID:     "Q033",
		RuleName:   "eqeqeq",
		Category:   "quality",
		Severity:   diagnostic.Warning,
		Confidence: diagnostic.High,
		Message:    fmt.Sprintf("Expected '%s' but found '%s'", replacement, op),
		File:       v.file,
		Start:      loc(start),
		End:        loc(end),
		Suggestion: fmt.Sprintf("Replace '%s' with '%s'", op, replacement),
		Fixes: []diagnostic.Fix{{
			Title: fmt.Sprintf("Replace '%s' with '%s'", op, replacement),
			Kind:    diagnostic.ReplaceWith,
			Start:   loc(start),
			End:     loc(end),
			NewText: replacement,
		}},
	})
}

func (Eqeqeq) Check(ctx *Context) []diagnostic.Diagnostic {
	v := &eqeqeqVisitor{file: ctx.File.Filename, source: ctx.File.Source}
	visitor.Walk(ctx.File.Root, v, &visitor.VisitorContext{File: ctx.File})
	return v.diagnostics
}

// NoEval is Q034: flags eval(...), new Function(...), and
// setTimeout/setInterval called with a string/template first argument.
type NoEval struct{}

func (NoEval) Metadata() Metadata {
	return Metadata{
		ID:              "Q034",
		Name:            "no-eval",
		Description:     "Disallow eval() and implicit eval via timers or the Function constructor",
		Category:        Quality,
		DefaultSeverity: diagnostic.Warning,
		MinTier:         Free,
		Examples:        "// Bad\neval(userInput);\nsetTimeout(\"doStuff()\", 100);",
	}
}

type noEvalVisitor struct {
	visitor.Base
	diagnostics []diagnostic.Diagnostic
	file        string
}

func firstArgIsStringLike(args *sitter.Node) bool {
	if args == nil || args.NamedChildCount() == 0 {
		return false
	}
	switch args.NamedChild(0).Type() {
	case "string", "template_string":
		return true
	default:
		return false
	}
}

func (v *noEvalVisitor) report(ctx *visitor.VisitorContext, n *sitter.Node, message string) {
	start := ctx.Location(n)
	end := ctx.EndLocation(n)
	v.diagnostics = append(v.diagnostics, diagnostic.Diagnostic{
		RuleID:     "Q034",
		RuleName:   "no-eval",
		Category:   "quality",
		Severity:   diagnostic.Warning,
		Confidence: diagnostic.High,
		Message:    message,
		File:       v.file,
		Start:      diagnostic.Location{Line: start.Line, Column: start.Column},
		End:        diagnostic.Location{Line: end.Line, Column: end.Column},
	})
}

func (v *noEvalVisitor) VisitCallExpression(n *sitter.Node, ctx *visitor.VisitorContext) visitor.ControlFlow {
	callee := n.ChildByFieldName("function")
	if callee == nil {
		return visitor.Continue
	}
	args := n.ChildByFieldName("arguments")
	switch callee.Type() {
	case "identifier":
		name := ctx.Text(callee)
		switch name {
		case "eval":
			v.report(ctx, n, "eval can be harmful")
		case "setTimeout", "setInterval":
			if firstArgIsStringLike(args) {
				v.report(ctx, n, fmt.Sprintf("Implied eval via %s with a string argument", name))
			}
		}
	}
	return visitor.Continue
}

func (v *noEvalVisitor) VisitNewExpression(n *sitter.Node, ctx *visitor.VisitorContext) visitor.ControlFlow {
	callee := n.ChildByFieldName("constructor")
	if callee != nil && callee.Type() == "identifier" && ctx.Text(callee) == "Function" {
		v.report(ctx, n, "The Function constructor is eval in disguise")
	}
	return visitor.Continue
}

func (NoEval) Check(ctx *Context) []diagnostic.Diagnostic {
	v := &noEvalVisitor{file: ctx.File.Filename}
	visitor.Walk(ctx.File.Root, v, &visitor.VisitorContext{File: ctx.File})
	return v.diagnostics
}

// NoUnusedVars is Q001: uses the semantic model to flag symbols that are
// not exported, whose name does not start with '_', and that are never
// read (zero references, or every reference is a write). Imports and
// parameters are never flagged. Known risk: the read/write split is
// syntactic, so a compound assignment (`x += 1`) counts as a write only, and
// each name bound by a destructuring or array pattern is judged on its own.
type NoUnusedVars struct{}

func (NoUnusedVars) Metadata() Metadata {
	return Metadata{
		ID:              "Q001",
		Name:            "no-unused-vars",
		Description:     "Disallow unused variables",
		Category:        Quality,
		DefaultSeverity: diagnostic.Warning,
		MinTier:         Free,
		Examples:        "// Bad\nfunction f() { let x = 1; }\n\n// Good\nfunction f() { let x = 1; return x; }",
	}
}

func (NoUnusedVars) NeedsSemantic() bool { return true }

func (NoUnusedVars) Check(ctx *Context) []diagnostic.Diagnostic {
	if ctx.Semantic == nil {
		return nil
	}
	var out []diagnostic.Diagnostic
	for _, sym := range ctx.Semantic.Symbols.All() {
		if sym.IsExported || strings.HasPrefix(sym.Name, "_") {
			continue
		}
		if sym.Kind == semantic.Import || sym.Kind == semantic.Parameter {
			continue
		}
		if !sym.IsEffectivelyUnused() {
			continue
		}
		start := ctx.File.SpanToLocation(sym.DeclSpan)
		end := ctx.File.SpanToLocation(parser.Span{Lo: sym.DeclSpan.Hi, Hi: sym.DeclSpan.Hi})
		message := fmt.Sprintf("'%s' is defined but never used", sym.Name)
		if len(sym.References) > 0 {
			message = fmt.Sprintf("'%s' is assigned a value but never used", sym.Name)
		}
		out = append(out, diagnostic.Diagnostic{
			RuleID:     "Q001",
			RuleName:   "no-unused-vars",
			Category:   "quality",
			Severity:   diagnostic.Warning,
			Confidence: diagnostic.Medium,
			Message:    message,
			File:       ctx.File.Filename,
			Start:      diagnostic.Location{Line: start.Line, Column: start.Column},
			End:        diagnostic.Location{Line: end.Line, Column: end.Column},
		})
	}
	return out
}
