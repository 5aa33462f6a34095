package rules

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"kaizen/diagnostic"
	"kaizen/parser"
	"kaizen/registry"
	"kaizen/visitor"
)

// taintRule reports one Diagnostic per TaintFinding whose sink category
// matches its own, citing the source line in the message. Shared by S001,
// S002, S003, S005, and S020 — the taint-backed security rules differ only
// in id, name, and which sink category they filter for.
type taintRule struct {
	id          string
	name        string
	description string
	category    registry.SinkCategory
	message     string
}

func (r taintRule) Metadata() Metadata {
	return Metadata{
		ID:              r.id,
		Name:            r.name,
		Description:     r.description,
		Category:        Security,
		DefaultSeverity: diagnostic.Error,
		MinTier:         Free,
	}
}

func (r taintRule) NeedsTaint() bool { return true }

func (r taintRule) Check(ctx *Context) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	for _, f := range ctx.Taint {
		if f.SinkCategory != r.category {
			continue
		}
		srcLoc := ctx.File.SpanToLocation(f.SourceSpan)
		sinkStart := ctx.File.SpanToLocation(f.SinkSpan)
		sinkEnd := ctx.File.SpanToLocation(parser.Span{Lo: f.SinkSpan.Hi, Hi: f.SinkSpan.Hi})
		out = append(out, diagnostic.Diagnostic{
			RuleID:     r.id,
			RuleName:   r.name,
			Category:   "security",
			Severity:   diagnostic.Error,
			Confidence: diagnostic.Medium,
			Message:    fmt.Sprintf(r.message, f.SinkDescription, srcLoc.Line),
			File:       ctx.File.Filename,
			Start:      diagnostic.Location{Line: sinkStart.Line, Column: sinkStart.Column},
			End:        diagnostic.Location{Line: sinkEnd.Line, Column: sinkEnd.Column},
		})
	}
	return out
}

// NoSQLInjection is S001.
var NoSQLInjection Rule = taintRule{
	id:          "S001",
	name:        "no-sql-injection",
	description: "Disallow building SQL queries from tainted input",
	category:    registry.SqlInjection,
	message:     "Tainted value flows into %s (source at line %d), risking SQL injection",
}

// NoXSS is S002.
var NoXSS Rule = taintRule{
	id:          "S002",
	name:        "no-xss",
	description: "Disallow writing tainted input into the DOM unescaped",
	category:    registry.XssSink,
	message:     "Tainted value flows into %s (source at line %d), risking cross-site scripting",
}

// NoCommandInjection is S003.
var NoCommandInjection Rule = taintRule{
	id:          "S003",
	name:        "no-command-injection",
	description: "Disallow building shell commands from tainted input",
	category:    registry.CommandInjection,
	message:     "Tainted value flows into %s (source at line %d), risking command injection",
}

// NoEvalInjection is S005.
var NoEvalInjection Rule = taintRule{
	id:          "S005",
	name:        "no-eval-injection",
	description: "Disallow evaluating tainted input as code",
	category:    registry.CodeExecution,
	message:     "Tainted value flows into %s (source at line %d), risking arbitrary code execution",
}

// NoPrototypePollution is S020.
var NoPrototypePollution Rule = taintRule{
	id:          "S020",
	name:        "no-prototype-pollution",
	description: "Disallow assigning tainted input to object prototypes",
	category:    registry.PrototypePollution,
	message:     "Tainted value flows into %s (source at line %d), risking prototype pollution",
}

// NoWeakHashing is S011: flags crypto.createHash("md5"|"sha1") and
// require("md5"|"sha1"), case-insensitive.
type NoWeakHashing struct{}

func (NoWeakHashing) Metadata() Metadata {
	return Metadata{
		ID:              "S011",
		Name:            "no-weak-hashing",
		Description:     "Disallow MD5 and SHA-1 for cryptographic hashing",
		Category:        Security,
		DefaultSeverity: diagnostic.Warning,
		MinTier:         Free,
		Examples:        "// Bad\ncrypto.createHash('md5');\n\n// Good\ncrypto.createHash('sha256');",
	}
}

var weakHashAlgorithms = map[string]bool{"md5": true, "sha1": true}

type noWeakHashingVisitor struct {
	visitor.Base
	diagnostics []diagnostic.Diagnostic
	file        string
}

func (v *noWeakHashingVisitor) report(ctx *visitor.VisitorContext, n *sitter.Node, algo string) {
	start := ctx.Location(n)
	end := ctx.EndLocation(n)
	v.diagnostics = append(v.diagnostics, diagnostic.Diagnostic{
		RuleID:     "S011",
		RuleName:   "no-weak-hashing",
		Category:   "security",
		Severity:   diagnostic.Warning,
		Confidence: diagnostic.High,
		Message:    fmt.Sprintf("%s is a weak hash algorithm for security-sensitive use", strings.ToUpper(algo)),
		File:       v.file,
		Start:      diagnostic.Location{Line: start.Line, Column: start.Column},
		End:        diagnostic.Location{Line: end.Line, Column: end.Column},
	})
}

func stringArg(args *sitter.Node, idx int, source []byte) (string, bool) {
	if args == nil || args.NamedChildCount() <= uint32(idx) {
		return "", false
	}
	n := args.NamedChild(idx)
	if n.Type() != "string" {
		return "", false
	}
	text := n.Content(source)
	return strings.Trim(text, `"'`+"`"), true
}

func (v *noWeakHashingVisitor) VisitCallExpression(n *sitter.Node, ctx *visitor.VisitorContext) visitor.ControlFlow {
	callee := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")
	if callee == nil {
		return visitor.Continue
	}
	switch callee.Type() {
	case "member_expression":
		obj := callee.ChildByFieldName("object")
		prop := callee.ChildByFieldName("property")
		if obj == nil || prop == nil || ctx.Text(obj) != "crypto" || ctx.Text(prop) != "createHash" {
			return visitor.Continue
		}
		if algo, ok := stringArg(args, 0, ctx.File.Source); ok && weakHashAlgorithms[strings.ToLower(algo)] {
			v.report(ctx, n, algo)
		}
	case "identifier":
		if ctx.Text(callee) != "require" {
			return visitor.Continue
		}
		if mod, ok := stringArg(args, 0, ctx.File.Source); ok && weakHashAlgorithms[strings.ToLower(mod)] {
			v.report(ctx, n, mod)
		}
	}
	return visitor.Continue
}

func (NoWeakHashing) Check(ctx *Context) []diagnostic.Diagnostic {
	v := &noWeakHashingVisitor{file: ctx.File.Filename}
	visitor.Walk(ctx.File.Root, v, &visitor.VisitorContext{File: ctx.File})
	return v.diagnostics
}

// NoInsecureRandom is S012: flags Math.random(), skipped in recognized test
// files.
type NoInsecureRandom struct{}

func (NoInsecureRandom) Metadata() Metadata {
	return Metadata{
		ID:              "S012",
		Name:            "no-insecure-random",
		Description:     "Disallow Math.random() for security-sensitive randomness",
		Category:        Security,
		DefaultSeverity: diagnostic.Warning,
		MinTier:         Free,
		Examples:        "// Bad\nconst token = Math.random();\n\n// Good\nconst token = crypto.randomBytes(16);",
	}
}

type noInsecureRandomVisitor struct {
	visitor.Base
	diagnostics []diagnostic.Diagnostic
	file        string
}

func (v *noInsecureRandomVisitor) VisitCallExpression(n *sitter.Node, ctx *visitor.VisitorContext) visitor.ControlFlow {
	callee := n.ChildByFieldName("function")
	if callee == nil || callee.Type() != "member_expression" {
		return visitor.Continue
	}
	obj := callee.ChildByFieldName("object")
	prop := callee.ChildByFieldName("property")
	if obj == nil || prop == nil || ctx.Text(obj) != "Math" || ctx.Text(prop) != "random" {
		return visitor.Continue
	}
	start := ctx.Location(n)
	end := ctx.EndLocation(n)
	v.diagnostics = append(v.diagnostics, diagnostic.Diagnostic{
		RuleID:     "S012",
		RuleName:   "no-insecure-random",
		Category:   "security",
		Severity:   diagnostic.Warning,
		Confidence: diagnostic.Medium,
		Message:    "Math.random() is not cryptographically secure",
		File:       v.file,
		Start:      diagnostic.Location{Line: start.Line, Column: start.Column},
		End:        diagnostic.Location{Line: end.Line, Column: end.Column},
	})
	return visitor.Continue
}

func (NoInsecureRandom) Check(ctx *Context) []diagnostic.Diagnostic {
	if isTestFile(ctx.File.Filename) {
		return nil
	}
	v := &noInsecureRandomVisitor{file: ctx.File.Filename}
	visitor.Walk(ctx.File.Root, v, &visitor.VisitorContext{File: ctx.File})
	return v.diagnostics
}

// NoRedos is S021: flags regex literals and new RegExp(...) string
// arguments matching known catastrophic-backtracking shapes.
type NoRedos struct{}

func (NoRedos) Metadata() Metadata {
	return Metadata{
		ID:              "S021",
		Name:            "no-redos",
		Description:     "Disallow regular expressions vulnerable to catastrophic backtracking",
		Category:        Security,
		DefaultSeverity: diagnostic.Warning,
		MinTier:         Free,
		Examples:        "// Bad\n/(a+)+b/\n\n// Good\n/a+b/",
	}
}

type noRedosVisitor struct {
	visitor.Base
	diagnostics []diagnostic.Diagnostic
	file        string
}

func (v *noRedosVisitor) report(ctx *visitor.VisitorContext, n *sitter.Node, pattern string) {
	start := ctx.Location(n)
	end := ctx.EndLocation(n)
	v.diagnostics = append(v.diagnostics, diagnostic.Diagnostic{
		RuleID:     "S021",
		RuleName:   "no-redos",
		Category:   "security",
		Severity:   diagnostic.Warning,
		Confidence: diagnostic.Medium,
		Message:    fmt.Sprintf("Regular expression %q is vulnerable to catastrophic backtracking", pattern),
		File:       v.file,
		Start:      diagnostic.Location{Line: start.Line, Column: start.Column},
		End:        diagnostic.Location{Line: end.Line, Column: end.Column},
	})
}

func (v *noRedosVisitor) VisitRegex(n *sitter.Node, ctx *visitor.VisitorContext) visitor.ControlFlow {
	pattern := ctx.Text(n)
	if isCatastrophicRegex(pattern) {
		v.report(ctx, n, pattern)
	}
	return visitor.Continue
}

func (v *noRedosVisitor) VisitNewExpression(n *sitter.Node, ctx *visitor.VisitorContext) visitor.ControlFlow {
	callee := n.ChildByFieldName("constructor")
	if callee == nil || callee.Type() != "identifier" || ctx.Text(callee) != "RegExp" {
		return visitor.Continue
	}
	args := n.ChildByFieldName("arguments")
	if pattern, ok := stringArg(args, 0, ctx.File.Source); ok && isCatastrophicRegex(pattern) {
		v.report(ctx, n, pattern)
	}
	return visitor.Continue
}

// isCatastrophicRegex recognizes shapes known to cause catastrophic
// backtracking: nested quantifiers `(x+)+`/`(x*)*`, alternation under a
// quantifier `(a|a)+`/`(a|ab)+`, quantified wildcard groups `(.*)+`, and
// deeply nested quantified groups `((x+)+)+`. The alternatives of a group
// are not compared with each other, so any quantified group with a
// top-level `|` is flagged, `(a|b)+` included.
func isCatastrophicRegex(pattern string) bool {
	if hasNestedQuantifier(pattern) {
		return true
	}
	if hasQuantifiedWildcardGroup(pattern) {
		return true
	}
	return hasOverlappingAlternationUnderQuantifier(pattern)
}

func hasNestedQuantifier(pattern string) bool {
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '(' {
			continue
		}
		depth := 1
		j := i + 1
		innerQuant := false
		for ; j < len(pattern) && depth > 0; j++ {
			switch pattern[j] {
			case '(':
				depth++
			case ')':
				depth--
			case '+', '*':
				if depth == 1 && j > i+1 && pattern[j-1] != '(' {
					innerQuant = true
				}
			}
		}
		if depth == 0 && innerQuant && j < len(pattern) && (pattern[j] == '+' || pattern[j] == '*') {
			return true
		}
	}
	return false
}

func hasQuantifiedWildcardGroup(pattern string) bool {
	for i := 0; i+4 < len(pattern); i++ {
		if pattern[i] == '(' && pattern[i+1] == '.' && (pattern[i+2] == '*' || pattern[i+2] == '+') && pattern[i+3] == ')' {
			if pattern[i+4] == '+' || pattern[i+4] == '*' {
				return true
			}
		}
	}
	return false
}

func hasOverlappingAlternationUnderQuantifier(pattern string) bool {
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '(' {
			continue
		}
		depth := 1
		j := i + 1
		hasAlt := false
		for ; j < len(pattern) && depth > 0; j++ {
			switch pattern[j] {
			case '(':
				depth++
			case ')':
				depth--
			case '|':
				if depth == 1 {
					hasAlt = true
				}
			}
		}
		if depth == 0 && hasAlt && j < len(pattern) && (pattern[j] == '+' || pattern[j] == '*') {
			return true
		}
	}
	return false
}

func (NoRedos) Check(ctx *Context) []diagnostic.Diagnostic {
	v := &noRedosVisitor{file: ctx.File.Filename}
	visitor.Walk(ctx.File.Root, v, &visitor.VisitorContext{File: ctx.File})
	return v.diagnostics
}
