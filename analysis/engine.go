// Package analysis composes Components A-G into the single entry point
// every caller (CLI and LSP) drives a file through: Engine.Analyze(file) ->
// []Diagnostic. Component H.
package analysis

import (
	"sort"

	"kaizen/dataflow"
	"kaizen/diagnostic"
	"kaizen/parser"
	"kaizen/rules"
	"kaizen/semantic"
	"kaizen/suppress"
)

// Engine composes the parser output with the rule registry. It holds no
// per-file state itself; semantic models and taint findings are built
// fresh (and lazily, only when some enabled rule needs them) for every
// call to Analyze, matching §9's "rule-level lazy shared analyses" note -
// the memoization unit is one Analyze call, not the Engine.
type Engine struct {
	Registry *rules.Registry
	Taint    *dataflow.Analyzer
}

// New returns an Engine backed by the default rule registry and the
// default taint analyzer registries.
func New() *Engine {
	return &Engine{Registry: rules.Default(), Taint: dataflow.NewAnalyzer()}
}

// Analyze runs the full pipeline on pf: materializes parse errors as PARSE
// diagnostics, lazily builds the semantic model and taint findings only if
// some enabled rule needs them, runs the registry, applies inline
// suppressions, and returns the result sorted by (file, start line, start
// column, rule id).
func (e *Engine) Analyze(pf *parser.ParsedFile) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	for _, pe := range pf.Errors {
		out = append(out, diagnostic.Diagnostic{
			RuleID:     "PARSE",
			RuleName:   "parse-error",
			Category:   "quality",
			Severity:   diagnostic.Error,
			Confidence: diagnostic.High,
			Message:    pe.Message,
			File:       pf.Filename,
			Start:      diagnostic.Location{Line: pe.Line, Column: pe.Column},
			End:        diagnostic.Location{Line: pe.Line, Column: pe.Column},
		})
	}

	ctx := &rules.Context{File: pf}
	if e.Registry.NeedsSemantic() || e.Registry.NeedsTaint() {
		ctx.Semantic = semantic.Build(pf)
	}
	if e.Registry.NeedsTaint() {
		ctx.Taint = e.Taint.Analyze(pf, ctx.Semantic)
	}

	out = append(out, e.Registry.RunAll(ctx)...)

	directives := suppress.Parse(pf.Source)
	out = suppress.Filter(out, directives)

	sort.SliceStable(out, func(i, j int) bool { return diagnostic.Less(out[i], out[j]) })
	return out
}
