package dataflow

import (
	"kaizen/parser"
	"kaizen/registry"
	"kaizen/semantic"
)

// TaintedValue is one tainted origin reaching a node: the span where the
// taint was introduced, the source category it belongs to, and the set of
// sink categories a sanitizer along the path has already neutralized it
// for.
type TaintedValue struct {
	SourceSpan   parser.Span
	Category     registry.SourceCategory
	ClearedSinks map[registry.SinkCategory]bool
}

func (v TaintedValue) clonedClearedSinks() map[registry.SinkCategory]bool {
	out := make(map[registry.SinkCategory]bool, len(v.ClearedSinks))
	for k := range v.ClearedSinks {
		out[k] = true
	}
	return out
}

// TaintFinding is one confirmed source-to-sink flow.
type TaintFinding struct {
	SourceSpan      parser.Span
	SourceCategory  registry.SourceCategory
	SinkSpan        parser.Span
	SinkCategory    registry.SinkCategory
	SinkDescription string
}

// Propagate computes, for every node in g, the set of taints reaching it
// (the union of its predecessors' taint sets, with any dominating
// sanitizer's category removed from its outgoing taint), then collects one
// TaintFinding per (tainted value, accepted category) pair arriving at each
// sink node.
//
// Because Build only ever wires a node's Inbound edges to nodes allocated
// earlier in the same walk, g is already a DAG in node-id order: a single
// forward pass (id 0..N-1) computes the fixed point in one iteration
// without revisiting any node, which is the same forward single-pass
// shape as statement-ordered intra-procedural taint tracking.
func Propagate(g *Graph) []TaintFinding {
	taints := make([]map[taintKey]TaintedValue, len(g.nodes))

	var findings []TaintFinding

	for i, n := range g.nodes {
		set := map[taintKey]TaintedValue{}
		for _, in := range n.Inbound {
			for k, v := range taints[in] {
				set[k] = v
			}
		}
		if n.IsSource {
			self := taintKey{span: n.Span, category: n.SourceCategory}
			set[self] = TaintedValue{SourceSpan: n.Span, Category: n.SourceCategory}
		}
		if n.IsSanitizer {
			for k, v := range set {
				cleared := v.clonedClearedSinks()
				cleared[n.ClearsCategory] = true
				v.ClearedSinks = cleared
				set[k] = v
			}
		}
		if n.IsSink {
			for _, v := range set {
				if !v.ClearedSinks[n.SinkCategory] {
					findings = append(findings, TaintFinding{
						SourceSpan:      v.SourceSpan,
						SourceCategory:  v.Category,
						SinkSpan:        n.Span,
						SinkCategory:    n.SinkCategory,
						SinkDescription: n.CallText,
					})
				}
			}
		}
		taints[i] = set
	}

	return findings
}

type taintKey struct {
	span     parser.Span
	category registry.SourceCategory
}

// Analyzer orchestrates DFG construction and taint propagation for a file,
// given its semantic model.
type Analyzer struct {
	Sources    *registry.SourceRegistry
	Sinks      *registry.SinkRegistry
	Sanitizers *registry.SanitizerRegistry
}

// NewAnalyzer returns an Analyzer backed by the default registries.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		Sources:    registry.NewSourceRegistry(),
		Sinks:      registry.NewSinkRegistry(),
		Sanitizers: registry.NewSanitizerRegistry(),
	}
}

// Analyze builds the DFG for pf and returns every taint finding. An
// unparseable file (nil AST root) yields zero findings rather than an
// error.
func (a *Analyzer) Analyze(pf *parser.ParsedFile, model *semantic.Model) []TaintFinding {
	if pf.Root == nil {
		return nil
	}
	g := Build(pf, model, a.Sources, a.Sinks, a.Sanitizers)
	return Propagate(g)
}
