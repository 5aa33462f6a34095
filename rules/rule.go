// Package rules implements the pluggable rule engine (Component F): the
// Rule contract, the Registry that applies tier/enable/disable/severity
// configuration and runs every enabled rule in deterministic order, and the
// representative catalog of quality and security rules.
package rules

import (
	"kaizen/dataflow"
	"kaizen/diagnostic"
	"kaizen/parser"
	"kaizen/semantic"
)

// Category is the broad grouping a rule belongs to.
type Category int

const (
	Quality Category = iota
	Security
)

func (c Category) String() string {
	if c == Security {
		return "security"
	}
	return "quality"
}

// Tier is the minimum subscription tier required to run a rule.
type Tier int

const (
	Free Tier = iota
	Pro
	Enterprise
)

// Metadata describes one rule for discovery, docs, and configuration.
type Metadata struct {
	ID              string
	Name            string
	Description     string
	Category        Category
	DefaultSeverity diagnostic.Severity
	MinTier         Tier
	DocsURL         string
	Examples        string
}

// Context bundles everything a rule's Check may consult. Semantic and
// Taint are populated lazily by the facade (Component H); a rule that
// doesn't declare a need for them may still find them nil if no other rule
// in the run required them first — rules that use them must handle nil
// defensively or request them via NeedsSemantic/NeedsTaint.
type Context struct {
	File     *parser.ParsedFile
	Semantic *semantic.Model
	Taint    []dataflow.TaintFinding
}

// Rule is one pluggable check.
type Rule interface {
	Metadata() Metadata
	Check(ctx *Context) []diagnostic.Diagnostic
}

// SemanticRule is implemented by rules that need the semantic model, so the
// facade can build it lazily only when at least one enabled rule needs it.
type SemanticRule interface {
	NeedsSemantic() bool
}

// TaintRule is implemented by rules that need taint findings, so the
// facade can build the DFG/taint analysis lazily only when needed.
type TaintRule interface {
	NeedsTaint() bool
}
