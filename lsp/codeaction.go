package lsp

import "kaizen/diagnostic"

// toolSource is the `source` field LSP clients show next to a diagnostic or
// code action, identifying which tool produced it.
const toolSource = "kaizen"

// Position is a 0-based LSP (line, character) pair, the wire form
// diagnostic.Location converts to for every editor-facing message.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a 0-based LSP [start, end) span.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// ToPosition converts a 1-based core Location into a 0-based LSP Position.
func ToPosition(loc diagnostic.Location) Position {
	return Position{Line: loc.Line - 1, Character: loc.Column - 1}
}

// ToRange converts a 1-based (start, end) core span into a 0-based LSP Range.
func ToRange(start, end diagnostic.Location) Range {
	return Range{Start: ToPosition(start), End: ToPosition(end)}
}

// TextEdit is a single editor-applicable text replacement.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// DiagnosticRef mirrors the subset of a core Diagnostic a code action links
// back to, per §4.I: rule id in `code`, tool name in `source`.
type DiagnosticRef struct {
	Range    Range  `json:"range"`
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Source   string `json:"source"`
	Message  string `json:"message"`
}

// CodeAction is one Quick-Fix the client can apply, mapped from a cached
// Fix attached to a Diagnostic.
type CodeAction struct {
	Title       string            `json:"title"`
	Kind        string            `json:"kind"`
	Diagnostics []DiagnosticRef   `json:"diagnostics"`
	Edit        map[string][]TextEdit `json:"edit"` // keyed by document URI
	IsPreferred bool              `json:"isPreferred"`
}

// QuickFixKind is the LSP CodeActionKind this service advertises.
const QuickFixKind = "quickfix"

// CodeActions builds the Quick-Fix actions for a (uri, requestedRange)
// request: every cached diagnostic whose span overlaps requestedRange
// contributes one action per Fix it carries, in Fix order, with
// IsPreferred true only for each diagnostic's first Fix.
func CodeActions(uri string, diags []diagnostic.Diagnostic, requestedRange Range) []CodeAction {
	var actions []CodeAction
	for _, d := range diags {
		if !overlaps(ToRange(d.Start, d.End), requestedRange) {
			continue
		}
		ref := DiagnosticRef{
			Range:    ToRange(d.Start, d.End),
			Severity: d.Severity.String(),
			Code:     d.RuleID,
			Source:   toolSource,
			Message:  d.Message,
		}
		for i, fix := range d.Fixes {
			actions = append(actions, CodeAction{
				Title:       fix.Title,
				Kind:        QuickFixKind,
				Diagnostics: []DiagnosticRef{ref},
				Edit:        map[string][]TextEdit{uri: {toTextEdit(fix)}},
				IsPreferred: i == 0,
			})
		}
	}
	return actions
}

func toTextEdit(fix diagnostic.Fix) TextEdit {
	text := fix.NewText
	if fix.Kind == diagnostic.InsertBefore {
		text = fix.Text
	}
	return TextEdit{Range: ToRange(fix.Start, fix.End), NewText: text}
}

// overlaps reports whether two line/character ranges intersect, treating a
// range as the closed interval [Start.Line, End.Line] over lines (columns
// aren't consulted — §4.I's overlap test is line-range based).
func overlaps(a, b Range) bool {
	return a.Start.Line <= b.End.Line && b.Start.Line <= a.End.Line
}
