// Package suppress implements the inline disable-comment parser (Component
// J): it extracts per-line suppression directives from source text and
// filters a diagnostic list against them. Grammar and semantics are ported
// from the reviewed original's disable_comments.rs, renamed to this tool's
// prefix.
package suppress

import (
	"strings"

	"kaizen/diagnostic"
)

const (
	nextLinePrefix = "kaizen-disable-next-line"
	linePrefix     = "kaizen-disable-line"
)

// Directive is one suppression directive: the 1-based line it applies to,
// and the set of rule ids it silences. A nil/empty RuleIDs set means "all
// rules".
type Directive struct {
	Line    int
	RuleIDs map[string]bool
}

// suppresses reports whether d silences ruleID: an empty RuleIDs set means
// unrestricted (every rule silenced on that line).
func (d Directive) suppresses(ruleID string) bool {
	if len(d.RuleIDs) == 0 {
		return true
	}
	return d.RuleIDs[ruleID]
}

// Parse scans source line by line and returns the line->directive map.
// Directives are recognized only when, after trimming the `//` comment's
// leading whitespace, the comment text itself begins with one of the two
// recognized prefixes — a directive keyword appearing only as a substring
// of unrelated comment text (e.g. "// see kaizen-disable-next-line for
// docs") is not recognized, because the text after trimming is "see
// kaizen-disable-next-line for docs", which does not start with the
// prefix.
func Parse(source []byte) map[int]Directive {
	directives := map[int]Directive{}
	lines := strings.Split(string(source), "\n")
	for i, raw := range lines {
		lineNo := i + 1
		comment, ok := lineComment(raw)
		if !ok {
			continue
		}
		comment = strings.TrimSpace(comment)

		switch {
		case hasPrefixWord(comment, nextLinePrefix):
			ids := parseRuleIDs(comment, nextLinePrefix)
			directives[lineNo+1] = mergeDirective(directives[lineNo+1], lineNo+1, ids)
		case hasPrefixWord(comment, linePrefix):
			ids := parseRuleIDs(comment, linePrefix)
			directives[lineNo] = mergeDirective(directives[lineNo], lineNo, ids)
		}
	}
	return directives
}

// lineComment returns the text following the first unquoted `//` on the
// line, if any. This is a line-oriented scan (not full tokenization), which
// matches the spec's explicit "// line comments only" scope (§9 OQ1).
func lineComment(line string) (string, bool) {
	inSingle, inDouble, inTemplate := false, false, false
	for i := 0; i < len(line)-1; i++ {
		c := line[i]
		switch {
		case c == '\\':
			i++
		case inSingle:
			if c == '\'' {
				inSingle = false
			}
		case inDouble:
			if c == '"' {
				inDouble = false
			}
		case inTemplate:
			if c == '`' {
				inTemplate = false
			}
		case c == '\'':
			inSingle = true
		case c == '"':
			inDouble = true
		case c == '`':
			inTemplate = true
		case c == '/' && line[i+1] == '/':
			return line[i+2:], true
		}
	}
	return "", false
}

// hasPrefixWord reports whether comment starts with prefix followed by a
// word boundary (end of string, space, or colon) so "kaizen-disable-line2"
// does not falsely match "kaizen-disable-line".
func hasPrefixWord(comment, prefix string) bool {
	if !strings.HasPrefix(comment, prefix) {
		return false
	}
	rest := comment[len(prefix):]
	if rest == "" {
		return true
	}
	return rest[0] == ' ' || rest[0] == ':' || rest[0] == '\t'
}

// parseRuleIDs splits the comma-separated rule id list following prefix. An
// empty result means "all rules".
func parseRuleIDs(comment, prefix string) map[string]bool {
	rest := strings.TrimSpace(comment[len(prefix):])
	rest = strings.TrimPrefix(rest, ":")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil
	}
	ids := map[string]bool{}
	for _, part := range strings.Split(rest, ",") {
		id := strings.TrimSpace(part)
		if id != "" {
			ids[id] = true
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return ids
}

func mergeDirective(existing Directive, line int, ids map[string]bool) Directive {
	if existing.Line == 0 {
		return Directive{Line: line, RuleIDs: ids}
	}
	if len(existing.RuleIDs) == 0 || len(ids) == 0 {
		// Either directive already covers "all rules"; keep it that way.
		return Directive{Line: line, RuleIDs: nil}
	}
	merged := make(map[string]bool, len(existing.RuleIDs)+len(ids))
	for k := range existing.RuleIDs {
		merged[k] = true
	}
	for k := range ids {
		merged[k] = true
	}
	return Directive{Line: line, RuleIDs: merged}
}

// Filter drops every Diagnostic whose start line has a directive that
// suppresses its rule id. Applying Filter twice to its own output is a
// no-op (idempotent): a diagnostic either survives the first pass, in
// which case the same directive map still does not match its line+rule on
// the second pass, or it was dropped and is no longer present to drop
// again.
func Filter(diags []diagnostic.Diagnostic, directives map[int]Directive) []diagnostic.Diagnostic {
	if len(directives) == 0 {
		return diags
	}
	out := make([]diagnostic.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if dir, ok := directives[d.Start.Line]; ok && dir.suppresses(d.RuleID) {
			continue
		}
		out = append(out, d)
	}
	return out
}
