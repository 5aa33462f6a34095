package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaizen/diagnostic"
	"kaizen/parser"
)

func mustParse(t *testing.T, name, src string) *parser.ParsedFile {
	t.Helper()
	pf, err := parser.Parse(name, []byte(src))
	require.NoError(t, err)
	return pf
}

func TestAnalyzeNoVarWithFix(t *testing.T) {
	pf := mustParse(t, "a.js", "var x = 1;")
	diags := New().Analyze(pf)
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, "Q030", d.RuleID)
	assert.Equal(t, diagnostic.Warning, d.Severity)
	assert.Equal(t, diagnostic.Location{Line: 1, Column: 1}, d.Start)
	assert.Equal(t, diagnostic.Location{Line: 1, Column: 4}, d.End)
	require.Len(t, d.Fixes, 1)
	assert.Equal(t, diagnostic.ReplaceWith, d.Fixes[0].Kind)
	assert.Equal(t, "let", d.Fixes[0].NewText)
}

func TestAnalyzeEqeqeqNullException(t *testing.T) {
	pf := mustParse(t, "a.js", "if (x == null) {}\nif (x == y) {}")
	diags := New().Analyze(pf)
	require.Len(t, diags, 1)
	assert.Equal(t, "Q033", diags[0].RuleID)
	assert.Equal(t, 2, diags[0].Start.Line)
}

func TestAnalyzeNoUnusedVarsClosure(t *testing.T) {
	pf := mustParse(t, "a.js", `function createCounter() { let count = 0; return function() { count++; return count; }; }
createCounter();`)
	diags := New().Analyze(pf)
	for _, d := range diags {
		assert.NotEqual(t, "Q001", d.RuleID)
	}
}

func TestAnalyzeSQLInjectionViaTaint(t *testing.T) {
	pf := mustParse(t, "a.js", `function h(req){ const id = req.body.id; db.query("SELECT * FROM users WHERE id = " + id); }`)
	diags := New().Analyze(pf)
	var found *diagnostic.Diagnostic
	for i := range diags {
		if diags[i].RuleID == "S001" {
			found = &diags[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, diagnostic.Error, found.Severity)
	assert.Contains(t, found.Message, "line 1")
}

func TestAnalyzeSanitizerNeutralizesTaint(t *testing.T) {
	pf := mustParse(t, "a.js", `function h(req){ const raw = req.body.html; const safe = DOMPurify.sanitize(raw); element.innerHTML = safe; }`)
	diags := New().Analyze(pf)
	for _, d := range diags {
		assert.NotEqual(t, "S002", d.RuleID)
	}
}

func TestAnalyzeInlineSuppression(t *testing.T) {
	pf := mustParse(t, "a.js", "// kaizen-disable-next-line Q030\nvar x = 1;\nvar y = 2;\n")
	diags := New().Analyze(pf)
	var q030 []diagnostic.Diagnostic
	for _, d := range diags {
		if d.RuleID == "Q030" {
			q030 = append(q030, d)
		}
	}
	require.Len(t, q030, 1)
	assert.Equal(t, 3, q030[0].Start.Line)
}

func TestAnalyzeEmptySourceProducesNoDiagnostics(t *testing.T) {
	pf := mustParse(t, "a.js", "")
	diags := New().Analyze(pf)
	assert.Empty(t, diags)
}

func TestAnalyzeParseErrorsSurfaceAsDiagnostics(t *testing.T) {
	pf := mustParse(t, "a.js", "function( {{{")
	diags := New().Analyze(pf)
	found := false
	for _, d := range diags {
		if d.RuleID == "PARSE" {
			found = true
			assert.Equal(t, diagnostic.Error, d.Severity)
		}
	}
	assert.True(t, found, "expected at least one PARSE diagnostic for invalid source")
}

func TestAnalyzeDeterministic(t *testing.T) {
	src := `var x = 1; if (x == y) {} console.log(x);`
	pf1 := mustParse(t, "a.js", src)
	pf2 := mustParse(t, "a.js", src)
	diags1 := New().Analyze(pf1)
	diags2 := New().Analyze(pf2)
	require.Equal(t, diags1, diags2)
}
