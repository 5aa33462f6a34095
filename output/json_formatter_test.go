package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaizen/diagnostic"
)

func sampleDiagnostic() diagnostic.Diagnostic {
	return diagnostic.Diagnostic{
		RuleID:     "Q030",
		RuleName:   "no-var",
		Category:   "Quality",
		Severity:   diagnostic.Warning,
		Confidence: diagnostic.High,
		Message:    "unexpected var, use let or const",
		File:       "a.js",
		Start:      diagnostic.Location{Line: 1, Column: 1},
		End:        diagnostic.Location{Line: 1, Column: 4},
		Suggestion: "replace var with let",
		Fixes: []diagnostic.Fix{{
			Title:   "Replace with let",
			Kind:    diagnostic.ReplaceWith,
			Start:   diagnostic.Location{Line: 1, Column: 1},
			End:     diagnostic.Location{Line: 1, Column: 4},
			NewText: "let",
		}},
	}
}

func TestBuildJSONReportShape(t *testing.T) {
	diags := []diagnostic.Diagnostic{sampleDiagnostic()}
	report := BuildJSONReport("1.2.3", "/repo", "src/a.js", 1, diags)

	assert.Equal(t, "1.0", report.Version)
	assert.Equal(t, "1.2.3", report.Metadata.ToolVersion)
	assert.Equal(t, 1, report.Summary.TotalFiles)
	assert.Equal(t, 1, report.Summary.FilesWithIssues)
	assert.Equal(t, 1, report.Summary.TotalDiagnostics)
	assert.Equal(t, 1, report.Summary.BySeverity["warning"])
	assert.Equal(t, 1, report.Summary.ByCategory["quality"])

	require.Len(t, report.Diagnostics, 1)
	jd := report.Diagnostics[0]
	assert.Equal(t, "Q030", jd.RuleID)
	assert.Equal(t, "warning", jd.Severity)
	assert.Equal(t, "high", jd.Confidence)
	assert.Equal(t, "a.js", jd.Location.File)
	require.Len(t, jd.Fixes, 1)
	assert.Equal(t, "replace", jd.Fixes[0].Kind)
	assert.Equal(t, "let", jd.Fixes[0].NewText)
}

func TestWriteJSONIsValidJSON(t *testing.T) {
	report := BuildJSONReport("1.0.0", "/repo", ".", 1, []diagnostic.Diagnostic{sampleDiagnostic()})
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, report))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "1.0", decoded["version"])
}

func TestWriteNDJSONEmitsOneRecordPerLine(t *testing.T) {
	report := BuildJSONReport("1.0.0", "/repo", ".", 1, []diagnostic.Diagnostic{sampleDiagnostic()})
	var buf bytes.Buffer
	require.NoError(t, WriteNDJSON(&buf, report))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3) // metadata + 1 diagnostic + summary

	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &meta))
	assert.Equal(t, "metadata", meta["type"])

	var diag map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &diag))
	assert.Equal(t, "diagnostic", diag["type"])
	assert.Equal(t, "Q030", diag["rule_id"])

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &summary))
	assert.Equal(t, "summary", summary["type"])
}

func TestBuildSummaryCountsDistinctFilesWithIssues(t *testing.T) {
	diags := []diagnostic.Diagnostic{
		{File: "a.js", Severity: diagnostic.Error, Category: "Security"},
		{File: "a.js", Severity: diagnostic.Warning, Category: "Quality"},
		{File: "b.js", Severity: diagnostic.Info, Category: "Quality"},
	}
	summary := BuildSummary(3, diags)
	assert.Equal(t, 3, summary.TotalFiles)
	assert.Equal(t, 2, summary.FilesWithIssues)
	assert.Equal(t, 3, summary.TotalDiagnostics)
	assert.Equal(t, 1, summary.BySeverity["error"])
	assert.Equal(t, 1, summary.BySeverity["warning"])
	assert.Equal(t, 1, summary.BySeverity["info"])
	assert.Equal(t, 1, summary.ByCategory["security"])
	assert.Equal(t, 2, summary.ByCategory["quality"])
}
