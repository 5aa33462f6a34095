package output

import (
	"encoding/json"
	"io"

	"kaizen/diagnostic"
)

// jsonVersion is the stable version tag for the JSON output document shape.
const jsonVersion = "1.0"

// JSONMetadata describes the run that produced a report.
type JSONMetadata struct {
	ToolVersion      string `json:"tool_version"`
	WorkingDirectory string `json:"working_directory"`
	AnalyzedPath     string `json:"analyzed_path"`
}

// JSONSummary aggregates counts across every analyzed file.
type JSONSummary struct {
	TotalFiles       int            `json:"total_files"`
	FilesWithIssues  int            `json:"files_with_issues"`
	TotalDiagnostics int            `json:"total_diagnostics"`
	BySeverity       map[string]int `json:"by_severity"`
	ByCategory       map[string]int `json:"by_category"`
}

// JSONLocation is the wire form of diagnostic.Location plus the file it's in.
type JSONLocation struct {
	File  string           `json:"file"`
	Start JSONLineColumn   `json:"start"`
	End   JSONLineColumn   `json:"end"`
}

// JSONLineColumn is the wire form of diagnostic.Location.
type JSONLineColumn struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// JSONFix is the wire form of diagnostic.Fix.
type JSONFix struct {
	Title      string `json:"title"`
	Kind       string `json:"kind"`
	Start      JSONLineColumn `json:"start"`
	End        JSONLineColumn `json:"end"`
	NewText    string `json:"new_text,omitempty"`
	InsertText string `json:"insert_text,omitempty"`
}

// JSONDiagnostic is the wire form of diagnostic.Diagnostic.
type JSONDiagnostic struct {
	RuleID     string       `json:"rule_id"`
	RuleName   string       `json:"rule_name,omitempty"`
	Category   string       `json:"category,omitempty"`
	Severity   string       `json:"severity"`
	Confidence string       `json:"confidence"`
	Message    string       `json:"message"`
	Location   JSONLocation `json:"location"`
	Suggestion string       `json:"suggestion,omitempty"`
	Fixes      []JSONFix    `json:"fixes,omitempty"`
}

// JSONReport is the full document produced by --format json.
type JSONReport struct {
	Version     string           `json:"version"`
	Metadata    JSONMetadata     `json:"metadata"`
	Summary     JSONSummary      `json:"summary"`
	Diagnostics []JSONDiagnostic `json:"diagnostics"`
}

// ToJSONDiagnostic converts a core diagnostic into its wire shape.
func ToJSONDiagnostic(d diagnostic.Diagnostic) JSONDiagnostic {
	fixes := make([]JSONFix, 0, len(d.Fixes))
	for _, f := range d.Fixes {
		jf := JSONFix{
			Title: f.Title,
			Kind:  f.Kind.String(),
			Start: JSONLineColumn{Line: f.Start.Line, Column: f.Start.Column},
			End:   JSONLineColumn{Line: f.End.Line, Column: f.End.Column},
		}
		if f.Kind == diagnostic.InsertBefore {
			jf.InsertText = f.Text
		} else {
			jf.NewText = f.NewText
		}
		fixes = append(fixes, jf)
	}
	return JSONDiagnostic{
		RuleID:     d.RuleID,
		RuleName:   d.RuleName,
		Category:   d.Category,
		Severity:   d.Severity.String(),
		Confidence: d.Confidence.String(),
		Message:    d.Message,
		Location: JSONLocation{
			File:  d.File,
			Start: JSONLineColumn{Line: d.Start.Line, Column: d.Start.Column},
			End:   JSONLineColumn{Line: d.End.Line, Column: d.End.Column},
		},
		Suggestion: d.Suggestion,
		Fixes:      fixes,
	}
}

// BuildSummary aggregates diagnostics across a set of analyzed files.
// totalFiles is the number of files analyzed, independent of how many of
// them have diagnostics.
func BuildSummary(totalFiles int, diags []diagnostic.Diagnostic) JSONSummary {
	bySeverity := map[string]int{"error": 0, "warning": 0, "info": 0, "hint": 0}
	byCategory := map[string]int{"quality": 0, "security": 0}
	filesWithIssues := map[string]struct{}{}

	for _, d := range diags {
		bySeverity[d.Severity.String()]++
		switch d.Category {
		case "Quality", "quality":
			byCategory["quality"]++
		case "Security", "security":
			byCategory["security"]++
		}
		filesWithIssues[d.File] = struct{}{}
	}

	return JSONSummary{
		TotalFiles:       totalFiles,
		FilesWithIssues:  len(filesWithIssues),
		TotalDiagnostics: len(diags),
		BySeverity:       bySeverity,
		ByCategory:       byCategory,
	}
}

// BuildJSONReport assembles the full report document for --format json.
func BuildJSONReport(toolVersion, workingDirectory, analyzedPath string, totalFiles int, diags []diagnostic.Diagnostic) JSONReport {
	wire := make([]JSONDiagnostic, 0, len(diags))
	for _, d := range diags {
		wire = append(wire, ToJSONDiagnostic(d))
	}
	return JSONReport{
		Version: jsonVersion,
		Metadata: JSONMetadata{
			ToolVersion:      toolVersion,
			WorkingDirectory: workingDirectory,
			AnalyzedPath:     analyzedPath,
		},
		Summary:     BuildSummary(totalFiles, diags),
		Diagnostics: wire,
	}
}

// WriteJSON writes the indented JSON report to w.
func WriteJSON(w io.Writer, report JSONReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// ndjsonMetadataRecord, ndjsonDiagnosticRecord and ndjsonSummaryRecord are the
// three record shapes NDJSON emits, one per line, tagged by "type".
type ndjsonMetadataRecord struct {
	Type string `json:"type"`
	JSONMetadata
}

type ndjsonDiagnosticRecord struct {
	Type string `json:"type"`
	JSONDiagnostic
}

type ndjsonSummaryRecord struct {
	Type string `json:"type"`
	JSONSummary
}

// WriteNDJSON writes one JSON object per line: a metadata record, one
// diagnostic record per finding, then a summary record.
func WriteNDJSON(w io.Writer, report JSONReport) error {
	enc := json.NewEncoder(w)

	if err := enc.Encode(ndjsonMetadataRecord{Type: "metadata", JSONMetadata: report.Metadata}); err != nil {
		return err
	}
	for _, d := range report.Diagnostics {
		if err := enc.Encode(ndjsonDiagnosticRecord{Type: "diagnostic", JSONDiagnostic: d}); err != nil {
			return err
		}
	}
	return enc.Encode(ndjsonSummaryRecord{Type: "summary", JSONSummary: report.Summary})
}
