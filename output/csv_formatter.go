package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"kaizen/diagnostic"
)

var csvHeader = []string{
	"file", "start_line", "start_column", "end_line", "end_column",
	"rule_id", "category", "severity", "confidence", "message", "suggestion",
}

// WriteCSV renders diagnostics as CSV, one row per finding, for spreadsheet
// review. This is additive beyond the normative text/json/ndjson formats.
func WriteCSV(w io.Writer, diags []diagnostic.Diagnostic) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, d := range diags {
		row := []string{
			d.File,
			strconv.Itoa(d.Start.Line),
			strconv.Itoa(d.Start.Column),
			strconv.Itoa(d.End.Line),
			strconv.Itoa(d.End.Column),
			d.RuleID,
			d.Category,
			d.Severity.String(),
			d.Confidence.String(),
			d.Message,
			d.Suggestion,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
