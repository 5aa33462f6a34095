package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"kaizen/diagnostic"
)

var (
	colorError   = color.New(color.FgRed, color.Bold)
	colorWarning = color.New(color.FgYellow, color.Bold)
	colorInfo    = color.New(color.FgCyan)
	colorHint    = color.New(color.FgWhite)
	colorRuleID  = color.New(color.Faint)
	colorFile    = color.New(color.Underline)
)

func severityColor(s diagnostic.Severity) *color.Color {
	switch s {
	case diagnostic.Error:
		return colorError
	case diagnostic.Warning:
		return colorWarning
	case diagnostic.Info:
		return colorInfo
	default:
		return colorHint
	}
}

// WriteText renders diagnostics as human-readable, one-finding-per-block
// text, grouped by file in the order they appear (diagnostics are already
// sorted deterministically by the core). useColor disables ANSI color codes
// for non-TTY writers.
func WriteText(w io.Writer, diags []diagnostic.Diagnostic, useColor bool) {
	if len(diags) == 0 {
		fmt.Fprintln(w, "No issues found.")
		return
	}

	withColor := func(c *color.Color, format string, args ...interface{}) string {
		if !useColor {
			return fmt.Sprintf(format, args...)
		}
		return c.Sprintf(format, args...)
	}

	currentFile := ""
	for _, d := range diags {
		if d.File != currentFile {
			if currentFile != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, withColor(colorFile, "%s", d.File))
			currentFile = d.File
		}

		fmt.Fprintf(w, "  %d:%d  %s  %s  %s\n",
			d.Start.Line, d.Start.Column,
			withColor(severityColor(d.Severity), "%-7s", d.Severity.String()),
			d.Message,
			withColor(colorRuleID, "%s", d.RuleID),
		)
		if d.Suggestion != "" {
			fmt.Fprintf(w, "      suggestion: %s\n", d.Suggestion)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, SummaryLine(diags))
}

// SummaryLine renders the single closing summary line batch output ends
// with: counts by severity plus the total.
func SummaryLine(diags []diagnostic.Diagnostic) string {
	var errors, warnings, infos, hints int
	for _, d := range diags {
		switch d.Severity {
		case diagnostic.Error:
			errors++
		case diagnostic.Warning:
			warnings++
		case diagnostic.Info:
			infos++
		case diagnostic.Hint:
			hints++
		}
	}
	return fmt.Sprintf("%d problem(s): %d error(s), %d warning(s), %d info, %d hint(s)",
		len(diags), errors, warnings, infos, hints)
}
