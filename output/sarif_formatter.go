package output

import (
	"encoding/json"
	"io"

	sarif "github.com/owenrumney/go-sarif/v2/sarif"

	"kaizen/diagnostic"
)

// WriteSARIF renders diagnostics as SARIF 2.1.0, additive beyond the
// normative text/json/ndjson formats, for CI tools that consume SARIF (e.g.
// GitHub code scanning).
func WriteSARIF(w io.Writer, diags []diagnostic.Diagnostic) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}

	run := sarif.NewRunWithInformationURI("kaizen", "")

	seen := map[string]bool{}
	for _, d := range diags {
		if seen[d.RuleID] {
			continue
		}
		seen[d.RuleID] = true

		name := d.RuleName
		if name == "" {
			name = d.RuleID
		}
		rule := run.AddRule(d.RuleID).WithName(name)
		if d.Category != "" {
			rule.WithProperties(map[string]interface{}{"category": d.Category})
		}
		rule.WithDefaultConfiguration(sarif.NewReportingConfiguration().WithLevel(severityToSARIFLevel(d.Severity)))
	}

	for _, d := range diags {
		buildSARIFResult(d, run)
	}

	report.AddRun(run)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func severityToSARIFLevel(s diagnostic.Severity) string {
	switch s {
	case diagnostic.Error:
		return "error"
	case diagnostic.Warning:
		return "warning"
	case diagnostic.Info, diagnostic.Hint:
		return "note"
	default:
		return "warning"
	}
}

func buildSARIFResult(d diagnostic.Diagnostic, run *sarif.Run) {
	result := run.CreateResultForRule(d.RuleID).
		WithMessage(sarif.NewTextMessage(d.Message))

	region := sarif.NewRegion().
		WithStartLine(d.Start.Line).
		WithEndLine(d.End.Line)
	if d.Start.Column > 0 {
		region.WithStartColumn(d.Start.Column)
	}
	if d.End.Column > 0 {
		region.WithEndColumn(d.End.Column)
	}

	location := sarif.NewLocation().
		WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(d.File)).
				WithRegion(region),
		)

	result.AddLocation(location)
}
