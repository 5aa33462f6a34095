package output

import "kaizen/diagnostic"

// FilterByFiles keeps only diagnostics whose File is in allowed, backing
// `kaizen check --staged`: the core analyzes whatever files are passed to
// it, and this narrows the reported set to files git considers staged
// without re-running analysis per file.
func FilterByFiles(diags []diagnostic.Diagnostic, allowed []string) []diagnostic.Diagnostic {
	if allowed == nil {
		return diags
	}
	set := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		set[f] = struct{}{}
	}

	filtered := make([]diagnostic.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if _, ok := set[d.File]; ok {
			filtered = append(filtered, d)
		}
	}
	return filtered
}
