package output

import (
	"fmt"

	"kaizen/diagnostic"
)

// Exit codes per the normative CLI contract: 0 clean, 1 a qualifying
// diagnostic was found, 2 invalid invocation (bad flags, unreadable path).
const (
	ExitClean            = 0
	ExitDiagnosticsFound = 1
	ExitInvalidInvocation = 2
)

// FailOnThreshold is the minimum severity (inclusive) that causes check to
// exit non-zero. The default, FailOnError, is spec §6's literal "any
// Error-severity diagnostic" rule; --fail-on-warnings fails the run on any
// diagnostic, expressed here as FailOnHint. FailOnWarning and FailOnInfo
// are the intermediate thresholds that only --fail-on selects.
type FailOnThreshold int

const (
	FailOnError FailOnThreshold = iota
	FailOnWarning
	FailOnInfo
	FailOnHint
)

// ParseFailOnThreshold parses the --fail-on flag value.
func ParseFailOnThreshold(s string) (FailOnThreshold, error) {
	switch s {
	case "error", "":
		return FailOnError, nil
	case "warning":
		return FailOnWarning, nil
	case "info":
		return FailOnInfo, nil
	case "hint":
		return FailOnHint, nil
	default:
		return 0, fmt.Errorf("unknown --fail-on value %q", s)
	}
}

// severityRank orders severities from most to least severe, matching
// diagnostic.Severity's own iota order (Error=0 is worst).
func severityRank(s diagnostic.Severity) int {
	return int(s)
}

func (t FailOnThreshold) rank() int {
	switch t {
	case FailOnError:
		return int(diagnostic.Error)
	case FailOnWarning:
		return int(diagnostic.Warning)
	case FailOnInfo:
		return int(diagnostic.Info)
	default:
		return int(diagnostic.Hint)
	}
}

// ExitCode computes the process exit code for a finished check run, given
// the threshold selected via --fail-on (FailOnError by default) or
// --fail-on-warnings (equivalent to FailOnHint, so any diagnostic fails).
func ExitCode(diags []diagnostic.Diagnostic, threshold FailOnThreshold) int {
	for _, d := range diags {
		if severityRank(d.Severity) <= threshold.rank() {
			return ExitDiagnosticsFound
		}
	}
	return ExitClean
}
