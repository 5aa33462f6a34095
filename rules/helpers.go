package rules

import (
	"strings"

	"kaizen/parser"
	"kaizen/visitor"
)

// isTestFile recognizes test and spec filenames and files under test or mock
// directories — used by rules like no-console and no-insecure-random to skip
// files where the flagged pattern is expected and intentional. Example,
// script and CLI files are not recognized.
func isTestFile(filename string) bool {
	lower := strings.ToLower(filename)

	for _, substr := range []string{".test.", ".spec.", "_test.", "_spec."} {
		if strings.Contains(lower, substr) {
			return true
		}
	}
	for _, suffix := range []string{
		".test.js", ".test.ts", ".test.jsx", ".test.tsx",
		".spec.js", ".spec.ts", ".spec.jsx", ".spec.tsx",
	} {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	for _, exact := range []string{"test.js", "test.mjs", "test.ts"} {
		if lower == exact || strings.HasSuffix(lower, "/"+exact) {
			return true
		}
	}
	for _, substr := range []string{"/test/", "/tests/", "/__tests__/", "/__mocks__/"} {
		if strings.Contains(lower, substr) {
			return true
		}
	}
	for _, prefix := range []string{"test/", "tests/"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// fileContainsJSX reports whether pf's AST contains any JSX element,
// stopping at the first one found.
func fileContainsJSX(pf *parser.ParsedFile) bool {
	return visitor.FileContainsJSX(pf)
}
