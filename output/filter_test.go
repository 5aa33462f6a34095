package output

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kaizen/diagnostic"
)

func TestFilterByFilesNilAllowedKeepsEverything(t *testing.T) {
	diags := []diagnostic.Diagnostic{{File: "a.js"}, {File: "b.js"}}
	assert.Equal(t, diags, FilterByFiles(diags, nil))
}

func TestFilterByFilesKeepsOnlyAllowed(t *testing.T) {
	diags := []diagnostic.Diagnostic{
		{File: "a.js", RuleID: "Q030"},
		{File: "b.js", RuleID: "Q001"},
		{File: "c.js", RuleID: "S001"},
	}
	filtered := FilterByFiles(diags, []string{"a.js", "c.js"})
	assert.Len(t, filtered, 2)
	assert.Equal(t, "a.js", filtered[0].File)
	assert.Equal(t, "c.js", filtered[1].File)
}

func TestFilterByFilesEmptyAllowedListKeepsNothing(t *testing.T) {
	diags := []diagnostic.Diagnostic{{File: "a.js"}}
	filtered := FilterByFiles(diags, []string{})
	assert.Empty(t, filtered)
}
