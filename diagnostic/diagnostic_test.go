package diagnostic

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityRoundTrip(t *testing.T) {
	for _, s := range []Severity{Error, Warning, Info, Hint} {
		parsed, err := ParseSeverity(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
}

func TestParseSeverityUnknown(t *testing.T) {
	_, err := ParseSeverity("critical")
	assert.Error(t, err)
}

func TestConfidenceRoundTrip(t *testing.T) {
	for _, c := range []Confidence{High, Medium, Low} {
		parsed, err := ParseConfidence(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
}

func TestPreferredFix(t *testing.T) {
	d := Diagnostic{Fixes: []Fix{{Title: "first"}, {Title: "second"}}}
	fix, ok := d.Preferred()
	require.True(t, ok)
	assert.Equal(t, "first", fix.Title)

	empty := Diagnostic{}
	_, ok = empty.Preferred()
	assert.False(t, ok)
}

func TestLessOrdersByFileThenLocationThenRuleID(t *testing.T) {
	diags := []Diagnostic{
		{File: "b.js", Start: Location{1, 1}, RuleID: "Q001"},
		{File: "a.js", Start: Location{2, 1}, RuleID: "Q001"},
		{File: "a.js", Start: Location{1, 5}, RuleID: "Q002"},
		{File: "a.js", Start: Location{1, 5}, RuleID: "Q001"},
		{File: "a.js", Start: Location{1, 1}, RuleID: "Q001"},
	}
	sort.Slice(diags, func(i, j int) bool { return Less(diags[i], diags[j]) })

	require.Len(t, diags, 5)
	assert.Equal(t, "a.js", diags[0].File)
	assert.Equal(t, Location{1, 1}, diags[0].Start)
	assert.Equal(t, "Q001", diags[1].RuleID)
	assert.Equal(t, "Q002", diags[2].RuleID)
	assert.Equal(t, Location{2, 1}, diags[3].Start)
	assert.Equal(t, "b.js", diags[4].File)
}

func TestFixKindString(t *testing.T) {
	assert.Equal(t, "replace", ReplaceWith.String())
	assert.Equal(t, "insert_before", InsertBefore.String())
}
