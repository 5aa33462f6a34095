package output

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaizen/diagnostic"
)

func TestWriteCSVHeaderAndRows(t *testing.T) {
	diags := []diagnostic.Diagnostic{
		{
			File: "a.js", RuleID: "Q030", Category: "Quality",
			Severity: diagnostic.Warning, Confidence: diagnostic.High,
			Message: "unexpected var", Suggestion: "use let",
			Start: diagnostic.Location{Line: 1, Column: 1}, End: diagnostic.Location{Line: 1, Column: 4},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, diags))

	r := csv.NewReader(&buf)
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "a.js", records[1][0])
	assert.Equal(t, "Q030", records[1][5])
	assert.Equal(t, "warning", records[1][7])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	r := csv.NewReader(&buf)
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}
