package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaizen/diagnostic"
)

func TestWriteSARIFProducesValidDocument(t *testing.T) {
	diags := []diagnostic.Diagnostic{
		{
			RuleID: "S001", RuleName: "sql-injection", Category: "Security",
			Severity: diagnostic.Error, Message: "tainted value reaches db.query",
			File: "a.js", Start: diagnostic.Location{Line: 3, Column: 5}, End: diagnostic.Location{Line: 3, Column: 20},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, diags))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "2.1.0", decoded["version"])

	runs, ok := decoded["runs"].([]interface{})
	require.True(t, ok)
	require.Len(t, runs, 1)

	run := runs[0].(map[string]interface{})
	results, ok := run["results"].([]interface{})
	require.True(t, ok)
	require.Len(t, results, 1)
}

func TestWriteSARIFDeduplicatesRules(t *testing.T) {
	diags := []diagnostic.Diagnostic{
		{RuleID: "Q030", Severity: diagnostic.Warning, Message: "m1", File: "a.js", Start: diagnostic.Location{Line: 1, Column: 1}, End: diagnostic.Location{Line: 1, Column: 2}},
		{RuleID: "Q030", Severity: diagnostic.Warning, Message: "m2", File: "a.js", Start: diagnostic.Location{Line: 2, Column: 1}, End: diagnostic.Location{Line: 2, Column: 2}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, diags))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	run := decoded["runs"].([]interface{})[0].(map[string]interface{})
	tool := run["tool"].(map[string]interface{})
	driver := tool["driver"].(map[string]interface{})
	rules := driver["rules"].([]interface{})
	assert.Len(t, rules, 1)
}

func TestWriteSARIFEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, nil))
	assert.NotEmpty(t, buf.String())
}
