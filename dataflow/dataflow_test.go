package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaizen/parser"
	"kaizen/registry"
	"kaizen/semantic"
)

func analyze(t *testing.T, source string) []TaintFinding {
	t.Helper()
	pf, err := parser.Parse("a.js", []byte(source))
	require.NoError(t, err)
	t.Cleanup(pf.Close)
	model := semantic.Build(pf)
	a := NewAnalyzer()
	return a.Analyze(pf, model)
}

func TestSqlInjectionFlowDetected(t *testing.T) {
	findings := analyze(t, `
		function handle(req) {
			const userId = req.body.id;
			db.query("SELECT * FROM users WHERE id = " + userId);
		}
	`)
	require.NotEmpty(t, findings)
	found := false
	for _, f := range findings {
		if f.SinkCategory == registry.SqlInjection {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSanitizerClearsTaint(t *testing.T) {
	findings := analyze(t, `
		function handle(req) {
			const cmd = req.query.cmd;
			const safe = shellEscape(cmd);
			exec(safe);
		}
	`)
	for _, f := range findings {
		assert.NotEqual(t, registry.CommandInjection, f.SinkCategory)
	}
}

func TestNoFlowWithoutSource(t *testing.T) {
	findings := analyze(t, `
		function handle() {
			const x = "constant";
			db.query(x);
		}
	`)
	assert.Empty(t, findings)
}

func TestEmptyFileYieldsZeroFindings(t *testing.T) {
	pf, err := parser.Parse("a.js", []byte(""))
	require.NoError(t, err)
	defer pf.Close()
	model := semantic.Build(pf)
	a := NewAnalyzer()
	findings := a.Analyze(pf, model)
	assert.Empty(t, findings)
}

func TestCommandInjectionFlowDetected(t *testing.T) {
	findings := analyze(t, `
		function run(req) {
			const name = req.params.name;
			child_process.exec("echo " + name);
		}
	`)
	found := false
	for _, f := range findings {
		if f.SinkCategory == registry.CommandInjection {
			found = true
		}
	}
	assert.True(t, found)
}
