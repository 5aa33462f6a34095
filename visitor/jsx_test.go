package visitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaizen/parser"
)

func TestFileContainsJSXNestedInsideFunction(t *testing.T) {
	pf, err := parser.Parse("a.jsx", []byte(`
		function render() {
			return <div><span>hi</span></div>;
		}
	`))
	require.NoError(t, err)
	defer pf.Close()

	assert.True(t, FileContainsJSX(pf))
}

func TestFileContainsJSXEmptySourceIsFalse(t *testing.T) {
	pf, err := parser.Parse("a.js", []byte(""))
	require.NoError(t, err)
	defer pf.Close()

	assert.False(t, FileContainsJSX(pf))
}
