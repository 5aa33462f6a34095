package visitor

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaizen/parser"
)

func TestWalkDetectsJSX(t *testing.T) {
	pf, err := parser.Parse("a.jsx", []byte("const x = <div />;"))
	require.NoError(t, err)
	defer pf.Close()

	assert.True(t, FileContainsJSX(pf))
}

func TestWalkNoJSX(t *testing.T) {
	pf, err := parser.Parse("a.js", []byte("const x = 1;"))
	require.NoError(t, err)
	defer pf.Close()

	assert.False(t, FileContainsJSX(pf))
}

type callCounter struct {
	Base
	calls []string
}

func (c *callCounter) VisitCallExpression(n *sitter.Node, ctx *VisitorContext) ControlFlow {
	c.calls = append(c.calls, ctx.Text(n.Child(0)))
	return Continue
}

func TestWalkVisitsAllCallExpressions(t *testing.T) {
	pf, err := parser.Parse("a.js", []byte("foo(); bar(); baz();"))
	require.NoError(t, err)
	defer pf.Close()

	c := &callCounter{}
	Walk(pf.Root, c, &VisitorContext{File: pf})
	assert.Equal(t, []string{"foo", "bar", "baz"}, c.calls)
}

func TestWalkEmptyTreeDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Walk(nil, &Base{}, &VisitorContext{})
	})
}
