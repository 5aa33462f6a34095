package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	cases := map[string]Language{
		"a.ts":  TypeScript,
		"a.mts": TypeScript,
		"a.cts": TypeScript,
		"a.jsx": Jsx,
		"a.tsx": Tsx,
		"a.js":  JavaScript,
		"a.mjs": JavaScript,
	}
	for name, want := range cases {
		assert.Equal(t, want, DetectLanguage(name), name)
	}
}

func TestParseSimpleFile(t *testing.T) {
	pf, err := Parse("a.js", []byte("var x = 1;"))
	require.NoError(t, err)
	require.NotNil(t, pf.Root)
	assert.False(t, pf.HasErrors)
	assert.Equal(t, JavaScript, pf.Language)
	pf.Close()
}

func TestParseEmptySource(t *testing.T) {
	pf, err := Parse("a.js", []byte(""))
	require.NoError(t, err)
	assert.False(t, pf.HasErrors)
	assert.Equal(t, 1, LineCount(pf.Source))
	pf.Close()
}

func TestParseRecoversFromSyntaxErrors(t *testing.T) {
	pf, err := Parse("a.js", []byte("this is not valid javascript {{{{"))
	require.NoError(t, err)
	require.NotNil(t, pf.Root)
	assert.True(t, pf.HasErrors)
	assert.NotEmpty(t, pf.Errors)
	pf.Close()
}

func TestSpanToLocationSingleLine(t *testing.T) {
	src := []byte("var x = 1;")
	loc := SpanToLocation(src, Span{4, 5})
	assert.Equal(t, 1, loc.Line)
	assert.Equal(t, 5, loc.Column)
}

func TestSpanToLocationMultiLine(t *testing.T) {
	src := []byte("var x = 1;\nvar y = 2;")
	loc := SpanToLocation(src, Span{11, 11})
	assert.Equal(t, 2, loc.Line)
	assert.Equal(t, 1, loc.Column)
}

func TestSpanToLocationCountsUTF8Characters(t *testing.T) {
	src := []byte("const café = 1;")
	idx := uint32(len("const café "))
	loc := SpanToLocation(src, Span{idx, idx})
	// "café" contributes 4 runes even though "é" is 2 bytes.
	assert.Equal(t, 12, loc.Column)
}

func TestSourceText(t *testing.T) {
	pf, err := Parse("a.js", []byte("var x = 1;"))
	require.NoError(t, err)
	defer pf.Close()
	assert.Equal(t, "var", pf.SourceText(Span{0, 3}))
}

func TestLineCountSingleLineFile(t *testing.T) {
	assert.Equal(t, 1, LineCount([]byte("var x = 1;")))
}
