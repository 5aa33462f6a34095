// Package parser builds a lossless AST plus recoverable parse errors from a
// (filename, source) pair, using tree-sitter grammars for JavaScript and
// TypeScript. It is Component A: every other package consumes a *ParsedFile.
package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ParseError is one recoverable grammar mistake.
type ParseError struct {
	Line    int
	Column  int
	Span    Span
	Message string
}

// Span is a half-open byte range [Lo, Hi) into the source text.
type Span struct {
	Lo uint32
	Hi uint32
}

// ParsedFile represents one analyzed unit. Constructed once from (filename,
// source); immutable thereafter. Call Close when the owning document closes
// or the batch file completes, to release the underlying tree-sitter tree.
type ParsedFile struct {
	Filename  string
	Language  Language
	Source    []byte
	Root      *sitter.Node
	Errors    []ParseError
	HasErrors bool

	tree *sitter.Tree
}

// Close releases the tree-sitter tree backing this ParsedFile. Root becomes
// invalid after Close.
func (f *ParsedFile) Close() {
	if f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

func languageFor(lang Language) *sitter.Language {
	switch lang {
	case TypeScript:
		return typescript.GetLanguage()
	case Tsx:
		return tsx.GetLanguage()
	default:
		// JavaScript grammar accepts JSX syntax directly.
		return javascript.GetLanguage()
	}
}

// Parse builds a ParsedFile from filename and source. Parsing is recovering:
// grammar mistakes are collected into Errors but a partial AST is still
// returned whenever tree-sitter can produce a root node at all. Only
// allocation/context failures from the underlying parser are returned as an
// error; grammar mistakes never are.
func Parse(filename string, source []byte) (*ParsedFile, error) {
	lang := DetectLanguage(filename)

	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(languageFor(lang))

	tree, err := p.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	pf := &ParsedFile{
		Filename: filename,
		Language: lang,
		Source:   source,
		tree:     tree,
	}
	if tree != nil {
		pf.Root = tree.RootNode()
		pf.Errors = collectErrors(pf.Root, source)
		pf.HasErrors = len(pf.Errors) > 0
	}
	return pf, nil
}

// collectErrors walks the tree once gathering every ERROR/MISSING node.
func collectErrors(root *sitter.Node, source []byte) []ParseError {
	if root == nil {
		return nil
	}
	var errs []ParseError
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.IsMissing() {
			loc := SpanToLocation(source, Span{n.StartByte(), n.StartByte()})
			errs = append(errs, ParseError{
				Line:    loc.Line,
				Column:  loc.Column,
				Span:    Span{n.StartByte(), n.StartByte()},
				Message: fmt.Sprintf("missing %s", n.Type()),
			})
		} else if n.Type() == "ERROR" {
			sp := Span{n.StartByte(), n.EndByte()}
			loc := SpanToLocation(source, sp)
			errs = append(errs, ParseError{
				Line:    loc.Line,
				Column:  loc.Column,
				Span:    sp,
				Message: "unexpected syntax",
			})
		}
		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return errs
}

// Location is a 1-based (line, column) pair.
type Location struct {
	Line   int
	Column int
}

// SpanToLocation converts a byte span's start into a 1-based (line, column),
// counting newlines ('\n'; a CR before LF does not start a new line) and
// UTF-8 characters (runes) in the byte prefix.
func SpanToLocation(source []byte, span Span) Location {
	line := 1
	col := 1
	lo := span.Lo
	if lo > uint32(len(source)) {
		lo = uint32(len(source))
	}
	i := uint32(0)
	for i < lo {
		r, size := decodeRune(source[i:])
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		i += uint32(size)
	}
	return Location{Line: line, Column: col}
}

// decodeRune decodes one UTF-8 rune from b, defensively treating invalid
// bytes as single-byte runes so malformed input never hangs span mapping.
func decodeRune(b []byte) (rune, int) {
	if len(b) == 0 {
		return 0, 0
	}
	c := b[0]
	switch {
	case c < 0x80:
		return rune(c), 1
	case c&0xE0 == 0xC0 && len(b) >= 2:
		return rune(c), 2
	case c&0xF0 == 0xE0 && len(b) >= 3:
		return rune(c), 3
	case c&0xF8 == 0xF0 && len(b) >= 4:
		return rune(c), 4
	default:
		return rune(c), 1
	}
}

// SourceText returns the raw source slice for a span.
func (f *ParsedFile) SourceText(span Span) string {
	if span.Lo > uint32(len(f.Source)) || span.Hi > uint32(len(f.Source)) || span.Lo > span.Hi {
		return ""
	}
	return string(f.Source[span.Lo:span.Hi])
}

// SpanToLocation is the ParsedFile-bound convenience form of the package function.
func (f *ParsedFile) SpanToLocation(span Span) Location {
	return SpanToLocation(f.Source, span)
}

// NodeSpan returns the Span covering a tree-sitter node.
func NodeSpan(n *sitter.Node) Span {
	return Span{n.StartByte(), n.EndByte()}
}

// OperatorBetween extracts the exact span and text of an infix operator
// token sitting between two sibling nodes (e.g. a binary_expression's left
// and right operands), by trimming surrounding whitespace from the gap
// between them, rather than relying on the grammar exposing a named
// "operator" field (which not every binary/assignment node shape does).
// Returns ok=false if the gap is empty or out of range.
func OperatorBetween(source []byte, left, right *sitter.Node) (span Span, text string, ok bool) {
	leftEnd := left.EndByte()
	rightStart := right.StartByte()
	if leftEnd > uint32(len(source)) || rightStart > uint32(len(source)) || rightStart < leftEnd {
		return Span{}, "", false
	}
	between := source[leftEnd:rightStart]
	start := leftEnd
	end := rightStart
	for start < end && isSpaceByte(between[start-leftEnd]) {
		start++
	}
	for end > start && isSpaceByte(source[end-1]) {
		end--
	}
	if start >= end {
		return Span{}, "", false
	}
	return Span{Lo: start, Hi: end}, string(source[start:end]), true
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// OperatorSpan locates a specific infix operator's exact span within the
// gap between left and right, by requiring OperatorBetween's trimmed token
// to equal opText exactly. Returns ok=false if the gap's token isn't
// opText.
func OperatorSpan(source []byte, left, right *sitter.Node, opText string) (Span, bool) {
	sp, text, ok := OperatorBetween(source, left, right)
	if !ok || text != opText {
		return Span{}, false
	}
	return sp, true
}

// LineCount returns the number of lines in source (at least 1, even for
// empty input).
func LineCount(source []byte) int {
	if len(source) == 0 {
		return 1
	}
	lines := 1
	for _, b := range source {
		if b == '\n' {
			lines++
		}
	}
	return lines
}
