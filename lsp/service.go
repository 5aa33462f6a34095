package lsp

import (
	"github.com/google/uuid"

	"kaizen/analysis"
	"kaizen/diagnostic"
)

// Publisher pushes a document's current diagnostics to the LSP client,
// backing textDocument/publishDiagnostics.
type Publisher func(uri string, diagnostics []diagnostic.Diagnostic)

// Service is the publish loop driving Component I: it wires the document
// store and debouncer to the analysis facade, matching "Parser -> ParsedFile
// -> ... -> Diagnostics" from §3's control flow, run per edit instead of
// per CLI invocation.
type Service struct {
	SessionID string

	store     *Store
	debouncer *Debouncer
	engine    *analysis.Engine
	publish   Publisher
}

// NewService creates a Service with the default debounce delay, backed by
// a fresh analysis engine. publish is called with the result of every
// completed analysis, and once more with an empty slice on close.
func NewService(publish Publisher) *Service {
	return &Service{
		SessionID: uuid.NewString(),
		store:     NewStore(),
		debouncer: NewDebouncer(DefaultDebounceDelay),
		engine:    analysis.New(),
		publish:   publish,
	}
}

// DidOpen registers a newly opened document and analyzes it immediately,
// so the editor gets diagnostics without waiting out the debounce window.
func (s *Service) DidOpen(uri, text string) {
	s.store.Open(uri, text)
	s.analyzeAndPublish(uri)
}

// DidChange updates a document's text and schedules a debounced analysis,
// coalescing a burst of edits into a single re-analysis.
func (s *Service) DidChange(uri, text string) {
	s.store.Update(uri, text)
	s.debouncer.Schedule(uri, func() { s.analyzeAndPublish(uri) })
}

// DidClose cancels any pending analysis, removes the document, and
// publishes an empty diagnostic list so the editor clears its gutter.
func (s *Service) DidClose(uri string) {
	s.debouncer.Cancel(uri)
	s.store.Close(uri)
	if s.publish != nil {
		s.publish(uri, nil)
	}
}

// analyzeAndPublish runs the full pipeline for uri's current text, caches
// the result, and publishes it. A document with no successful parse (e.g.
// an unreadable encoding) publishes no diagnostics rather than erroring.
func (s *Service) analyzeAndPublish(uri string) {
	doc, ok := s.store.Get(uri)
	if !ok || doc.Parsed == nil {
		return
	}

	diags := s.engine.Analyze(doc.Parsed)
	s.store.SetDiagnostics(uri, diags)
	if s.publish != nil {
		s.publish(uri, diags)
	}
}

// CachedDiagnostics returns the diagnostics from the most recently
// completed analysis of uri, for code-action requests that shouldn't
// trigger a fresh analysis of their own.
func (s *Service) CachedDiagnostics(uri string) []diagnostic.Diagnostic {
	doc, ok := s.store.Get(uri)
	if !ok {
		return nil
	}
	return doc.Diagnostics
}
