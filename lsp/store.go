// Package lsp implements the incremental document-service layer (Component
// I): a per-URI document store, a coalescing debouncer, and a code-action
// generator mapping cached Fixes into editor-applicable edits. It wraps the
// analysis facade rather than duplicating any of its logic.
package lsp

import (
	"hash/fnv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"kaizen/diagnostic"
	"kaizen/parser"
)

// Document is a single open editor buffer: its URI, current text, the last
// parse (nil if parser.Parse returned an error), and the
// diagnostics from the last completed analysis.
type Document struct {
	URI         string
	Text        string
	Parsed      *parser.ParsedFile
	Diagnostics []diagnostic.Diagnostic
}

// defaultStoreCapacity bounds the document store so a long-running editor
// session that opens and closes many files doesn't grow memory without
// bound; an evicted document is simply re-parsed on its next didOpen.
const defaultStoreCapacity = 256

// storeShards is the number of independent LRU shards the store stripes
// URIs across. Per §5's "document store ... with per-entry exclusivity:
// writes under one URI are serialized; reads and writes under different
// URIs proceed in parallel", a single mutex guarding one shared LRU would
// serialize every URI against every other. Striping by a hash of the URI
// means two documents land under the same lock only on a (rare, 1-in-16)
// hash collision; distinct shards never contend.
const storeShards = 16

// storeShard is one stripe of the document store: an LRU cache plus the
// one mutex guarding it.
type storeShard struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *Document]
}

// Store is the concurrent URI -> Document map backing the LSP service.
// Every operation re-parses on open/update; the cost is paid once per edit,
// matching §4.I's "Document store" contract.
type Store struct {
	shards [storeShards]*storeShard
}

// NewStore creates an empty document store with the default capacity,
// divided evenly across storeShards stripes.
func NewStore() *Store {
	perShard := defaultStoreCapacity / storeShards
	if perShard < 1 {
		perShard = 1
	}
	s := &Store{}
	for i := range s.shards {
		cache, err := lru.New[string, *Document](perShard)
		if err != nil {
			// Only fails for a non-positive size, which perShard never is.
			panic(err)
		}
		s.shards[i] = &storeShard{cache: cache}
	}
	return s
}

// shardFor picks the stripe owning uri by hashing it with FNV-1a.
func (s *Store) shardFor(uri string) *storeShard {
	h := fnv.New32a()
	h.Write([]byte(uri))
	return s.shards[h.Sum32()%storeShards]
}

// Open registers a newly opened document, parsing its text.
func (s *Store) Open(uri, text string) *Document {
	return s.reparse(uri, text)
}

// Update re-parses a document after an edit, replacing its prior entry.
func (s *Store) Update(uri, text string) *Document {
	return s.reparse(uri, text)
}

func (s *Store) reparse(uri, text string) *Document {
	doc := &Document{URI: uri, Text: text}
	if pf, err := parser.Parse(uri, []byte(text)); err == nil {
		doc.Parsed = pf
	}

	shard := s.shardFor(uri)
	shard.mu.Lock()
	shard.cache.Add(uri, doc)
	shard.mu.Unlock()
	return doc
}

// Close removes a document from the store.
func (s *Store) Close(uri string) {
	shard := s.shardFor(uri)
	shard.mu.Lock()
	shard.cache.Remove(uri)
	shard.mu.Unlock()
}

// Get returns the current document for uri, if it's open.
func (s *Store) Get(uri string) (*Document, bool) {
	shard := s.shardFor(uri)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	return shard.cache.Get(uri)
}

// SetDiagnostics caches the result of the most recently completed analysis
// for uri. A no-op if the document was since closed.
func (s *Store) SetDiagnostics(uri string, diags []diagnostic.Diagnostic) {
	shard := s.shardFor(uri)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	doc, ok := shard.cache.Get(uri)
	if !ok {
		return
	}
	doc.Diagnostics = diags
}
