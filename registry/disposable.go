// Package registry holds the default catalogs consulted by the rule engine
// and the taint propagator: disposable types, taint sources, taint sinks,
// and sanitizers. Each registry is a small key→info map plus a
// heuristic-name-pattern list, populated at construction; callers may
// register additional entries at runtime.
package registry

import "strings"

// DisposableInfo describes one recognized disposable type or resource
// factory.
type DisposableInfo struct {
	Name           string
	AsyncDisposable bool
}

// DisposableRegistry recognizes built-in disposable types (file handles,
// stream readers/writers, disposable-stack kinds) and heuristic name
// prefixes for callables whose return value should be treated as
// disposable.
type DisposableRegistry struct {
	types    map[string]DisposableInfo
	prefixes []string
}

// NewDisposableRegistry returns a registry pre-populated with the built-in
// catalog.
func NewDisposableRegistry() *DisposableRegistry {
	r := &DisposableRegistry{types: make(map[string]DisposableInfo)}
	for _, t := range []DisposableInfo{
		{Name: "FileHandle", AsyncDisposable: true},
		{Name: "ReadStream", AsyncDisposable: true},
		{Name: "WriteStream", AsyncDisposable: true},
		{Name: "Readable", AsyncDisposable: false},
		{Name: "Writable", AsyncDisposable: false},
		{Name: "DisposableStack", AsyncDisposable: false},
		{Name: "AsyncDisposableStack", AsyncDisposable: true},
		{Name: "Connection", AsyncDisposable: true},
		{Name: "Pool", AsyncDisposable: true},
		{Name: "Client", AsyncDisposable: true},
	} {
		r.types[t.Name] = t
	}
	r.prefixes = []string{"acquire", "connect", "open", "createPool", "createConnection"}
	return r
}

// Lookup returns the registered disposable info for a type name, if any.
func (r *DisposableRegistry) Lookup(typeName string) (DisposableInfo, bool) {
	info, ok := r.types[typeName]
	return info, ok
}

// Register adds or overwrites an entry.
func (r *DisposableRegistry) Register(info DisposableInfo) {
	r.types[info.Name] = info
}

// LooksDisposable reports whether calleeName matches one of the known
// disposable-returning name prefixes (e.g. "acquireLock", "connectDB").
func (r *DisposableRegistry) LooksDisposable(calleeName string) bool {
	for _, p := range r.prefixes {
		if strings.HasPrefix(calleeName, p) {
			return true
		}
	}
	return false
}
