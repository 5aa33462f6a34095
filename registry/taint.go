package registry

import "strings"

// SourceCategory names a category of tainted input.
type SourceCategory string

const (
	UserInput   SourceCategory = "user-input"
	Environment SourceCategory = "environment"
	Filesystem  SourceCategory = "filesystem"
	Network     SourceCategory = "network"
)

// SinkCategory names a category of dangerous sink.
type SinkCategory string

const (
	SqlInjection       SinkCategory = "SqlInjection"
	XssSink            SinkCategory = "XssSink"
	CommandInjection   SinkCategory = "CommandInjection"
	CodeExecution      SinkCategory = "CodeExecution"
	PrototypePollution SinkCategory = "PrototypePollution"
)

// PropertyMatcher recognizes a tainted-source property access, e.g. a
// request object's body/query/params, or process.env/argv.
type PropertyMatcher struct {
	Object   string // e.g. "req", "request"
	Property string // e.g. "body", "query", "params"
}

// SourcePattern is one taint-source entry: a category plus the property and
// whole-expression shapes that introduce it.
type SourcePattern struct {
	Category         SourceCategory
	PropertyMatchers []PropertyMatcher
	// ExpressionMatchers are whole dotted-expression patterns, e.g. "process.env".
	ExpressionMatchers []string
}

// SourceRegistry is the taint-sources catalog.
type SourceRegistry struct {
	patterns []SourcePattern
}

// NewSourceRegistry returns a registry pre-populated with the default
// source catalog.
func NewSourceRegistry() *SourceRegistry {
	return &SourceRegistry{patterns: []SourcePattern{
		{
			Category: UserInput,
			PropertyMatchers: []PropertyMatcher{
				{Object: "req", Property: "body"},
				{Object: "req", Property: "query"},
				{Object: "req", Property: "params"},
				{Object: "request", Property: "body"},
				{Object: "request", Property: "query"},
				{Object: "request", Property: "params"},
			},
		},
		{
			Category:           Environment,
			ExpressionMatchers: []string{"process.env"},
			PropertyMatchers: []PropertyMatcher{
				{Object: "process", Property: "argv"},
				{Object: "process", Property: "env"},
			},
		},
		{
			Category: Filesystem,
			ExpressionMatchers: []string{
				"fs.readFileSync", "fs.readFile", "fs.promises.readFile",
			},
		},
		{
			Category: Network,
			ExpressionMatchers: []string{
				"fetch", "http.get", "https.get", "axios.get",
			},
		},
	}}
}

// MatchProperty returns the category of a recognized object.property access.
func (r *SourceRegistry) MatchProperty(object, property string) (SourceCategory, bool) {
	for _, p := range r.patterns {
		for _, m := range p.PropertyMatchers {
			if m.Object == object && m.Property == property {
				return p.Category, true
			}
		}
	}
	return "", false
}

// MatchExpression returns the category of a recognized dotted expression
// such as "process.env.API_KEY" (matched by prefix against registered
// whole-expression patterns).
func (r *SourceRegistry) MatchExpression(expr string) (SourceCategory, bool) {
	for _, p := range r.patterns {
		for _, m := range p.ExpressionMatchers {
			if expr == m || strings.HasPrefix(expr, m+".") || strings.HasPrefix(expr, m+"(") {
				return p.Category, true
			}
		}
	}
	return "", false
}

// Register adds a source pattern to the catalog.
func (r *SourceRegistry) Register(p SourcePattern) {
	r.patterns = append(r.patterns, p)
}

// SinkPattern is one taint-sink entry: a category plus the call and
// assignment shapes that consume tainted values dangerously.
type SinkPattern struct {
	Category SinkCategory
	// CallPatterns are dotted-callee or bare-function-name substrings, e.g.
	// "cursor.execute", "exec", "eval".
	CallPatterns []string
	// AssignmentPatterns recognize `object.property = tainted` shapes, e.g.
	// `element.innerHTML = …` or `obj.__proto__ = …`. An empty Object
	// matches any object expression, since the dangerous part is the
	// property being assigned, not what it's assigned on.
	AssignmentPatterns []PropertyMatcher
}

// SinkRegistry is the taint-sinks catalog.
type SinkRegistry struct {
	patterns []SinkPattern
}

// NewSinkRegistry returns a registry pre-populated with the default sink
// catalog covering the minimum required categories.
func NewSinkRegistry() *SinkRegistry {
	return &SinkRegistry{patterns: []SinkPattern{
		{Category: SqlInjection, CallPatterns: []string{
			"query", "execute", "cursor.execute", "db.query", "connection.query",
		}},
		{Category: XssSink,
			CallPatterns: []string{"document.write", "dangerouslySetInnerHTML"},
			AssignmentPatterns: []PropertyMatcher{
				{Property: "innerHTML"}, {Property: "outerHTML"},
			},
		},
		{Category: CommandInjection, CallPatterns: []string{
			"exec", "execSync", "spawn", "child_process.exec", "system",
		}},
		{Category: CodeExecution, CallPatterns: []string{
			"eval", "Function", "setTimeout", "setInterval", "vm.runInContext",
		}},
		{Category: PrototypePollution,
			CallPatterns: []string{"merge", "extend", "Object.assign"},
			AssignmentPatterns: []PropertyMatcher{
				{Property: "__proto__"},
			},
		},
	}}
}

// MatchCall returns the sink category of calleeText if it matches one of
// the registered call patterns (substring match, case-sensitive).
func (r *SinkRegistry) MatchCall(calleeText string) (SinkCategory, bool) {
	for _, p := range r.patterns {
		for _, pat := range p.CallPatterns {
			if strings.Contains(calleeText, pat) {
				return p.Category, true
			}
		}
	}
	return "", false
}

// MatchAssignment returns the sink category of an `object.property = …`
// assignment target, if property (and, when registered, object) matches one
// of the registered assignment patterns.
func (r *SinkRegistry) MatchAssignment(object, property string) (SinkCategory, bool) {
	for _, p := range r.patterns {
		for _, m := range p.AssignmentPatterns {
			if m.Property == property && (m.Object == "" || m.Object == object) {
				return p.Category, true
			}
		}
	}
	return "", false
}

// Register adds a sink pattern to the catalog.
func (r *SinkRegistry) Register(p SinkPattern) {
	r.patterns = append(r.patterns, p)
}

// Categories lists every sink category known to this registry, in
// declaration order.
func (r *SinkRegistry) Categories() []SinkCategory {
	seen := make(map[SinkCategory]bool)
	var out []SinkCategory
	for _, p := range r.patterns {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// SanitizerPattern names a neutralizer and the sink category it clears.
type SanitizerPattern struct {
	Category SinkCategory
	// CallPatterns are dotted-callee substrings recognized as sanitizing
	// calls for Category, e.g. "DOMPurify.sanitize".
	CallPatterns []string
}

// SanitizerRegistry is the sanitizers catalog.
type SanitizerRegistry struct {
	patterns []SanitizerPattern
}

// NewSanitizerRegistry returns a registry pre-populated with the default
// sanitizer catalog.
func NewSanitizerRegistry() *SanitizerRegistry {
	return &SanitizerRegistry{patterns: []SanitizerPattern{
		{Category: CommandInjection, CallPatterns: []string{"shellEscape", "shlex.quote"}},
		{Category: XssSink, CallPatterns: []string{"DOMPurify.sanitize", "escapeHtml", "sanitizeHtml"}},
		{Category: SqlInjection, CallPatterns: []string{"parameterize", "prepare", "escape"}},
		{Category: PrototypePollution, CallPatterns: []string{"Object.freeze", "structuredClone"}},
	}}
}

// MatchCall returns the sink category that calleeText neutralizes, if it
// matches a registered sanitizer call pattern.
func (r *SanitizerRegistry) MatchCall(calleeText string) (SinkCategory, bool) {
	for _, p := range r.patterns {
		for _, pat := range p.CallPatterns {
			if strings.Contains(calleeText, pat) {
				return p.Category, true
			}
		}
	}
	return "", false
}

// Register adds a sanitizer pattern to the catalog.
func (r *SanitizerRegistry) Register(p SanitizerPattern) {
	r.patterns = append(r.patterns, p)
}
