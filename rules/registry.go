package rules

import (
	"sort"

	"kaizen/diagnostic"
)

// Config is the normalized form of the external configuration's `[rules]`
// table (Component K feeds this in from a parsed kaizen.toml).
type Config struct {
	ActiveTier    Tier
	Enabled       []string
	Disabled      []string
	Severity      map[string]diagnostic.Severity
	QualityOn     bool
	SecurityOn    bool
	MinConfidence diagnostic.Confidence
}

// DefaultConfig enables every rule at its default severity and tier Free,
// with no confidence floor.
func DefaultConfig() Config {
	return Config{
		ActiveTier:    Free,
		Severity:      map[string]diagnostic.Severity{},
		QualityOn:     true,
		SecurityOn:    true,
		MinConfidence: diagnostic.Low,
	}
}

// entry pairs a Rule with its derived runtime state.
type entry struct {
	rule     Rule
	enabled  bool
	severity diagnostic.Severity
}

// Registry holds rules by id, applies tier/enable/disable/severity/category
// configuration, and runs every enabled rule in deterministic order.
// Component F.
type Registry struct {
	entries       []*entry
	byID          map[string]*entry
	minConfidence diagnostic.Confidence
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: map[string]*entry{}}
}

// Default returns a registry pre-populated with the canonical quality and
// security rule catalog (§4.F "Representative rules"), configured with
// DefaultConfig.
func Default() *Registry {
	r := NewRegistry()
	for _, rule := range []Rule{
		NoVar{},
		NoConsole{},
		Eqeqeq{},
		NoEval{},
		NoUnusedVars{},
		NoSQLInjection,
		NoXSS,
		NoCommandInjection,
		NoEvalInjection,
		NoPrototypePollution,
		NoWeakHashing{},
		NoInsecureRandom{},
		NoRedos{},
	} {
		r.Register(rule)
	}
	r.Configure(DefaultConfig())
	return r
}

// Register adds a rule to the registry. Registering a rule with an id
// already present replaces the prior entry.
func (r *Registry) Register(rule Rule) {
	e := &entry{rule: rule, enabled: true, severity: rule.Metadata().DefaultSeverity}
	if old, ok := r.byID[rule.Metadata().ID]; ok {
		*old = *e
		return
	}
	r.byID[rule.Metadata().ID] = e
	r.entries = append(r.entries, e)
}

// Lookup finds a rule by its stable id.
func (r *Registry) Lookup(id string) (Rule, bool) {
	e, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return e.rule, true
}

// All returns every registered rule's metadata, in registration order.
func (r *Registry) All() []Metadata {
	out := make([]Metadata, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.rule.Metadata()
	}
	return out
}

// Configure applies: (1) filter by min_tier vs active tier, (2) the
// enabled/disabled lists and category toggles, (3) per-rule severity
// overrides. It does not touch min_confidence, which is applied to the
// final diagnostic list by run_all / the facade.
func (r *Registry) Configure(cfg Config) {
	enabledSet := toSet(cfg.Enabled)
	disabledSet := toSet(cfg.Disabled)
	hasAllowlist := len(cfg.Enabled) > 0

	for _, e := range r.entries {
		md := e.rule.Metadata()
		enabled := md.MinTier <= cfg.ActiveTier
		if enabled && hasAllowlist {
			enabled = enabledSet[md.ID]
		}
		if enabled && disabledSet[md.ID] {
			enabled = false
		}
		if enabled && md.Category == Quality && !cfg.QualityOn {
			enabled = false
		}
		if enabled && md.Category == Security && !cfg.SecurityOn {
			enabled = false
		}
		e.enabled = enabled

		if override, ok := cfg.Severity[md.ID]; ok {
			e.severity = override
		} else {
			e.severity = md.DefaultSeverity
		}
	}
	r.minConfidence = cfg.MinConfidence
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// RunAll invokes every enabled rule's Check, concatenates the results,
// overrides severity per the configured map, drops diagnostics below
// min_confidence, then sorts the final list by (file, start line, start
// column, rule id) — the deterministic order §4.F and §4.H both specify.
func (r *Registry) RunAll(ctx *Context) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	ordered := make([]*entry, len(r.entries))
	copy(ordered, r.entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].rule.Metadata().ID < ordered[j].rule.Metadata().ID
	})

	for _, e := range ordered {
		if !e.enabled {
			continue
		}
		for _, d := range e.rule.Check(ctx) {
			d.Severity = e.severity
			// Confidence is ordered High(0) < Medium(1) < Low(2); a
			// diagnostic is dropped once it is less confident than the
			// configured floor.
			if d.Confidence > r.minConfidence {
				continue
			}
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return diagnostic.Less(out[i], out[j]) })
	return out
}

// NeedsSemantic reports whether any currently-enabled rule requests the
// semantic model, so the facade can build it lazily.
func (r *Registry) NeedsSemantic() bool {
	for _, e := range r.entries {
		if !e.enabled {
			continue
		}
		if sr, ok := e.rule.(SemanticRule); ok && sr.NeedsSemantic() {
			return true
		}
	}
	return false
}

// NeedsTaint reports whether any currently-enabled rule requests taint
// findings, so the facade can build the DFG/taint analysis lazily.
func (r *Registry) NeedsTaint() bool {
	for _, e := range r.entries {
		if !e.enabled {
			continue
		}
		if tr, ok := e.rule.(TaintRule); ok && tr.NeedsTaint() {
			return true
		}
	}
	return false
}
