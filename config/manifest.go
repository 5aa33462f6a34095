package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"kaizen/rules"
)

// TierManifest describes which rule ids belong to which subscription tier
// — the concrete backing for the rule registry entry's min_tier field and
// for the `license.api_key`-driven tier unlock (§6). Adapted from the
// teacher's remote JSON bundle manifest (ruleset/manifest.go,
// ruleset/types.go): same "named bundles of rule ids" shape, but loaded
// from a local YAML document describing tiers rather than fetched over
// HTTP as a rule-bundle zip index, since this tool's rules are compiled
// into the binary rather than downloaded (§13 OQ2 decision).
type TierManifest struct {
	Tiers []TierBundle `yaml:"tiers"`
}

// TierBundle is one tier's rule-id membership.
type TierBundle struct {
	Name    string   `yaml:"name"`
	RuleIDs []string `yaml:"rule_ids"`
}

// LoadTierManifest decodes a tier manifest YAML document from path.
func LoadTierManifest(path string) (*TierManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tier manifest %s: %w", path, err)
	}
	var m TierManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing tier manifest %s: %w", path, err)
	}
	return &m, nil
}

// TierOf looks up which tier a rule id belongs to, by name ("free", "pro",
// "enterprise"). Unknown ids default to Free so an unrecognized
// newly-added rule is never silently hidden behind a paywall.
func (m *TierManifest) TierOf(ruleID string) rules.Tier {
	for _, bundle := range m.Tiers {
		for _, id := range bundle.RuleIDs {
			if id == ruleID {
				return tierByName(bundle.Name)
			}
		}
	}
	return rules.Free
}

func tierByName(name string) rules.Tier {
	switch name {
	case "pro":
		return rules.Pro
	case "enterprise":
		return rules.Enterprise
	default:
		return rules.Free
	}
}

// ResolveTier determines the active tier from an API key: an empty key
// degrades to Free silently (§7 "License validation failure / offline:
// degrade to Free tier silently"). Validating a non-empty key against the
// license server is the license glue's job (§1 out-of-scope collaborator);
// this function only maps the outcome: an empty key or one that was not
// validated gives Free, a validated key gives Enterprise.
func ResolveTier(apiKey string, validated bool) rules.Tier {
	if apiKey == "" || !validated {
		return rules.Free
	}
	return rules.Enterprise
}

// DefaultTierManifest is the compiled-in tier manifest used when no
// external tier manifest file is configured: every representative rule in
// §4.F's catalog is Free tier, matching each rule's own Metadata().MinTier.
func DefaultTierManifest() *TierManifest {
	return &TierManifest{Tiers: []TierBundle{{
		Name: "free",
		RuleIDs: []string{
			"Q001", "Q030", "Q032", "Q033", "Q034",
			"S001", "S002", "S003", "S005", "S011", "S012", "S020", "S021",
		},
	}}}
}
