// Package config ingests the external configuration file (Component K): a
// TOML `kaizen.toml`, discovered by walking parent directories, decoded
// with BurntSushi/toml, and normalized into a rules.Config the registry can
// apply. This is glue — it never decides rule semantics itself, it only
// translates the typed file into the registry's configuration shape.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"kaizen/diagnostic"
	"kaizen/rules"
)

// FileName is the config file BurntSushi/toml decodes and Discover looks
// for while walking parent directories.
const FileName = "kaizen.toml"

// RulesSection mirrors the `[rules]` table in kaizen.toml.
type RulesSection struct {
	Enabled       []string          `toml:"enabled"`
	Disabled      []string          `toml:"disabled"`
	Severity      map[string]string `toml:"severity"`
	Quality       *bool             `toml:"quality"`
	Security      *bool             `toml:"security"`
	MinConfidence string            `toml:"min_confidence"`
}

// LicenseSection mirrors the `[license]` table.
type LicenseSection struct {
	APIKey string `toml:"api_key"`
}

// File is the typed decode target for kaizen.toml.
type File struct {
	Include []string       `toml:"include"`
	Exclude []string       `toml:"exclude"`
	Rules   RulesSection   `toml:"rules"`
	License LicenseSection `toml:"license"`
}

// Warning is a non-fatal problem found while decoding a config file: an
// unrecognized top-level or `[rules]` key. Per §7, unknown keys never fail
// the load.
type Warning struct {
	Message string
}

// Load decodes the TOML file at path. A missing file is not an error — the
// caller should fall back to defaults; Load only returns an error for an
// unreadable or malformed file, each carrying the path/position per §7.
func Load(path string) (*File, []Warning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil, nil
		}
		return nil, nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var f File
	meta, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	var warnings []Warning
	for _, key := range meta.Undecoded() {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("%s: unrecognized key %q", path, key)})
	}
	return &f, warnings, nil
}

// Discover walks from startDir up through its parents looking for
// kaizen.toml, returning the first one found. Returns "" if none is found
// before reaching the filesystem root.
func Discover(startDir string) string {
	dir := startDir
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ToRulesConfig normalizes a decoded File plus the active tier (resolved
// separately from license validation, see Tier) into a rules.Config. Severity
// strings that fail to parse are skipped with a warning rather than
// rejecting the whole config.
func ToRulesConfig(f *File, tier rules.Tier) (rules.Config, []Warning) {
	cfg := rules.DefaultConfig()
	cfg.ActiveTier = tier
	cfg.Enabled = f.Rules.Enabled
	cfg.Disabled = f.Rules.Disabled

	var warnings []Warning
	cfg.Severity = map[string]diagnostic.Severity{}
	for id, sev := range f.Rules.Severity {
		parsed, err := diagnostic.ParseSeverity(sev)
		if err != nil {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("rules.severity[%s]: %v", id, err)})
			continue
		}
		cfg.Severity[id] = parsed
	}

	if f.Rules.Quality != nil {
		cfg.QualityOn = *f.Rules.Quality
	}
	if f.Rules.Security != nil {
		cfg.SecurityOn = *f.Rules.Security
	}

	if f.Rules.MinConfidence != "" {
		parsed, err := diagnostic.ParseConfidence(f.Rules.MinConfidence)
		if err != nil {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("rules.min_confidence: %v", err)})
		} else {
			cfg.MinConfidence = parsed
		}
	}

	return cfg, warnings
}
