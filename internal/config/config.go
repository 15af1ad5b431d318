// Package config loads a project's checker settings from a tscheck.toml
// file, grounded on internal/project/modules.go's TOML-via-BurntSushi
// pattern: decode into an unexported shape whose fields are pointers
// (*bool/*int/*string), so a key's absence from the file is distinguishable
// from its present-but-zero value, and overlay only the keys that decoded
// non-nil on top of a Default. Unlike modules.go this package isn't
// resolving a dependency graph, just one file's worth of flat settings, so
// there is a single Load entry point rather than a project/module split.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"tschecker/internal/extcore"
)

// Config is one project's checker settings: the session-wide
// extcore.CheckerOptions flags plus the driver/CLI-level knobs
// cmd/surge/diagnose.go exposes as flags (§6's "Checker options", per
// SPEC_FULL.md's REDESIGN FLAG, become a loadable struct instead of a
// bare literal the caller must hand-assemble).
type Config struct {
	Checker extcore.CheckerOptions

	Jobs             int
	MaxDiagnostics   int
	NoWarnings       bool
	WarningsAsErrors bool
	CacheDir         string
}

// Default returns the settings a project with no tscheck.toml (or one
// that leaves every key unset) runs under: strict null checks and strict
// function types on, noUncheckedIndexedAccess and
// exactOptionalPropertyTypes off, any-suppression allowed, no
// parallelism cap (0 means "let the driver pick, one per file up to
// GOMAXPROCS" - matching cmd/surge's "0=auto" --jobs default), a generous
// diagnostics cap, and no on-disk cache.
func Default() Config {
	return Config{
		Checker: extcore.CheckerOptions{
			StrictNullChecks:           true,
			StrictFunctionTypes:        true,
			NoUncheckedIndexedAccess:   false,
			ExactOptionalPropertyTypes: false,
			AllowAnySuppression:        true,
		},
		Jobs:           0,
		MaxDiagnostics: 1000,
	}
}

// fileShape is the on-disk tscheck.toml layout: a [checker] section
// mirroring extcore.CheckerOptions' fields and a [driver] section for the
// remaining knobs, kept as two separate TOML tables since they're handed
// to different layers (internal/checker.Session vs internal/driver).
type fileShape struct {
	Checker struct {
		StrictNullChecks           *bool `toml:"strict_null_checks"`
		StrictFunctionTypes        *bool `toml:"strict_function_types"`
		NoUncheckedIndexedAccess   *bool `toml:"no_unchecked_indexed_access"`
		ExactOptionalPropertyTypes *bool `toml:"exact_optional_property_types"`
		AllowAnySuppression        *bool `toml:"allow_any_suppression"`
	} `toml:"checker"`
	Driver struct {
		Jobs             *int    `toml:"jobs"`
		MaxDiagnostics   *int    `toml:"max_diagnostics"`
		NoWarnings       *bool   `toml:"no_warnings"`
		WarningsAsErrors *bool   `toml:"warnings_as_errors"`
		CacheDir         *string `toml:"cache_dir"`
	} `toml:"driver"`
}

// Load reads path and overlays whichever keys it sets on top of Default,
// so a tscheck.toml that only names one flag leaves every other default
// untouched. A missing file is an error, as is a malformed one.
func Load(path string) (Config, error) {
	cfg := Default()
	var shape fileShape
	if _, err := toml.DecodeFile(path, &shape); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	overlay(&cfg, shape)
	return cfg, nil
}

func overlay(cfg *Config, shape fileShape) {
	if v := shape.Checker.StrictNullChecks; v != nil {
		cfg.Checker.StrictNullChecks = *v
	}
	if v := shape.Checker.StrictFunctionTypes; v != nil {
		cfg.Checker.StrictFunctionTypes = *v
	}
	if v := shape.Checker.NoUncheckedIndexedAccess; v != nil {
		cfg.Checker.NoUncheckedIndexedAccess = *v
	}
	if v := shape.Checker.ExactOptionalPropertyTypes; v != nil {
		cfg.Checker.ExactOptionalPropertyTypes = *v
	}
	if v := shape.Checker.AllowAnySuppression; v != nil {
		cfg.Checker.AllowAnySuppression = *v
	}
	if v := shape.Driver.Jobs; v != nil {
		cfg.Jobs = *v
	}
	if v := shape.Driver.MaxDiagnostics; v != nil {
		cfg.MaxDiagnostics = *v
	}
	if v := shape.Driver.NoWarnings; v != nil {
		cfg.NoWarnings = *v
	}
	if v := shape.Driver.WarningsAsErrors; v != nil {
		cfg.WarningsAsErrors = *v
	}
	if v := shape.Driver.CacheDir; v != nil {
		cfg.CacheDir = *v
	}
}
