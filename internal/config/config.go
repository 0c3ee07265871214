// Package config loads engine configuration from TOML. Profile overrides
// are validated here so a bad weight vector fails at startup, never during
// a lecture run.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/dicelabs/dice-engine/internal/facet"
	"github.com/dicelabs/dice-engine/internal/modes"
)

// #region config-types

// Config is the root configuration.
type Config struct {
	Engine   Engine                        `toml:"engine"`
	Profiles map[string]map[string]float64 `toml:"profiles"`
}

// Engine holds the per-run defaults. Flags override these.
type Engine struct {
	DBPath       string  `toml:"db_path"`
	Mode         string  `toml:"mode"`
	SafeMode     bool    `toml:"safe_mode"`
	EmpiricalMix float64 `toml:"empirical_mix"`
	Verbose      bool    `toml:"verbose"`
}

// #endregion config-types

// #region defaults

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Engine: Engine{
			DBPath:       "dice.db",
			Mode:         string(modes.ModeOpen),
			SafeMode:     false,
			EmpiricalMix: 0.5,
		},
	}
}

// #endregion defaults

// #region load

// Load reads a TOML config file and validates it.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// #endregion load

// #region validate

// Validate checks the mode name and every profile override. The empirical
// mix is a continuous dial and clamps at use, so it is not rejected here.
func (c Config) Validate() error {
	if _, err := modes.ParseMode(c.Engine.Mode); err != nil {
		return err
	}
	if c.Engine.DBPath == "" {
		return fmt.Errorf("engine.db_path must not be empty")
	}
	_, err := c.WeightOverrides()
	return err
}

// #endregion validate

// #region overrides

// WeightOverrides converts the [profiles] tables into typed weight
// vectors. Unknown modes or facets and vectors not summing to 1 are
// configuration errors.
func (c Config) WeightOverrides() (map[modes.Mode]modes.Weights, error) {
	if len(c.Profiles) == 0 {
		return nil, nil
	}
	out := make(map[modes.Mode]modes.Weights, len(c.Profiles))
	for modeName, table := range c.Profiles {
		mode, err := modes.ParseMode(modeName)
		if err != nil {
			return nil, err
		}
		var w modes.Weights
		for facetName, weight := range table {
			f, err := facet.Parse(facetName)
			if err != nil {
				return nil, fmt.Errorf("profile %s: %w", modeName, err)
			}
			w[f] = weight
		}
		out[mode] = w
	}
	// The resolver re-validates sums; run it now so Load fails fast.
	if _, err := modes.NewResolver(out); err != nil {
		return nil, err
	}
	return out, nil
}

// #endregion overrides
