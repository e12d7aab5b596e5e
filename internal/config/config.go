package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lotas/tabwart/internal/archive"
	"github.com/lotas/tabwart/internal/groups"
)

// Config holds the user-facing settings of the engine.
type Config struct {
	Retention            archive.Retention
	CloseIncognitoOnExit bool
	GroupNames           map[string]string // rootID -> custom group name
	MatchPolicy          groups.MatchPolicy
	SaveDebounce         time.Duration
}

// fileConfig is the TOML shape of the config file.
type fileConfig struct {
	Retention            string            `toml:"retention"`
	CloseIncognitoOnExit bool              `toml:"close_incognito_on_exit"`
	SaveDebounceMs       int               `toml:"save_debounce_ms"`
	GroupNames           map[string]string `toml:"group_names"`
	Match                matchConfig       `toml:"match"`
}

type matchConfig struct {
	IgnoreScheme        *bool `toml:"ignore_scheme"`
	IgnoreFragment      *bool `toml:"ignore_fragment"`
	IgnoreTrailingSlash *bool `toml:"ignore_trailing_slash"`
	IgnoreHostCase      *bool `toml:"ignore_host_case"`
	IgnoreQuery         *bool `toml:"ignore_query"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Retention:    archive.Month,
		GroupNames:   map[string]string{},
		MatchPolicy:  groups.DefaultMatchPolicy(),
		SaveDebounce: 100 * time.Millisecond,
	}
}

// DefaultPath returns ~/.config/tabwart/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "tabwart", "config.toml"), nil
}

// Load reads the config file at path, layering it over defaults. A missing
// file is not an error — defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if fc.Retention != "" {
		r, err := archive.ParseRetention(fc.Retention)
		if err != nil {
			return nil, err
		}
		cfg.Retention = r
	}
	cfg.CloseIncognitoOnExit = fc.CloseIncognitoOnExit
	if fc.SaveDebounceMs > 0 {
		cfg.SaveDebounce = time.Duration(fc.SaveDebounceMs) * time.Millisecond
	}
	for k, v := range fc.GroupNames {
		cfg.GroupNames[k] = v
	}

	applyFlag(&cfg.MatchPolicy.IgnoreScheme, fc.Match.IgnoreScheme)
	applyFlag(&cfg.MatchPolicy.IgnoreFragment, fc.Match.IgnoreFragment)
	applyFlag(&cfg.MatchPolicy.IgnoreTrailingSlash, fc.Match.IgnoreTrailingSlash)
	applyFlag(&cfg.MatchPolicy.IgnoreHostCase, fc.Match.IgnoreHostCase)
	applyFlag(&cfg.MatchPolicy.IgnoreQuery, fc.Match.IgnoreQuery)

	return cfg, nil
}

func applyFlag(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
