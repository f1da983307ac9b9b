// Package config defines the formulabar configuration file, its embedded
// defaults and validation.
package config

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/formulabar/internal/limiter"
)

// Config is the merged configuration.
type Config struct {
	App          AppConfig          `json:"app" yaml:"app"`
	Autocomplete AutocompleteConfig `json:"autocomplete" yaml:"autocomplete"`
	Evaluator    EvaluatorConfig    `json:"evaluator" yaml:"evaluator"`
	UI           UIConfig           `json:"ui" yaml:"ui"`
}

// AppConfig holds process-level settings.
type AppConfig struct {
	Name    string `json:"name" yaml:"name"`
	LogFile string `json:"log_file" yaml:"log_file"`
	Debug   bool   `json:"debug" yaml:"debug"`
}

// AutocompleteConfig configures the suggestion backend.
type AutocompleteConfig struct {
	Endpoint       string   `json:"endpoint" yaml:"endpoint"`
	Timeout        Duration `json:"timeout" yaml:"timeout"`
	CacheTTL       Duration `json:"cache_ttl" yaml:"cache_ttl"`
	Debounce       Duration `json:"debounce" yaml:"debounce"`
	MaxSuggestions int      `json:"max_suggestions" yaml:"max_suggestions"`
}

// EvaluatorConfig selects the evaluation engine and variable bindings.
type EvaluatorConfig struct {
	Engine     string         `json:"engine" yaml:"engine"`
	Scope      map[string]any `json:"scope" yaml:"scope"`
	ScopeFile  string         `json:"scope_file" yaml:"scope_file"`
	WatchScope bool           `json:"watch_scope" yaml:"watch_scope"`
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	Prompt             string `json:"prompt" yaml:"prompt"`
	Placeholder        string `json:"placeholder" yaml:"placeholder"`
	NoColor            bool   `json:"no_color" yaml:"no_color"`
	VisibleSuggestions int    `json:"visible_suggestions" yaml:"visible_suggestions"`
	ShowHelp           bool   `json:"show_help" yaml:"show_help"`
}

// SuggestionLimit returns the cap applied to each fetched candidate list.
func (a AutocompleteConfig) SuggestionLimit() limiter.Config {
	return limiter.Config{Limit: a.MaxSuggestions}
}

// Duration is a time.Duration written as a Go duration string ("150ms").
type Duration time.Duration

// D returns the value as a time.Duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalYAML accepts duration strings and bare integers (seconds).
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if parsed, err := time.ParseDuration(s); err == nil {
		*d = Duration(parsed)
		return nil
	}
	var secs int64
	if err := node.Decode(&secs); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	return fmt.Errorf("line %d: invalid duration %q", node.Line, s)
}

// MarshalYAML writes the duration string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// MarshalJSON writes the duration string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
