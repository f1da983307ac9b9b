package config

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/formulabar/internal/evaluator"
	"github.com/oakwood-commons/formulabar/pkg/settings"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

// DefaultConfigYAML returns a copy of the embedded default config YAML bytes.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default decodes the embedded defaults.
func Default() (Config, error) {
	var cfg Config
	if len(embeddedDefaultConfig) == 0 {
		return cfg, fmt.Errorf("embedded default config is empty")
	}
	if err := yaml.Unmarshal(embeddedDefaultConfig, &cfg); err != nil {
		return cfg, fmt.Errorf("decode default config: %w", err)
	}
	return cfg, nil
}

// ResolvePath returns the explicit path if set, otherwise the XDG path
// ($XDG_CONFIG_HOME/formulabar/config.yaml) or ~/.config/formulabar/config.yaml
// when that file exists. An empty result means "defaults only".
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate = filepath.Join(xdg, settings.CliBinaryName, "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

// Load merges the file at path (if any) over the embedded defaults. A scope
// given in the file replaces the default scope rather than extending it.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return Merge(cfg, data)
}

// Merge decodes data over base. Keys absent from data keep their base values.
func Merge(base Config, data []byte) (Config, error) {
	cfg := base
	cfg.Evaluator.Scope = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Evaluator.Scope == nil {
		cfg.Evaluator.Scope = base.Evaluator.Scope
	}
	return cfg, nil
}

// Validate reports every problem in the configuration at once.
func (c Config) Validate() error {
	var result *multierror.Error

	if ep := strings.TrimSpace(c.Autocomplete.Endpoint); ep != "" {
		u, err := url.Parse(ep)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			result = multierror.Append(result, fmt.Errorf("autocomplete.endpoint %q must be an absolute http(s) URL", ep))
		}
	}
	if c.Autocomplete.Timeout < 0 {
		result = multierror.Append(result, fmt.Errorf("autocomplete.timeout must be non-negative"))
	}
	if c.Autocomplete.CacheTTL < 0 {
		result = multierror.Append(result, fmt.Errorf("autocomplete.cache_ttl must be non-negative"))
	}
	if c.Autocomplete.Debounce < 0 {
		result = multierror.Append(result, fmt.Errorf("autocomplete.debounce must be non-negative"))
	}
	if err := c.Autocomplete.SuggestionLimit().Validate(); err != nil {
		result = multierror.Append(result, fmt.Errorf("autocomplete.max_suggestions: %w", err))
	}
	if _, err := evaluator.NewEngine(c.Evaluator.Engine); err != nil {
		result = multierror.Append(result, fmt.Errorf("evaluator.engine: %w", err))
	}
	if _, err := c.ScopeBindings(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Evaluator.WatchScope && strings.TrimSpace(c.Evaluator.ScopeFile) == "" {
		result = multierror.Append(result, fmt.Errorf("evaluator.watch_scope requires evaluator.scope_file"))
	}
	if c.UI.VisibleSuggestions < 1 {
		result = multierror.Append(result, fmt.Errorf("ui.visible_suggestions must be at least 1, got %d", c.UI.VisibleSuggestions))
	}
	return result.ErrorOrNil()
}

// ScopeBindings converts evaluator.scope into a static scope.
func (c Config) ScopeBindings() (evaluator.StaticScope, error) {
	names := make([]string, 0, len(c.Evaluator.Scope))
	for k := range c.Evaluator.Scope {
		names = append(names, k)
	}
	sort.Strings(names)
	out := make(evaluator.StaticScope, len(names))
	for _, name := range names {
		v, err := evaluator.NormalizeValue(c.Evaluator.Scope[name])
		if err != nil {
			return nil, fmt.Errorf("evaluator.scope.%s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// YAML renders the configuration.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
