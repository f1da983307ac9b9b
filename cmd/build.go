package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/formulabar/internal/config"
	"github.com/oakwood-commons/formulabar/internal/evaluator"
	"github.com/oakwood-commons/formulabar/internal/formula"
	"github.com/oakwood-commons/formulabar/internal/suggest"
	"github.com/oakwood-commons/formulabar/internal/ui"
)

// buildProvider returns nil when no endpoint is configured.
func buildProvider(cfg config.Config, lgr logr.Logger) (*suggest.Provider, error) {
	endpoint := strings.TrimSpace(cfg.Autocomplete.Endpoint)
	if endpoint == "" {
		return nil, nil
	}
	client, err := suggest.NewHTTPClient(endpoint, suggest.WithTimeout(cfg.Autocomplete.Timeout.D()))
	if err != nil {
		return nil, err
	}
	return suggest.NewProvider(client,
		suggest.WithCache(suggest.NewCache(cfg.Autocomplete.CacheTTL.D())),
		suggest.WithLogger(lgr.WithName("suggest")),
	), nil
}

// buildScope layers the configured scope, the scope file and --var bindings,
// later layers winning. The file scope is returned separately for watching.
func buildScope(cfg config.Config, vars map[string]string, lgr logr.Logger) (evaluator.ScopeSource, *evaluator.FileScope, error) {
	base, err := cfg.ScopeBindings()
	if err != nil {
		return nil, nil, err
	}
	layers := evaluator.Layered{base}

	var fileScope *evaluator.FileScope
	if path := strings.TrimSpace(cfg.Evaluator.ScopeFile); path != "" {
		fileScope, err = evaluator.LoadFileScope(path, lgr.WithName("scope"))
		if err != nil {
			return nil, nil, err
		}
		layers = append(layers, fileScope)
	}
	if len(vars) > 0 {
		overrides, err := evaluator.ParseBindings(vars)
		if err != nil {
			return nil, nil, fmt.Errorf("--var: %w", err)
		}
		layers = append(layers, overrides)
	}
	return layers, fileScope, nil
}

func buildEvaluator(cfg config.Config, vars map[string]string, lgr logr.Logger) (*evaluator.Evaluator, *evaluator.FileScope, error) {
	engine, err := evaluator.NewEngine(cfg.Evaluator.Engine)
	if err != nil {
		return nil, nil, err
	}
	scope, fileScope, err := buildScope(cfg, vars, lgr)
	if err != nil {
		return nil, nil, err
	}
	return evaluator.New(engine, scope, evaluator.WithLogger(lgr.WithName("evaluator"))), fileScope, nil
}

func uiOptions(ctx context.Context, cfg config.Config, provider *suggest.Provider, ev *evaluator.Evaluator, initial formula.Sequence, lgr logr.Logger) ui.Options {
	return ui.Options{
		Provider:           provider,
		Evaluator:          ev,
		Debounce:           cfg.Autocomplete.Debounce.D(),
		Limit:              cfg.Autocomplete.SuggestionLimit(),
		VisibleSuggestions: cfg.UI.VisibleSuggestions,
		Prompt:             cfg.UI.Prompt,
		Placeholder:        cfg.UI.Placeholder,
		NoColor:            cfg.UI.NoColor,
		ShowHelp:           cfg.UI.ShowHelp,
		Initial:            initial,
		Logger:             lgr.WithName("ui"),
		Context:            ctx,
	}
}
