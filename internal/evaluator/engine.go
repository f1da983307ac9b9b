package evaluator

import (
	"fmt"
	"sort"
	"strings"
)

// Engine evaluates an expression string against variable bindings.
type Engine interface {
	Name() string
	Eval(expression string, scope map[string]any) (any, error)
}

const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineHCL  = "hcl"
)

// DefaultEngine is used when no engine is configured.
const DefaultEngine = EngineExpr

var engineFactories = map[string]func() (Engine, error){
	EngineExpr: func() (Engine, error) { return NewExprEngine(), nil },
	EngineCEL:  func() (Engine, error) { return NewCELEngine(), nil },
	EngineHCL:  func() (Engine, error) { return NewHCLEngine(), nil },
}

// EngineNames lists the registered engines in sorted order.
func EngineNames() []string {
	names := make([]string, 0, len(engineFactories))
	for name := range engineFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewEngine returns the engine registered under name. An empty name selects DefaultEngine.
func NewEngine(name string) (Engine, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultEngine
	}
	factory, ok := engineFactories[name]
	if !ok {
		return nil, fmt.Errorf("unknown evaluation engine %q (available: %s)", name, strings.Join(EngineNames(), ", "))
	}
	return factory()
}
