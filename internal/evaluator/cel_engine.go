package evaluator

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"
)

// CELEngine evaluates with CEL. Scope names are declared as dynamic variables.
// CEL has no `^` operator and does not mix int and double arithmetic; such
// formulas fail evaluation.
type CELEngine struct {
	mu      sync.Mutex
	env     *cel.Env
	envVars string
}

// NewCELEngine returns a CEL engine. The environment is built lazily per set of scope names.
func NewCELEngine() *CELEngine {
	return &CELEngine{}
}

// Name implements Engine.
func (*CELEngine) Name() string { return EngineCEL }

// environment returns a CEL environment declaring every scope name, reusing the
// previous one while the names are unchanged.
func (c *CELEngine) environment(scope map[string]any) (*cel.Env, error) {
	names := make([]string, 0, len(scope))
	for k := range scope {
		names = append(names, k)
	}
	sort.Strings(names)
	sig := strings.Join(names, "\x00")

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.env != nil && c.envVars == sig {
		return c.env, nil
	}
	opts := make([]cel.EnvOption, 0, len(names)+1)
	for _, name := range names {
		opts = append(opts, cel.Variable(name, cel.DynType))
	}
	opts = append(opts, celext.Math())
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	c.env = env
	c.envVars = sig
	return env, nil
}

// Eval compiles, plans and evaluates the expression.
func (c *CELEngine) Eval(expression string, scope map[string]any) (any, error) {
	env, err := c.environment(scope)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	activation := make(map[string]any, len(scope))
	for k, v := range scope {
		activation[k] = v
	}
	out, _, err := prg.Eval(activation)
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	return celToGo(out), nil
}

func celToGo(val ref.Val) any {
	switch v := val.(type) {
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.Bool:
		return bool(v)
	case types.String:
		return string(v)
	case nil:
		return nil
	}
	return val.Value()
}
