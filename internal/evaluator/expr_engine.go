package evaluator

import (
	"github.com/expr-lang/expr"
)

// ExprEngine evaluates with expr-lang. It supports the full operator set,
// including `^` for exponentiation, and mixes integers and floats freely.
type ExprEngine struct{}

// NewExprEngine returns the default engine.
func NewExprEngine() *ExprEngine {
	return &ExprEngine{}
}

// Name implements Engine.
func (*ExprEngine) Name() string { return EngineExpr }

// Eval compiles the expression against the scope so unknown names are rejected
// at compile time, then runs it.
func (*ExprEngine) Eval(expression string, scope map[string]any) (any, error) {
	env := make(map[string]any, len(scope))
	for k, v := range scope {
		env[k] = v
	}
	program, err := expr.Compile(expression, expr.Env(env))
	if err != nil {
		return nil, err
	}
	return expr.Run(program, env)
}
