// Package evaluator renders a token sequence to an expression string and
// computes its value against a variable scope. Evaluate is total: failures come
// back as a descriptive string, never as a panic.
package evaluator

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/formulabar/internal/formula"
)

// ErrorPrefix starts every failure string returned by Evaluate.
const ErrorPrefix = "Error calculating formula: "

// EvaluationFailure wraps an engine rejection of a rendered expression.
type EvaluationFailure struct {
	Expression string
	Err        error
}

func (e *EvaluationFailure) Error() string {
	return e.Err.Error()
}

func (e *EvaluationFailure) Unwrap() error {
	return e.Err
}

// Evaluator binds an engine to a scope source.
type Evaluator struct {
	engine Engine
	scope  ScopeSource
	log    logr.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger used for evaluation failures (V(1)).
func WithLogger(l logr.Logger) Option {
	return func(e *Evaluator) {
		e.log = l
	}
}

// New returns an evaluator. A nil engine selects the default engine and a nil
// scope the documented demo bindings.
func New(engine Engine, scope ScopeSource, opts ...Option) *Evaluator {
	if engine == nil {
		engine = NewExprEngine()
	}
	if scope == nil {
		scope = DefaultScope()
	}
	e := &Evaluator{engine: engine, scope: scope, log: logr.Discard()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the engine in use.
func (e *Evaluator) Engine() Engine {
	return e.engine
}

// Scope returns the current variable bindings.
func (e *Evaluator) Scope() map[string]any {
	return e.scope.Scope()
}

// Render joins the display values of seq with single spaces.
func Render(seq formula.Sequence) string {
	return seq.String()
}

// Result evaluates seq. An empty sequence yields "" without invoking the engine.
// Engine errors and panics are returned as *EvaluationFailure.
func (e *Evaluator) Result(seq formula.Sequence) (out string, err error) {
	expression := Render(seq)
	if expression == "" {
		return "", nil
	}
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = &EvaluationFailure{Expression: expression, Err: fmt.Errorf("%v", r)}
		}
	}()
	v, err := e.engine.Eval(expression, e.scope.Scope())
	if err != nil {
		return "", &EvaluationFailure{Expression: expression, Err: err}
	}
	return FormatResult(v), nil
}

// Evaluate is Result with failures folded into a human readable string.
func (e *Evaluator) Evaluate(seq formula.Sequence) string {
	out, err := e.Result(seq)
	if err != nil {
		e.log.V(1).Info("formula evaluation failed", "expression", Render(seq), "engine", e.engine.Name(), "error", err.Error())
		return ErrorPrefix + err.Error()
	}
	return out
}

// FormatResult renders an engine value the way a calculator would display it:
// integral floats without a fraction, non-finite values by name.
func FormatResult(v any) string {
	switch n := v.(type) {
	case nil:
		return "null"
	case string:
		return n
	case bool:
		return strconv.FormatBool(n)
	case int:
		return strconv.Itoa(n)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", n)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", n)
	case float32:
		return formatFloat(float64(n))
	case float64:
		return formatFloat(n)
	case *big.Float:
		f, _ := n.Float64()
		return formatFloat(f)
	case fmt.Stringer:
		return n.String()
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-7 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
