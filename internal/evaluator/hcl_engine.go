package evaluator

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// HCLEngine evaluates with the HCL native expression syntax. Arithmetic is
// arbitrary precision; `^` is not an HCL operator.
type HCLEngine struct{}

// NewHCLEngine returns an HCL engine.
func NewHCLEngine() *HCLEngine {
	return &HCLEngine{}
}

// Name implements Engine.
func (*HCLEngine) Name() string { return EngineHCL }

// Eval parses the expression as an HCL snippet and evaluates it with the scope
// bound as top-level variables.
func (*HCLEngine) Eval(expression string, scope map[string]any) (any, error) {
	vars := make(map[string]cty.Value, len(scope))
	for k, v := range scope {
		cv, err := toCty(v)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", k, err)
		}
		vars[k] = cv
	}
	expr, diags := hclsyntax.ParseExpression([]byte(expression), "formula", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, diags
	}
	v, diags := expr.Value(&hcl.EvalContext{Variables: vars})
	if diags.HasErrors() {
		return nil, diags
	}
	return fromCty(v)
}

func toCty(v any) (cty.Value, error) {
	switch n := v.(type) {
	case int:
		return cty.NumberIntVal(int64(n)), nil
	case int64:
		return cty.NumberIntVal(n), nil
	case int32:
		return cty.NumberIntVal(int64(n)), nil
	case uint64:
		return cty.NumberUIntVal(n), nil
	case float64:
		return cty.NumberFloatVal(n), nil
	case float32:
		return cty.NumberFloatVal(float64(n)), nil
	case bool:
		return cty.BoolVal(n), nil
	case string:
		return cty.StringVal(n), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported value type %T", v)
	}
}

func fromCty(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("result is not known")
	}
	switch v.Type() {
	case cty.Number:
		return v.AsBigFloat(), nil
	case cty.String:
		return v.AsString(), nil
	case cty.Bool:
		return v.True(), nil
	default:
		return nil, fmt.Errorf("unsupported result type %s", v.Type().FriendlyName())
	}
}
