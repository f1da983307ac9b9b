package evaluator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ScopeSource supplies the variable bindings a formula is evaluated against.
// Implementations return a map the caller may keep but must not modify.
type ScopeSource interface {
	Scope() map[string]any
}

// StaticScope is a fixed set of bindings.
type StaticScope map[string]any

// Scope implements ScopeSource.
func (s StaticScope) Scope() map[string]any {
	out := make(map[string]any, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// DefaultScope returns the demo bindings x = 5, y = 10.
func DefaultScope() StaticScope {
	return StaticScope{"x": 5, "y": 10}
}

// Layered merges sources left to right; later sources win on name clashes.
type Layered []ScopeSource

// Scope implements ScopeSource.
func (l Layered) Scope() map[string]any {
	out := map[string]any{}
	for _, src := range l {
		if src == nil {
			continue
		}
		for k, v := range src.Scope() {
			out[k] = v
		}
	}
	return out
}

// ParseBindings converts name=value strings (already split) into a static
// scope. Values must be numbers; integers stay integers.
func ParseBindings(pairs map[string]string) (StaticScope, error) {
	out := make(StaticScope, len(pairs))
	names := make([]string, 0, len(pairs))
	for k := range pairs {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		key := strings.TrimSpace(name)
		if !isIdentifier(key) {
			return nil, fmt.Errorf("invalid variable name %q", name)
		}
		v, err := ParseNumber(pairs[name])
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", key, err)
		}
		out[key] = v
	}
	return out, nil
}

// ParseNumber parses an integer or floating point literal.
func ParseNumber(s string) (any, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return int(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", s)
	}
	return f, nil
}

// NormalizeValue checks that v can be bound in every engine and narrows
// integer kinds to int.
func NormalizeValue(v any) (any, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64, bool:
		return n, nil
	case string:
		return ParseNumber(n)
	default:
		return nil, fmt.Errorf("unsupported value %v (%T)", v, v)
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
