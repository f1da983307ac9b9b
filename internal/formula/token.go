// Package formula holds the token and sequence model of a formula: the closed
// operator set, named operands, the ordered token sequence and the optional
// insert cursor. Everything here is plain data; no I/O.
package formula

import (
	"fmt"
	"strings"
)

// Kind discriminates the two token variants.
type Kind int

const (
	// KindInvalid is the kind of the zero Token, which is neither variant.
	KindInvalid Kind = iota
	// KindOperator is one of the fixed operator symbols.
	KindOperator
	// KindOperand is a named value, either resolved from a suggestion or typed freely.
	KindOperand
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindOperator:
		return "operator"
	case KindOperand:
		return "operand"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Operator is a single operator symbol.
type Operator string

const (
	OpAdd      Operator = "+"
	OpSubtract Operator = "-"
	OpMultiply Operator = "*"
	OpDivide   Operator = "/"
	OpPower    Operator = "^"
	OpOpen     Operator = "("
	OpClose    Operator = ")"
)

// Operators lists the closed operator set in display order.
var Operators = []Operator{OpAdd, OpSubtract, OpMultiply, OpOpen, OpClose, OpPower, OpDivide}

// IsOperatorSymbol reports whether s is exactly one of the operator symbols.
func IsOperatorSymbol(s string) bool {
	for _, op := range Operators {
		if string(op) == s {
			return true
		}
	}
	return false
}

// Token is a tagged union of Operator and Operand. The zero value is not a
// valid token; build tokens with NewOperator, NewOperand or ParseToken.
type Token struct {
	kind Kind
	op   Operator
	id   string
	name string
}

// NewOperator returns an operator token. It returns an error when op is not in the operator set.
func NewOperator(op Operator) (Token, error) {
	if !IsOperatorSymbol(string(op)) {
		return Token{}, fmt.Errorf("unknown operator %q", op)
	}
	return Token{kind: KindOperator, op: op}, nil
}

// MustOperator is NewOperator for symbols known at compile time.
func MustOperator(op Operator) Token {
	t, err := NewOperator(op)
	if err != nil {
		panic(err)
	}
	return t
}

// NewOperand returns an operand token. id may be empty for free-form operands.
func NewOperand(id, name string) Token {
	return Token{kind: KindOperand, id: id, name: name}
}

// ParseToken turns committed free-form text into a token: an exact operator
// symbol becomes an Operator, anything else an Operand without an id.
// Surrounding whitespace is trimmed.
func ParseToken(text string) Token {
	text = strings.TrimSpace(text)
	if IsOperatorSymbol(text) {
		return Token{kind: KindOperator, op: Operator(text)}
	}
	return NewOperand("", text)
}

// Kind returns the variant of the token.
func (t Token) Kind() Kind { return t.kind }

// IsOperator reports whether the token is the Operator variant.
func (t Token) IsOperator() bool { return t.kind == KindOperator }

// Operator returns the operator symbol and true for operator tokens.
func (t Token) Operator() (Operator, bool) {
	if t.kind != KindOperator {
		return "", false
	}
	return t.op, true
}

// Operand returns the operand id and name and true for operand tokens.
func (t Token) Operand() (id, name string, ok bool) {
	if t.kind != KindOperand {
		return "", "", false
	}
	return t.id, t.name, true
}

// Display is the literal operator character or the operand name.
func (t Token) Display() string {
	switch t.kind {
	case KindOperator:
		return string(t.op)
	case KindOperand:
		return t.name
	default:
		return ""
	}
}

func (t Token) String() string {
	return t.Display()
}

// Candidate is a suggestion returned by the autocomplete backend. It has the
// same shape as an operand and is not part of a sequence until committed.
type Candidate struct {
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	Name string `json:"name" yaml:"name"`
}

// Token converts the candidate into an operand token.
func (c Candidate) Token() Token {
	return NewOperand(c.ID, c.Name)
}
