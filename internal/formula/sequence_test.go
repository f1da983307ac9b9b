package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(texts ...string) Sequence {
	return ParseSequence(texts...)
}

func TestParseTokenClassifiesOperators(t *testing.T) {
	for _, op := range Operators {
		tok := ParseToken(" " + string(op) + " ")
		assert.True(t, tok.IsOperator(), "symbol %q should parse as operator", op)
		got, ok := tok.Operator()
		require.True(t, ok)
		assert.Equal(t, op, got)
	}

	tok := ParseToken("x")
	assert.Equal(t, KindOperand, tok.Kind())
	id, name, ok := tok.Operand()
	require.True(t, ok)
	assert.Empty(t, id)
	assert.Equal(t, "x", name)

	// Multi-character text containing an operator is still an operand.
	assert.False(t, ParseToken("++").IsOperator())
}

func TestZeroTokenIsNeitherVariant(t *testing.T) {
	var tok Token
	assert.Equal(t, KindInvalid, tok.Kind())
	assert.Equal(t, "invalid", tok.Kind().String())
	assert.False(t, tok.IsOperator())
	_, ok := tok.Operator()
	assert.False(t, ok)
	_, _, ok = tok.Operand()
	assert.False(t, ok)
	assert.Equal(t, "", tok.Display())

	missing, ok := Sequence{}.Last()
	assert.False(t, ok)
	assert.False(t, missing.IsOperator())
	assert.False(t, Sequence{}.IsLastTokenOperator())
}

func TestNewOperatorRejectsUnknownSymbol(t *testing.T) {
	_, err := NewOperator("%")
	require.Error(t, err)
	assert.Panics(t, func() { MustOperator("%") })
}

func TestCandidateToken(t *testing.T) {
	tok := Candidate{ID: "42", Name: "revenue"}.Token()
	id, name, ok := tok.Operand()
	require.True(t, ok)
	assert.Equal(t, "42", id)
	assert.Equal(t, "revenue", name)
	assert.Equal(t, "revenue", tok.Display())
}

func TestInsertAtEveryValidIndex(t *testing.T) {
	base := seq("3", "+", "x", "*", "y")
	tok := NewOperand("", "z")
	for i := 0; i <= base.Len(); i++ {
		out := base.Insert(tok, At(i))
		require.Len(t, out, base.Len()+1)
		assert.Equal(t, "z", out[i].Display())

		rest := append(Sequence{}, out[:i]...)
		rest = append(rest, out[i+1:]...)
		assert.Equal(t, base.Displays(), rest.Displays(), "relative order preserved for index %d", i)
	}
}

func TestInsertOutOfRangeAppends(t *testing.T) {
	base := seq("3", "+")
	tok := NewOperand("", "y")
	want := base.Insert(tok, End)
	assert.Equal(t, []string{"3", "+", "y"}, want.Displays())

	for _, i := range []int{-1, -10, 3, 99} {
		assert.Equal(t, want, base.Insert(tok, At(i)), "index %d should degrade to append", i)
	}
}

func TestInsertAtIndexOne(t *testing.T) {
	out := seq("3", "+").Insert(NewOperand("", "y"), At(1))
	assert.Equal(t, []string{"3", "y", "+"}, out.Displays())
}

func TestInsertDoesNotMutateReceiver(t *testing.T) {
	base := make(Sequence, 2, 8)
	base[0] = ParseToken("1")
	base[1] = ParseToken("+")
	_ = base.Insert(ParseToken("2"), At(1))
	assert.Equal(t, []string{"1", "+"}, base.Displays())
}

func TestRemoveLast(t *testing.T) {
	assert.Equal(t, []string{"3", "+"}, seq("3", "+", "x").RemoveLast().Displays())
	assert.Empty(t, Sequence{}.RemoveLast())
	assert.Empty(t, Sequence(nil).RemoveLast())
}

func TestRemoveAtShiftsLeft(t *testing.T) {
	base := seq("a", "b", "c", "d")
	out := base.RemoveAt(1)
	assert.Equal(t, []string{"a", "c", "d"}, out.Displays())
	assert.Equal(t, []string{"a", "b", "c", "d"}, base.Displays())
}

func TestRemoveAtOutOfRangeIsNoop(t *testing.T) {
	base := seq("a", "b")
	for _, i := range []int{-1, 2, 100} {
		assert.Equal(t, base, base.RemoveAt(i))
	}
}

func TestIsLastTokenOperator(t *testing.T) {
	assert.False(t, Sequence{}.IsLastTokenOperator())
	assert.False(t, seq("3").IsLastTokenOperator())
	assert.True(t, seq("3", "+").IsLastTokenOperator())
	assert.True(t, seq("(").IsLastTokenOperator())
	// An operand that happens to be named like an operator is not an operator.
	assert.False(t, Sequence{NewOperand("1", "+")}.IsLastTokenOperator())
}

func TestCursorResolveAndClamp(t *testing.T) {
	assert.True(t, End.IsEnd())
	assert.Equal(t, 4, End.Resolve(4))
	assert.Equal(t, 2, At(2).Resolve(4))
	assert.Equal(t, 4, At(5).Resolve(4))
	assert.Equal(t, 4, At(-1).Resolve(4))

	assert.Equal(t, At(2), At(2).Clamp(2))
	assert.Equal(t, End, At(3).Clamp(2))

	i, ok := At(3).Index()
	assert.True(t, ok)
	assert.Equal(t, 3, i)
}

func TestSequenceString(t *testing.T) {
	assert.Equal(t, "3 + x", seq("3", "+", "x").String())
	assert.Equal(t, "", Sequence{}.String())
	assert.Equal(t, []string{"1", "2"}, ParseSequence("1", " ", "2").Displays())
}
