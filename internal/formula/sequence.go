package formula

import "strings"

// Cursor is an optional index into a Sequence. The zero value means "append at end".
type Cursor struct {
	index int
	set   bool
}

// End is the append-at-end cursor.
var End = Cursor{}

// At returns a cursor pointing at index i. Validity is checked when the cursor is used.
func At(i int) Cursor {
	return Cursor{index: i, set: true}
}

// Index returns the raw index and whether the cursor is set.
func (c Cursor) Index() (int, bool) {
	return c.index, c.set
}

// IsEnd reports whether the cursor means append-at-end.
func (c Cursor) IsEnd() bool { return !c.set }

// Resolve maps the cursor onto a sequence of the given length. Unset cursors and
// cursors outside [0, length] resolve to length (append).
func (c Cursor) Resolve(length int) int {
	if !c.set || c.index < 0 || c.index > length {
		return length
	}
	return c.index
}

// Clamp returns the cursor unchanged while it is valid for length and End otherwise.
func (c Cursor) Clamp(length int) Cursor {
	if !c.set || c.index < 0 || c.index > length {
		return End
	}
	return c
}

// Sequence is the ordered token list that is the formula. Methods never modify
// the receiver's backing array; each mutation returns a fresh Sequence.
type Sequence []Token

// Len returns the number of tokens.
func (s Sequence) Len() int { return len(s) }

// Insert places t at the cursor position, or appends when the cursor is End or out of range.
func (s Sequence) Insert(t Token, at Cursor) Sequence {
	i := at.Resolve(len(s))
	out := make(Sequence, 0, len(s)+1)
	out = append(out, s[:i]...)
	out = append(out, t)
	out = append(out, s[i:]...)
	return out
}

// RemoveLast drops the final token. Empty sequences are returned as-is.
func (s Sequence) RemoveLast() Sequence {
	if len(s) == 0 {
		return s
	}
	return s.clone()[:len(s)-1]
}

// RemoveAt drops the token at index. Out-of-range indexes are a no-op.
func (s Sequence) RemoveAt(index int) Sequence {
	if index < 0 || index >= len(s) {
		return s
	}
	out := make(Sequence, 0, len(s)-1)
	out = append(out, s[:index]...)
	out = append(out, s[index+1:]...)
	return out
}

// At returns the token at index and false when index is out of range.
func (s Sequence) At(index int) (Token, bool) {
	if index < 0 || index >= len(s) {
		return Token{}, false
	}
	return s[index], true
}

// Last returns the final token and false for an empty sequence.
func (s Sequence) Last() (Token, bool) {
	return s.At(len(s) - 1)
}

// IsLastTokenOperator is true iff the sequence is non-empty and ends with an operator.
func (s Sequence) IsLastTokenOperator() bool {
	last, ok := s.Last()
	return ok && last.IsOperator()
}

// Displays returns each token's display value in order.
func (s Sequence) Displays() []string {
	out := make([]string, len(s))
	for i, t := range s {
		out[i] = t.Display()
	}
	return out
}

// String joins display values with a single space.
func (s Sequence) String() string {
	return strings.Join(s.Displays(), " ")
}

func (s Sequence) clone() Sequence {
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// ParseSequence builds a sequence from free-form texts using ParseToken.
// Blank entries are skipped.
func ParseSequence(texts ...string) Sequence {
	out := make(Sequence, 0, len(texts))
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		out = append(out, ParseToken(text))
	}
	return out
}
