package suggest

import "github.com/oakwood-commons/formulabar/internal/formula"

// Filter narrows raw candidates by formula context. Directly after an operator,
// candidates whose name is itself an operator symbol are dropped; otherwise the
// candidates pass through unchanged. The result is always a new slice.
func Filter(raw []formula.Candidate, seq formula.Sequence) []formula.Candidate {
	out := make([]formula.Candidate, 0, len(raw))
	afterOperator := seq.IsLastTokenOperator()
	for _, c := range raw {
		if afterOperator && formula.IsOperatorSymbol(c.Name) {
			continue
		}
		out = append(out, c)
	}
	return out
}
