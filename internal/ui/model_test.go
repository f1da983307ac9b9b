package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/formulabar/internal/formula"
	"github.com/oakwood-commons/formulabar/internal/limiter"
	"github.com/oakwood-commons/formulabar/internal/suggest"
)

var catalog = []formula.Candidate{
	{ID: "v1", Name: "revenue"},
	{ID: "v2", Name: "rent"},
	{ID: "v3", Name: "rate"},
	{ID: "v4", Name: "returns"},
	{ID: "x", Name: "x"},
	{ID: "y", Name: "y"},
	{Name: "+"},
}

func catalogFetcher(_ context.Context, query string) ([]formula.Candidate, error) {
	out := []formula.Candidate{}
	for _, c := range catalog {
		if strings.HasPrefix(c.Name, query) {
			out = append(out, c)
		}
	}
	return out, nil
}

func newTestModel(t *testing.T, opts Options) *Model {
	t.Helper()
	if opts.Provider == nil {
		opts.Provider = suggest.NewProvider(suggest.FetcherFunc(catalogFetcher))
	}
	opts.NoColor = true
	opts.Synchronous = true
	return NewModel(opts)
}

func viewText(m *Model) string {
	return fmt.Sprint(m.View().Content)
}

func TestCommitRawTextAndShowResult(t *testing.T) {
	m := newTestModel(t, Options{})
	assert.NotContains(t, viewText(m), "= ", "no result line for an empty formula")

	ApplyStartupKeys(m, []string{"3<CR>", "\\+", "<CR>", "x<Esc>"})
	ApplyStartupKeys(m, []string{"x<CR>"})

	assert.Equal(t, []string{"3", "+", "x"}, m.Editor().Sequence().Displays())
	assert.True(t, m.Editor().Sequence()[1].IsOperator())
	assert.Contains(t, viewText(m), "= 8")
	assert.Equal(t, "", m.Editor().Input())
}

func TestIncompleteFormulaShowsError(t *testing.T) {
	m := newTestModel(t, Options{Initial: formula.ParseSequence("3", "+")})
	assert.Contains(t, viewText(m), "Error calculating formula: ")
}

func TestSuggestionsFlowIntoDropdown(t *testing.T) {
	m := newTestModel(t, Options{})
	ApplyStartupKeys(m, []string{"re"})

	assert.Equal(t, []string{"revenue", "rent", "returns"}, names(m.Editor().Suggestions()))
	assert.Contains(t, viewText(m), "  revenue v1")

	ApplyStartupKeys(m, []string{"<Down><Down>"})
	assert.Contains(t, viewText(m), "> rent")

	ApplyStartupKeys(m, []string{"<CR>"})
	seq := m.Editor().Sequence()
	require.Equal(t, 1, seq.Len())
	id, name, ok := seq[0].Operand()
	require.True(t, ok)
	assert.Equal(t, "v2", id)
	assert.Equal(t, "rent", name)
	assert.Empty(t, m.Editor().Suggestions())
}

func TestOperatorSuggestionsHiddenAfterOperator(t *testing.T) {
	m := newTestModel(t, Options{Initial: formula.ParseSequence("3", "+")})
	ApplyStartupKeys(m, []string{"\\+"})
	assert.Empty(t, m.Editor().Suggestions())

	m = newTestModel(t, Options{Initial: formula.ParseSequence("3")})
	ApplyStartupKeys(m, []string{"\\+"})
	assert.Equal(t, []string{"+"}, names(m.Editor().Suggestions()))
}

func TestBackspaceOnEmptyInputRemovesLastToken(t *testing.T) {
	m := newTestModel(t, Options{Initial: formula.ParseSequence("3", "+", "x")})
	ApplyStartupKeys(m, []string{"<BS>"})
	assert.Equal(t, []string{"3", "+"}, m.Editor().Sequence().Displays())

	ApplyStartupKeys(m, []string{"ab<BS>"})
	assert.Equal(t, "a", m.Editor().Input(), "backspace edits text when the field is not empty")
	assert.Equal(t, []string{"3", "+"}, m.Editor().Sequence().Displays())
}

func TestEscapeCancelsEntry(t *testing.T) {
	m := newTestModel(t, Options{})
	ApplyStartupKeys(m, []string{"re<Down><Esc>"})
	assert.Equal(t, "", m.Editor().Input())
	_, ok := m.Editor().Highlight()
	assert.False(t, ok)
	assert.Empty(t, m.Editor().Sequence())
}

func TestStaleResponsesAreDropped(t *testing.T) {
	opts := Options{Provider: suggest.NewProvider(suggest.FetcherFunc(catalogFetcher))}
	m := NewModel(opts)

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	require.NotNil(t, cmd)
	m.Update(tea.KeyPressMsg{Code: 'e', Text: "e"})

	m.Update(suggestionsMsg{Query: "r", Candidates: catalog[:4]})
	assert.Empty(t, m.Editor().Suggestions())

	m.Update(suggestionsMsg{Query: "re", Candidates: catalog[:2]})
	assert.Equal(t, []string{"revenue", "rent"}, names(m.Editor().Suggestions()))
}

func TestDebounceOnlyFiresForLatestQuery(t *testing.T) {
	m := NewModel(Options{
		Provider: suggest.NewProvider(suggest.FetcherFunc(catalogFetcher)),
		Debounce: time.Hour,
	})
	m.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	m.Update(tea.KeyPressMsg{Code: 'e', Text: "e"})

	_, cmd := m.Update(debounceMsg{ID: 1, Query: "r"})
	assert.Nil(t, cmd, "superseded debounce is ignored")

	_, cmd = m.Update(debounceMsg{ID: m.debounceID, Query: "re"})
	require.NotNil(t, cmd)
	msg, ok := cmd().(suggestionsMsg)
	require.True(t, ok)
	assert.Equal(t, "re", msg.Query)
	assert.Len(t, msg.Candidates, 3)
}

func TestFetchFailureDegradesToEmptyList(t *testing.T) {
	failing := suggest.FetcherFunc(func(context.Context, string) ([]formula.Candidate, error) {
		return nil, errors.New("connection refused")
	})
	m := newTestModel(t, Options{Provider: suggest.NewProvider(failing)})
	ApplyStartupKeys(m, []string{"re"})
	assert.Empty(t, m.Editor().Suggestions())

	ApplyStartupKeys(m, []string{"<CR>"})
	assert.Equal(t, []string{"re"}, m.Editor().Sequence().Displays(), "raw text still commits")
}

func TestSuggestionLimit(t *testing.T) {
	m := newTestModel(t, Options{Limit: limiter.Config{Limit: 2}})
	ApplyStartupKeys(m, []string{"r"})
	assert.Equal(t, []string{"revenue", "rent"}, names(m.Editor().Suggestions()))
}

func TestDropdownScrollsWithHighlight(t *testing.T) {
	m := newTestModel(t, Options{VisibleSuggestions: 2})
	ApplyStartupKeys(m, []string{"r"})
	require.Len(t, m.Editor().Suggestions(), 4)

	out := viewText(m)
	assert.Contains(t, out, "revenue")
	assert.NotContains(t, out, "rate")

	ApplyStartupKeys(m, []string{"<Down><Down><Down>"})
	out = viewText(m)
	assert.Contains(t, out, "> rate")
	assert.NotContains(t, out, "revenue")
	assert.Equal(t, 1, m.offset)

	ApplyStartupKeys(m, []string{"<Down><Down>"})
	assert.Equal(t, 0, m.offset, "wrapping to the top scrolls back")
}

func TestTokenMenuInsertAfter(t *testing.T) {
	m := newTestModel(t, Options{Initial: formula.ParseSequence("3", "+", "x")})
	ApplyStartupKeys(m, []string{"<A-Left><A-Left>"})
	assert.Equal(t, 1, m.selected)

	ApplyStartupKeys(m, []string{"<A-i>"})
	idx, ok := m.Editor().InsertCursor().Index()
	require.True(t, ok)
	assert.Equal(t, 2, idx)
	assert.Contains(t, viewText(m), caretGlyph)

	ApplyStartupKeys(m, []string{"y<CR>"})
	assert.Equal(t, []string{"3", "+", "y", "x"}, m.Editor().Sequence().Displays())
	assert.True(t, m.Editor().InsertCursor().IsEnd())
}

func TestEscapeKeepsInsertCursor(t *testing.T) {
	m := newTestModel(t, Options{Initial: formula.ParseSequence("3", "+", "x")})
	m.Editor().SetInsertAfter(0)

	ApplyStartupKeys(m, []string{"re<Esc>"})
	idx, ok := m.Editor().InsertCursor().Index()
	require.True(t, ok, "esc abandons the entry, not the insertion point")
	assert.Equal(t, 1, idx)
	assert.Equal(t, "", m.Editor().Input())

	ApplyStartupKeys(m, []string{"y<CR>"})
	assert.Equal(t, []string{"3", "y", "+", "x"}, m.Editor().Sequence().Displays())
}

func TestTokenMenuEditAndDelete(t *testing.T) {
	m := newTestModel(t, Options{Initial: formula.ParseSequence("3", "+", "x")})
	ApplyStartupKeys(m, []string{"<A-Left><A-e>"})
	assert.Equal(t, []string{"3", "+"}, m.Editor().Sequence().Displays())
	assert.Equal(t, "x", m.Editor().Input())
	assert.Equal(t, "x", m.input.Value())

	ApplyStartupKeys(m, []string{"<Esc><A-Right><A-d>"})
	assert.Equal(t, []string{"3"}, m.Editor().Sequence().Displays(), "a fresh selection starts at the last token")

	m = newTestModel(t, Options{})
	ApplyStartupKeys(m, []string{"<A-Left><A-d>"})
	assert.Equal(t, -1, m.selected)
}

func TestClickTokenSetsInsertCursor(t *testing.T) {
	m := newTestModel(t, Options{Initial: formula.ParseSequence("3", "+", "x")})
	spans := m.chipSpans()
	require.Len(t, spans, 3)
	assert.Equal(t, chipSpan{index: 1, start: 4, end: 7}, spans[1])

	m.Update(tea.MouseClickMsg{X: 5, Y: tokenRow, Button: tea.MouseLeft})
	idx, ok := m.Editor().InsertCursor().Index()
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	m.Update(tea.MouseClickMsg{X: 60, Y: tokenRow, Button: tea.MouseLeft})
	assert.True(t, m.Editor().InsertCursor().IsEnd(), "clicking past the chips clears the cursor")
}

func TestClickSuggestionCommitsIt(t *testing.T) {
	m := newTestModel(t, Options{})
	ApplyStartupKeys(m, []string{"re"})
	m.Update(tea.MouseClickMsg{X: 3, Y: firstSuggestion + 1, Button: tea.MouseLeft})
	assert.Equal(t, []string{"rent"}, m.Editor().Sequence().Displays())

	m.Update(tea.MouseClickMsg{X: 3, Y: firstSuggestion + 5, Button: tea.MouseLeft})
	assert.Equal(t, 1, m.Editor().Sequence().Len())
}

func TestScopeChangedMsg(t *testing.T) {
	m := newTestModel(t, Options{Initial: formula.ParseSequence("x")})
	m.Update(ScopeChangedMsg{Err: errors.New("bad yaml")})
	assert.Contains(t, viewText(m), "scope: bad yaml")
	m.Update(ScopeChangedMsg{})
	assert.NotContains(t, viewText(m), "scope:")
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, Options{})
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "", viewText(m))
}

func TestHelpLine(t *testing.T) {
	m := newTestModel(t, Options{ShowHelp: true})
	assert.Contains(t, viewText(m), "commit")
	m = newTestModel(t, Options{})
	assert.NotContains(t, viewText(m), "commit")
}

func names(cands []formula.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Name
	}
	return out
}
