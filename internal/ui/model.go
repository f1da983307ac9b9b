// Package ui is the Bubble Tea front end of the formula bar: committed tokens
// as chips, a text field, the suggestion dropdown and the live result.
package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/formulabar/internal/editor"
	"github.com/oakwood-commons/formulabar/internal/evaluator"
	"github.com/oakwood-commons/formulabar/internal/formula"
	"github.com/oakwood-commons/formulabar/internal/limiter"
	"github.com/oakwood-commons/formulabar/internal/suggest"
)

// Layout rows. The token line is row 0, the text field row 1, and the
// dropdown starts right below it.
const (
	tokenRow        = 0
	inputRow        = 1
	firstSuggestion = 2
)

// Options configures a Model.
type Options struct {
	// Provider serves suggestions; nil disables the dropdown.
	Provider  *suggest.Provider
	Evaluator *evaluator.Evaluator
	// Debounce delays the fetch after the query changes; 0 fetches at once.
	Debounce time.Duration
	// Limit caps each fetched candidate list.
	Limit limiter.Config
	// VisibleSuggestions is the dropdown height in rows.
	VisibleSuggestions int
	Prompt             string
	Placeholder        string
	NoColor            bool
	ShowHelp           bool
	Initial            formula.Sequence
	Logger             logr.Logger
	// Context bounds suggestion requests.
	Context context.Context
	// Synchronous resolves fetches inside Update instead of returning a
	// command. Used for snapshots and scripted key presses.
	Synchronous bool
}

// debounceMsg fires when the quiet period after a query change has passed.
type debounceMsg struct {
	ID    int
	Query string
}

// suggestionsMsg carries the outcome of one fetch.
type suggestionsMsg struct {
	Query      string
	Candidates []formula.Candidate
	Err        error
}

// ScopeChangedMsg reports a reload of file-backed variable bindings.
type ScopeChangedMsg struct {
	Err error
}

// chipSpan is the horizontal extent of one token chip on the token row.
type chipSpan struct {
	index      int
	start, end int
}

// Model is the formula bar tea.Model.
type Model struct {
	opts   Options
	ed     *editor.Editor
	input  textinput.Model
	keys   KeyMap
	help   help.Model
	theme  Theme
	log    logr.Logger
	ctx    context.Context
	limit  limiter.Config
	rows   int
	width  int
	height int

	debounceID int
	offset     int
	// selected is the token picked with the token menu, -1 for none.
	selected int
	// scopeErr is the last scope reload failure.
	scopeErr error
	quitting bool
}

// NewModel builds a focused formula bar.
func NewModel(opts Options) *Model {
	ti := textinput.New()
	ti.Prompt = opts.Prompt
	ti.Placeholder = opts.Placeholder
	ti.Focus()

	if opts.Evaluator == nil {
		opts.Evaluator = evaluator.New(nil, nil)
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	rows := opts.VisibleSuggestions
	if rows <= 0 {
		rows = 6
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Model{
		opts:     opts,
		ed:       editor.NewWithSequence(opts.Initial),
		input:    ti,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		theme:    ThemeFor(opts.NoColor),
		log:      log,
		ctx:      ctx,
		limit:    opts.Limit,
		rows:     rows,
		width:    80,
		height:   24,
		selected: -1,
	}
}

// Editor exposes the interaction state, mainly for callers printing the
// final formula.
func (m *Model) Editor() *editor.Editor { return m.ed }

// Result evaluates the current sequence for display.
func (m *Model) Result() string {
	return m.opts.Evaluator.Evaluate(m.ed.Sequence())
}

// Init starts the cursor blinking.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.SetWidth(max(10, m.width-runewidth.StringWidth(m.opts.Prompt)-1))
		return m, nil

	case debounceMsg:
		if msg.ID != m.debounceID || msg.Query != m.ed.Query() {
			return m, nil
		}
		return m, m.fetch(msg.Query)

	case suggestionsMsg:
		m.applySuggestions(msg)
		return m, nil

	case ScopeChangedMsg:
		m.scopeErr = msg.Err
		if msg.Err != nil {
			m.log.Error(msg.Err, "scope reload failed")
		}
		return m, nil

	case tea.MouseClickMsg:
		return m, m.handleClick(msg.Mouse())

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Commit):
		m.selected = -1
		return m, m.apply(m.ed.Commit())

	case key.Matches(msg, m.keys.Down):
		eff := m.ed.HighlightNext()
		m.follow()
		return m, m.apply(eff)

	case key.Matches(msg, m.keys.Up):
		eff := m.ed.HighlightPrev()
		m.follow()
		return m, m.apply(eff)

	case key.Matches(msg, m.keys.Cancel):
		m.selected = -1
		return m, m.apply(m.ed.Cancel())

	case key.Matches(msg, m.keys.Delete):
		if eff := m.ed.DeleteBackward(); eff.Handled {
			m.selected = -1
			return m, m.apply(eff)
		}

	case key.Matches(msg, m.keys.PrevToken):
		m.moveSelection(-1)
		return m, nil

	case key.Matches(msg, m.keys.NextToken):
		m.moveSelection(1)
		return m, nil

	case key.Matches(msg, m.keys.InsertAfter):
		if m.selected >= 0 {
			eff := m.ed.SetInsertAfter(m.selected)
			m.selected = -1
			return m, m.apply(eff.Merge(editor.Effect{Focus: true}))
		}
		return m, nil

	case key.Matches(msg, m.keys.EditToken):
		return m, m.tokenAction(editor.ActionEdit)

	case key.Matches(msg, m.keys.DeleteToken):
		return m, m.tokenAction(editor.ActionDelete)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == m.ed.Input() {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.apply(m.ed.SetInput(m.input.Value())))
}

func (m *Model) tokenAction(action editor.Action) tea.Cmd {
	if m.selected < 0 {
		return nil
	}
	eff := m.ed.ApplyTokenAction(m.selected, action)
	m.selected = -1
	return m.apply(eff)
}

// moveSelection steps the token menu selection, starting from the last token.
func (m *Model) moveSelection(delta int) {
	n := m.ed.Sequence().Len()
	if n == 0 {
		m.selected = -1
		return
	}
	switch {
	case m.selected < 0:
		m.selected = n - 1
	default:
		m.selected = (m.selected + delta + n) % n
	}
}

// apply performs the follow-up work of an editor effect.
func (m *Model) apply(eff editor.Effect) tea.Cmd {
	var cmds []tea.Cmd
	if m.input.Value() != m.ed.Input() {
		m.input.SetValue(m.ed.Input())
		m.input.CursorEnd()
	}
	if eff.Focus {
		cmds = append(cmds, m.input.Focus())
	}
	if eff.QueryChanged {
		m.offset = 0
		cmds = append(cmds, m.scheduleFetch())
	}
	return tea.Batch(cmds...)
}

// scheduleFetch requests suggestions for the live query after the debounce.
func (m *Model) scheduleFetch() tea.Cmd {
	query := m.ed.Query()
	if m.opts.Provider == nil || query == "" {
		return nil
	}
	m.debounceID++
	if m.opts.Synchronous {
		m.applySuggestions(m.fetchNow(query))
		return nil
	}
	if m.opts.Debounce <= 0 {
		return m.fetch(query)
	}
	id := m.debounceID
	return tea.Tick(m.opts.Debounce, func(time.Time) tea.Msg {
		return debounceMsg{ID: id, Query: query}
	})
}

func (m *Model) fetch(query string) tea.Cmd {
	return func() tea.Msg {
		return m.fetchNow(query)
	}
}

func (m *Model) fetchNow(query string) suggestionsMsg {
	cands, err := m.opts.Provider.FetchSuggestions(m.ctx, query)
	return suggestionsMsg{Query: query, Candidates: cands, Err: err}
}

func (m *Model) applySuggestions(msg suggestionsMsg) {
	cands := msg.Candidates
	if msg.Err != nil {
		var ff *suggest.FetchFailure
		if !errors.As(msg.Err, &ff) {
			m.log.Error(msg.Err, "suggestions unavailable", "query", msg.Query)
		}
		cands = []formula.Candidate{}
	}
	cands = limiter.Apply(m.limit, cands)
	if !m.ed.ApplySuggestions(msg.Query, cands) {
		m.log.V(1).Info("discarding stale suggestions", "query", msg.Query, "live_query", m.ed.Query())
		return
	}
	m.offset = 0
}

// follow scrolls the dropdown so the highlighted row stays visible.
func (m *Model) follow() {
	h, ok := m.ed.Highlight()
	if !ok {
		h = -1
	}
	m.offset = limiter.Follow(m.offset, h, m.rows, len(m.ed.Suggestions()))
}

func (m *Model) handleClick(mouse tea.Mouse) tea.Cmd {
	if mouse.Button != tea.MouseLeft {
		return nil
	}
	switch {
	case mouse.Y == tokenRow:
		for _, span := range m.chipSpans() {
			if mouse.X >= span.start && mouse.X < span.end {
				m.selected = span.index
				return m.apply(m.ed.SetInsertAfter(span.index).Merge(editor.Effect{Focus: true}))
			}
		}
		m.selected = -1
		m.ed.ClearInsertCursor()
		return nil
	case mouse.Y >= firstSuggestion:
		start, end := m.window()
		idx := start + mouse.Y - firstSuggestion
		if idx < end {
			m.selected = -1
			return m.apply(m.ed.CommitSuggestion(idx))
		}
	}
	return nil
}

// window returns the visible slice of the dropdown.
func (m *Model) window() (int, int) {
	return limiter.Config{Limit: m.rows, Offset: m.offset}.Range(len(m.ed.Suggestions()))
}

// chipSpans lays out the token row the same way tokenLine renders it.
func (m *Model) chipSpans() []chipSpan {
	seq := m.ed.Sequence()
	caret := m.caretIndex()
	spans := make([]chipSpan, 0, seq.Len())
	x := 0
	for i, tok := range seq {
		if i == caret {
			x += runewidth.StringWidth(caretGlyph) + 1
		}
		w := runewidth.StringWidth(tok.Display()) + 2
		spans = append(spans, chipSpan{index: i, start: x, end: x + w})
		x += w + 1
	}
	return spans
}

const caretGlyph = "▏"

// caretIndex is the chip index the caret is drawn before, or -1 when
// committing appends.
func (m *Model) caretIndex() int {
	idx, ok := m.ed.InsertCursor().Index()
	if !ok {
		return -1
	}
	return idx
}

func (m *Model) tokenLine() string {
	seq := m.ed.Sequence()
	if seq.Len() == 0 {
		return m.theme.Empty.Render("no tokens yet")
	}
	caret := m.caretIndex()
	parts := make([]string, 0, seq.Len()+1)
	for i, tok := range seq {
		if i == caret {
			parts = append(parts, m.theme.Caret.Render(caretGlyph))
		}
		parts = append(parts, m.theme.Chip(tok, i == m.selected).Render(tok.Display()))
	}
	if caret >= seq.Len() {
		parts = append(parts, m.theme.Caret.Render(caretGlyph))
	}
	return strings.Join(parts, " ")
}

func (m *Model) dropdown() []string {
	items := m.ed.Suggestions()
	start, end := m.window()
	h, hasHighlight := m.ed.Highlight()
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		c := items[i]
		marker := "  "
		style := m.theme.Row
		if hasHighlight && i == h {
			marker = "> "
			style = m.theme.Highlight
		}
		line := style.Render(marker + c.Name)
		if c.ID != "" && c.ID != c.Name {
			line += " " + m.theme.RowID.Render(c.ID)
		}
		lines = append(lines, line)
	}
	return lines
}

// Render returns the bar as plain lines without terminal modes.
func (m *Model) Render() string {
	lines := []string{m.tokenLine(), m.input.View()}
	lines = append(lines, m.dropdown()...)

	if seq := m.ed.Sequence(); seq.Len() > 0 {
		if out, err := m.opts.Evaluator.Result(seq); err != nil {
			lines = append(lines, m.theme.ResultError.Render(evaluator.ErrorPrefix+err.Error()))
		} else {
			lines = append(lines, m.theme.Result.Render("= "+out))
		}
	}
	if m.scopeErr != nil {
		lines = append(lines, m.theme.ResultError.Render("scope: "+m.scopeErr.Error()))
	}
	if m.opts.ShowHelp {
		lines = append(lines, "", m.help.View(m.keys))
	}
	return strings.Join(lines, "\n")
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}
	v := tea.NewView(m.Render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}
