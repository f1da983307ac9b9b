// Package editor is the interaction state machine of the formula input. It
// turns user intents (commit, navigate, delete, edit) into sequence mutations
// and query changes. It knows nothing about terminals or HTTP; the UI layer maps
// raw key and mouse events onto these methods and performs the returned Effects.
package editor

import (
	"github.com/oakwood-commons/formulabar/internal/formula"
	"github.com/oakwood-commons/formulabar/internal/suggest"
)

// State is the coarse interaction state derived from the input buffer and suggestions.
type State int

const (
	StateIdle State = iota
	StateTyping
	StateSuggesting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTyping:
		return "typing"
	case StateSuggesting:
		return "suggesting"
	default:
		return "unknown"
	}
}

// Effect tells the caller what follow-up work an intent needs.
type Effect struct {
	// Handled is true when the intent consumed the event; the text field must
	// not also act on it (e.g. arrow keys must not move the caret).
	Handled bool
	// Focus asks the caller to return focus to the text field.
	Focus bool
	// QueryChanged is true when the live suggestion query key changed.
	QueryChanged bool
}

// Merge combines two effects.
func (e Effect) Merge(o Effect) Effect {
	return Effect{
		Handled:      e.Handled || o.Handled,
		Focus:        e.Focus || o.Focus,
		QueryChanged: e.QueryChanged || o.QueryChanged,
	}
}

const noHighlight = -1

// Editor owns the formula sequence, the insert cursor, the input buffer and
// the suggestion list for one mounted formula input. Not safe for concurrent
// use; the UI event loop is its only caller.
type Editor struct {
	seq    formula.Sequence
	insert formula.Cursor

	input string
	query string

	raw         []formula.Candidate
	suggestions []formula.Candidate
	highlight   int
}

// New returns an editor with an empty formula.
func New() *Editor {
	return &Editor{
		seq:         formula.Sequence{},
		suggestions: []formula.Candidate{},
		highlight:   noHighlight,
	}
}

// NewWithSequence returns an editor seeded with seq.
func NewWithSequence(seq formula.Sequence) *Editor {
	e := New()
	e.setSequence(append(formula.Sequence{}, seq...))
	return e
}

// Sequence returns the committed tokens.
func (e *Editor) Sequence() formula.Sequence { return e.seq }

// InsertCursor returns where the next committed token goes.
func (e *Editor) InsertCursor() formula.Cursor { return e.insert }

// Input returns the raw input buffer.
func (e *Editor) Input() string { return e.input }

// Query returns the live suggestion query key (the trimmed input).
func (e *Editor) Query() string { return e.query }

// Suggestions returns the filtered suggestion list.
func (e *Editor) Suggestions() []formula.Candidate { return e.suggestions }

// Highlight returns the highlighted suggestion index, if any.
func (e *Editor) Highlight() (int, bool) {
	if e.highlight == noHighlight {
		return 0, false
	}
	return e.highlight, true
}

// State derives the interaction state.
func (e *Editor) State() State {
	switch {
	case e.query == "":
		return StateIdle
	case len(e.suggestions) > 0:
		return StateSuggesting
	default:
		return StateTyping
	}
}

// SetInput replaces the input buffer. When the trimmed text differs from the
// live query, the query key changes and the previous suggestions are dropped.
func (e *Editor) SetInput(text string) Effect {
	e.input = text
	key := suggest.Key(text)
	if key == e.query {
		return Effect{}
	}
	e.query = key
	e.raw = nil
	e.refilter(true)
	return Effect{QueryChanged: true}
}

// ApplySuggestions installs candidates fetched for query. Results for any
// query other than the live one are stale and ignored; the return value
// reports whether the candidates were applied.
func (e *Editor) ApplySuggestions(query string, candidates []formula.Candidate) bool {
	if suggest.Key(query) != e.query {
		return false
	}
	e.raw = append([]formula.Candidate(nil), candidates...)
	e.refilter(true)
	return true
}

// Commit handles the commit key. With a highlighted suggestion the candidate
// is inserted; otherwise the trimmed input text is inserted as a free-form
// token. A blank input is a no-op.
func (e *Editor) Commit() Effect {
	if suggest.Key(e.input) == "" {
		return Effect{}
	}
	if h, ok := e.Highlight(); ok && h < len(e.suggestions) {
		return e.commitToken(e.suggestions[h].Token()).Merge(Effect{Handled: true})
	}
	return e.commitToken(formula.ParseToken(e.input)).Merge(Effect{Handled: true})
}

// CommitSuggestion inserts the suggestion at index directly, as a pointer
// selection does. Out-of-range indexes are ignored.
func (e *Editor) CommitSuggestion(index int) Effect {
	if index < 0 || index >= len(e.suggestions) {
		return Effect{}
	}
	return e.commitToken(e.suggestions[index].Token()).Merge(Effect{Handled: true, Focus: true})
}

func (e *Editor) commitToken(t formula.Token) Effect {
	e.setSequence(e.seq.Insert(t, e.insert))
	e.insert = formula.End
	e.highlight = noHighlight
	return e.SetInput("")
}

// DeleteBackward handles the delete-backward key. It only acts on an empty
// input buffer, removing the last token and clearing the insert cursor.
func (e *Editor) DeleteBackward() Effect {
	if e.input != "" {
		return Effect{}
	}
	e.setSequence(e.seq.RemoveLast())
	e.insert = formula.End
	return Effect{Handled: true, Focus: true}
}

// HighlightNext moves the highlight down, wrapping from the last item (or no
// highlight) to the first. It does nothing without suggestions.
func (e *Editor) HighlightNext() Effect {
	n := len(e.suggestions)
	if n == 0 {
		return Effect{}
	}
	if e.highlight == noHighlight || e.highlight >= n-1 {
		e.highlight = 0
	} else {
		e.highlight++
	}
	return Effect{Handled: true}
}

// HighlightPrev moves the highlight up, wrapping from the first item (or no
// highlight) to the last. It does nothing without suggestions.
func (e *Editor) HighlightPrev() Effect {
	n := len(e.suggestions)
	if n == 0 {
		return Effect{}
	}
	if e.highlight == noHighlight || e.highlight <= 0 || e.highlight > n-1 {
		e.highlight = n - 1
	} else {
		e.highlight--
	}
	return Effect{Handled: true}
}

// Cancel abandons the in-progress entry: highlight and input are cleared.
func (e *Editor) Cancel() Effect {
	e.highlight = noHighlight
	return e.SetInput("").Merge(Effect{Handled: true})
}

// SetInsertAfter points the insert cursor just after the token at index, so
// the next commit lands there. Indexes outside the sequence are ignored.
func (e *Editor) SetInsertAfter(index int) Effect {
	if index < 0 || index >= len(e.seq) {
		return Effect{}
	}
	e.insert = formula.At(index + 1)
	return Effect{Handled: true}
}

// ClearInsertCursor reverts to append-at-end.
func (e *Editor) ClearInsertCursor() {
	e.insert = formula.End
}

// ApplyTokenAction runs a per-token menu action. Edit removes the token and
// loads its display text into the input buffer.
func (e *Editor) ApplyTokenAction(index int, action Action) Effect {
	tok, ok := e.seq.At(index)
	if !ok {
		return Effect{}
	}
	switch action {
	case ActionDelete:
		e.setSequence(e.seq.RemoveAt(index))
		return Effect{Handled: true}
	case ActionEdit:
		e.setSequence(e.seq.RemoveAt(index))
		return e.SetInput(tok.Display()).Merge(Effect{Handled: true, Focus: true})
	default:
		return Effect{}
	}
}

// setSequence swaps the sequence, re-validates the insert cursor and
// re-runs the context filter.
func (e *Editor) setSequence(s formula.Sequence) {
	e.seq = s
	e.insert = e.insert.Clamp(len(s))
	e.refilter(false)
}

// refilter recomputes the filtered list. The highlight resets whenever the list
// changes, or unconditionally when the raw candidates were replaced.
func (e *Editor) refilter(replaced bool) {
	next := suggest.Filter(e.raw, e.seq)
	if replaced || !equalCandidates(next, e.suggestions) {
		e.highlight = noHighlight
	}
	e.suggestions = next
}

func equalCandidates(a, b []formula.Candidate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
