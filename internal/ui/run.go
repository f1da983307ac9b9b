package ui

import (
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// RunModel starts the interactive formula bar and returns the final model.
// Width/height of 0 auto-detect the terminal size. startKeys are replayed
// before the program takes over the terminal. attach, when set, receives the
// program before it runs so background work can Send messages to it.
func RunModel(opts Options, startKeys []string, width, height int, attach func(*tea.Program), progOpts ...tea.ProgramOption) (*Model, error) {
	m := NewModel(opts)
	if width > 0 || height > 0 {
		w, h := terminalSize(width, height)
		m.Update(tea.WindowSizeMsg{Width: w, Height: h})
		progOpts = append(progOpts, tea.WithWindowSize(w, h))
	}
	ApplyStartupKeys(m, startKeys)

	prog := tea.NewProgram(m, progOpts...)
	if attach != nil {
		attach(prog)
	}
	final, err := prog.Run()
	if fm, ok := final.(*Model); ok && fm != nil {
		return fm, err
	}
	return m, err
}

// SnapshotConfig configures a one-shot render without a terminal.
type SnapshotConfig struct {
	Width     int
	Height    int
	StartKeys []string
}

// RenderSnapshot replays the start keys with fetches resolved inline and
// returns the rendered bar.
func RenderSnapshot(opts Options, cfg SnapshotConfig) string {
	opts.Synchronous = true
	m := NewModel(opts)
	w, h := terminalSize(cfg.Width, cfg.Height)
	m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	ApplyStartupKeys(m, cfg.StartKeys)
	return m.Render()
}

func terminalSize(width, height int) (int, int) {
	if width <= 0 || height <= 0 {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			if width <= 0 {
				width = w
			}
			if height <= 0 {
				height = h
			}
		}
	}
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	return width, height
}

// ApplyStartupKeys simulates key presses. Tokens may mix literal text with
// <...> keys, e.g. "re<Down><CR>". A leading backslash forces literal text.
// Commands returned by Update are dropped; pair with Options.Synchronous to
// see suggestions.
func ApplyStartupKeys(m *Model, keys []string) {
	if m == nil {
		return
	}
	for _, raw := range keys {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		if strings.HasPrefix(token, `\`) {
			typeText(m, strings.TrimPrefix(token, `\`))
			continue
		}
		for _, seg := range parseTokenSegments(token) {
			if !seg.isKey {
				typeText(m, seg.text)
				continue
			}
			if msg, ok := keyMsgFromToken(seg.text); ok {
				m.Update(msg)
			} else {
				typeText(m, seg.text)
			}
		}
	}
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

type tokenSegment struct {
	text  string
	isKey bool
}

// parseTokenSegments splits "<F1>abc<CR>" into key and literal segments.
func parseTokenSegments(token string) []tokenSegment {
	var segments []tokenSegment
	remaining := token
	for len(remaining) > 0 {
		startIdx := strings.Index(remaining, "<")
		if startIdx == -1 {
			segments = append(segments, tokenSegment{text: remaining})
			break
		}
		if startIdx > 0 {
			segments = append(segments, tokenSegment{text: remaining[:startIdx]})
		}
		endIdx := strings.Index(remaining[startIdx:], ">")
		if endIdx == -1 {
			segments = append(segments, tokenSegment{text: remaining[startIdx:]})
			break
		}
		segments = append(segments, tokenSegment{text: remaining[startIdx : startIdx+endIdx+1], isKey: true})
		remaining = remaining[startIdx+endIdx+1:]
	}
	return segments
}

// keyMsgFromToken parses a Vim-like key token such as <CR>, <BS>, <Down>,
// <A-Left> or <C-c>.
func keyMsgFromToken(token string) (tea.KeyPressMsg, bool) {
	inner := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(token, "<"), ">"))
	var mod tea.KeyMod
	if rest, ok := strings.CutPrefix(inner, "a-"); ok {
		mod, inner = tea.ModAlt, rest
	} else if rest, ok := strings.CutPrefix(inner, "m-"); ok {
		mod, inner = tea.ModAlt, rest
	} else if rest, ok := strings.CutPrefix(inner, "c-"); ok {
		mod, inner = tea.ModCtrl, rest
	}
	switch inner {
	case "esc", "escape":
		return tea.KeyPressMsg{Code: tea.KeyEscape, Mod: mod}, true
	case "cr", "enter", "return":
		return tea.KeyPressMsg{Code: tea.KeyEnter, Mod: mod}, true
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab, Mod: mod}, true
	case "space":
		return tea.KeyPressMsg{Code: ' ', Text: " ", Mod: mod}, true
	case "bs", "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace, Mod: mod}, true
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft, Mod: mod}, true
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight, Mod: mod}, true
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp, Mod: mod}, true
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown, Mod: mod}, true
	}
	if r := []rune(inner); len(r) == 1 && mod != 0 {
		return tea.KeyPressMsg{Code: r[0], Mod: mod}, true
	}
	return tea.KeyPressMsg{}, false
}
