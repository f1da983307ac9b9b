package editor

import (
	"fmt"
	"strings"
)

// Action is a per-token menu entry.
type Action string

const (
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Actions lists the menu entries in display order.
var Actions = []Action{ActionEdit, ActionDelete}

// ParseAction maps a menu value onto an Action.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionEdit:
		return ActionEdit, nil
	case ActionDelete:
		return ActionDelete, nil
	default:
		return "", fmt.Errorf("unknown token action %q", s)
	}
}
