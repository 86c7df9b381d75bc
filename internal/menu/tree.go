package menu

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateID = errors.New("duplicate menu item id")
	ErrNoHandler   = errors.New("menu action handler is nil")
	ErrEmptyMenu   = errors.New("menu has no submenus")
)

// Predefined items are implemented by the host toolkit.
type Predefined int

const (
	Separator Predefined = iota + 1
	Quit
	Undo
	Redo
	Cut
	Copy
	Paste
)

func (p Predefined) String() string {
	switch p {
	case Separator:
		return "separator"
	case Quit:
		return "quit"
	case Undo:
		return "undo"
	case Redo:
		return "redo"
	case Cut:
		return "cut"
	case Copy:
		return "copy"
	case Paste:
		return "paste"
	default:
		return fmt.Sprintf("Predefined(%d)", int(p))
	}
}

// Entry is either a custom item bound to an Action or a predefined item.
type Entry struct {
	Label      string
	Enabled    bool
	Action     Action
	Predefined Predefined
}

// ID is empty for predefined entries.
func (e Entry) ID() string {
	return e.Action.ID()
}

func (e Entry) IsPredefined() bool {
	return e.Predefined != 0
}

func Item(action Action, label string) Entry {
	return Entry{Label: label, Enabled: true, Action: action}
}

func Builtin(p Predefined) Entry {
	return Entry{Label: p.String(), Enabled: true, Predefined: p}
}

type Submenu struct {
	Label   string
	Enabled bool
	Entries []Entry
}

// ActionHandler receives custom menu selections.
type ActionHandler interface {
	Route(action Action)
}

// Tree is the built menu. It is read-only once NewTree returns.
type Tree struct {
	Submenus []Submenu
	handler  ActionHandler
}

func NewTree(handler ActionHandler, submenus ...Submenu) (*Tree, error) {
	if handler == nil {
		return nil, ErrNoHandler
	}
	if len(submenus) == 0 {
		return nil, ErrEmptyMenu
	}

	seen := make(map[string]string)
	for _, sub := range submenus {
		for _, e := range sub.Entries {
			if e.IsPredefined() {
				continue
			}
			id := e.ID()
			if id == "" {
				return nil, fmt.Errorf("submenu %q item %q: no action", sub.Label, e.Label)
			}
			if other, dup := seen[id]; dup {
				return nil, fmt.Errorf("%w: %q in %q and %q", ErrDuplicateID, id, other, sub.Label)
			}
			seen[id] = sub.Label
		}
	}

	return &Tree{Submenus: submenus, handler: handler}, nil
}

// Build constructs the application menu: File and Edit.
func Build(handler ActionHandler) (*Tree, error) {
	file := Submenu{
		Label:   "File",
		Enabled: true,
		Entries: []Entry{
			Item(ActionOpen, "Open..."),
			Item(ActionSave, "Save Palette..."),
			Builtin(Separator),
			Builtin(Quit),
		},
	}

	edit := Submenu{
		Label:   "Edit",
		Enabled: true,
		Entries: []Entry{
			Builtin(Undo),
			Builtin(Redo),
			Builtin(Separator),
			Builtin(Cut),
			Builtin(Copy),
			Builtin(Paste),
		},
	}

	return NewTree(handler, file, edit)
}

// Select dispatches a custom entry to the handler. Predefined entries are ignored.
func (t *Tree) Select(e Entry) {
	if e.IsPredefined() || !e.Enabled {
		return
	}
	t.handler.Route(e.Action)
}
