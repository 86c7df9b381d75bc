package menu

import "fmt"

// Action is the closed set of application-defined menu items.
type Action int

const (
	ActionNone Action = iota
	ActionOpen
	ActionSave
)

// Actions lists every routable action.
func Actions() []Action {
	return []Action{ActionOpen, ActionSave}
}

// ID is the stable menu item identifier.
func (a Action) ID() string {
	switch a {
	case ActionOpen:
		return "open"
	case ActionSave:
		return "save"
	default:
		return ""
	}
}

func (a Action) String() string {
	if id := a.ID(); id != "" {
		return id
	}
	if a == ActionNone {
		return "none"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseAction maps a menu item id to its action; unknown ids give ActionNone.
func ParseAction(id string) Action {
	for _, a := range Actions() {
		if a.ID() == id {
			return a
		}
	}
	return ActionNone
}
