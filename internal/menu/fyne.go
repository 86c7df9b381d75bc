package menu

import (
	"fyne.io/fyne/v2"
)

// Host supplies what predefined items need from the toolkit.
type Host interface {
	Quit()
	Canvas() fyne.Canvas
	Clipboard() fyne.Clipboard
}

type windowHost struct {
	app    fyne.App
	window fyne.Window
}

// NewHost binds predefined items to an app and its main window.
func NewHost(app fyne.App, window fyne.Window) Host {
	return &windowHost{app: app, window: window}
}

func (h *windowHost) Quit() {
	h.app.Quit()
}

func (h *windowHost) Canvas() fyne.Canvas {
	return h.window.Canvas()
}

func (h *windowHost) Clipboard() fyne.Clipboard {
	return h.window.Clipboard()
}

// MainMenu renders the tree into a Fyne main menu.
func (t *Tree) MainMenu(host Host) *fyne.MainMenu {
	menus := make([]*fyne.Menu, 0, len(t.Submenus))
	for _, sub := range t.Submenus {
		items := make([]*fyne.MenuItem, 0, len(sub.Entries))
		for _, e := range sub.Entries {
			item := t.renderEntry(e, host)
			if !sub.Enabled {
				item.Disabled = true
			}
			items = append(items, item)
		}
		menus = append(menus, fyne.NewMenu(sub.Label, items...))
	}
	return fyne.NewMainMenu(menus...)
}

func (t *Tree) renderEntry(e Entry, host Host) *fyne.MenuItem {
	if !e.IsPredefined() {
		entry := e
		item := fyne.NewMenuItem(e.Label, func() { t.Select(entry) })
		item.Disabled = !e.Enabled
		return item
	}

	switch e.Predefined {
	case Separator:
		return fyne.NewMenuItemSeparator()
	case Quit:
		item := fyne.NewMenuItem("Quit", host.Quit)
		item.IsQuit = true
		return item
	case Undo:
		return shortcutItem("Undo", host, func() fyne.Shortcut { return &fyne.ShortcutUndo{} })
	case Redo:
		return shortcutItem("Redo", host, func() fyne.Shortcut { return &fyne.ShortcutRedo{} })
	case Cut:
		return shortcutItem("Cut", host, func() fyne.Shortcut {
			return &fyne.ShortcutCut{Clipboard: host.Clipboard()}
		})
	case Copy:
		return shortcutItem("Copy", host, func() fyne.Shortcut {
			return &fyne.ShortcutCopy{Clipboard: host.Clipboard()}
		})
	case Paste:
		return shortcutItem("Paste", host, func() fyne.Shortcut {
			return &fyne.ShortcutPaste{Clipboard: host.Clipboard()}
		})
	default:
		item := fyne.NewMenuItem(e.Label, nil)
		item.Disabled = true
		return item
	}
}

// shortcutItem forwards the shortcut to whatever widget has focus.
func shortcutItem(label string, host Host, shortcut func() fyne.Shortcut) *fyne.MenuItem {
	item := fyne.NewMenuItem(label, func() {
		c := host.Canvas()
		if c == nil {
			return
		}
		if target, ok := c.Focused().(fyne.Shortcutable); ok {
			target.TypedShortcut(shortcut())
		}
	})
	item.Shortcut = shortcut()
	return item
}

// Install sets the rendered tree as the window's main menu.
func Install(window fyne.Window, tree *Tree, host Host) *fyne.MainMenu {
	main := tree.MainMenu(host)
	window.SetMainMenu(main)
	return main
}
