package gui

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chroma/internal/commands"
	"chroma/internal/events"
	"chroma/internal/logger"
	"chroma/internal/window"
)

func newView(t *testing.T) (*View, *window.Handle) {
	t.Helper()
	test.NewTempApp(t)
	w := test.NewWindow(nil)

	reg := commands.NewRegistry(nil, nil)
	require.NoError(t, commands.RegisterCore(reg))

	handle := window.New("main", w, window.WithDispatcher(func(fn func()) { fn() }))
	v := NewView(w, handle, reg, logger.Nop())
	v.SetRunner(func(fn func()) { fn() })
	v.Show()
	return v, handle
}

func TestTitleBarButtons(t *testing.T) {
	v, handle := newView(t)

	test.Tap(v.maximizeButton)
	assert.Equal(t, window.StateMaximized, handle.State())

	test.Tap(v.maximizeButton)
	assert.Equal(t, window.StateNormal, handle.State())

	test.Tap(v.minimizeButton)
	assert.Equal(t, window.StateMinimized, handle.State())

	test.Tap(v.closeButton)
	assert.Equal(t, window.StateClosed, handle.State())
}

func TestFailedCommandShowsStatus(t *testing.T) {
	v, handle := newView(t)
	require.NoError(t, handle.Close())

	test.Tap(v.maximizeButton)
	assert.Contains(t, v.Status(), "maximize_window failed")
}

func TestGreetButton(t *testing.T) {
	v, _ := newView(t)

	test.Type(v.nameEntry, "Ada")
	test.Tap(v.greetButton)
	assert.Equal(t, "Hello, Ada!", v.Status())
}

func TestMenuEventsUpdateStatus(t *testing.T) {
	v, _ := newView(t)
	assert.Equal(t, ViewID, v.ID())

	v.Handle(events.Event{Name: events.MenuOpen})
	assert.Equal(t, "Open requested", v.Status())

	v.Handle(events.Event{Name: events.MenuSave})
	assert.Equal(t, "Save requested", v.Status())

	v.Handle(events.Event{Name: "something-else"})
	assert.Equal(t, "Save requested", v.Status())
}
