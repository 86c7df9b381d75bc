// Package gui is the in-process shell around the front-end: a title bar with
// window controls and a status line fed by the event bus.
package gui

import (
	"context"
	"encoding/json"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"chroma/internal/commands"
	"chroma/internal/events"
	"chroma/internal/logger"
	"chroma/internal/window"
)

const ViewID = "shell-view"

type Invoker interface {
	Invoke(ctx context.Context, name string, win *window.Handle, args json.RawMessage) (interface{}, error)
}

// View is subscribed to the bus and drives window commands through the registry.
type View struct {
	window  fyne.Window
	handle  *window.Handle
	invoker Invoker
	logger  logger.Logger
	runner  func(func())

	title     *widget.Label
	status    *widget.Label
	nameEntry *widget.Entry

	closeButton    *widget.Button
	minimizeButton *widget.Button
	maximizeButton *widget.Button
	greetButton    *widget.Button

	mainContainer *fyne.Container
}

func NewView(win fyne.Window, handle *window.Handle, invoker Invoker, log logger.Logger) *View {
	view := &View{
		window:  win,
		handle:  handle,
		invoker: invoker,
		logger:  log,
		runner:  func(fn func()) { go fn() },
	}

	view.setupComponents()
	view.setupLayout()

	return view
}

// SetRunner overrides how commands are scheduled off the UI goroutine.
func (v *View) SetRunner(run func(func())) {
	v.runner = run
}

func (v *View) setupComponents() {
	v.title = widget.NewLabelWithStyle("CHROMA", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	v.status = widget.NewLabel("Ready")
	v.nameEntry = widget.NewEntry()
	v.nameEntry.SetPlaceHolder("Name")

	v.closeButton = widget.NewButtonWithIcon("", theme.CancelIcon(), func() { v.run(commands.CloseWindow, nil) })
	v.minimizeButton = widget.NewButtonWithIcon("", theme.ContentRemoveIcon(), func() { v.run(commands.MinimizeWindow, nil) })
	v.maximizeButton = widget.NewButtonWithIcon("", theme.ViewFullScreenIcon(), v.toggleMaximize)
	v.greetButton = widget.NewButton("Greet", v.greet)
}

func (v *View) setupLayout() {
	controls := container.NewHBox(v.closeButton, v.minimizeButton, v.maximizeButton)
	titleBar := container.NewBorder(nil, nil, controls, nil, v.title)
	greetRow := container.NewBorder(nil, nil, nil, v.greetButton, v.nameEntry)

	v.mainContainer = container.NewBorder(titleBar, v.status, nil, nil, greetRow)
}

// toggleMaximize leaves full screen when already maximized.
func (v *View) toggleMaximize() {
	if v.handle != nil && v.handle.State() == window.StateMaximized {
		v.run(commands.RestoreWindow, nil)
		return
	}
	v.run(commands.MaximizeWindow, nil)
}

func (v *View) greet() {
	args, err := json.Marshal(map[string]string{"name": v.nameEntry.Text})
	if err != nil {
		v.SetStatus(err.Error())
		return
	}
	v.run(commands.Greet, args)
}

func (v *View) run(command string, args json.RawMessage) {
	v.runner(func() {
		result, err := v.invoker.Invoke(context.Background(), command, v.handle, args)
		if err != nil {
			fyne.Do(func() { v.SetStatus(fmt.Sprintf("%s failed: %v", command, err)) })
			return
		}
		if text, ok := result.(string); ok {
			fyne.Do(func() { v.SetStatus(text) })
		}
	})
}

// ID identifies the view as a bus subscriber.
func (v *View) ID() string {
	return ViewID
}

// Handle runs on the bus goroutine.
func (v *View) Handle(e events.Event) {
	var text string
	switch e.Name {
	case events.MenuOpen:
		text = "Open requested"
	case events.MenuSave:
		text = "Save requested"
	default:
		return
	}
	v.logger.Debug("ShellView", "menu event received", map[string]interface{}{"event": e.Name})
	fyne.Do(func() { v.SetStatus(text) })
}

func (v *View) SetStatus(status string) {
	v.status.SetText(status)
}

func (v *View) Status() string {
	return v.status.Text
}

func (v *View) GetMainContainer() *fyne.Container {
	return v.mainContainer
}

func (v *View) Show() {
	v.window.SetContent(v.mainContainer)
	v.window.Show()
}
