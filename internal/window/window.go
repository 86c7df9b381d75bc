// Package window wraps a host window with explicit, non-fatal state transitions.
package window

import (
	"errors"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
)

// ErrClosed reports an operation on a window that has already been closed.
var ErrClosed = errors.New("window already closed")

type Op string

const (
	OpClose    Op = "close"
	OpMinimize Op = "minimize"
	OpMaximize Op = "maximize"
	OpRestore  Op = "restore"
)

type State int

const (
	StateNormal State = iota
	StateMinimized
	StateMaximized
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateMinimized:
		return "minimized"
	case StateMaximized:
		return "maximized"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// OperationError is returned when a window transition cannot be performed.
type OperationError struct {
	Op     Op
	Window string
	Err    error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("window %q: %s failed: %v", e.Window, e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Native is the subset of fyne.Window the handle drives.
type Native interface {
	Close()
	Hide()
	Show()
	SetFullScreen(full bool)
	SetOnClosed(closed func())
}

// Dispatcher runs fn on the UI goroutine and waits for it to finish.
type Dispatcher func(fn func())

type Option func(*Handle)

// WithDispatcher replaces fyne.DoAndWait, mainly for tests.
func WithDispatcher(d Dispatcher) Option {
	return func(h *Handle) { h.dispatch = d }
}

// WithOnClosed chains a callback after the handle has recorded the close.
func WithOnClosed(fn func()) Option {
	return func(h *Handle) { h.onClosed = fn }
}

// Handle is the implicit window argument passed to window commands.
type Handle struct {
	label    string
	native   Native
	dispatch Dispatcher
	onClosed func()

	mu    sync.Mutex
	state State
}

// New takes ownership of the window's OnClosed hook.
func New(label string, native Native, opts ...Option) *Handle {
	h := &Handle{
		label:    label,
		native:   native,
		dispatch: fyne.DoAndWait,
	}
	for _, opt := range opts {
		opt(h)
	}

	native.SetOnClosed(h.markClosed)
	return h
}

func (h *Handle) Label() string {
	return h.label
}

func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Handle) Close() error {
	return h.transition(OpClose, func() { h.native.Close() }, StateClosed)
}

// Minimize hides the window; the host toolkit has no iconify call.
func (h *Handle) Minimize() error {
	return h.transition(OpMinimize, func() { h.native.Hide() }, StateMinimized)
}

func (h *Handle) Maximize() error {
	return h.transition(OpMaximize, func() {
		h.native.Show()
		h.native.SetFullScreen(true)
	}, StateMaximized)
}

// Restore leaves full screen and shows the window again.
func (h *Handle) Restore() error {
	return h.transition(OpRestore, func() {
		h.native.SetFullScreen(false)
		h.native.Show()
	}, StateNormal)
}

func (h *Handle) transition(op Op, call func(), next State) (err error) {
	h.mu.Lock()
	if h.state == StateClosed {
		h.mu.Unlock()
		return &OperationError{Op: op, Window: h.label, Err: ErrClosed}
	}
	h.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = &OperationError{Op: op, Window: h.label, Err: fmt.Errorf("host: %v", r)}
		}
	}()

	h.dispatch(call)

	h.mu.Lock()
	// Close may already have been recorded by the OnClosed hook.
	if h.state != StateClosed {
		h.state = next
	}
	h.mu.Unlock()
	return nil
}

func (h *Handle) markClosed() {
	h.mu.Lock()
	h.state = StateClosed
	h.mu.Unlock()

	if h.onClosed != nil {
		h.onClosed()
	}
}
