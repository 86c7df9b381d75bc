package commands

import (
	"context"
	"fmt"

	"chroma/internal/window"
)

const (
	Greet          = "greet"
	CloseWindow    = "close_window"
	MinimizeWindow = "minimize_window"
	MaximizeWindow = "maximize_window"
	RestoreWindow  = "restore_window"
)

// FormatGreeting returns "Hello, {name}!".
func FormatGreeting(name string) string {
	return fmt.Sprintf("Hello, %s!", name)
}

type greetArgs struct {
	Name string `json:"name"`
}

func greet(_ context.Context, call Call) (interface{}, error) {
	var args greetArgs
	if err := call.Decode(&args); err != nil {
		return nil, err
	}
	return FormatGreeting(args.Name), nil
}

func windowCommand(op window.Op, fn func(*window.Handle) error) Handler {
	return func(_ context.Context, call Call) (interface{}, error) {
		if call.Window == nil {
			return nil, &window.OperationError{Op: op, Err: ErrNoWindow}
		}
		if err := fn(call.Window); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

// RegisterCore installs greet and the window commands.
func RegisterCore(r *Registry) error {
	core := []struct {
		name string
		h    Handler
	}{
		{Greet, greet},
		{CloseWindow, windowCommand(window.OpClose, (*window.Handle).Close)},
		{MinimizeWindow, windowCommand(window.OpMinimize, (*window.Handle).Minimize)},
		{MaximizeWindow, windowCommand(window.OpMaximize, (*window.Handle).Maximize)},
		{RestoreWindow, windowCommand(window.OpRestore, (*window.Handle).Restore)},
	}

	for _, c := range core {
		if err := r.Register(c.name, c.h); err != nil {
			return err
		}
	}
	return nil
}
