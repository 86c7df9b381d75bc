// Package commands holds the named operations the front-end can invoke.
package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"chroma/internal/logger"
	"chroma/internal/metrics"
	"chroma/internal/window"
)

var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrDuplicateCommand = errors.New("command already registered")
	ErrNoWindow         = errors.New("no window bound to call")
)

// ArgsError reports arguments that could not be decoded for a command.
type ArgsError struct {
	Command string
	Err     error
}

func (e *ArgsError) Error() string {
	return fmt.Sprintf("command %s: invalid arguments: %v", e.Command, e.Err)
}

func (e *ArgsError) Unwrap() error {
	return e.Err
}

// Call carries the implicit window handle and the raw JSON arguments.
type Call struct {
	Command string
	Window  *window.Handle
	Args    json.RawMessage
}

// Decode unmarshals the arguments into v. Empty arguments leave v untouched.
func (c Call) Decode(v interface{}) error {
	trimmed := bytes.TrimSpace(c.Args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &ArgsError{Command: c.Command, Err: err}
	}
	return nil
}

type Handler func(ctx context.Context, call Call) (interface{}, error)

type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   logger.Logger
	counter  metrics.IncrementalCounter
}

func NewRegistry(log logger.Logger, counter metrics.IncrementalCounter) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		handlers: make(map[string]Handler),
		logger:   log,
		counter:  counter,
	}
}

func (r *Registry) Register(name string, h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("register %s: %w", name, ErrDuplicateCommand)
	}
	r.handlers[name] = h
	return nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs a command. Failures are logged and returned; none are fatal.
func (r *Registry) Invoke(ctx context.Context, name string, win *window.Handle, args json.RawMessage) (interface{}, error) {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()

	if !ok {
		r.logger.Warning("Commands", "unknown command", map[string]interface{}{
			"command": name,
		})
		// Caller-supplied names never become label values.
		r.count(UnknownCommandLabel, "unknown")
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	result, err := h(ctx, Call{Command: name, Window: win, Args: args})
	if err != nil {
		r.logger.Error("Commands", err, map[string]interface{}{
			"command": name,
		})
		r.count(name, "error")
		return nil, err
	}

	r.logger.Debug("Commands", "command completed", map[string]interface{}{
		"command": name,
	})
	r.count(name, "ok")
	return result, nil
}

// UnknownCommandLabel is the command label recorded for names not in the registry.
const UnknownCommandLabel = "unknown"

func (r *Registry) count(name, outcome string) {
	if r.counter != nil {
		r.counter.Increment(name, outcome)
	}
}
