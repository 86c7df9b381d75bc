package commands

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chroma/internal/window"
)

type stubWindow struct {
	closed, hidden, full bool
	onClosed             func()
}

func (s *stubWindow) Close() {
	s.closed = true
	if s.onClosed != nil {
		s.onClosed()
	}
}
func (s *stubWindow) Hide() { s.hidden = true }
func (s *stubWindow) Show() { s.hidden = false }
func (s *stubWindow) SetFullScreen(v bool) { s.full = v }
func (s *stubWindow) SetOnClosed(fn func()) { s.onClosed = fn }

func newCoreRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(nil, nil)
	require.NoError(t, RegisterCore(r))
	return r
}

func newHandle() (*window.Handle, *stubWindow) {
	native := &stubWindow{}
	return window.New("main", native, window.WithDispatcher(func(fn func()) { fn() })), native
}

func TestFormatGreeting(t *testing.T) {
	assert.Equal(t, "Hello, Ada!", FormatGreeting("Ada"))
	assert.Equal(t, "Hello, !", FormatGreeting(""))
	assert.Equal(t, "Hello, {x}!", FormatGreeting("{x}"))
}

func TestGreetCommand(t *testing.T) {
	r := newCoreRegistry(t)

	got, err := r.Invoke(context.Background(), Greet, nil, json.RawMessage(`{"name":"Chroma"}`))
	require.NoError(t, err)
	assert.Equal(t, "Hello, Chroma!", got)

	got, err = r.Invoke(context.Background(), Greet, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello, !", got)
}

func TestGreetRejectsBadArgs(t *testing.T) {
	r := newCoreRegistry(t)

	_, err := r.Invoke(context.Background(), Greet, nil, json.RawMessage(`{"name":3}`))
	var argsErr *ArgsError
	require.ErrorAs(t, err, &argsErr)
	assert.Equal(t, Greet, argsErr.Command)
}

func TestWindowCommands(t *testing.T) {
	r := newCoreRegistry(t)
	h, native := newHandle()
	ctx := context.Background()

	_, err := r.Invoke(ctx, MinimizeWindow, h, nil)
	require.NoError(t, err)
	assert.True(t, native.hidden)
	assert.Equal(t, window.StateMinimized, h.State())

	_, err = r.Invoke(ctx, MaximizeWindow, h, nil)
	require.NoError(t, err)
	assert.True(t, native.full)
	assert.Equal(t, window.StateMaximized, h.State())

	_, err = r.Invoke(ctx, RestoreWindow, h, nil)
	require.NoError(t, err)
	assert.False(t, native.full)
	assert.False(t, native.hidden)
	assert.Equal(t, window.StateNormal, h.State())

	_, err = r.Invoke(ctx, CloseWindow, h, nil)
	require.NoError(t, err)
	assert.True(t, native.closed)
	assert.Equal(t, window.StateClosed, h.State())
}

func TestWindowCommandOnClosedWindowReportsFailure(t *testing.T) {
	r := newCoreRegistry(t)
	h, _ := newHandle()
	require.NoError(t, h.Close())

	_, err := r.Invoke(context.Background(), MaximizeWindow, h, nil)
	var opErr *window.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, window.OpMaximize, opErr.Op)
	assert.ErrorIs(t, err, window.ErrClosed)
}

func TestRestoreAfterMinimize(t *testing.T) {
	r := newCoreRegistry(t)
	h, native := newHandle()
	ctx := context.Background()

	_, err := r.Invoke(ctx, MinimizeWindow, h, nil)
	require.NoError(t, err)
	require.True(t, native.hidden)

	_, err = r.Invoke(ctx, RestoreWindow, h, nil)
	require.NoError(t, err)
	assert.False(t, native.hidden)
	assert.Equal(t, window.StateNormal, h.State())
}

func TestWindowCommandWithoutWindow(t *testing.T) {
	r := newCoreRegistry(t)

	_, err := r.Invoke(context.Background(), CloseWindow, nil, nil)
	assert.ErrorIs(t, err, ErrNoWindow)
}
