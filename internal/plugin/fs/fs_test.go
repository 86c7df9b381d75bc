package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chroma/internal/commands"
)

func setup(t *testing.T) (*commands.Registry, string) {
	t.Helper()
	dir := t.TempDir()
	r := commands.NewRegistry(nil, nil)
	require.NoError(t, New([]string{dir}).Register(r))
	return r, dir
}

func args(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestWriteReadExists(t *testing.T) {
	r, dir := setup(t)
	ctx := context.Background()
	path := filepath.Join(dir, "chroma-palette.json")

	got, err := r.Invoke(ctx, "plugin:fs|exists", nil, args(t, map[string]string{"path": path}))
	require.NoError(t, err)
	assert.Equal(t, false, got)

	_, err = r.Invoke(ctx, "plugin:fs|write_text_file", nil, args(t, map[string]string{
		"path":     path,
		"contents": `{"colors":[]}`,
	}))
	require.NoError(t, err)

	got, err = r.Invoke(ctx, "plugin:fs|exists", nil, args(t, map[string]string{"path": path}))
	require.NoError(t, err)
	assert.Equal(t, true, got)

	got, err = r.Invoke(ctx, "plugin:fs|read_text_file", nil, args(t, map[string]string{"path": path}))
	require.NoError(t, err)
	assert.Equal(t, `{"colors":[]}`, got)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"colors":[]}`, string(onDisk))
}

func TestReadMissingFile(t *testing.T) {
	r, dir := setup(t)

	_, err := r.Invoke(context.Background(), "plugin:fs|read_text_file", nil,
		args(t, map[string]string{"path": filepath.Join(dir, "nope.txt")}))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScope(t *testing.T) {
	dir := t.TempDir()
	p := New([]string{dir, ""})

	cases := []struct {
		path string
		err  error
	}{
		{filepath.Join(dir, "a.txt"), nil},
		{filepath.Join(dir, "sub", "b.txt"), nil},
		{dir, nil},
		{filepath.Join(dir, "..", "escape.txt"), ErrForbidden},
		{filepath.Join(dir, "..x", "c.txt"), nil},
		{filepath.Join(filepath.Dir(dir), filepath.Base(dir)+"x", "c.txt"), ErrForbidden},
		{"relative.txt", ErrNotAbsolute},
	}
	for _, c := range cases {
		_, err := p.Resolve(c.path)
		if c.err == nil {
			assert.NoError(t, err, c.path)
		} else {
			assert.ErrorIs(t, err, c.err, c.path)
		}
	}

	assert.Equal(t, []string{filepath.Clean(dir)}, p.Scope())
}

func TestForbiddenOverRegistry(t *testing.T) {
	r, _ := setup(t)

	_, err := r.Invoke(context.Background(), "plugin:fs|write_text_file", nil,
		args(t, map[string]string{"path": "/etc/chroma.txt", "contents": "x"}))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestEmptyScopeForbidsEverything(t *testing.T) {
	_, err := New(nil).Resolve("/tmp/a")
	assert.ErrorIs(t, err, ErrForbidden)
}
