// Package fs gives the front-end scoped access to text files.
package fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"chroma/internal/commands"
	"chroma/internal/plugin"
)

const Name = "fs"

var (
	ErrForbidden   = errors.New("path outside allowed scope")
	ErrNotAbsolute = errors.New("path must be absolute")
)

type Plugin struct {
	scope []string
}

// New allows access to files under the given directories only.
func New(scope []string) *Plugin {
	roots := make([]string, 0, len(scope))
	for _, dir := range scope {
		if dir == "" {
			continue
		}
		if abs, err := filepath.Abs(dir); err == nil {
			roots = append(roots, filepath.Clean(abs))
		}
	}
	return &Plugin{scope: roots}
}

func (p *Plugin) Name() string { return Name }

func (p *Plugin) Scope() []string {
	return append([]string(nil), p.scope...)
}

func (p *Plugin) Register(r *commands.Registry) error {
	for name, h := range map[string]commands.Handler{
		"read_text_file":  p.readTextFile,
		"write_text_file": p.writeTextFile,
		"exists":          p.exists,
	} {
		if err := r.Register(plugin.CommandName(Name, name), h); err != nil {
			return err
		}
	}
	return nil
}

type pathArgs struct {
	Path string `json:"path"`
}

type writeArgs struct {
	Path     string `json:"path"`
	Contents string `json:"contents"`
}

// Resolve cleans path and checks it lies inside the scope. The check is
// lexical; symlinks inside a scoped directory are followed.
func (p *Plugin) Resolve(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("%q: %w", path, ErrNotAbsolute)
	}
	clean := filepath.Clean(path)
	for _, root := range p.scope {
		rel, err := filepath.Rel(root, clean)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return clean, nil
		}
	}
	return "", fmt.Errorf("%q: %w", path, ErrForbidden)
}

func (p *Plugin) readTextFile(_ context.Context, call commands.Call) (interface{}, error) {
	var args pathArgs
	if err := call.Decode(&args); err != nil {
		return nil, err
	}
	path, err := p.Resolve(args.Path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func (p *Plugin) writeTextFile(_ context.Context, call commands.Call) (interface{}, error) {
	var args writeArgs
	if err := call.Decode(&args); err != nil {
		return nil, err
	}
	path, err := p.Resolve(args.Path)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(args.Contents), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return nil, nil
}

func (p *Plugin) exists(_ context.Context, call commands.Call) (interface{}, error) {
	var args pathArgs
	if err := call.Decode(&args); err != nil {
		return nil, err
	}
	path, err := p.Resolve(args.Path)
	if err != nil {
		return nil, err
	}
	_, err = os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, iofs.ErrNotExist):
		return false, nil
	default:
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
}
