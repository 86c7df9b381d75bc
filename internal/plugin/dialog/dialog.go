// Package dialog exposes native file pickers to the front-end.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	fynedialog "fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"chroma/internal/commands"
	"chroma/internal/plugin"
)

const Name = "dialog"

// ErrMultipleUnsupported is returned for multi-select requests; the picker
// chooses one file.
var ErrMultipleUnsupported = errors.New("multiple selection is not supported")

type Filter struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

type OpenOptions struct {
	Title       string   `json:"title,omitempty"`
	Multiple    bool     `json:"multiple,omitempty"`
	Filters     []Filter `json:"filters,omitempty"`
	Directory   bool     `json:"directory,omitempty"`
	DefaultPath string   `json:"defaultPath,omitempty"`
}

type SaveOptions struct {
	Title       string   `json:"title,omitempty"`
	Filters     []Filter `json:"filters,omitempty"`
	DefaultPath string   `json:"defaultPath,omitempty"`
}

// Done receives the chosen path, or "" when the user cancelled.
type Done func(path string, err error)

// Presenter shows pickers. Implementations must call done exactly once.
type Presenter interface {
	Open(opts OpenOptions, done Done)
	Save(opts SaveOptions, done Done)
}

type Plugin struct {
	presenter Presenter
}

func New(p Presenter) *Plugin {
	return &Plugin{presenter: p}
}

func (p *Plugin) Name() string { return Name }

func (p *Plugin) Register(r *commands.Registry) error {
	if err := r.Register(plugin.CommandName(Name, "open"), p.open); err != nil {
		return err
	}
	return r.Register(plugin.CommandName(Name, "save"), p.save)
}

func (p *Plugin) open(ctx context.Context, call commands.Call) (interface{}, error) {
	var opts OpenOptions
	if err := call.Decode(&opts); err != nil {
		return nil, err
	}
	if opts.Multiple {
		return nil, &commands.ArgsError{Command: call.Command, Err: ErrMultipleUnsupported}
	}
	return await(ctx, func(done Done) { p.presenter.Open(opts, done) })
}

func (p *Plugin) save(ctx context.Context, call commands.Call) (interface{}, error) {
	var opts SaveOptions
	if err := call.Decode(&opts); err != nil {
		return nil, err
	}
	return await(ctx, func(done Done) { p.presenter.Save(opts, done) })
}

type pick struct {
	path string
	err  error
}

// await blocks until the picker reports or ctx ends. A cancelled picker yields nil.
func await(ctx context.Context, show func(Done)) (interface{}, error) {
	ch := make(chan pick, 1)
	var once sync.Once
	show(func(path string, err error) {
		once.Do(func() { ch <- pick{path: path, err: err} })
	})

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("file dialog: %w", res.err)
		}
		if res.path == "" {
			return nil, nil
		}
		return res.path, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Extensions flattens filters into dotted, lower-case extensions.
func Extensions(filters []Filter) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range filters {
		for _, ext := range f.Extensions {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" || ext == "*" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			if !seen[ext] {
				seen[ext] = true
				out = append(out, ext)
			}
		}
	}
	return out
}

// FynePresenter shows Fyne's built-in dialogs on the given window.
type FynePresenter struct {
	Window fyne.Window
}

func (f *FynePresenter) Open(opts OpenOptions, done Done) {
	fyne.Do(func() {
		if opts.Directory {
			d := fynedialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
				if err != nil || uri == nil {
					done("", err)
					return
				}
				done(uri.Path(), nil)
			}, f.Window)
			configure(d, opts.Title, opts.DefaultPath)
			d.Show()
			return
		}

		d := fynedialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				done("", err)
				return
			}
			path := reader.URI().Path()
			done(finish(path, reader.Close()))
		}, f.Window)
		if exts := Extensions(opts.Filters); len(exts) > 0 {
			d.SetFilter(storage.NewExtensionFileFilter(exts))
		}
		configure(d, opts.Title, opts.DefaultPath)
		d.Show()
	})
}

// Save opens the native save picker. Fyne opens the chosen file for writing,
// so it exists (empty) once the path is returned.
func (f *FynePresenter) Save(opts SaveOptions, done Done) {
	fyne.Do(func() {
		d := fynedialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil || writer == nil {
				done("", err)
				return
			}
			path := writer.URI().Path()
			// Closing the writer is what creates the file.
			done(finish(path, writer.Close()))
		}, f.Window)
		if exts := Extensions(opts.Filters); len(exts) > 0 {
			d.SetFilter(storage.NewExtensionFileFilter(exts))
		}
		if opts.DefaultPath != "" {
			d.SetFileName(storage.NewFileURI(opts.DefaultPath).Name())
		}
		configure(d, opts.Title, opts.DefaultPath)
		d.Show()
	})
}

func finish(path string, closeErr error) (string, error) {
	if closeErr != nil {
		return "", fmt.Errorf("close %s: %w", path, closeErr)
	}
	return path, nil
}

func configure(d *fynedialog.FileDialog, title, defaultPath string) {
	if title != "" {
		d.SetTitleText(title)
	}
	if dir := startDir(defaultPath); dir != nil {
		d.SetLocation(dir)
	}
}

// startDir resolves a default path to a listable directory. A file path
// resolves to its parent. Nil means no usable hint.
func startDir(path string) fyne.ListableURI {
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	if lister, err := storage.ListerForURI(uri); err == nil {
		return lister
	}
	parent, err := storage.Parent(uri)
	if err != nil {
		return nil
	}
	lister, err := storage.ListerForURI(parent)
	if err != nil {
		return nil
	}
	return lister
}
