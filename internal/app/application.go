package app

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"chroma/internal/bridge"
	"chroma/internal/commands"
	"chroma/internal/config"
	"chroma/internal/events"
	"chroma/internal/gui"
	"chroma/internal/logger"
	"chroma/internal/menu"
	"chroma/internal/metrics"
	"chroma/internal/plugin"
	"chroma/internal/plugin/dialog"
	"chroma/internal/plugin/fs"
	"chroma/internal/shutdown"
	"chroma/internal/window"
)

const (
	AppName         = "Chroma"
	AppID           = "com.chroma.palette"
	AppVersion      = "0.1.0"
	MainWindowLabel = "main"

	busBufferSize = 64
)

type Application struct {
	fyneApp fyne.App
	window  fyne.Window
	handle  *window.Handle
	config  config.Config
	logger  logger.Logger

	bus      *events.Bus
	registry *commands.Registry
	metrics  *metrics.Metrics
	plugins  []plugin.Plugin

	router   *menu.Router
	mainMenu *fyne.MainMenu

	view     *gui.View
	bridge   *bridge.Server
	shutdown *shutdown.Manager
}

type options struct {
	fyneApp   fyne.App
	presenter dialog.Presenter
	plugins   []plugin.Plugin
}

type Option func(*options)

// WithFyneApp injects the host app, e.g. test.NewTempApp.
func WithFyneApp(a fyne.App) Option {
	return func(o *options) { o.fyneApp = a }
}

func WithDialogPresenter(p dialog.Presenter) Option {
	return func(o *options) { o.presenter = p }
}

// WithPlugins registers extra plugins after dialog and fs.
func WithPlugins(p ...plugin.Plugin) Option {
	return func(o *options) { o.plugins = append(o.plugins, p...) }
}

// New wires the application: plugins, then menu setup, then commands.
// Any failure aborts startup.
func New(ctx context.Context, cfg config.Config, log logger.Logger, opts ...Option) (*Application, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	fyneApp := o.fyneApp
	if fyneApp == nil {
		fyneApp = fyneapp.NewWithID(AppID)
	}

	win := fyneApp.NewWindow(AppName)
	win.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))
	win.CenterOnScreen()
	win.SetMaster()

	log.Info("Application", "starting application", map[string]interface{}{
		"version":        AppVersion,
		"window_width":   cfg.Window.Width,
		"window_height":  cfg.Window.Height,
		"bridge_enabled": cfg.Bridge.Enabled,
	})

	m := metrics.New()
	a := &Application{
		fyneApp:  fyneApp,
		window:   win,
		config:   cfg,
		logger:   log,
		bus:      events.NewBus(busBufferSize, log),
		registry: commands.NewRegistry(log, m.Commands),
		metrics:  m,
		shutdown: shutdown.NewManager(ctx, log),
	}
	a.shutdown.Register("event bus", a.bus)

	a.handle = window.New(MainWindowLabel, win, window.WithOnClosed(func() {
		log.Info("Application", "main window closed", nil)
	}))

	presenter := o.presenter
	if presenter == nil {
		presenter = &dialog.FynePresenter{Window: win}
	}
	a.plugins = append([]plugin.Plugin{
		dialog.New(presenter),
		fs.New(cfg.FS.Scope),
	}, o.plugins...)

	if err := a.startup(); err != nil {
		a.bus.Shutdown()
		return nil, err
	}

	log.Info("Application", "initialization complete", map[string]interface{}{
		"commands": a.registry.Names(),
	})
	return a, nil
}

func (a *Application) startup() error {
	if err := plugin.RegisterAll(a.registry, a.logger, a.plugins...); err != nil {
		return fmt.Errorf("register plugins: %w", err)
	}

	if err := a.setup(); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	if err := commands.RegisterCore(a.registry); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}

	a.view = gui.NewView(a.window, a.handle, a.registry, a.logger)
	a.bus.Subscribe(events.MenuOpen, a.view)
	a.bus.Subscribe(events.MenuSave, a.view)

	if a.config.Bridge.Enabled {
		a.bridge = bridge.New(a.registry, a.handle, a.bus,
			bridge.WithAddr(a.config.Bridge.Addr),
			bridge.WithLogger(a.logger),
			bridge.WithMetrics(a.metrics.Handler()),
			bridge.WithAllowedOrigins(a.config.Bridge.Origins...),
			bridge.WithToken(a.config.Bridge.Token),
		)
	}
	return nil
}

// setup builds the menu, attaches the router and installs it. Nothing is
// installed if the build fails.
func (a *Application) setup() error {
	a.router = menu.NewRouter(a.bus, a.logger, a.metrics.MenuEvents)

	tree, err := menu.Build(a.router)
	if err != nil {
		return fmt.Errorf("build menu: %w", err)
	}

	a.mainMenu = menu.Install(a.window, tree, menu.NewHost(a.fyneApp, a.window))
	a.logger.Debug("Application", "menu installed", map[string]interface{}{
		"submenus": len(a.mainMenu.Items),
	})
	return nil
}

func (a *Application) Registry() *commands.Registry { return a.registry }

func (a *Application) Bus() *events.Bus { return a.bus }

func (a *Application) MainMenu() *fyne.MainMenu { return a.mainMenu }

func (a *Application) Window() fyne.Window { return a.window }

func (a *Application) Handle() *window.Handle { return a.handle }

func (a *Application) Router() *menu.Router { return a.router }
