package app

import (
	"fyne.io/fyne/v2"

	"chroma/internal/shutdown"
)

// Run shows the window and blocks in the host event loop. Components are
// shut down once the loop returns.
func (a *Application) Run() error {
	a.shutdown.Listen(func() {
		fyne.Do(a.fyneApp.Quit)
	})

	if a.bridge != nil {
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := a.bridge.Serve(a.shutdown.Context()); err != nil {
				a.logger.Error("Application", err, map[string]interface{}{
					"component": "bridge",
				})
			}
		}()
		a.shutdown.Register("bridge", shutdown.Func(func() { <-done }))
	}

	a.view.Show()
	a.logger.Info("Application", "GUI displayed", nil)

	a.fyneApp.Run()

	a.logger.Info("Application", "event loop exited", nil)
	a.shutdown.Shutdown()
	return nil
}

// Shutdown stops background components without waiting for the event loop.
func (a *Application) Shutdown() {
	a.shutdown.Shutdown()
}
