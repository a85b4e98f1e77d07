package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tracetour/internal/config"
	"tracetour/internal/logging"
)

// setupSignalHandler cancels the app on SIGINT or SIGTERM so Run returns
// and shuts down. A shutdown that stalls past the forced timeout exits the
// process. Returns a cleanup function that should be called when the app
// exits.
func (a *App) setupSignalHandler() func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})

	go func() {
		select {
		case sig := <-sigChan:
			logging.Info("received signal", "signal", sig)

			a.mu.Lock()
			a.forceExit = time.AfterFunc(config.DefaultForcedShutdown, func() {
				logging.Warn("forced shutdown due to timeout")
				os.Exit(1)
			})
			a.mu.Unlock()

			a.cancel()

		case <-done:
			return

		case <-a.ctx.Done():
			return
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}

// gracefulShutdown releases resources in dependency order.
func (a *App) gracefulShutdown(ctx context.Context) {
	logging.Debug("starting graceful shutdown")

	// 1. Stop playback so no timer touches the page any more
	a.mu.Lock()
	current := a.current
	a.current = nil
	a.mu.Unlock()
	if current != nil {
		current.Close()
	}
	if a.narrator != nil {
		a.narrator.Cancel()
	}

	// 2. Cleanup signal handler
	if a.signalCleanup != nil {
		a.signalCleanup()
		a.signalCleanup = nil
	}

	// 3. Stop scenario watcher
	if a.watcher != nil {
		logging.Debug("stopping scenario watcher")
		if err := a.watcher.Stop(); err != nil {
			logging.Debug("error stopping scenario watcher", "error", err)
		}
	}

	// 4. Disconnect the browser, bounded by ctx
	if a.browser != nil {
		closed := make(chan struct{})
		go func() {
			a.browser.Close()
			close(closed)
		}()
		select {
		case <-closed:
		case <-ctx.Done():
			logging.Warn("browser did not close in time")
		}
	}

	// 5. Cancel the app context
	a.cancel()

	a.mu.Lock()
	if a.forceExit != nil {
		a.forceExit.Stop()
	}
	a.mu.Unlock()

	logging.Debug("shutdown complete")
}
