package controler

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/log"
)

// WatchSignals returns a context cancelled on the first SIGINT or SIGTERM.
// A second signal forces the process to exit.
func WatchSignals(parent context.Context) (context.Context, context.CancelFunc) {
	logger := log.NewFieldedLogger(&log.Fields{
		"component": "controler.signalWatcher",
	})

	ctx, cancel := context.WithCancel(parent)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-ctx.Done():
			signal.Stop(signals)
			return
		case <-signals:
			logger.Info("received shutdown signal, cancelling pending requests...")
			cancel()
		}

		<-signals
		logger.Info("received second shutdown signal, forcing exit...")
		os.Exit(1)
	}()

	return ctx, cancel
}
