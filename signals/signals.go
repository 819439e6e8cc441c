// Package signals adapts OS signals into application events: SIGUSR2
// toggles a recording, SIGINT/SIGTERM request shutdown.
package signals

import (
	"context"
	"os"

	"uttr/log"
)

// TriggerToken is the token of binding events raised by the trigger signal.
const TriggerToken = "SIGUSR2"

// Listen forwards every trigger signal to fn on its own goroutine until ctx
// is done. fn must not assume it runs on any particular goroutine.
func Listen(ctx context.Context, fn func()) {
	ch := make(chan os.Signal, 4)
	if !notifyTrigger(ch) {
		return
	}
	go func() {
		defer stop(ch)
		listen(ctx, ch, fn)
	}()
}

func listen(ctx context.Context, ch <-chan os.Signal, fn func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-ch:
			log.Debugf("received %v", sig)
			go fn()
		}
	}
}
