//go:build windows

package signals

import (
	"os"
	"os/signal"
)

// There is no SIGUSR2 on Windows; Listen is a no-op.
func notifyTrigger(chan os.Signal) bool {
	return false
}

func stop(ch chan os.Signal) {
	signal.Stop(ch)
}

func NotifyShutdown(ch chan os.Signal) {
	signal.Notify(ch, os.Interrupt)
}
