//go:build !windows

package signals

import (
	"os"
	"os/signal"
	"syscall"
)

// TriggerSignal toggles a recording.
const TriggerSignal = syscall.SIGUSR2

func notifyTrigger(ch chan os.Signal) bool {
	signal.Notify(ch, TriggerSignal)
	return true
}

func stop(ch chan os.Signal) {
	signal.Stop(ch)
}

// NotifyShutdown relays interrupt and terminate requests to ch.
func NotifyShutdown(ch chan os.Signal) {
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
}
