//go:build darwin

package config

import "time"

// Hidden overlay webviews can miss the first state broadcast on macOS.
func defaultRetryDelays() []time.Duration {
	return []time.Duration{90 * time.Millisecond, 180 * time.Millisecond}
}
