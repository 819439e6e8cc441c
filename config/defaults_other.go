//go:build !darwin

package config

import "time"

func defaultRetryDelays() []time.Duration {
	return []time.Duration{}
}
