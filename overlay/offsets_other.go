//go:build !darwin

package overlay

const (
	topOffset    = 4.0
	bottomOffset = 40.0
)
