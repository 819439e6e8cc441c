package overlay

// Clears the menu bar and the dock.
const (
	topOffset    = 46.0
	bottomOffset = 15.0
)
