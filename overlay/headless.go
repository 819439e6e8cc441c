package overlay

import (
	"sync"

	"uttr/log"
)

// Headless is a Window that only records what it was asked to draw. It
// backs -ui none and the stdin test driver.
type Headless struct {
	mu     sync.Mutex
	shown  bool
	state  string
	levels int
}

func (h *Headless) SetPosition(x, y float64) {
	log.Debugf("overlay: position %.0f,%.0f", x, y)
}

func (h *Headless) Show() {
	h.mu.Lock()
	h.shown = true
	h.mu.Unlock()
}

func (h *Headless) SetState(state string) {
	h.mu.Lock()
	h.state = state
	h.mu.Unlock()
}

func (h *Headless) FadeOut() {}

func (h *Headless) Hide() {
	h.mu.Lock()
	h.shown = false
	h.state = ""
	h.mu.Unlock()
}

func (h *Headless) SetLevels([]float32) {
	h.mu.Lock()
	h.levels++
	h.mu.Unlock()
}

// State returns the label on screen, or "" when hidden.
func (h *Headless) State() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.shown {
		return ""
	}
	return h.state
}
