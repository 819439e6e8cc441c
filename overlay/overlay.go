// Package overlay shows a small always-on-top status pill while a session
// is active. The drawing is left to a Window backend; this package decides
// when and where it appears.
package overlay

import (
	"sync"
	"time"

	"uttr/config"
	"uttr/log"
)

// Window is a backend able to display the pill.
type Window interface {
	SetPosition(x, y float64)
	Show()
	// SetState tells the content which label to draw. It may be called
	// again with the same state.
	SetState(state string)
	// FadeOut starts the hide animation; Hide removes the window.
	FadeOut()
	Hide()
	SetLevels(levels []float32)
}

// Screen reports the logical work area of the monitor under the cursor,
// falling back to the primary monitor. ok is false when unknown.
type Screen func() (area Rect, ok bool)

type Overlay struct {
	win    Window
	screen Screen
	store  *config.Store

	mu      sync.Mutex
	visible bool
	// epoch changes on every Show and Hide so delayed work can tell it is stale.
	epoch uint64
}

func New(win Window, screen Screen, store *config.Store) *Overlay {
	return &Overlay{win: win, screen: screen, store: store}
}

// Show makes the pill visible with the given state label.
func (o *Overlay) Show(state string) {
	s := o.store.Snapshot().Overlay
	if s.Position == config.PositionNone {
		return
	}

	o.mu.Lock()
	o.visible = true
	o.epoch++
	epoch := o.epoch
	o.mu.Unlock()

	if o.screen != nil {
		if area, ok := o.screen(); ok {
			x, y := Place(s.Position, area)
			o.win.SetPosition(x, y)
		}
	}
	o.win.Show()
	o.win.SetState(state)
	log.Debugf("overlay: show %s", state)

	if len(s.RetryDelays) > 0 {
		go o.resend(epoch, state, s.RetryDelays)
	}
}

// resend repeats the state at each delay after the show for backends whose
// content may miss the first update right after the window appears.
func (o *Overlay) resend(epoch uint64, state string, delays []time.Duration) {
	shown := time.Now()
	for _, d := range delays {
		time.Sleep(time.Until(shown.Add(d)))
		if !o.current(epoch) {
			return
		}
		o.win.SetState(state)
	}
}

// Hide fades the pill out and removes it after the configured delay. A
// Show in between keeps it on screen.
func (o *Overlay) Hide() {
	o.mu.Lock()
	if !o.visible {
		o.mu.Unlock()
		return
	}
	o.visible = false
	o.epoch++
	epoch := o.epoch
	o.mu.Unlock()

	o.win.FadeOut()
	delay := o.store.Snapshot().Overlay.HideDelay
	if delay <= 0 {
		o.win.Hide()
		return
	}
	time.AfterFunc(delay, func() {
		if o.current(epoch) {
			o.win.Hide()
		}
	})
}

// Levels forwards microphone levels while the pill is visible.
func (o *Overlay) Levels(levels []float32) {
	o.mu.Lock()
	visible := o.visible
	o.mu.Unlock()
	if visible {
		o.win.SetLevels(levels)
	}
}

func (o *Overlay) Visible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visible
}

func (o *Overlay) current(epoch uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.epoch == epoch
}
