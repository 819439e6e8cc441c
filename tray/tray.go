// Package tray shows session state in the system tray and offers a small
// menu: start/stop, cancel, copy the last transcript and quit.
package tray

import (
	"sync"
	"time"

	"uttr/coordinator"
)

const (
	appName      = "uttr"
	errorTimeout = 10 * time.Second
)

// Actions are the menu callbacks. Any may be nil.
type Actions struct {
	Toggle   func()
	Cancel   func()
	CopyLast func()
	Quit     func()
}

// Menu is a platform tray: the systray backend here, or a GUI toolkit's.
type Menu interface {
	SetIcon(png []byte)
	SetTooltip(text string)
	SetToggleTitle(title string)
	SetCancelEnabled(on bool)
	SetCopyEnabled(on bool)
}

type Tray struct {
	mu      sync.Mutex
	menu    Menu // nil until the platform tray is ready
	state   coordinator.TrayState
	errMsg  string
	errGen  uint64
	hasLast bool
}

// New returns a Tray with no menu attached. State changes are kept and
// applied when Attach is called.
func New() *Tray {
	return &Tray{}
}

func newTray(m Menu) *Tray {
	t := New()
	t.Attach(m)
	return t
}

// Attach connects the platform menu and renders the current state on it.
func (t *Tray) Attach(m Menu) {
	t.mu.Lock()
	t.menu = m
	t.mu.Unlock()
	t.render()
}

// SetState reflects the session state. Leaving Idle clears an error.
func (t *Tray) SetState(s coordinator.TrayState) {
	t.mu.Lock()
	t.state = s
	if s != coordinator.TrayIdle {
		t.errMsg = ""
	}
	t.mu.Unlock()
	t.render()
}

// SetError shows msg in the tooltip for a while.
func (t *Tray) SetError(msg string) {
	t.mu.Lock()
	t.errMsg = msg
	t.errGen++
	gen := t.errGen
	t.mu.Unlock()
	t.render()

	time.AfterFunc(errorTimeout, func() {
		t.mu.Lock()
		if t.errGen != gen {
			t.mu.Unlock()
			return
		}
		t.errMsg = ""
		t.mu.Unlock()
		t.render()
	})
}

// SetHasLast enables "Copy last transcript".
func (t *Tray) SetHasLast(on bool) {
	t.mu.Lock()
	t.hasLast = on
	t.mu.Unlock()
	t.render()
}

func (t *Tray) render() {
	t.mu.Lock()
	m, state, errMsg, hasLast := t.menu, t.state, t.errMsg, t.hasLast
	t.mu.Unlock()
	if m == nil {
		return
	}

	switch {
	case errMsg != "":
		m.SetIcon(iconError)
		m.SetTooltip(appName + ": " + errMsg)
	case state == coordinator.TrayRecording:
		m.SetIcon(iconRec)
		m.SetTooltip(appName + ": recording")
	case state == coordinator.TrayTranscribing:
		m.SetIcon(iconBusy)
		m.SetTooltip(appName + ": transcribing")
	default:
		m.SetIcon(iconIdle)
		m.SetTooltip(appName + ": idle")
	}

	if state == coordinator.TrayRecording {
		m.SetToggleTitle("Stop Recording")
	} else {
		m.SetToggleTitle("Start Recording")
	}
	m.SetCancelEnabled(state != coordinator.TrayIdle)
	m.SetCopyEnabled(hasLast)
}
