// Package shortcut routes binding edges from every trigger source to the
// session coordinator or to a plain press/release action.
package shortcut

import (
	"strings"

	"uttr/config"
	"uttr/coordinator"
	"uttr/log"
)

// CancelBinding is the id of the transient cancel shortcut.
const CancelBinding = "cancel"

type Source int

const (
	SourceHotkey Source = iota
	SourceSignal
	SourceTray
	SourceStdin
)

func (s Source) String() string {
	switch s {
	case SourceHotkey:
		return "hotkey"
	case SourceSignal:
		return "signal"
	case SourceTray:
		return "tray"
	case SourceStdin:
		return "stdin"
	}
	return "unknown"
}

// Event is one press or release edge of a binding.
type Event struct {
	BindingID string
	Token     string
	Pressed   bool
	Source    Source
}

// IsTranscribeBinding reports whether id is routed to the coordinator.
func IsTranscribeBinding(id string) bool {
	return strings.HasPrefix(id, "transcribe")
}

// Coordinator is the part of coordinator.Coordinator the router drives.
type Coordinator interface {
	HandleTranscribeInput(bindingID, token string, pressed bool, mode coordinator.Mode)
	HandleCancel(bindingID string, pressed bool)
}

type Router struct {
	coord    Coordinator
	settings *config.Store
	registry *Registry
}

func NewRouter(c Coordinator, settings *config.Store, reg *Registry) *Router {
	if reg == nil {
		reg = NewRegistry(nil)
	}
	return &Router{coord: c, settings: settings, registry: reg}
}

// Dispatch handles one event. It never blocks on a transcription.
func (r *Router) Dispatch(ev Event) {
	switch {
	case IsTranscribeBinding(ev.BindingID):
		r.coord.HandleTranscribeInput(ev.BindingID, ev.Token, ev.Pressed, r.mode(ev))
	case ev.BindingID == CancelBinding:
		r.coord.HandleCancel(ev.BindingID, ev.Pressed)
	default:
		action, ok := r.registry.Lookup(ev.BindingID)
		if !ok {
			log.Warnf("no action for binding %q (token %q, pressed %v, source %s)",
				ev.BindingID, ev.Token, ev.Pressed, ev.Source)
			return
		}
		if ev.Pressed {
			action.start(ev.BindingID, ev.Token)
		} else {
			action.stop(ev.BindingID, ev.Token)
		}
	}
}

// mode reads the settings snapshot current at the event's arrival. The
// signal and the tray menu only deliver presses, so they always toggle.
func (r *Router) mode(ev Event) coordinator.Mode {
	if ev.Source == SourceSignal || ev.Source == SourceTray {
		return coordinator.Toggle
	}
	return coordinator.ModeFor(r.settings.Snapshot().PushToTalk)
}
