package main

import (
	"context"
	"maps"
	"sync"

	"uttr/audio"
	"uttr/config"
	"uttr/coordinator"
	"uttr/history"
	"uttr/hotkey"
	"uttr/log"
	"uttr/overlay"
	"uttr/shortcut"
	"uttr/signals"
	"uttr/tray"
)

// copyLastBinding copies the most recent transcript again.
const copyLastBinding = "copy_last"

// deps are the collaborators chosen by the run mode.
type deps struct {
	store       *config.Store
	recorder    *audio.RecordingManager
	transcriber coordinator.Transcriber
	hotkeys     *hotkey.Manager
	window      overlay.Window
	screen      overlay.Screen
	tray        *tray.Tray        // nil without a tray
	term        *overlay.Terminal // nil unless the terminal UI runs
	writer      textWriter
	history     *history.Store // nil when history is off
	cues        bool

	// onDispatched and onError let the stdin driver observe the app.
	onDispatched func(shortcut.Event)
	onError      func(msg string)
}

// app wires trigger sources to the coordinator and its collaborators.
type app struct {
	deps
	coord   *coordinator.Coordinator
	router  *shortcut.Router
	cancel  *shortcut.CancelKey
	overlay *overlay.Overlay
	ui      *feedback
	out     *output

	mu    sync.Mutex
	bound map[string]string

	stopSignals context.CancelFunc
	closeOnce   sync.Once
}

func newApp(d deps) *app {
	a := &app{deps: d}
	a.overlay = overlay.New(d.window, d.screen, d.store)
	d.recorder.OnLevels(a.overlay.Levels)
	a.out = newOutput(d.store, d.writer, d.history, d.tray, d.term)

	a.ui = newFeedback(d.store, a.overlay, d.tray, d.term, d.cues)
	a.ui.onError = d.onError

	a.cancel = shortcut.NewCancelKey(d.hotkeys, func() string {
		return d.store.Snapshot().Bindings[shortcut.CancelBinding]
	}, a.dispatch)
	a.coord = coordinator.New(coordinator.Options{
		Recorder:       d.recorder,
		Transcriber:    d.transcriber,
		UI:             a.ui,
		Output:         a.out,
		CancelShortcut: a.cancel,
		SampleRate:     audio.SampleRate,
	})
	reg := shortcut.NewRegistry(map[string]shortcut.Action{
		copyLastBinding: {Start: func(string, string) { a.copyLast() }},
	})
	a.router = shortcut.NewRouter(a.coord, d.store, reg)

	bindings := d.store.Snapshot().Bindings
	if err := shortcut.Bind(d.hotkeys, bindings, a.dispatch); err != nil {
		log.Warnf("register shortcuts: %v", err)
	}
	a.bound = maps.Clone(bindings)
	d.store.OnChange(a.reload)

	ctx, cancel := context.WithCancel(context.Background())
	a.stopSignals = cancel
	signals.Listen(ctx, a.signal)
	return a
}

func (a *app) dispatch(ev shortcut.Event) {
	a.router.Dispatch(ev)
	if a.onDispatched != nil {
		a.onDispatched(ev)
	}
}

// signal is one SIGUSR2. It toggles the default transcribe binding.
func (a *app) signal() {
	a.dispatch(shortcut.Event{
		BindingID: "transcribe",
		Token:     signals.TriggerToken,
		Pressed:   true,
		Source:    shortcut.SourceSignal,
	})
}

func (a *app) reload(s *config.Settings) {
	log.SetLevel(s.LogLevel)
	a.mu.Lock()
	prev := a.bound
	a.bound = maps.Clone(s.Bindings)
	a.mu.Unlock()
	if err := shortcut.Rebind(a.hotkeys, prev, s.Bindings, a.dispatch); err != nil {
		log.Warnf("rebind shortcuts: %v", err)
	}
	log.Infof("settings reloaded: push_to_talk=%v language=%s model=%s", s.PushToTalk, s.Language, s.Model)
}

func (a *app) copyLast() {
	text, ok := a.out.Last(context.Background())
	if !ok {
		log.Debug("copy last: nothing transcribed yet")
		return
	}
	if err := a.writer.Write(text, false); err != nil {
		log.Warnf("copy last: %v", err)
	}
}

// trayActions are the menu callbacks for a.
func (a *app) trayActions(quit func()) tray.Actions {
	return tray.Actions{
		// The menu item stops any recording, not only one it started.
		Toggle: func() {
			if a.coord.StopRecording("tray") {
				return
			}
			a.dispatch(shortcut.Event{BindingID: "transcribe", Token: "tray", Pressed: true, Source: shortcut.SourceTray})
		},
		Cancel:   func() { a.coord.CancelCurrentOperation("tray") },
		CopyLast: a.copyLast,
		Quit:     quit,
	}
}

// close stops every trigger source, aborts any session and releases the
// devices. It is safe to call more than once.
func (a *app) close() {
	a.closeOnce.Do(func() {
		a.stopSignals()
		a.coord.CancelCurrentOperation("shutdown")
		a.coord.Close()
		a.cancel.Close()
		a.hotkeys.Close()
		a.recorder.Close()
		if a.history != nil {
			if err := a.history.Close(); err != nil {
				log.Warnf("close history: %v", err)
			}
		}
		log.SessionEnd(a.coord.Completed())
	})
}
