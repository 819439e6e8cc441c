package main

import (
	"errors"
	"fmt"

	"uttr/beep"
	"uttr/config"
	"uttr/coordinator"
	"uttr/overlay"
	"uttr/transcriber"
	"uttr/tray"
)

var cueSounds = map[coordinator.Cue]beep.Sound{
	coordinator.CueStart:  beep.Start,
	coordinator.CueStop:   beep.Stop,
	coordinator.CueCancel: beep.Cancel,
}

// feedback is the coordinator's UI: the overlay pill, the tray icon, the
// terminal view and audio cues.
type feedback struct {
	store   *config.Store
	overlay *overlay.Overlay
	tray    *tray.Tray
	term    *overlay.Terminal
	cues    bool
	play    func(beep.Sound)
	onError func(msg string)
}

func newFeedback(store *config.Store, ov *overlay.Overlay, t *tray.Tray, term *overlay.Terminal, cues bool) *feedback {
	return &feedback{store: store, overlay: ov, tray: t, term: term, cues: cues, play: beep.Play}
}

func (f *feedback) Show(label string) { f.overlay.Show(label) }

func (f *feedback) Hide() { f.overlay.Hide() }

func (f *feedback) SetTray(s coordinator.TrayState) {
	if f.tray != nil {
		f.tray.SetState(s)
	}
}

func (f *feedback) Cue(c coordinator.Cue) {
	if !f.cues || !f.store.Snapshot().AudioFeedback {
		return
	}
	if s, ok := cueSounds[c]; ok {
		f.play(s)
	}
}

func (f *feedback) Error(err error) {
	msg := userMessage(err)
	if f.tray != nil {
		f.tray.SetError(msg)
	}
	if f.term != nil {
		f.term.Error(msg)
	}
	if f.onError != nil {
		f.onError(msg)
	}
}

// userMessage shortens err for the tray tooltip and terminal.
func userMessage(err error) string {
	var apiErr *transcriber.APIError
	var capErr *coordinator.CaptureError
	switch {
	case errors.Is(err, transcriber.ErrMissingAPIKey):
		return "no API key (set GROQ_API_KEY or api_key)"
	case errors.As(err, &apiErr):
		return fmt.Sprintf("transcription failed (HTTP %d)", apiErr.StatusCode)
	case errors.As(err, &capErr):
		return "microphone: " + capErr.Err.Error()
	}
	return err.Error()
}
