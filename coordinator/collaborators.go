package coordinator

import (
	"context"
	"time"
)

// Recorder captures mono float32 samples in [-1, 1].
// Implementations must be safe for concurrent use.
type Recorder interface {
	Start() error
	Stop() ([]float32, error)
	// Cancel discards buffered audio. It is a no-op when not recording.
	Cancel()
	IsActive() bool
}

// Transcriber turns samples into text.
type Transcriber interface {
	// Ready reports a configuration problem, such as a missing API key,
	// that would make every request fail. A press is refused while it
	// returns an error.
	Ready() error
	// Preload prepares the model for an upcoming request. It must not block.
	Preload()
	Transcribe(ctx context.Context, samples []float32) (string, error)
	// MaybeUnload releases the model when settings ask for immediate unload.
	MaybeUnload(reason string)
}

// UI reflects session state to the user. Calls must not block for long.
type UI interface {
	Show(label string)
	Hide()
	SetTray(TrayState)
	Cue(Cue)
	// Error surfaces a failed or refused session. The state is Idle when
	// it is called.
	Error(err error)
}

// Result is a finished transcription handed to the Output step.
type Result struct {
	Session string
	Binding string
	Text    string
	Audio   time.Duration
	Took    time.Duration
}

// Output delivers text while the session is Processing.
type Output interface {
	Deliver(ctx context.Context, r Result) error
}

// CancelShortcut is the binding that only exists while recording. Both
// calls are made from trigger goroutines and must not block on hotkey
// callbacks.
type CancelShortcut interface {
	RegisterCancel() error
	UnregisterCancel() error
}

type nopOutput struct{}

func (nopOutput) Deliver(context.Context, Result) error { return nil }

type nopCancelShortcut struct{}

func (nopCancelShortcut) RegisterCancel() error   { return nil }
func (nopCancelShortcut) UnregisterCancel() error { return nil }
