package coordinator

import (
	"errors"
	"fmt"
)

// State is the phase of the current dictation session.
type State int

const (
	Idle State = iota
	Recording
	Transcribing
	Processing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Transcribing:
		return "transcribing"
	case Processing:
		return "processing"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Mode decides which key edges are significant.
type Mode int

const (
	PushToTalk Mode = iota
	Toggle
)

func (m Mode) String() string {
	if m == Toggle {
		return "toggle"
	}
	return "push_to_talk"
}

// ModeFor maps the push_to_talk setting to a Mode.
func ModeFor(pushToTalk bool) Mode {
	if pushToTalk {
		return PushToTalk
	}
	return Toggle
}

// TrayState is the icon shown in the system tray.
type TrayState int

const (
	TrayIdle TrayState = iota
	TrayRecording
	TrayTranscribing
)

// Cue is an audible feedback event.
type Cue int

const (
	CueStart Cue = iota
	CueStop
	CueCancel
)

// ErrEmptyRecording is reported when capture stopped without any samples.
var ErrEmptyRecording = errors.New("no audio captured")

// CaptureError wraps a recorder failure while starting or stopping.
type CaptureError struct {
	Op  string
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture %s: %v", e.Op, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}
