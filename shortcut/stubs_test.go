package shortcut

import (
	"context"
	"errors"
	"sync"

	"uttr/coordinator"
)

type stubRecorder struct {
	mu     sync.Mutex
	active bool
}

func (r *stubRecorder) Start() error {
	r.mu.Lock()
	r.active = true
	r.mu.Unlock()
	return nil
}

func (r *stubRecorder) Stop() ([]float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return nil, errors.New("not recording")
	}
	r.active = false
	return []float32{0.1, 0.2}, nil
}

func (r *stubRecorder) Cancel() {
	r.mu.Lock()
	r.active = false
	r.mu.Unlock()
}

func (r *stubRecorder) IsActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

type stubTranscriber struct{}

func (stubTranscriber) Ready() error { return nil }
func (stubTranscriber) Preload()     {}

func (stubTranscriber) Transcribe(context.Context, []float32) (string, error) {
	return "hello world", nil
}

func (stubTranscriber) MaybeUnload(string) {}

type stubUI struct{}

func (stubUI) Show(string)                   {}
func (stubUI) Hide()                         {}
func (stubUI) SetTray(coordinator.TrayState) {}
func (stubUI) Cue(coordinator.Cue)           {}
func (stubUI) Error(error)                   {}
