package transcriber

import (
	"context"
	"sync"
	"time"
)

// Fake returns fixed text after an optional delay. It stands in for the
// network in the stdin test driver.
type Fake struct {
	Text  string
	Err   error
	Delay time.Duration
	// NotReady is returned by Ready.
	NotReady error

	mu    sync.Mutex
	calls int
}

func NewFake(text string, err error) *Fake {
	return &Fake{Text: text, Err: err}
}

func (f *Fake) Ready() error { return f.NotReady }

func (f *Fake) Preload() {}

func (f *Fake) Transcribe(ctx context.Context, samples []float32) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}

func (f *Fake) MaybeUnload(string) {}

func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
