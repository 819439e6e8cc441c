// Package coordinator owns the dictation session state machine. Hotkeys,
// the signal listener, the tray menu and the stdin driver all call into a
// single Coordinator concurrently; every transition is a check-and-set on
// the current state so overlapping triggers resolve to one session.
package coordinator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"uttr/log"
)

const defaultSampleRate = 16000

type Options struct {
	Recorder       Recorder
	Transcriber    Transcriber
	UI             UI
	Output         Output
	CancelShortcut CancelShortcut
	SampleRate     int
}

type Coordinator struct {
	rec        Recorder
	tr         Transcriber
	ui         UI
	out        Output
	cancelKey  CancelShortcut
	sampleRate int

	ctx    context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	// capMu serializes capture and the UI changes that go with it: session
	// setup, stop, teardown and cancel. It is taken before mu.
	capMu  sync.Mutex
	mu     sync.Mutex // guards the fields below, never held across collaborator calls
	state  State
	gen    uint64
	owner  trigger // trigger that started the current session
	sessID string
	done   int
}

func New(o Options) *Coordinator {
	if o.Output == nil {
		o.Output = nopOutput{}
	}
	if o.CancelShortcut == nil {
		o.CancelShortcut = nopCancelShortcut{}
	}
	if o.SampleRate <= 0 {
		o.SampleRate = defaultSampleRate
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		rec:        o.Recorder,
		tr:         o.Transcriber,
		ui:         o.UI,
		out:        o.Output,
		cancelKey:  o.CancelShortcut,
		sampleRate: o.SampleRate,
		ctx:        ctx,
		stop:       cancel,
	}
}

// State returns the current session state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Completed returns how many sessions delivered text.
func (c *Coordinator) Completed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Wait blocks until in-flight transcriptions finish.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Close aborts in-flight transcriptions and waits for them to return.
func (c *Coordinator) Close() {
	c.stop()
	c.wg.Wait()
}

// HandleTranscribeInput applies one press or release edge of a transcribe
// binding under the given mode.
func (c *Coordinator) HandleTranscribeInput(bindingID, token string, pressed bool, mode Mode) {
	var notReady error
	if pressed {
		notReady = c.tr.Ready()
	}

	c.mu.Lock()
	st := c.state

	switch {
	case pressed && st == Idle && notReady != nil:
		c.mu.Unlock()
		log.Warnf("session not started (%s): %v", bindingID, notReady)
		c.ui.Error(notReady)
		return

	case pressed && st == Idle:
		gen, id := c.beginLocked(trigger{bindingID, token})
		c.mu.Unlock()
		log.Transition(id, gen, Idle.String(), Recording.String(), bindingID)
		c.startSession(gen)
		return

	case st == Recording && stopEdge(mode, pressed, trigger{bindingID, token}, c.owner):
		c.state = Transcribing
		gen, id, owner := c.gen, c.sessID, c.owner.binding
		c.mu.Unlock()
		log.Transition(id, gen, Recording.String(), Transcribing.String(), bindingID)
		c.stopSession(gen, id, owner)
		return
	}

	c.mu.Unlock()
	log.Ignored(bindingID, token, pressed, st.String())
}

// StopRecording ends the current recording whichever trigger started it
// and sends it on to transcription, as an explicit menu action does. It
// reports whether a recording was stopped.
func (c *Coordinator) StopRecording(reason string) bool {
	c.mu.Lock()
	if c.state != Recording {
		st := c.state
		c.mu.Unlock()
		log.Ignored(reason, "", true, st.String())
		return false
	}
	c.state = Transcribing
	gen, id, owner := c.gen, c.sessID, c.owner.binding
	c.mu.Unlock()
	log.Transition(id, gen, Recording.String(), Transcribing.String(), reason)
	c.stopSession(gen, id, owner)
	return true
}

// trigger identifies one physical source of a binding: the same binding id
// can arrive from a hotkey and from SIGUSR2 with different tokens.
type trigger struct {
	binding string
	token   string
}

// stopEdge reports whether an edge ends a Recording session. Only the
// trigger that started the session can end it: with a press in toggle mode,
// with a release in push-to-talk mode.
func stopEdge(mode Mode, pressed bool, t, owner trigger) bool {
	if t != owner {
		return false
	}
	if mode == Toggle {
		return pressed
	}
	return !pressed
}

func (c *Coordinator) beginLocked(t trigger) (uint64, string) {
	c.state = Recording
	c.gen++
	c.owner = t
	c.sessID = uuid.NewString()[:8]
	return c.gen, c.sessID
}

// current reports whether gen is still the live session and in state want.
func (c *Coordinator) current(gen uint64, want State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen && c.state == want
}

// advance moves gen's session from one state to the next. It fails when the
// session was cancelled or superseded in between.
func (c *Coordinator) advance(gen uint64, from, to State) bool {
	c.mu.Lock()
	if c.gen != gen || c.state != from {
		c.mu.Unlock()
		return false
	}
	c.state = to
	id := c.sessID
	c.mu.Unlock()
	log.Transition(id, gen, from.String(), to.String(), "")
	return true
}

func (c *Coordinator) startSession(gen uint64) {
	c.capMu.Lock()
	if !c.current(gen, Recording) {
		// Stopped or cancelled before setup began.
		c.capMu.Unlock()
		return
	}
	c.ui.SetTray(TrayRecording)
	c.ui.Show(Recording.String())
	c.ui.Cue(CueStart)
	if err := c.cancelKey.RegisterCancel(); err != nil {
		log.Warnf("register cancel shortcut: %v", err)
	}
	c.tr.Preload()
	err := c.rec.Start()
	c.capMu.Unlock()

	if err != nil {
		c.finish(gen, "start failed", &CaptureError{Op: "start", Err: err})
	}
}

func (c *Coordinator) stopSession(gen uint64, id, owner string) {
	c.capMu.Lock()
	if !c.current(gen, Transcribing) {
		// Cancelled in between; the canceller tore capture down.
		c.capMu.Unlock()
		return
	}
	c.unregisterCancel()
	samples, err := c.rec.Stop()
	c.ui.Cue(CueStop)
	ok := err == nil && len(samples) > 0
	if ok {
		c.ui.Show(Transcribing.String())
		c.ui.SetTray(TrayTranscribing)
	}
	c.capMu.Unlock()

	if err != nil {
		c.finish(gen, "stop failed", &CaptureError{Op: "stop", Err: err})
		return
	}
	if !ok {
		c.finish(gen, "empty", ErrEmptyRecording)
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.transcribe(gen, id, owner, samples)
	}()
}

func (c *Coordinator) transcribe(gen uint64, id, owner string, samples []float32) {
	ctx := log.WithSession(c.ctx, id)
	begin := time.Now()
	text, err := c.tr.Transcribe(ctx, samples)
	defer c.tr.MaybeUnload("transcription")

	if err != nil {
		c.finish(gen, "transcription failed", err)
		return
	}
	c.capMu.Lock()
	if !c.advance(gen, Transcribing, Processing) {
		c.capMu.Unlock()
		log.Infof("session %s: discarding result of superseded transcription", id)
		return
	}
	c.ui.Show(Processing.String())
	c.capMu.Unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		c.finish(gen, "no speech", nil)
		return
	}

	res := Result{
		Session: id,
		Binding: owner,
		Text:    text,
		Audio:   time.Duration(len(samples)) * time.Second / time.Duration(c.sampleRate),
		Took:    time.Since(begin),
	}
	if err := c.out.Deliver(ctx, res); err != nil {
		c.finish(gen, "output failed", err)
		return
	}

	c.mu.Lock()
	if c.gen == gen {
		c.done++
	}
	c.mu.Unlock()
	c.finish(gen, "done", nil)
}

// finish is the single recovery path: it returns gen's session to Idle and
// restores the UI. Nothing happens if the session is already gone. The
// teardown runs under capMu, so a session started after the transition
// sets up only once it is done.
func (c *Coordinator) finish(gen uint64, reason string, cause error) {
	c.capMu.Lock()
	c.mu.Lock()
	if c.gen != gen || c.state == Idle {
		c.mu.Unlock()
		c.capMu.Unlock()
		if cause != nil {
			log.Infof("session superseded, dropping error: %v", cause)
		}
		return
	}
	from, id := c.state, c.sessID
	c.state = Idle
	c.owner = trigger{}
	c.mu.Unlock()

	log.Transition(id, gen, from.String(), Idle.String(), reason)
	if from == Recording {
		c.unregisterCancel()
		c.rec.Cancel()
	}
	c.ui.Hide()
	c.ui.SetTray(TrayIdle)
	c.capMu.Unlock()

	if cause != nil {
		if errors.Is(cause, ErrEmptyRecording) {
			log.Warnf("session %s: %v", id, cause)
			return
		}
		log.Errorf("session %s: %s: %v", id, reason, cause)
		c.ui.Error(cause)
	}
}

func (c *Coordinator) unregisterCancel() {
	if err := c.cancelKey.UnregisterCancel(); err != nil {
		log.Warnf("unregister cancel shortcut: %v", err)
	}
}
