package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type fakeRecorder struct {
	mu       sync.Mutex
	active   bool
	overlap  bool
	starts   int
	stops    int
	cancels  int
	samples  []float32
	startErr error
	stopErr  error
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{samples: make([]float32, 16000)}
}

func (r *fakeRecorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.startErr != nil {
		return r.startErr
	}
	if r.active {
		r.overlap = true
	}
	r.active = true
	r.starts++
	return nil
}

func (r *fakeRecorder) Stop() ([]float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops++
	if r.stopErr != nil {
		r.active = false
		return nil, r.stopErr
	}
	if !r.active {
		return nil, errors.New("not recording")
	}
	r.active = false
	return r.samples, nil
}

func (r *fakeRecorder) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = false
	r.cancels++
}

func (r *fakeRecorder) IsActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func (r *fakeRecorder) counts() (starts, stops, cancels int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.starts, r.stops, r.cancels
}

type fakeTranscriber struct {
	mu       sync.Mutex
	calls    int
	preloads int
	unloads  []string
	got      [][]float32
	// fn, when set, produces the result of call n (1-based).
	fn   func(n int) (string, error)
	text string
	err  error
	// notReady is returned by Ready.
	notReady error
}

func (t *fakeTranscriber) Ready() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.notReady
}

func (t *fakeTranscriber) Preload() {
	t.mu.Lock()
	t.preloads++
	t.mu.Unlock()
}

func (t *fakeTranscriber) Transcribe(ctx context.Context, samples []float32) (string, error) {
	t.mu.Lock()
	t.calls++
	n := t.calls
	t.got = append(t.got, samples)
	fn, text, err := t.fn, t.text, t.err
	t.mu.Unlock()
	if fn != nil {
		return fn(n)
	}
	return text, err
}

func (t *fakeTranscriber) MaybeUnload(reason string) {
	t.mu.Lock()
	t.unloads = append(t.unloads, reason)
	t.mu.Unlock()
}

func (t *fakeTranscriber) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

func (t *fakeTranscriber) unloadReasons() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.unloads...)
}

type fakeUI struct {
	mu     sync.Mutex
	events []string
	errs   []error

	// onShow and onHide run before the event is recorded; tests use them
	// to hold a goroutine inside a UI call.
	onShow func(label string)
	onHide func()
}

func (u *fakeUI) record(ev string) {
	u.mu.Lock()
	u.events = append(u.events, ev)
	u.mu.Unlock()
}

func (u *fakeUI) Show(label string) {
	u.mu.Lock()
	fn := u.onShow
	u.mu.Unlock()
	if fn != nil {
		fn(label)
	}
	u.record("show:" + label)
}

func (u *fakeUI) Hide() {
	u.mu.Lock()
	fn := u.onHide
	u.mu.Unlock()
	if fn != nil {
		fn()
	}
	u.record("hide")
}

func (u *fakeUI) SetTray(s TrayState) { u.record(fmt.Sprintf("tray:%d", s)) }

func (u *fakeUI) Cue(c Cue) { u.record(fmt.Sprintf("cue:%d", c)) }

func (u *fakeUI) Error(err error) {
	u.mu.Lock()
	u.errs = append(u.errs, err)
	u.mu.Unlock()
}

func (u *fakeUI) snapshot() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.events...)
}

func (u *fakeUI) count(ev string) int {
	n := 0
	for _, e := range u.snapshot() {
		if e == ev {
			n++
		}
	}
	return n
}

func (u *fakeUI) last() string {
	ev := u.snapshot()
	for i := len(ev) - 1; i >= 0; i-- {
		if ev[i] == "hide" || len(ev[i]) > 5 && ev[i][:5] == "show:" {
			return ev[i]
		}
	}
	return ""
}

func (u *fakeUI) errors() []error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]error(nil), u.errs...)
}

type fakeOutput struct {
	mu      sync.Mutex
	results []Result
	err     error
}

func (o *fakeOutput) Deliver(_ context.Context, r Result) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.results = append(o.results, r)
	return nil
}

func (o *fakeOutput) delivered() []Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Result(nil), o.results...)
}

type fakeCancelKey struct {
	mu          sync.Mutex
	registers   int
	unregisters int
	registerErr error
}

func (k *fakeCancelKey) RegisterCancel() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.registers++
	return k.registerErr
}

func (k *fakeCancelKey) UnregisterCancel() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.unregisters++
	return nil
}

func (k *fakeCancelKey) counts() (int, int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.registers, k.unregisters
}

type harness struct {
	c   *Coordinator
	rec *fakeRecorder
	tr  *fakeTranscriber
	ui  *fakeUI
	out *fakeOutput
	key *fakeCancelKey
}

func newHarness() *harness {
	h := &harness{
		rec: newFakeRecorder(),
		tr:  &fakeTranscriber{text: "hello world"},
		ui:  &fakeUI{},
		out: &fakeOutput{},
		key: &fakeCancelKey{},
	}
	h.c = New(Options{
		Recorder:       h.rec,
		Transcriber:    h.tr,
		UI:             h.ui,
		Output:         h.out,
		CancelShortcut: h.key,
	})
	return h
}
