package shortcut

import (
	"errors"
	"maps"
	"slices"
	"sync"

	"uttr/log"
)

// Binder registers global shortcuts. hotkey.Manager implements it.
type Binder interface {
	Register(id, accel string, fn func(pressed bool)) error
	Unregister(id string) error
}

// Bind registers every binding except cancel, which only exists while
// recording (see CancelKey).
func Bind(b Binder, bindings map[string]string, dispatch func(Event)) error {
	return Rebind(b, nil, bindings, dispatch)
}

// Rebind applies the difference between two binding sets.
func Rebind(b Binder, prev, next map[string]string, dispatch func(Event)) error {
	var errs []error
	for _, id := range slices.Sorted(maps.Keys(prev)) {
		if id == CancelBinding {
			continue
		}
		if _, ok := next[id]; !ok {
			if err := b.Unregister(id); err != nil {
				errs = append(errs, err)
			}
		}
	}
	for _, id := range slices.Sorted(maps.Keys(next)) {
		accel := next[id]
		if id == CancelBinding || prev[id] == accel {
			continue
		}
		if err := b.Register(id, accel, edgeFunc(id, accel, dispatch)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func edgeFunc(id, accel string, dispatch func(Event)) func(bool) {
	return func(pressed bool) {
		dispatch(Event{BindingID: id, Token: accel, Pressed: pressed, Source: SourceHotkey})
	}
}

// CancelKey registers the cancel binding while a recording is active.
// Register and unregister requests are applied in call order by a single
// goroutine, so callers never wait on the hotkey backend.
type CancelKey struct {
	binder   Binder
	accel    func() string
	dispatch func(Event)

	mu      sync.Mutex
	want    bool
	applied bool
	kick    chan struct{}
	quit    chan struct{}
	done    chan struct{}
}

// NewCancelKey starts the reconcile goroutine. accel is read at every
// registration so config reloads apply to the next recording.
func NewCancelKey(b Binder, accel func() string, dispatch func(Event)) *CancelKey {
	k := &CancelKey{
		binder:   b,
		accel:    accel,
		dispatch: dispatch,
		kick:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go k.run()
	return k
}

func (k *CancelKey) RegisterCancel() error {
	k.set(true)
	return nil
}

func (k *CancelKey) UnregisterCancel() error {
	k.set(false)
	return nil
}

// Active reports whether the cancel binding is currently registered.
func (k *CancelKey) Active() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.applied
}

func (k *CancelKey) Close() {
	close(k.quit)
	<-k.done
}

func (k *CancelKey) set(v bool) {
	k.mu.Lock()
	k.want = v
	k.mu.Unlock()
	select {
	case k.kick <- struct{}{}:
	default:
	}
}

func (k *CancelKey) run() {
	defer close(k.done)
	have := false
	for {
		select {
		case <-k.quit:
			if have {
				k.binder.Unregister(CancelBinding)
			}
			return
		case <-k.kick:
		}

		k.mu.Lock()
		want := k.want
		k.mu.Unlock()
		if want == have {
			continue
		}

		if want {
			accel := k.accel()
			if accel == "" {
				continue
			}
			if err := k.binder.Register(CancelBinding, accel, edgeFunc(CancelBinding, accel, k.dispatch)); err != nil {
				log.Warnf("register cancel shortcut %s: %v", accel, err)
				continue
			}
		} else if err := k.binder.Unregister(CancelBinding); err != nil {
			log.Warnf("unregister cancel shortcut: %v", err)
		}
		have = want

		k.mu.Lock()
		k.applied = have
		k.mu.Unlock()
	}
}
