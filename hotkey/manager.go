package hotkey

import (
	"fmt"
	"sync"
)

// Factory creates a platform hotkey for an accelerator.
type Factory func(Accelerator) (Hotkey, error)

// Manager owns the registered bindings and delivers their edges to
// per-binding callbacks. Each binding has its own goroutine, so callbacks
// for different bindings run concurrently.
type Manager struct {
	newHotkey Factory

	mu       sync.Mutex
	bindings map[string]*binding
}

type binding struct {
	accel Accelerator
	hk    Hotkey
	stop  chan struct{}
	done  chan struct{}
}

func NewManager() *Manager {
	return NewManagerWith(New)
}

func NewManagerWith(f Factory) *Manager {
	return &Manager{newHotkey: f, bindings: make(map[string]*binding)}
}

// Register binds id to accel. An existing binding for id is replaced.
func (m *Manager) Register(id, accel string, fn func(pressed bool)) error {
	a, err := ParseAccelerator(accel)
	if err != nil {
		return err
	}
	if err := m.Unregister(id); err != nil {
		return err
	}

	m.mu.Lock()
	for other, b := range m.bindings {
		if b.accel == a {
			m.mu.Unlock()
			return fmt.Errorf("%s: %s is already bound to %s", id, a, other)
		}
	}
	m.mu.Unlock()

	hk, err := m.newHotkey(a)
	if err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}
	if err := hk.Register(); err != nil {
		return fmt.Errorf("%s: register %s: %w", id, a, err)
	}

	b := &binding{accel: a, hk: hk, stop: make(chan struct{}), done: make(chan struct{})}
	m.mu.Lock()
	m.bindings[id] = b
	m.mu.Unlock()

	go b.pump(fn)
	return nil
}

// Unregister removes id. Removing an unknown id is not an error.
func (m *Manager) Unregister(id string) error {
	m.mu.Lock()
	b, ok := m.bindings[id]
	delete(m.bindings, id)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	close(b.stop)
	b.hk.Unregister()
	<-b.done
	return nil
}

// Registered reports whether id currently has a binding.
func (m *Manager) Registered(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.bindings[id]
	return ok
}

// Accelerator returns the accelerator bound to id.
func (m *Manager) Accelerator(id string) (Accelerator, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bindings[id]
	if !ok {
		return Accelerator{}, false
	}
	return b.accel, true
}

func (m *Manager) Close() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.bindings))
	for id := range m.bindings {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		m.Unregister(id)
	}
}

// pump forwards edges in the order they happened. Keydown and Keyup are
// separate channels, so when both are pending the current key state decides
// which one came first.
func (b *binding) pump(fn func(pressed bool)) {
	defer close(b.done)
	down := false
	for {
		select {
		case <-b.stop:
			return
		case <-b.hk.Keydown():
			if down {
				select {
				case <-b.hk.Keyup():
					fn(false)
				default:
					continue
				}
			}
			down = true
			fn(true)
		case <-b.hk.Keyup():
			if !down {
				select {
				case <-b.hk.Keydown():
					fn(true)
				default:
					continue
				}
			}
			down = false
			fn(false)
		}
	}
}
