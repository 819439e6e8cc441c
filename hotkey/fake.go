package hotkey

import "sync"

type FakeHotkey struct {
	Accel   Accelerator
	keydown chan struct{}
	keyup   chan struct{}

	mu         sync.Mutex
	registered bool
}

func NewFake() *FakeHotkey {
	return &FakeHotkey{
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}
}

func (f *FakeHotkey) Register() error {
	f.mu.Lock()
	f.registered = true
	f.mu.Unlock()
	return nil
}

func (f *FakeHotkey) Unregister() {
	f.mu.Lock()
	f.registered = false
	f.mu.Unlock()
}

func (f *FakeHotkey) Registered() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registered
}

func (f *FakeHotkey) Keydown() <-chan struct{} { return f.keydown }
func (f *FakeHotkey) Keyup() <-chan struct{}   { return f.keyup }

func (f *FakeHotkey) SimKeydown() { f.keydown <- struct{}{} }
func (f *FakeHotkey) SimKeyup()   { f.keyup <- struct{}{} }

// FakeFactory builds FakeHotkeys for a Manager and remembers the latest
// one created per accelerator.
type FakeFactory struct {
	mu   sync.Mutex
	keys map[string]*FakeHotkey
}

func NewFakeFactory() *FakeFactory {
	return &FakeFactory{keys: make(map[string]*FakeHotkey)}
}

func (ff *FakeFactory) New(a Accelerator) (Hotkey, error) {
	f := NewFake()
	f.Accel = a
	ff.mu.Lock()
	ff.keys[a.String()] = f
	ff.mu.Unlock()
	return f, nil
}

// Get returns the fake for accel, or nil if none was created.
func (ff *FakeFactory) Get(accel string) *FakeHotkey {
	a, err := ParseAccelerator(accel)
	if err != nil {
		return nil
	}
	ff.mu.Lock()
	defer ff.mu.Unlock()
	return ff.keys[a.String()]
}
