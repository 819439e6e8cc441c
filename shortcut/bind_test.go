package shortcut

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeBinder struct {
	mu    sync.Mutex
	bound map[string]string
	fns   map[string]func(bool)
	log   []string
	fail  map[string]bool
}

func newFakeBinder() *fakeBinder {
	return &fakeBinder{bound: map[string]string{}, fns: map[string]func(bool){}, fail: map[string]bool{}}
}

func (b *fakeBinder) Register(id, accel string, fn func(bool)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail[id] {
		return errors.New("grab failed")
	}
	b.bound[id] = accel
	b.fns[id] = fn
	b.log = append(b.log, "+"+id)
	return nil
}

func (b *fakeBinder) Unregister(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.bound, id)
	delete(b.fns, id)
	b.log = append(b.log, "-"+id)
	return nil
}

func (b *fakeBinder) has(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.bound[id]
	return ok
}

func (b *fakeBinder) press(id string, pressed bool) {
	b.mu.Lock()
	fn := b.fns[id]
	b.mu.Unlock()
	fn(pressed)
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBindSkipsCancel(t *testing.T) {
	b := newFakeBinder()
	var events []Event
	err := Bind(b, map[string]string{
		"transcribe":     "ctrl+shift+space",
		"transcribe_alt": "f9",
		"cancel":         "escape",
	}, func(ev Event) { events = append(events, ev) })
	if err != nil {
		t.Fatal(err)
	}
	if b.has("cancel") {
		t.Error("cancel bound outside a recording")
	}
	if !b.has("transcribe") || !b.has("transcribe_alt") {
		t.Fatalf("bound = %v", b.bound)
	}

	b.press("transcribe_alt", true)
	if len(events) != 1 {
		t.Fatalf("events = %+v", events)
	}
	want := Event{BindingID: "transcribe_alt", Token: "f9", Pressed: true, Source: SourceHotkey}
	if events[0] != want {
		t.Errorf("event = %+v, want %+v", events[0], want)
	}
}

func TestBindJoinsErrors(t *testing.T) {
	b := newFakeBinder()
	b.fail["transcribe_alt"] = true
	err := Bind(b, map[string]string{"transcribe": "f8", "transcribe_alt": "f9"}, func(Event) {})
	if err == nil {
		t.Fatal("expected error")
	}
	if !b.has("transcribe") {
		t.Error("a failing binding blocked the others")
	}
}

func TestRebind(t *testing.T) {
	b := newFakeBinder()
	prev := map[string]string{"transcribe": "f8", "transcribe_alt": "f9", "copy_last": "f10"}
	if err := Bind(b, prev, func(Event) {}); err != nil {
		t.Fatal(err)
	}
	b.log = nil

	next := map[string]string{"transcribe": "f8", "copy_last": "f11"}
	if err := Rebind(b, prev, next, func(Event) {}); err != nil {
		t.Fatal(err)
	}
	want := []string{"-transcribe_alt", "+copy_last"}
	if len(b.log) != len(want) {
		t.Fatalf("log = %v, want %v", b.log, want)
	}
	for i := range want {
		if b.log[i] != want[i] {
			t.Errorf("log = %v, want %v", b.log, want)
		}
	}
	if b.bound["copy_last"] != "f11" {
		t.Errorf("copy_last = %q", b.bound["copy_last"])
	}
}

func TestCancelKeyLifecycle(t *testing.T) {
	b := newFakeBinder()
	var mu sync.Mutex
	var events []Event
	k := NewCancelKey(b, func() string { return "escape" }, func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})
	defer k.Close()

	k.RegisterCancel()
	eventually(t, func() bool { return b.has(CancelBinding) && k.Active() })

	b.press(CancelBinding, true)
	mu.Lock()
	if len(events) != 1 || events[0].BindingID != CancelBinding || events[0].Token != "escape" {
		t.Errorf("events = %+v", events)
	}
	mu.Unlock()

	k.UnregisterCancel()
	eventually(t, func() bool { return !b.has(CancelBinding) && !k.Active() })
}

func TestCancelKeyLastRequestWins(t *testing.T) {
	b := newFakeBinder()
	k := NewCancelKey(b, func() string { return "escape" }, func(Event) {})
	defer k.Close()

	for i := 0; i < 10; i++ {
		k.RegisterCancel()
		k.UnregisterCancel()
	}
	k.RegisterCancel()
	eventually(t, func() bool { return k.Active() })

	k.UnregisterCancel()
	eventually(t, func() bool { return !k.Active() })
	if b.has(CancelBinding) {
		t.Error("cancel left registered")
	}
}

func TestCancelKeyCloseUnregisters(t *testing.T) {
	b := newFakeBinder()
	k := NewCancelKey(b, func() string { return "escape" }, func(Event) {})
	k.RegisterCancel()
	eventually(t, k.Active)
	k.Close()
	if b.has(CancelBinding) {
		t.Error("Close left cancel registered")
	}
}
