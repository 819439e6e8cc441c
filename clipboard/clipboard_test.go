package clipboard

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeClipboard struct {
	content  string
	readErr  error
	pasteErr error
	writes   []string
	pastes   int
	slept    time.Duration
}

func (f *fakeClipboard) writer() *Writer {
	return &Writer{
		read: func() (string, error) { return f.content, f.readErr },
		write: func(s string) error {
			f.content = s
			f.writes = append(f.writes, s)
			return nil
		},
		paste: func() error {
			f.pastes++
			return f.pasteErr
		},
		sleep: func(d time.Duration) { f.slept += d },
	}
}

func TestWriteCopyOnly(t *testing.T) {
	f := &fakeClipboard{content: "old"}
	if err := f.writer().Write("hello", false); err != nil {
		t.Fatal(err)
	}
	if f.content != "hello" || f.pastes != 0 {
		t.Errorf("content %q pastes %d", f.content, f.pastes)
	}
}

func TestWritePasteRestores(t *testing.T) {
	f := &fakeClipboard{content: "old"}
	if err := f.writer().Write("hello", true); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(f.writes, ","); got != "hello,old" {
		t.Errorf("writes = %s", got)
	}
	if f.pastes != 1 || f.slept != restoreDelay {
		t.Errorf("pastes %d slept %v", f.pastes, f.slept)
	}
}

func TestWritePasteFailureKeepsText(t *testing.T) {
	f := &fakeClipboard{content: "old", pasteErr: errors.New("no uinput")}
	if err := f.writer().Write("hello", true); err == nil {
		t.Fatal("expected paste error")
	}
	if f.content != "hello" {
		t.Errorf("content = %q, want transcript left on clipboard", f.content)
	}
}

func TestWriteUnreadableClipboardSkipsRestore(t *testing.T) {
	f := &fakeClipboard{readErr: errors.New("binary content")}
	if err := f.writer().Write("hello", true); err != nil {
		t.Fatal(err)
	}
	if f.content != "hello" || len(f.writes) != 1 {
		t.Errorf("writes = %v", f.writes)
	}
}
