// Package clipboard puts transcripts on the system clipboard and pastes
// them into the focused window.
package clipboard

import (
	"time"

	cb "github.com/atotto/clipboard"

	"uttr/log"
)

func Read() (string, error) {
	return cb.ReadAll()
}

func Copy(text string) error {
	return cb.WriteAll(text)
}

// restoreDelay gives the target application time to read the clipboard
// before the previous content is put back.
const restoreDelay = 150 * time.Millisecond

// Writer delivers text through the clipboard.
type Writer struct {
	read  func() (string, error)
	write func(string) error
	paste func() error
	sleep func(time.Duration)
}

func NewWriter() *Writer {
	return &Writer{read: Read, write: Copy, paste: Paste, sleep: time.Sleep}
}

// Write copies text. With paste set it also sends the paste keystroke and
// then restores what was on the clipboard before.
func (w *Writer) Write(text string, paste bool) error {
	if !paste {
		return w.write(text)
	}

	prev, readErr := w.read()
	if err := w.write(text); err != nil {
		return err
	}
	if err := w.paste(); err != nil {
		// The text stays on the clipboard for a manual paste.
		return err
	}
	if readErr != nil {
		log.Debugf("clipboard: previous content not restored: %v", readErr)
		return nil
	}
	w.sleep(restoreDelay)
	if err := w.write(prev); err != nil {
		log.Warnf("clipboard: restore failed: %v", err)
	}
	return nil
}
