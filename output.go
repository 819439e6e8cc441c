package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"uttr/config"
	"uttr/coordinator"
	"uttr/history"
	"uttr/log"
	"uttr/overlay"
	"uttr/tray"
)

// textWriter puts text where the user wants it. clipboard.Writer is the
// desktop implementation.
type textWriter interface {
	Write(text string, paste bool) error
}

// output delivers finished transcripts: history first, so the text is kept
// even if pasting fails, then the clipboard.
type output struct {
	store   *config.Store
	writer  textWriter
	history *history.Store
	tray    *tray.Tray
	term    *overlay.Terminal

	mu   sync.Mutex
	last string
}

func newOutput(store *config.Store, w textWriter, h *history.Store, t *tray.Tray, term *overlay.Terminal) *output {
	return &output{store: store, writer: w, history: h, tray: t, term: term}
}

func (o *output) Deliver(ctx context.Context, r coordinator.Result) error {
	s := o.store.Snapshot()

	o.mu.Lock()
	o.last = r.Text
	o.mu.Unlock()

	if o.history != nil && s.History {
		_, err := o.history.Save(ctx, history.Entry{
			Session: r.Session,
			Binding: r.Binding,
			Text:    r.Text,
			Audio:   r.Audio,
			Took:    r.Took,
		})
		if err != nil {
			log.Warnf("session %s: save history: %v", r.Session, err)
		}
	}
	if o.tray != nil {
		o.tray.SetHasLast(true)
	}
	if o.term != nil {
		o.term.Transcript(r.Text)
	}

	if err := o.writer.Write(r.Text, s.Paste); err != nil {
		return fmt.Errorf("deliver transcript: %w", err)
	}
	return nil
}

// Last returns the most recent transcript, from history when it is kept
// and from this run otherwise.
func (o *output) Last(ctx context.Context) (string, bool) {
	if o.history != nil && o.store.Snapshot().History {
		e, ok, err := o.history.Last(ctx)
		if err != nil {
			log.Warnf("read history: %v", err)
		} else if ok {
			return e.Text, true
		}
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last, o.last != ""
}

// lineWriter prints transcripts as lines. The stdin test driver uses it in
// place of the clipboard.
type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lineWriter) Write(text string, paste bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := fmt.Fprintf(l.w, "TRANSCRIPT %s\n", text)
	return err
}
