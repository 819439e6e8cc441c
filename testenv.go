package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"uttr/audio"
	"uttr/config"
	"uttr/coordinator"
	"uttr/history"
	"uttr/hotkey"
	"uttr/log"
	"uttr/overlay"
	"uttr/shortcut"
	"uttr/transcriber"
)

// testTranscriptEnv replaces the Groq client with a fixed transcript.
const testTranscriptEnv = "UTTR_TEST_TRANSCRIPT"

// edgeTimeout bounds how long the driver waits for an edge to be handled.
const edgeTimeout = 2 * time.Second

// runTestMode drives the real coordinator from stdin with a WAV file as the
// microphone and fake global shortcuts. It returns the exit code.
func runTestMode(store *config.Store, wavPath string, in io.Reader, out io.Writer) int {
	fakeCtx, err := audio.NewFakeContext(wavPath, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading WAV: %v\n", err)
		return 1
	}

	var tr coordinator.Transcriber = transcriber.NewManager(store, audio.SampleRate)
	if text, ok := os.LookupEnv(testTranscriptEnv); ok {
		tr = transcriber.NewFake(text, nil)
	}

	hist, err := history.Open(":memory:", store.Snapshot().HistoryLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening history: %v\n", err)
		return 1
	}

	keys := hotkey.NewFakeFactory()
	d := newDriver(out)
	d.keys = keys
	d.app = newApp(deps{
		store:        store,
		recorder:     audio.NewRecordingManager(fakeCtx, nil),
		transcriber:  tr,
		hotkeys:      hotkey.NewManagerWith(keys.New),
		window:       &overlay.Headless{},
		writer:       &lineWriter{w: out},
		history:      hist,
		onDispatched: d.handled,
		onError:      func(msg string) { d.printf("ERROR %s", msg) },
	})
	defer d.app.close()

	log.SessionStart(store.Snapshot().Model, store.Snapshot().PushToTalk, "test")
	return d.run(in)
}

// driver executes one stdin command per line:
//
//	PRESS <binding>    key down on the binding's shortcut
//	RELEASE <binding>  key up
//	CANCEL             press the cancel binding
//	SIGNAL             same as SIGUSR2
//	WAIT               wait for in-flight transcriptions
//	STATE              print the session state
//	SLEEP <ms>
//	QUIT
type driver struct {
	app  *app
	keys *hotkey.FakeFactory

	edges chan shortcut.Event

	mu  sync.Mutex
	out io.Writer
}

func newDriver(out io.Writer) *driver {
	return &driver{out: out, edges: make(chan shortcut.Event, 16)}
}

func (d *driver) handled(ev shortcut.Event) {
	select {
	case d.edges <- ev:
	default:
	}
}

func (d *driver) printf(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.out, format+"\n", args...)
}

func (d *driver) run(in io.Reader) int {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		switch strings.ToUpper(cmd) {
		case "PRESS":
			d.edge(arg, true)
		case "RELEASE":
			d.edge(arg, false)
		case "CANCEL":
			d.app.dispatch(shortcut.Event{BindingID: shortcut.CancelBinding, Token: "stdin", Pressed: true, Source: shortcut.SourceStdin})
			d.await()
		case "SIGNAL":
			d.app.signal()
			d.await()
		case "WAIT":
			d.app.coord.Wait()
		case "STATE":
			d.printf("STATE %s", d.app.coord.State())
		case "SLEEP":
			if ms, err := strconv.Atoi(strings.TrimSpace(arg)); err == nil {
				time.Sleep(time.Duration(ms) * time.Millisecond)
			}
		case "QUIT":
			return 0
		default:
			d.printf("UNKNOWN %s", line)
		}
	}
	return 0
}

// edge simulates the binding's shortcut and waits until the coordinator
// has handled it.
func (d *driver) edge(binding string, pressed bool) {
	binding = strings.TrimSpace(binding)
	if binding == "" {
		binding = "transcribe"
	}
	if !d.app.hotkeys.Registered(binding) {
		d.printf("UNBOUND %s", binding)
		return
	}
	accel, _ := d.app.hotkeys.Accelerator(binding)
	key := d.keys.Get(accel.String())
	if key == nil {
		d.printf("UNBOUND %s", binding)
		return
	}
	if pressed {
		key.SimKeydown()
	} else {
		key.SimKeyup()
	}
	d.await()
}

func (d *driver) await() {
	select {
	case <-d.edges:
	case <-time.After(edgeTimeout):
		log.Warn("test driver: edge not handled in time")
	}
}
