package doctor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"uttr/audio"
	"uttr/clipboard"
	"uttr/config"
	"uttr/hotkey"
	"uttr/transcriber"
)

const doctorBinding = "doctor"

// Binder registers a global shortcut. hotkey.Manager implements it.
type Binder interface {
	Register(id, accel string, fn func(pressed bool)) error
	Unregister(id string) error
}

// Transcriber is the part of transcriber.Manager the doctor exercises.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32) (string, error)
}

// Doctor carries state between checks: the settings loaded by the first
// check and the clip recorded for the transcription check.
type Doctor struct {
	ConfigFile string
	Hotkeys    Binder
	Audio      audio.Context
	// Transcriber overrides the Groq client built from the loaded settings.
	Transcriber Transcriber
	// Prompt prints a question and returns the answer line.
	Prompt func(question string) string

	HotkeyTimeout time.Duration
	RecordFor     time.Duration

	copy   func(string) error
	read   func() (string, error)
	verify func() (string, error)
	reset  func()

	store   *config.Store
	samples []float32
}

// New returns a Doctor reading answers from stdin and using the real
// hotkey and audio backends.
func New(configFile string, actx audio.Context) *Doctor {
	reader := bufio.NewReader(os.Stdin)
	return &Doctor{
		ConfigFile: configFile,
		Hotkeys:    hotkey.NewManager(),
		Audio:      actx,
		Prompt: func(q string) string {
			fmt.Print(q)
			line, _ := reader.ReadString('\n')
			return strings.TrimSpace(line)
		},
		HotkeyTimeout: 10 * time.Second,
		RecordFor:     3 * time.Second,
	}
}

func (d *Doctor) defaults() {
	if d.copy == nil {
		d.copy = clipboard.Copy
	}
	if d.read == nil {
		d.read = clipboard.Read
	}
	if d.verify == nil {
		d.verify = clipboard.Verify
	}
	if d.reset == nil {
		d.reset = resetTerminal
	}
}

// Checks returns the diagnostic steps in the order they must run.
func (d *Doctor) Checks() []Check {
	d.defaults()
	return []Check{
		{Name: "Settings", Run: d.checkSettings, Required: true},
		{Name: "API key", Run: d.checkAPIKey},
		{Name: "Hotkey detection", Run: d.checkHotkey},
		{Name: "Microphone", Run: d.checkMicrophone},
		{Name: "Transcription", Run: d.checkTranscription},
		{Name: "Clipboard", Run: d.checkClipboard},
	}
}

func (d *Doctor) confirm(question string) bool {
	a := strings.ToLower(d.Prompt(question + " [y/n]: "))
	return a == "y" || a == "yes"
}

func (d *Doctor) checkSettings(w io.Writer) error {
	file := config.ResolveFile(d.ConfigFile)
	store, err := config.Load(file)
	if err != nil {
		return err
	}
	d.store = store
	if file == "" {
		fmt.Fprintln(w, "  no config file found, using defaults")
	} else {
		fmt.Fprintf(w, "  loaded %s\n", file)
	}
	s := store.Snapshot()
	fmt.Fprintf(w, "  model=%s language=%s push_to_talk=%v\n", s.Model, s.Language, s.PushToTalk)
	return nil
}

func (d *Doctor) checkAPIKey(w io.Writer) error {
	s := d.store.Snapshot()
	if s.APIKey == "" {
		return fmt.Errorf("%w: set api_key in the config file or GROQ_API_KEY", transcriber.ErrMissingAPIKey)
	}
	fmt.Fprintf(w, "  key ending in ...%s\n", s.APIKey[max(0, len(s.APIKey)-4):])
	return nil
}

func (d *Doctor) checkHotkey(w io.Writer) error {
	accel := d.store.Snapshot().Bindings["transcribe"]
	fmt.Fprintf(w, "  Press %s...\n", accel)

	edges := make(chan bool, 4)
	if err := d.Hotkeys.Register(doctorBinding, accel, func(pressed bool) {
		select {
		case edges <- pressed:
		default:
		}
	}); err != nil {
		return fmt.Errorf("could not register hotkey: %w", err)
	}
	defer d.Hotkeys.Unregister(doctorBinding)

	deadline := time.After(d.HotkeyTimeout)
	for {
		select {
		case pressed := <-edges:
			if !pressed {
				continue
			}
			fmt.Fprintln(w, "  hotkey detected")
			// Wait for keyup so the release does not leak into the next step.
			waitRelease(edges, 5*time.Second)
			// The hotkey backend may leave the terminal in raw mode.
			d.reset()
			return nil
		case <-deadline:
			return errors.New("timeout waiting for hotkey")
		}
	}
}

func waitRelease(edges <-chan bool, timeout time.Duration) {
	deadline := time.After(timeout)
	for {
		select {
		case pressed := <-edges:
			if !pressed {
				return
			}
		case <-deadline:
			return
		}
	}
}

func (d *Doctor) checkMicrophone(w io.Writer) error {
	if d.Audio == nil {
		return errors.New("no audio backend")
	}
	device, err := audio.FindDevice(d.Audio, d.store.Snapshot().Device)
	if err != nil {
		return err
	}
	name := "system default"
	if device != nil {
		name = device.Name
	}
	fmt.Fprintf(w, "  device: %s\n", name)

	rec := audio.NewRecordingManager(d.Audio, device)
	defer rec.Close()

	d.Prompt(fmt.Sprintf("  Press Enter and speak for %.0f seconds...", d.RecordFor.Seconds()))
	if err := rec.Start(); err != nil {
		return err
	}
	fmt.Fprint(w, "  Recording")
	for elapsed := time.Duration(0); elapsed < d.RecordFor; elapsed += 500 * time.Millisecond {
		time.Sleep(min(500*time.Millisecond, d.RecordFor-elapsed))
		fmt.Fprint(w, ".")
	}
	fmt.Fprintln(w, " done")

	samples, err := rec.Stop()
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return errors.New("no audio captured")
	}
	d.samples = samples
	fmt.Fprintf(w, "  recorded %.1fs, peak %.2f\n", float64(len(samples))/audio.SampleRate, peak(samples))
	return nil
}

func peak(samples []float32) float64 {
	var p float64
	for _, s := range samples {
		p = max(p, math.Abs(float64(s)))
	}
	return p
}

func (d *Doctor) checkTranscription(w io.Writer) error {
	if len(d.samples) == 0 {
		return fmt.Errorf("%w: no recording", ErrSkipped)
	}
	tr := d.Transcriber
	if tr == nil {
		if d.store.Snapshot().APIKey == "" {
			return fmt.Errorf("%w: no API key", ErrSkipped)
		}
		tr = transcriber.NewManager(d.store, audio.SampleRate)
	}

	fmt.Fprintln(w, "  transcribing...")
	text, err := tr.Transcribe(context.Background(), d.samples)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		text = "(no speech detected)"
	}
	fmt.Fprintf(w, "\n  Transcribed text: %s\n\n", text)

	if !d.confirm("  Is this correct?") {
		return errors.New("transcription not confirmed")
	}
	return nil
}

func (d *Doctor) checkClipboard(w io.Writer) error {
	want := fmt.Sprintf("uttr-doctor-%d", time.Now().UnixNano())

	type result struct {
		got   string
		err   error
		phase string
	}
	ch := make(chan result, 1)
	go func() {
		if err := d.copy(want); err != nil {
			ch <- result{err: err, phase: "write"}
			return
		}
		got, err := d.read()
		if err != nil {
			ch <- result{err: err, phase: "read"}
			return
		}
		ch <- result{got: got}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return fmt.Errorf("clipboard %s failed: %w", res.phase, res.err)
		}
		if res.got != want {
			return fmt.Errorf("clipboard mismatch: wrote %q, got %q", want, res.got)
		}
	case <-time.After(3 * time.Second):
		return errors.New("clipboard timed out (clipboard tool hung, compositor not accessible?)")
	}
	fmt.Fprintln(w, "  clipboard write/read verified")

	msg, err := d.verify()
	if err != nil {
		return fmt.Errorf("paste: %w", err)
	}
	fmt.Fprintf(w, "  %s\n", msg)
	return nil
}

// Main runs every check against the real backends and returns the exit code.
func Main(configFile string, actx audio.Context) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("uttr doctor - interactive system diagnostics")
	fmt.Println("============================================")
	return Run(os.Stdout, New(configFile, actx).Checks())
}
