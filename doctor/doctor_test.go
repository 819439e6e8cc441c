package doctor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"uttr/audio"
	"uttr/hotkey"
)

func TestRunReportsEachCheck(t *testing.T) {
	var buf bytes.Buffer
	code := Run(&buf, []Check{
		{Name: "one", Run: func(w io.Writer) error { return nil }},
		{Name: "two", Run: func(w io.Writer) error { return errors.New("boom") }},
		{Name: "three", Run: func(w io.Writer) error { return nil }},
	})
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	out := buf.String()
	for _, want := range []string{"[1/3] one", "[2/3] two", "FAIL: boom", "[3/3] three", "Some checks failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunAllPass(t *testing.T) {
	var buf bytes.Buffer
	code := Run(&buf, []Check{{Name: "ok", Run: func(io.Writer) error { return nil }}})
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if !strings.Contains(buf.String(), "All checks passed!") {
		t.Errorf("output: %s", buf.String())
	}
}

func TestRunRequiredFailureSkipsRest(t *testing.T) {
	var buf bytes.Buffer
	ran := false
	Run(&buf, []Check{
		{Name: "settings", Required: true, Run: func(io.Writer) error { return errors.New("bad yaml") }},
		{Name: "later", Run: func(io.Writer) error { ran = true; return nil }},
	})
	if ran {
		t.Error("check after a failed required check ran")
	}
	if !strings.Contains(buf.String(), "SKIP: settings failed") {
		t.Errorf("output: %s", buf.String())
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestDoctor(t *testing.T, cfg string) *Doctor {
	t.Helper()
	t.Setenv("GROQ_API_KEY", "")
	d := &Doctor{
		ConfigFile:    writeConfig(t, cfg),
		Prompt:        func(string) string { return "y" },
		HotkeyTimeout: time.Second,
		RecordFor:     10 * time.Millisecond,
		reset:         func() {},
	}
	d.defaults()
	if err := d.checkSettings(io.Discard); err != nil {
		t.Fatalf("settings: %v", err)
	}
	return d
}

func TestCheckSettingsInvalid(t *testing.T) {
	d := &Doctor{ConfigFile: writeConfig(t, "upload_format: ogg\n")}
	if err := d.checkSettings(io.Discard); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestCheckAPIKey(t *testing.T) {
	d := newTestDoctor(t, "api_key: ''\n")
	if err := d.checkAPIKey(io.Discard); err == nil {
		t.Error("missing key passed")
	}

	d = newTestDoctor(t, "api_key: gsk_secret1234\n")
	var buf bytes.Buffer
	if err := d.checkAPIKey(&buf); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "secret") || !strings.Contains(buf.String(), "1234") {
		t.Errorf("key not masked: %s", buf.String())
	}
}

func TestCheckHotkey(t *testing.T) {
	d := newTestDoctor(t, "bindings:\n  transcribe: ctrl+alt+d\n")
	ff := hotkey.NewFakeFactory()
	m := hotkey.NewManagerWith(ff.New)
	defer m.Close()
	d.Hotkeys = m

	go func() {
		for ff.Get("ctrl+alt+d") == nil {
			time.Sleep(time.Millisecond)
		}
		fk := ff.Get("ctrl+alt+d")
		fk.SimKeydown()
		fk.SimKeyup()
	}()

	if err := d.checkHotkey(io.Discard); err != nil {
		t.Fatal(err)
	}
	if m.Registered(doctorBinding) {
		t.Error("doctor binding left registered")
	}
}

func TestCheckHotkeyTimeout(t *testing.T) {
	d := newTestDoctor(t, "")
	d.HotkeyTimeout = 20 * time.Millisecond
	d.Hotkeys = hotkey.NewManagerWith(hotkey.NewFakeFactory().New)
	if err := d.checkHotkey(io.Discard); err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("err = %v, want timeout", err)
	}
}

type stubTranscriber struct {
	got  int
	text string
}

func (s *stubTranscriber) Transcribe(_ context.Context, samples []float32) (string, error) {
	s.got = len(samples)
	return s.text, nil
}

func TestMicrophoneThenTranscription(t *testing.T) {
	d := newTestDoctor(t, "")
	clip := make([]int16, 4800)
	for i := range clip {
		clip[i] = int16(i % 2000)
	}
	d.Audio = audio.NewFakeContextPCM(clip, false)
	tr := &stubTranscriber{text: " hello "}
	d.Transcriber = tr

	var buf bytes.Buffer
	if err := d.checkMicrophone(&buf); err != nil {
		t.Fatalf("microphone: %v", err)
	}
	if len(d.samples) != len(clip) {
		t.Fatalf("recorded %d samples, want %d", len(d.samples), len(clip))
	}
	if err := d.checkTranscription(&buf); err != nil {
		t.Fatalf("transcription: %v", err)
	}
	if tr.got != len(clip) {
		t.Errorf("transcriber got %d samples", tr.got)
	}
	if !strings.Contains(buf.String(), "Transcribed text: hello") {
		t.Errorf("output: %s", buf.String())
	}

	d.Prompt = func(string) string { return "n" }
	if err := d.checkTranscription(io.Discard); err == nil {
		t.Error("unconfirmed transcription passed")
	}
}

func TestTranscriptionSkippedWithoutRecording(t *testing.T) {
	d := newTestDoctor(t, "")
	err := d.checkTranscription(io.Discard)
	if !errors.Is(err, ErrSkipped) {
		t.Fatalf("err = %v, want ErrSkipped", err)
	}
}

func TestCheckClipboard(t *testing.T) {
	d := newTestDoctor(t, "")
	var board string
	d.copy = func(s string) error { board = s; return nil }
	d.read = func() (string, error) { return board, nil }
	d.verify = func() (string, error) { return "keys OK", nil }
	if err := d.checkClipboard(io.Discard); err != nil {
		t.Fatal(err)
	}

	d.read = func() (string, error) { return "other", nil }
	if err := d.checkClipboard(io.Discard); err == nil || !strings.Contains(err.Error(), "mismatch") {
		t.Fatalf("err = %v, want mismatch", err)
	}
}
