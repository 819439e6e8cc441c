package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDefaults(t *testing.T) {
	s := Defaults()
	if !s.PushToTalk {
		t.Error("push_to_talk should default to true")
	}
	if s.Model != "whisper-large-v3-turbo" {
		t.Errorf("model = %q", s.Model)
	}
	if s.RequestTimeout != 90*time.Second {
		t.Errorf("request_timeout = %v", s.RequestTimeout)
	}
	if s.Overlay.HideDelay != 300*time.Millisecond {
		t.Errorf("hide_delay = %v", s.Overlay.HideDelay)
	}
	if s.Bindings["transcribe"] != "ctrl+shift+space" {
		t.Errorf("transcribe binding = %q", s.Bindings["transcribe"])
	}
	if s.Bindings["cancel"] != "escape" {
		t.Errorf("cancel binding = %q", s.Bindings["cancel"])
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	dir := t.TempDir()
	p := writeFile(t, dir, "config.yml", `
push_to_talk: false
language: zh-Hans
api_key: "  gsk_file  "
overlay:
  position: top
  hide_delay: 150ms
bindings:
  transcribe: alt+space
  transcribe_alt: f9
`)
	st, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	s := st.Snapshot()
	if s.PushToTalk {
		t.Error("push_to_talk should be false")
	}
	if s.Language != "zh-Hans" {
		t.Errorf("language = %q", s.Language)
	}
	if s.APIKey != "gsk_file" {
		t.Errorf("api_key = %q, want trimmed", s.APIKey)
	}
	if s.Overlay.Position != PositionTop || s.Overlay.HideDelay != 150*time.Millisecond {
		t.Errorf("overlay = %+v", s.Overlay)
	}
	if s.Bindings["transcribe_alt"] != "f9" {
		t.Errorf("bindings = %v", s.Bindings)
	}
	if st.File() != p {
		t.Errorf("File() = %q", st.File())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("UTTR_PUSH_TO_TALK", "false")
	t.Setenv("UTTR_MODEL", "whisper-large-v3")
	t.Setenv("UTTR_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "gsk_env")

	st, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	s := st.Snapshot()
	if s.PushToTalk {
		t.Error("env should disable push_to_talk")
	}
	if s.Model != "whisper-large-v3" {
		t.Errorf("model = %q", s.Model)
	}
	if s.APIKey != "gsk_env" {
		t.Errorf("api_key = %q, want GROQ_API_KEY fallback", s.APIKey)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad position", "overlay:\n  position: middle\n"},
		{"bad upload format", "upload_format: mp3\n"},
		{"zero attempts", "max_attempts: 0\n"},
		{"bad url", "api_base_url: not a url\n"},
		{"bad log level", "log_level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeFile(t, t.TempDir(), "config.yml", tt.body)
			if _, err := Load(p); err == nil {
				t.Errorf("Load accepted %q", tt.body)
			}
		})
	}
}

func TestValidateRequiresTranscribeBinding(t *testing.T) {
	s := Defaults()
	s.Bindings = map[string]string{"cancel": "escape"}
	if err := s.Validate(); err == nil {
		t.Error("expected error without transcribe binding")
	}
}

func TestReplaceNotifies(t *testing.T) {
	st := NewStatic(Defaults())
	var got *Settings
	st.OnChange(func(s *Settings) { got = s })

	next := Defaults()
	next.PushToTalk = false
	st.Replace(next)

	if got != next {
		t.Error("listener not called with new snapshot")
	}
	if st.Snapshot().PushToTalk {
		t.Error("snapshot not swapped")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	st := NewStatic(Defaults())
	before := st.Snapshot()
	next := Defaults()
	next.Language = "de"
	st.Replace(next)
	if before.Language == "de" {
		t.Error("old snapshot was mutated")
	}
}

func TestResolveFileFlag(t *testing.T) {
	if got := ResolveFile("/etc/uttr.yml"); got != "/etc/uttr.yml" {
		t.Errorf("got %q", got)
	}
}

func TestWatchWithoutFileIsNoop(t *testing.T) {
	st := NewStatic(Defaults())
	st.Watch(func(err error) { t.Errorf("unexpected error: %v", err) })
}
