package transcriber

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"uttr/config"
)

type upload struct {
	path     string
	auth     string
	fields   []string
	values   map[string]string
	fileName string
	fileType string
	fileLen  int
}

func captureUpload(t *testing.T, r *http.Request) upload {
	t.Helper()
	u := upload{path: r.URL.Path, auth: r.Header.Get("Authorization"), values: map[string]string{}}
	mr, err := r.MultipartReader()
	if err != nil {
		t.Fatalf("multipart reader: %v", err)
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next part: %v", err)
		}
		data, _ := io.ReadAll(part)
		name := part.FormName()
		u.fields = append(u.fields, name)
		if name == "file" {
			u.fileName = part.FileName()
			u.fileType = part.Header.Get("Content-Type")
			u.fileLen = len(data)
			continue
		}
		u.values[name] = string(data)
	}
	return u
}

func newTestGroq(url, key string, attempts int) *Groq {
	g := NewGroq(NewTracedClient(5*time.Second), url, key, attempts)
	g.retryInterval = time.Millisecond
	return g
}

func TestGroqRequestContract(t *testing.T) {
	var got upload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = captureUpload(t, r)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"text":"hello there"}`)
	}))
	defer srv.Close()

	g := newTestGroq(srv.URL, "  secret-key \n", 1)
	res, err := g.Transcribe(context.Background(), Request{
		Audio:       []byte("RIFFxxxxWAVE"),
		FileName:    "uttr.wav",
		ContentType: "audio/wav",
		Model:       "whisper-large-v3-turbo",
		Language:    "de",
	})
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if res.Text != "hello there" {
		t.Errorf("text = %q", res.Text)
	}
	if res.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", res.Attempts)
	}

	if got.path != "/audio/transcriptions" {
		t.Errorf("path = %q", got.path)
	}
	if got.auth != "Bearer secret-key" {
		t.Errorf("auth = %q", got.auth)
	}
	wantFields := []string{"model", "file", "response_format", "language"}
	if len(got.fields) != len(wantFields) {
		t.Fatalf("fields = %v, want %v", got.fields, wantFields)
	}
	for i := range wantFields {
		if got.fields[i] != wantFields[i] {
			t.Errorf("field[%d] = %q, want %q", i, got.fields[i], wantFields[i])
		}
	}
	if got.values["model"] != "whisper-large-v3-turbo" {
		t.Errorf("model = %q", got.values["model"])
	}
	if got.values["response_format"] != "json" {
		t.Errorf("response_format = %q", got.values["response_format"])
	}
	if got.values["language"] != "de" {
		t.Errorf("language = %q", got.values["language"])
	}
	if got.fileName != "uttr.wav" || got.fileType != "audio/wav" || got.fileLen != 12 {
		t.Errorf("file = %q %q %d", got.fileName, got.fileType, got.fileLen)
	}
}

func TestGroqLanguageField(t *testing.T) {
	tests := []struct {
		setting string
		want    string
		sent    bool
	}{
		{"", "", false},
		{"auto", "", false},
		{"en", "en", true},
		{"zh-Hans", "zh", true},
		{"zh-Hant", "zh", true},
	}
	for _, tt := range tests {
		t.Run(tt.setting, func(t *testing.T) {
			var got upload
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = captureUpload(t, r)
				io.WriteString(w, `{"text":"x"}`)
			}))
			defer srv.Close()

			g := newTestGroq(srv.URL, "k", 1)
			if _, err := g.Transcribe(context.Background(), Request{Model: "m", Language: tt.setting, FileName: "uttr.wav", ContentType: "audio/wav"}); err != nil {
				t.Fatalf("transcribe: %v", err)
			}
			v, ok := got.values["language"]
			if ok != tt.sent || v != tt.want {
				t.Errorf("language = %q (sent %v), want %q (sent %v)", v, ok, tt.want, tt.sent)
			}
		})
	}
}

func TestGroqTranslateEndpoint(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		io.WriteString(w, `{"text":"hello"}`)
	}))
	defer srv.Close()

	g := newTestGroq(srv.URL+"/", "k", 1)
	if _, err := g.Transcribe(context.Background(), Request{Model: "m", Translate: true, FileName: "uttr.wav"}); err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if path != "/audio/translations" {
		t.Errorf("path = %q, want /audio/translations", path)
	}
}

func TestGroqAPIErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"Invalid API Key"}}`)
	}))
	defer srv.Close()

	g := newTestGroq(srv.URL, "bad", 3)
	_, err := g.Transcribe(context.Background(), Request{Model: "m", FileName: "uttr.wav"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Body != `{"error":{"message":"Invalid API Key"}}` {
		t.Errorf("body = %q", apiErr.Body)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("hits = %d, want 1", n)
	}
}

func TestGroqRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `{"text":"third time"}`)
	}))
	defer srv.Close()

	g := newTestGroq(srv.URL, "k", 3)
	res, err := g.Transcribe(context.Background(), Request{Model: "m", FileName: "uttr.wav"})
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if res.Text != "third time" || res.Attempts != 3 {
		t.Errorf("got %q after %d attempts", res.Text, res.Attempts)
	}
}

func TestGroqGivesUpAfterMaxAttempts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := newTestGroq(srv.URL, "k", 2)
	_, err := g.Transcribe(context.Background(), Request{Model: "m", FileName: "uttr.wav"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("err = %v, want 429 APIError", err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("hits = %d, want 2", n)
	}
}

func TestGroqMissingKey(t *testing.T) {
	g := newTestGroq("http://127.0.0.1:1", "   ", 1)
	if _, err := g.Transcribe(context.Background(), Request{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestAPIErrorTemporary(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{400, false},
		{401, false},
		{413, false},
		{429, true},
		{500, true},
		{503, true},
	}
	for _, tt := range tests {
		if got := (&APIError{StatusCode: tt.code}).Temporary(); got != tt.want {
			t.Errorf("Temporary(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestManagerUsesSettings(t *testing.T) {
	var got upload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = captureUpload(t, r)
		io.WriteString(w, `{"text":" spaced "}`)
	}))
	defer srv.Close()

	s := config.Defaults()
	s.APIBaseURL = srv.URL
	s.APIKey = "k"
	s.UploadFormat = "flac"
	s.TranslateToEnglish = true
	m := NewManager(config.NewStatic(s), 16000)
	m.retryInterval = time.Millisecond

	text, err := m.Transcribe(context.Background(), make([]float32, 1600))
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != " spaced " {
		t.Errorf("text = %q", text)
	}
	if got.path != "/audio/translations" {
		t.Errorf("path = %q", got.path)
	}
	if got.fileName != "uttr.flac" || got.fileType != "audio/flac" {
		t.Errorf("file = %q %q", got.fileName, got.fileType)
	}
	if got.values["model"] != s.Model {
		t.Errorf("model = %q, want %q", got.values["model"], s.Model)
	}
}

func TestManagerMissingKey(t *testing.T) {
	s := config.Defaults()
	s.APIKey = ""
	m := NewManager(config.NewStatic(s), 16000)
	if err := m.Ready(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Ready() = %v, want ErrMissingAPIKey", err)
	}
	m.Preload()
	if _, err := m.Transcribe(context.Background(), make([]float32, 160)); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("err = %v, want ErrMissingAPIKey", err)
	}
	m.MaybeUnload("test")
}

func TestManagerReadyWithKey(t *testing.T) {
	s := config.Defaults()
	s.APIKey = "gsk_test"
	m := NewManager(config.NewStatic(s), 16000)
	if err := m.Ready(); err != nil {
		t.Errorf("Ready() = %v, want nil", err)
	}
}
