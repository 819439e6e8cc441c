// Package transcriber sends captured audio to an OpenAI-compatible
// transcription endpoint (Groq by default) and returns the text.
package transcriber

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrMissingAPIKey is returned before any request when no key is configured.
var ErrMissingAPIKey = errors.New("groq API key is required: set api_key in config.yml or GROQ_API_KEY")

// APIError is a non-2xx response. Body is kept verbatim for diagnostics.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("groq API request failed (%d %s): %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// Temporary reports whether retrying the same request may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type NetworkMetrics struct {
	DNS         time.Duration
	ConnWait    time.Duration
	TCP         time.Duration
	TLS         time.Duration
	ReqHeaders  time.Duration
	ReqBody     time.Duration
	TTFB        time.Duration
	Download    time.Duration
	Total       time.Duration
	ConnReused  bool
	TLSProtocol string
}

func (m *NetworkMetrics) Sum() time.Duration {
	return m.ConnWait + m.DNS + m.TCP + m.TLS + m.ReqHeaders + m.ReqBody + m.TTFB + m.Download
}

func firstNonEmpty(h http.Header, keys ...string) string {
	for _, k := range keys {
		if v := h.Get(k); v != "" {
			return v
		}
	}
	return "?"
}

// Request is one upload.
type Request struct {
	Audio       []byte
	FileName    string
	ContentType string
	Model       string
	Language    string
	Translate   bool
}

type Result struct {
	Text      string
	Metrics   *NetworkMetrics
	RateLimit string
	Attempts  int
}

// NormalizeLanguage maps a language setting to the API's language field.
// An empty result means the field is omitted.
func NormalizeLanguage(lang string) string {
	switch lang {
	case "", "auto":
		return ""
	case "zh-Hans", "zh-Hant":
		return "zh"
	}
	return lang
}
