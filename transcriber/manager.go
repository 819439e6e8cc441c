package transcriber

import (
	"context"
	"fmt"
	"sync"
	"time"

	"uttr/config"
	"uttr/encoder"
	"uttr/log"
)

// Manager transcribes captured samples using the current settings. It
// keeps one HTTP client per request timeout so warm connections survive
// across sessions.
type Manager struct {
	store      *config.Store
	sampleRate int

	mu      sync.Mutex
	client  *TracedClient
	timeout time.Duration
	// retryInterval overrides the first backoff delay in tests.
	retryInterval time.Duration
}

func NewManager(store *config.Store, sampleRate int) *Manager {
	return &Manager{store: store, sampleRate: sampleRate}
}

func (m *Manager) httpClient(timeout time.Duration) *TracedClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil || m.timeout != timeout {
		if m.client != nil {
			m.client.CloseIdleConnections()
		}
		m.client = NewTracedClient(timeout)
		m.timeout = timeout
	}
	return m.client
}

// Ready reports ErrMissingAPIKey when no key is configured.
func (m *Manager) Ready() error {
	if m.store.Snapshot().APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Preload warms a connection to the API host in the background.
func (m *Manager) Preload() {
	s := m.store.Snapshot()
	if s.APIKey == "" {
		return
	}
	client := m.httpClient(s.RequestTimeout)
	go func() {
		if d := client.WarmConnection(s.APIBaseURL); d > 0 {
			log.Debugf("warm connection: tls=%dms", d.Milliseconds())
		}
	}()
}

func (m *Manager) Transcribe(ctx context.Context, samples []float32) (string, error) {
	s := m.store.Snapshot()

	enc, err := encoder.New(s.UploadFormat)
	if err != nil {
		return "", err
	}
	audio, err := encoder.Encode(enc, samples)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", s.UploadFormat, err)
	}

	g := NewGroq(m.httpClient(s.RequestTimeout), s.APIBaseURL, s.APIKey, s.MaxAttempts)
	if m.retryInterval > 0 {
		g.retryInterval = m.retryInterval
	}

	begin := time.Now()
	res, err := g.Transcribe(ctx, Request{
		Audio:       audio,
		FileName:    enc.FileName(),
		ContentType: enc.ContentType(),
		Model:       s.Model,
		Language:    s.Language,
		Translate:   s.TranslateToEnglish,
	})
	if err != nil {
		return "", err
	}

	audioS := float64(len(samples)) / float64(m.sampleRate)
	log.Transcription(log.SessionFrom(ctx), s.Model, NormalizeLanguage(s.Language), audioS, time.Since(begin), res.Attempts)
	if res.Metrics != nil {
		log.Debugf("network: total=%dms ttfb=%dms reused=%v ratelimit=%s",
			res.Metrics.Total.Milliseconds(), res.Metrics.TTFB.Milliseconds(), res.Metrics.ConnReused, res.RateLimit)
	}
	log.TranscriptionText(res.Text)
	return res.Text, nil
}

// MaybeUnload drops pooled connections when unload_immediately is set.
func (m *Manager) MaybeUnload(reason string) {
	if !m.store.Snapshot().UnloadImmediately {
		return
	}
	m.mu.Lock()
	client := m.client
	m.mu.Unlock()
	if client != nil {
		client.CloseIdleConnections()
		log.Debugf("unloaded transcriber connections (%s)", reason)
	}
}
