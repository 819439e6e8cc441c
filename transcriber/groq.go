package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"uttr/log"
)

const DefaultBaseURL = "https://api.groq.com/openai/v1"

type Groq struct {
	client      *TracedClient
	baseURL     string
	apiKey      string
	maxAttempts int
	// retryInterval is the first backoff delay.
	retryInterval time.Duration
}

func NewGroq(client *TracedClient, baseURL, apiKey string, maxAttempts int) *Groq {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Groq{
		client:        client,
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        strings.TrimSpace(apiKey),
		maxAttempts:   maxAttempts,
		retryInterval: 500 * time.Millisecond,
	}
}

func (g *Groq) endpoint(translate bool) string {
	if translate {
		return g.baseURL + "/audio/translations"
	}
	return g.baseURL + "/audio/transcriptions"
}

// Transcribe uploads req, retrying network failures, 429 and 5xx responses
// up to maxAttempts times.
func (g *Groq) Transcribe(ctx context.Context, req Request) (*Result, error) {
	if g.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	url := g.endpoint(req.Translate)
	attempts := 0
	op := func() (*Result, error) {
		attempts++
		res, err := g.do(ctx, url, req)
		if err == nil {
			return res, nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			return nil, backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		if attempts < g.maxAttempts {
			log.Warnf("transcription attempt %d/%d failed: %v", attempts, g.maxAttempts, err)
		}
		return nil, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = g.retryInterval
	res, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(g.maxAttempts)),
	)
	if err != nil {
		return nil, err
	}
	res.Attempts = attempts
	return res, nil
}

type groqResponse struct {
	Text string `json:"text"`
}

func (g *Groq) do(ctx context.Context, url string, req Request) (*Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	writer.WriteField("model", req.Model)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, req.FileName))
	h.Set("Content-Type", req.ContentType)
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(req.Audio); err != nil {
		return nil, err
	}

	writer.WriteField("response_format", "json")
	if lang := NormalizeLanguage(req.Language); lang != "" {
		writer.WriteField("language", lang)
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("groq request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	var gResp groqResponse
	if err := json.Unmarshal(resp.Body, &gResp); err != nil {
		return nil, fmt.Errorf("groq response parse error: %w", err)
	}

	remaining := firstNonEmpty(resp.Header, "x-ratelimit-remaining-requests")
	limit := firstNonEmpty(resp.Header, "x-ratelimit-limit-requests")

	return &Result{
		Text:      gResp.Text,
		Metrics:   resp.Metrics,
		RateLimit: remaining + "/" + limit,
	}, nil
}
