// Package transcribe provides the client for the diarizing speech-to-text
// provider. The raw token payload is returned verbatim alongside its decoded
// form so it can be persisted for replay.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TokenWord marks a token carrying spoken text; TokenSpacing marks whitespace
// tokens emitted between words.
const (
	TokenWord    = "word"
	TokenSpacing = "spacing"
)

// Token is one word-level unit from the provider, tagged with its diarized
// speaker channel and timing.
type Token struct {
	Type    string  `json:"type"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker"`
	StartMs int64   `json:"start_ms"`
	EndMs   int64   `json:"end_ms"`
	Conf    float64 `json:"confidence,omitempty"`
}

// Result is the decoded provider response.
type Result struct {
	Tokens   []Token `json:"tokens"`
	Language string  `json:"language"`
}

// StatusError is a non-2xx provider response. The status code drives the
// retriable/fatal classification in the orchestrator.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("transcription provider returned %d: %s", e.StatusCode, e.Body)
}

// Retriable reports whether the failure is worth retrying (5xx). Client
// errors, auth failures, and quota exhaustion are not.
func (e *StatusError) Retriable() bool {
	return e.StatusCode >= 500
}

// Client calls the speech-to-text service over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a transcription client with a bounded per-call timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// Transcribe submits audio bytes for diarized transcription. It returns both
// the raw response body and the decoded result; when decoding fails the raw
// body is still returned so callers can persist it.
func (c *Client) Transcribe(ctx context.Context, audio []byte) ([]byte, *Result, error) {
	url := c.baseURL + "/v1/transcribe?diarize=true&punctuate=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(audio))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build transcription request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read transcription response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return body, nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return body, nil, fmt.Errorf("failed to decode transcription response: %w", err)
	}
	return body, &result, nil
}
