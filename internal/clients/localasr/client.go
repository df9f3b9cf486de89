// Package localasr talks to an on-device speech recognition server (for
// example a local whisper.cpp instance). It is the fallback transcriber tried
// when the hosted service returns nothing.
package localasr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/akagup/go-emergency-response/internal/config"
	"github.com/akagup/go-emergency-response/internal/models"
)

type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(cfg config.LocalASRConfig) *Client {
	return &Client{
		url: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Transcribe posts raw audio to the local recognizer and returns its text.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("local asr request: %v: %w", err, models.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("local asr: status %d: %s: %w",
			resp.StatusCode, strings.TrimSpace(string(msg)), models.ErrUpstreamUnavailable)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("local asr: decode response: %v: %w", err, models.ErrUpstreamUnavailable)
	}
	return strings.TrimSpace(out.Text), nil
}
