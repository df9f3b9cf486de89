// Package huggingface calls the Hugging Face inference API for the four model
// contracts the pipeline consumes: speech transcription, image captioning,
// text embeddings, and document summarization.
package huggingface

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
	token              string
	baseURL            string
	whisperModel       string
	captionModel       string
	embeddingModel     string
	summarizationModel string
	httpClient         *http.Client
}

func NewClient(cfg config.HuggingFaceConfig) *Client {
	return &Client{
		token:              cfg.Token,
		baseURL:            strings.TrimSuffix(cfg.BaseURL, "/"),
		whisperModel:       cfg.WhisperModel,
		captionModel:       cfg.CaptionModel,
		embeddingModel:     cfg.EmbeddingModel,
		summarizationModel: cfg.SummarizationModel,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Transcribe sends raw audio bytes to the Whisper endpoint and returns the
// recognized text, or "" when the model produced nothing.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	body, err := c.postBytes(ctx, c.whisperModel, audio)
	if err != nil {
		return "", err
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("transcription: decode response: %v: %w", err, models.ErrUpstreamUnavailable)
	}
	return strings.TrimSpace(out.Text), nil
}

// Caption sends raw image bytes to the captioning endpoint and returns the
// generated description.
func (c *Client) Caption(ctx context.Context, image []byte) (string, error) {
	body, err := c.postBytes(ctx, c.captionModel, image)
	if err != nil {
		return "", err
	}

	var out []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("captioning: decode response: %v: %w", err, models.ErrUpstreamUnavailable)
	}
	if len(out) == 0 {
		return "", nil
	}
	return strings.TrimSpace(out[0].GeneratedText), nil
}

// Embed returns one vector per input text from the feature-extraction endpoint.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	payload := map[string]any{
		"inputs":  texts,
		"options": map[string]any{"wait_for_model": true},
	}
	body, err := c.postJSON(ctx, c.embeddingModel, payload)
	if err != nil {
		return nil, err
	}

	var vectors [][]float64
	if err := json.Unmarshal(body, &vectors); err != nil {
		return nil, fmt.Errorf("embedding: decode response: %v: %w", err, models.ErrUpstreamUnavailable)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding: got %d vectors for %d inputs: %w",
			len(vectors), len(texts), models.ErrUpstreamUnavailable)
	}
	return vectors, nil
}

// Summarize condenses pre-extracted document text into a short narrative.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	payload := map[string]any{
		"inputs": text,
		"parameters": map[string]any{
			"max_length": 1000,
			"min_length": 50,
		},
	}
	body, err := c.postJSON(ctx, c.summarizationModel, payload)
	if err != nil {
		return "", err
	}

	var out []struct {
		SummaryText string `json:"summary_text"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("summarization: decode response: %v: %w", err, models.ErrUpstreamUnavailable)
	}
	if len(out) == 0 {
		return "", nil
	}
	return strings.TrimSpace(out[0].SummaryText), nil
}

func (c *Client) postBytes(ctx context.Context, model string, data []byte) ([]byte, error) {
	return c.do(ctx, model, bytes.NewReader(data), "application/octet-stream")
}

func (c *Client) postJSON(ctx context.Context, model string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return c.do(ctx, model, bytes.NewReader(body), "application/json")
}

func (c *Client) do(ctx context.Context, model string, body io.Reader, contentType string) ([]byte, error) {
	url := c.baseURL + "/" + model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request to %s: %v: %w", model, err, models.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("inference API %s: status %d: %s: %w",
			model, resp.StatusCode, strings.TrimSpace(string(msg)), models.ErrUpstreamUnavailable)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %v: %w", err, models.ErrUpstreamUnavailable)
	}
	return data, nil
}
