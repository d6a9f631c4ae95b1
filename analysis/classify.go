package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// This file implements an API client for the text-classification sidecar.

// ScoredLabel is one (label, score) pair from the classifier. Scores are
// independent per label: this is multi-label classification, several
// labels may legitimately score high at once.
type ScoredLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// EmotionClient classifies transcript text via the emotion sidecar.
type EmotionClient struct {
	server string
	client *http.Client
	handle *modelHandle
}

func NewEmotionClient(server string) *EmotionClient {
	c := &EmotionClient{
		server: server,
		client: &http.Client{},
	}
	c.handle = newModelHandle("emotion", c.warmUp)
	return c
}

// WarmUp triggers model loading eagerly (startup warm-up).
func (c *EmotionClient) WarmUp(ctx context.Context) error {
	return c.handle.ensureReady(ctx)
}

// Retry re-arms a failed model load.
func (c *EmotionClient) Retry() { c.handle.Retry() }

func (c *EmotionClient) warmUp(ctx context.Context) error {
	u, err := url.JoinPath(c.server, "health")
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("emotion health: %s", resp.Status)
	}
	return nil
}

// Classify runs multi-label classification over text. The caller must not
// pass empty text: the pipeline short-circuits the instrumental case
// before getting here.
func (c *EmotionClient) Classify(ctx context.Context, text string) ([]ScoredLabel, error) {
	if err := c.handle.ensureReady(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	u, err := url.JoinPath(c.server, "classify")
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Classify: emotion %s: %s", resp.Status, string(body))
	}

	var labels []ScoredLabel
	if err := json.NewDecoder(resp.Body).Decode(&labels); err != nil {
		return nil, fmt.Errorf("Classify: decode: %w", err)
	}

	return labels, nil
}
