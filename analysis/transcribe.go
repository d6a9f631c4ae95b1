package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// This file implements an API client for the ASR (whisper) sidecar.
//
// The sidecar is a transformers-style inference service: depending on the
// model wrapped, /transcribe may answer with a bare JSON string, an object
// carrying a text/transcript field, or a list of timed segments. The client
// accepts all three.

// DefaultLanguage is the fixed locale hint passed to the model. It is a
// hint only, never an auto-detect override.
const DefaultLanguage = "fr"

// ASRClient transcribes normalized waveforms via the ASR sidecar.
type ASRClient struct {
	server string
	client *http.Client
	handle *modelHandle
}

func NewASRClient(server string) *ASRClient {
	c := &ASRClient{
		server: server,
		client: &http.Client{},
	}
	// warm-up asks the sidecar to load its model; until that has
	// succeeded once, transcriptions fail fast.
	c.handle = newModelHandle("asr", c.warmUp)
	return c
}

// WarmUp triggers model loading eagerly (startup warm-up).
func (c *ASRClient) WarmUp(ctx context.Context) error {
	return c.handle.ensureReady(ctx)
}

// Retry re-arms a failed model load.
func (c *ASRClient) Retry() { c.handle.Retry() }

func (c *ASRClient) warmUp(ctx context.Context) error {
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
		return fmt.Errorf("asr health: %s", resp.Status)
	}
	return nil
}

// Transcribe sends the wav at wavPath to the sidecar and returns the
// transcript text. An empty transcript is a valid result (instrumental
// track). A missing input file is a precondition error.
func (c *ASRClient) Transcribe(ctx context.Context, wavPath, language string) (string, error) {
	if _, err := os.Stat(wavPath); err != nil {
		return "", fmt.Errorf("Transcribe: input file: %w", err)
	}

	if err := c.handle.ensureReady(ctx); err != nil {
		return "", err
	}

	if language == "" {
		language = DefaultLanguage
	}

	form, contentType, err := transcribeRequestForm(wavPath, language)
	if err != nil {
		return "", err
	}

	u, err := url.JoinPath(c.server, "transcribe")
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, form)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Transcribe: asr %s: %s", resp.Status, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return decodeTranscription(body)
}

// -F "file=@{wavPath}" -F "language={language}"
func transcribeRequestForm(wavPath, language string) (*bytes.Buffer, string, error) {
	form := new(bytes.Buffer)
	writer := multipart.NewWriter(form)

	fw, err := writer.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return nil, "", err
	}

	fd, err := os.Open(wavPath)
	if err != nil {
		return nil, "", err
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return nil, "", err
	}
	if err = writer.WriteField("language", language); err != nil {
		return nil, "", err
	}

	if err = writer.Close(); err != nil {
		return nil, "", err
	}

	return form, writer.FormDataContentType(), nil
}

type transcribeSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// decodeTranscription tolerates the three response shapes ASR models are
// known to produce: a plain string, an object with text/transcript, or a
// list of timed segments (joined in start order). A present-but-empty
// text field is a valid blank transcript (instrumental track), not an
// error.
func decodeTranscription(body []byte) (string, error) {
	var plain string
	if err := json.Unmarshal(body, &plain); err == nil {
		return strings.TrimSpace(plain), nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", fmt.Errorf("decodeTranscription: %w", err)
	}

	for _, key := range []string{"text", "transcript"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return "", fmt.Errorf("decodeTranscription: field %q: %w", key, err)
		}
		return strings.TrimSpace(text), nil
	}

	if raw, ok := fields["segments"]; ok {
		var segments []transcribeSegment
		if err := json.Unmarshal(raw, &segments); err != nil {
			return "", fmt.Errorf("decodeTranscription: segments: %w", err)
		}
		sort.SliceStable(segments, func(i, j int) bool {
			return segments[i].Start < segments[j].Start
		})

		texts := make([]string, 0, len(segments))
		for _, seg := range segments {
			texts = append(texts, strings.TrimSpace(seg.Text))
		}
		return strings.TrimSpace(strings.Join(texts, " ")), nil
	}

	return "", errors.New("decodeTranscription: unexpected transcription response")
}
