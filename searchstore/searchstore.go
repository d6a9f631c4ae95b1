// Package searchstore keeps the analysis library in the search index.
//
// The index is treated as an opaque document store with full-text,
// keyword and numeric fields: the document schema in schema.go is the
// one externally visible contract and must round-trip unchanged.
package searchstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cdfmlr/crud/log"
	"github.com/elastic/go-elasticsearch/v8"

	"audiolib/model"
)

var logger = log.ZoneLogger("audiolib/searchstore")

// ErrNoDocument is the distinguishable not-found condition for document
// reads, updates and deletes.
var ErrNoDocument = errors.New("document not found")

// Config for connecting to the search engine.
type Config struct {
	Node   string `yaml:"node"`
	APIKey string `yaml:"apiKey"`
	Index  string `yaml:"index"`

	// Transport overrides the HTTP transport. Used by tests.
	Transport http.RoundTripper `yaml:"-"`
}

// Store is the document-store client for analysis documents.
type Store struct {
	es    *elasticsearch.Client
	index string
}

func New(cfg Config) (*Store, error) {
	if cfg.Index == "" {
		cfg.Index = "audio_analysis"
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Node},
		APIKey:    cfg.APIKey,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("searchstore.New: %w", err)
	}

	return &Store{es: es, index: cfg.Index}, nil
}

// Index name, mostly for log messages.
func (s *Store) Index() string { return s.index }

// Ping reports whether the search engine answers at all.
func (s *Store) Ping(ctx context.Context) bool {
	res, err := s.es.Ping(s.es.Ping.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return !res.IsError()
}

// ClusterName returns the cluster name, for the status endpoint.
func (s *Store) ClusterName(ctx context.Context) (string, error) {
	res, err := s.es.Info(s.es.Info.WithContext(ctx))
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.IsError() {
		return "", fmt.Errorf("ClusterName: %s", res.Status())
	}

	var info struct {
		ClusterName string `json:"cluster_name"`
	}
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return "", err
	}
	return info.ClusterName, nil
}

// EnsureIndex creates the index with its mapping if it does not exist
// yet. Idempotent.
func (s *Store) EnsureIndex(ctx context.Context) error {
	res, err := s.es.Indices.Exists([]string{s.index},
		s.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("EnsureIndex: exists check: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("EnsureIndex: exists check: %s", res.Status())
	}

	created, err := s.es.Indices.Create(s.index,
		s.es.Indices.Create.WithBody(strings.NewReader(indexMapping)),
		s.es.Indices.Create.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("EnsureIndex: create: %w", err)
	}
	defer created.Body.Close()

	if created.IsError() {
		return fmt.Errorf("EnsureIndex: create: %s", created.Status())
	}

	logger.Infof("EnsureIndex: created index %s", s.index)
	return nil
}

// Save indexes a new document and returns the store-assigned id.
// Store errors on the write path propagate to the caller.
func (s *Store) Save(ctx context.Context, doc *model.AnalysisDocument) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("Save: %w", err)
	}

	res, err := s.es.Index(s.index, bytes.NewReader(body),
		s.es.Index.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("Save: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return "", fmt.Errorf("Save: %s", res.Status())
	}

	var indexed struct {
		ID string `json:"_id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&indexed); err != nil {
		return "", fmt.Errorf("Save: decode: %w", err)
	}
	return indexed.ID, nil
}

// Hit is one stored document plus its store identity.
type Hit struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score,omitempty"`
	Document model.AnalysisDocument `json:"-"`
}

// MarshalJSON flattens the document into the hit, the shape the frontend
// expects: {id, score, ...document fields}.
func (h Hit) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(h.Document)
	if err != nil {
		return nil, err
	}

	var flat map[string]any
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	flat["id"] = h.ID
	if h.Score != 0 {
		flat["score"] = h.Score
	}
	return json.Marshal(flat)
}

// Get fetches one document by id. Returns ErrNoDocument when absent.
func (s *Store) Get(ctx context.Context, id string) (*Hit, error) {
	res, err := s.es.Get(s.index, id, s.es.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrNoDocument
	}
	if res.IsError() {
		return nil, fmt.Errorf("Get: %s", res.Status())
	}

	var got struct {
		ID     string                 `json:"_id"`
		Source model.AnalysisDocument `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		return nil, fmt.Errorf("Get: decode: %w", err)
	}
	return &Hit{ID: got.ID, Document: got.Source}, nil
}

// Update applies a partial-field update to one document.
// Returns ErrNoDocument when absent.
func (s *Store) Update(ctx context.Context, id string, partial map[string]any) error {
	body, err := json.Marshal(map[string]any{"doc": partial})
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}

	res, err := s.es.Update(s.index, id, bytes.NewReader(body),
		s.es.Update.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return ErrNoDocument
	}
	if res.IsError() {
		return fmt.Errorf("Update: %s", res.Status())
	}
	return nil
}

// Delete removes one document by id. Returns ErrNoDocument when absent.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.es.Delete(s.index, id, s.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return ErrNoDocument
	}
	if res.IsError() {
		return fmt.Errorf("Delete: %s", res.Status())
	}
	return nil
}

// Count returns the number of documents in the index; 0 when the index
// does not exist yet.
func (s *Store) Count(ctx context.Context) (int, error) {
	res, err := s.es.Count(
		s.es.Count.WithIndex(s.index),
		s.es.Count.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return 0, nil
	}
	if res.IsError() {
		return 0, fmt.Errorf("Count: %s", res.Status())
	}

	var counted struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&counted); err != nil {
		return 0, fmt.Errorf("Count: decode: %w", err)
	}
	return counted.Count, nil
}

// searchEnvelope is the part of the search response we read.
type searchEnvelope struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string                 `json:"_id"`
			Score  float64                `json:"_score"`
			Source model.AnalysisDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// runSearch executes one search body. A missing index reads as an empty
// result set, never an error.
func (s *Store) runSearch(ctx context.Context, body any, size, from int) (*searchEnvelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	res, err := s.es.Search(
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(bytes.NewReader(payload)),
		s.es.Search.WithSize(size),
		s.es.Search.WithFrom(from),
		s.es.Search.WithTrackTotalHits(true),
		s.es.Search.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		// index absent == empty library
		return &searchEnvelope{}, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("search: %s", res.Status())
	}

	var envelope searchEnvelope
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("search: decode: %w", err)
	}
	return &envelope, nil
}

func (e *searchEnvelope) hits() []Hit {
	hits := make([]Hit, 0, len(e.Hits.Hits))
	for _, h := range e.Hits.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score, Document: h.Source})
	}
	return hits
}

// List returns the newest documents, most recent first.
func (s *Store) List(ctx context.Context, size int) ([]Hit, error) {
	body := map[string]any{
		"sort":  []any{map[string]any{"timestamp": map[string]any{"order": "desc"}}},
		"query": map[string]any{"match_all": map[string]any{}},
	}

	envelope, err := s.runSearch(ctx, body, size, 0)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return envelope.hits(), nil
}

// Search runs a full-text query over transcription, primary emotions,
// title and keywords. An empty q matches everything. Returns the hits
// and the total hit count.
func (s *Store) Search(ctx context.Context, q string, size, from int) ([]Hit, int, error) {
	var query map[string]any
	if q == "" {
		query = map[string]any{"match_all": map[string]any{}}
	} else {
		query = map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"transcription", "primaryEmotions", "title", "keywords"},
			},
		}
	}

	envelope, err := s.runSearch(ctx, map[string]any{"query": query}, size, from)
	if err != nil {
		return nil, 0, fmt.Errorf("Search: %w", err)
	}
	return envelope.hits(), envelope.Hits.Total.Value, nil
}
