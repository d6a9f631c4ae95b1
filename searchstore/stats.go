package searchstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"audiolib/model"
)

// this file computes the library-wide aggregates for the stats page.

// LibraryStats aggregates the whole index: total document count, a
// histogram of primary-emotion occurrences (one increment per document
// per distinct emotion), average confidence, and the single
// highest-count emotion.
//
// An absent index is an empty library: the zero-value summary comes
// back, never an error.
func (s *Store) LibraryStats(ctx context.Context) (model.StatsSummary, error) {
	body := map[string]any{
		"size": 0,
		"aggs": map[string]any{
			"emotions_count": map[string]any{
				"terms": map[string]any{"field": "primaryEmotions", "size": 20},
			},
			"avg_confidence": map[string]any{
				"avg": map[string]any{"field": "confidence"},
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return model.ZeroStats(), fmt.Errorf("LibraryStats: %w", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(bytes.NewReader(payload)),
		s.es.Search.WithTrackTotalHits(true),
		s.es.Search.WithContext(ctx))
	if err != nil {
		return model.ZeroStats(), fmt.Errorf("LibraryStats: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return model.ZeroStats(), nil
	}
	if res.IsError() {
		return model.ZeroStats(), fmt.Errorf("LibraryStats: %s", res.Status())
	}

	var envelope struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
		} `json:"hits"`
		Aggregations struct {
			EmotionsCount struct {
				Buckets []struct {
					Key      string `json:"key"`
					DocCount int    `json:"doc_count"`
				} `json:"buckets"`
			} `json:"emotions_count"`
			AvgConfidence struct {
				Value float64 `json:"value"`
			} `json:"avg_confidence"`
		} `json:"aggregations"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return model.ZeroStats(), fmt.Errorf("LibraryStats: decode: %w", err)
	}

	stats := model.ZeroStats()
	stats.Total = envelope.Hits.Total.Value
	stats.AverageConfidence = math.Round(envelope.Aggregations.AvgConfidence.Value*100) / 100

	for _, bucket := range envelope.Aggregations.EmotionsCount.Buckets {
		if bucket.Key == "" {
			continue
		}
		stats.Emotions[bucket.Key] = bucket.DocCount
	}
	// ties broken by the store's bucket ordering, deterministic per query
	if len(envelope.Aggregations.EmotionsCount.Buckets) > 0 {
		stats.TopEmotion = envelope.Aggregations.EmotionsCount.Buckets[0].Key
	}

	return stats, nil
}
