package searchstore

// this file implements a controller for recommending tracks by emotion.

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type recommendRequest struct {
	Emotion string `form:"emotion"`
	Limit   int    `form:"limit"`
}

// GetRecommend handles: GET /api/recommend
//
// Query:
//
//   - emotion: canonical emotion label, e.g. Joy
//   - limit: int, [1, 100], default 3
//
// Response:
//
//   - 200: OK: {tracks: [{hit1}, {hit2}, ...]}
//   - 400: Bad Request: {error: "bad request"}
//   - 500: Internal Server Error: {error: "internal server error"}
func (s *Store) GetRecommend(c *gin.Context) {
	req := new(recommendRequest)
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := validateRecommendRequest(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hits, err := s.recommend(c, req.Emotion, req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tracks": hits})
}

func validateRecommendRequest(req *recommendRequest) error {
	if req.Emotion == "" {
		return errors.New("emotion query is required")
	}
	if req.Limit == 0 { // default
		req.Limit = 3
	} else if req.Limit < 1 || req.Limit > 100 {
		return errors.New("query limit should be in [1, 100]")
	}
	return nil
}

// recommend returns the tracks carrying the requested primary emotion.
//
// The algorithm is:
//
//   - Retrieval: term filter on primaryEmotions
//   - Scoring: the stored per-label classifier score, descending
//   - Limit: limit
func (s *Store) recommend(ctx context.Context, emotion string, limit int) ([]Hit, error) {
	body := map[string]any{
		"query": map[string]any{
			"term": map[string]any{"primaryEmotions": emotion},
		},
		"sort": []any{
			map[string]any{"scores." + emotion: map[string]any{
				"order":         "desc",
				"unmapped_type": "float",
			}},
		},
	}

	envelope, err := s.runSearch(ctx, body, limit, 0)
	if err != nil {
		return nil, err
	}
	return envelope.hits(), nil
}
