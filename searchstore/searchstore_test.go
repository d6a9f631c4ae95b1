package searchstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audiolib/model"
)

// fakeTransport stands in for the search engine in tests.
type fakeTransport struct {
	handler func(*http.Request) (*http.Response, error)
}

func (t *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.handler(req)
}

func esResponse(status int, body string) *http.Response {
	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func testStore(t *testing.T, handler func(*http.Request) (*http.Response, error)) *Store {
	t.Helper()
	store, err := New(Config{
		Node:      "http://elastic.test:9200",
		Index:     "audio_analysis",
		Transport: &fakeTransport{handler: handler},
	})
	require.NoError(t, err)
	return store
}

func TestEnsureIndexCreatesWhenMissing(t *testing.T) {
	var createdBody string

	store := testStore(t, func(req *http.Request) (*http.Response, error) {
		switch {
		case req.Method == http.MethodHead:
			return esResponse(http.StatusNotFound, ""), nil
		case req.Method == http.MethodPut && req.URL.Path == "/audio_analysis":
			raw, _ := io.ReadAll(req.Body)
			createdBody = string(raw)
			return esResponse(http.StatusOK, `{"acknowledged": true}`), nil
		}
		return esResponse(http.StatusInternalServerError, `{}`), nil
	})

	require.NoError(t, store.EnsureIndex(context.Background()))

	assert.Contains(t, createdBody, `"primaryEmotions"`)
	assert.Contains(t, createdBody, `"keyword"`)
	assert.Contains(t, createdBody, `"confidence"`)
}

func TestEnsureIndexIdempotentWhenPresent(t *testing.T) {
	var created bool

	store := testStore(t, func(req *http.Request) (*http.Response, error) {
		if req.Method == http.MethodHead {
			return esResponse(http.StatusOK, ""), nil
		}
		created = true
		return esResponse(http.StatusOK, `{}`), nil
	})

	require.NoError(t, store.EnsureIndex(context.Background()))
	assert.False(t, created)
}

func TestSaveReturnsStoreAssignedID(t *testing.T) {
	store := testStore(t, func(req *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodPost, req.Method)
		require.Equal(t, "/audio_analysis/_doc", req.URL.Path)
		return esResponse(http.StatusCreated, `{"_id": "abc123", "result": "created"}`), nil
	})

	id, err := store.Save(context.Background(), &model.AnalysisDocument{
		FileName: "track.mp3",
		Keywords: []string{},
	})
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
}

func TestGetNotFound(t *testing.T) {
	store := testStore(t, func(req *http.Request) (*http.Response, error) {
		return esResponse(http.StatusNotFound, `{"found": false}`), nil
	})

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestDocumentRoundTrip(t *testing.T) {
	// what analyze() produced and /api/save persisted...
	original := &model.AnalysisDocument{
		FileName:        "chanson.mp3",
		Transcription:   "je suis si heureux aujourd'hui",
		Confidence:      91,
		Keywords:        []string{"heureux", "aujourd'hui"},
		Emotions:        []string{"Joy"},
		PrimaryEmotions: []string{"Joy"},
		Scores:          map[string]float64{"Joy": 0.91},
		Timestamp:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	stored, err := json.Marshal(original)
	require.NoError(t, err)

	// ...must come back unchanged on every core-produced field
	store := testStore(t, func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "/audio_analysis/_doc/id1", req.URL.Path)
		return esResponse(http.StatusOK,
			`{"_id": "id1", "_source": `+string(stored)+`}`), nil
	})

	hit, err := store.Get(context.Background(), "id1")
	require.NoError(t, err)

	assert.Equal(t, "id1", hit.ID)
	assert.Equal(t, original.Transcription, hit.Document.Transcription)
	assert.Equal(t, original.Keywords, hit.Document.Keywords)
	assert.Equal(t, original.PrimaryEmotions, hit.Document.PrimaryEmotions)
	assert.Equal(t, original.Scores, hit.Document.Scores)
	assert.Equal(t, original.Confidence, hit.Document.Confidence)
}

func TestUpdateAndDeleteNotFound(t *testing.T) {
	store := testStore(t, func(req *http.Request) (*http.Response, error) {
		return esResponse(http.StatusNotFound, `{}`), nil
	})

	err := store.Update(context.Background(), "nope", map[string]any{"title": "x"})
	assert.ErrorIs(t, err, ErrNoDocument)

	err = store.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestSearchMissingIndexIsEmptyResult(t *testing.T) {
	store := testStore(t, func(req *http.Request) (*http.Response, error) {
		return esResponse(http.StatusNotFound,
			`{"error": {"type": "index_not_found_exception"}, "status": 404}`), nil
	})

	hits, total, err := store.Search(context.Background(), "joy", 25, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Zero(t, total)
}

func TestSearchDecodesHits(t *testing.T) {
	body := `{
		"hits": {
			"total": {"value": 2},
			"hits": [
				{"_id": "a", "_score": 1.5, "_source": {"fileName": "a.mp3", "transcription": "joyeux", "keywords": [], "emotions": ["Joy"], "primaryEmotions": ["Joy"], "scores": {"Joy": 0.9}}},
				{"_id": "b", "_score": 0.5, "_source": {"fileName": "b.mp3", "keywords": [], "emotions": [], "primaryEmotions": [], "scores": {}}}
			]
		}
	}`
	store := testStore(t, func(req *http.Request) (*http.Response, error) {
		return esResponse(http.StatusOK, body), nil
	})

	hits, total, err := store.Search(context.Background(), "joy", 25, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ID)
	assert.Equal(t, []string{"Joy"}, hits[0].Document.PrimaryEmotions)
}

func TestCountMissingIndexIsZero(t *testing.T) {
	store := testStore(t, func(req *http.Request) (*http.Response, error) {
		return esResponse(http.StatusNotFound, `{}`), nil
	})

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestHitMarshalFlattensDocument(t *testing.T) {
	hit := Hit{
		ID:    "id9",
		Score: 1.25,
		Document: model.AnalysisDocument{
			FileName:        "x.mp3",
			Keywords:        []string{},
			Emotions:        []string{},
			PrimaryEmotions: []string{},
			Scores:          map[string]float64{},
		},
	}

	raw, err := json.Marshal(hit)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(raw, &flat))
	assert.Equal(t, "id9", flat["id"])
	assert.Equal(t, 1.25, flat["score"])
	assert.Equal(t, "x.mp3", flat["fileName"])
}
