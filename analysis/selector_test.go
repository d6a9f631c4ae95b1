package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testPolicy() SelectorPolicy {
	return SelectorPolicy{
		Allowed:    []string{"Anger", "Disgust", "Fear", "Joy", "Sadness", "Surprise"},
		MinScore:   0.5,
		MaxResults: 3,
	}
}

func TestSelectFiltersAndRanks(t *testing.T) {
	emotions, scores := testPolicy().Select([]ScoredLabel{
		{Label: "Sadness", Score: 0.55},
		{Label: "Joy", Score: 0.91},
		{Label: "Anticipation", Score: 0.95}, // not in the allowed set
		{Label: "Fear", Score: 0.2},          // below threshold
	})

	assert.Equal(t, []string{"Joy", "Sadness"}, emotions)
	assert.Equal(t, map[string]float64{"Joy": 0.91, "Sadness": 0.55}, scores)
}

func TestSelectThresholdIsInclusive(t *testing.T) {
	emotions, scores := testPolicy().Select([]ScoredLabel{
		{Label: "Fear", Score: 0.5},
	})

	assert.Equal(t, []string{"Fear"}, emotions)
	assert.Equal(t, 0.5, scores["Fear"])
}

func TestSelectMaxAggregatesDuplicateLabels(t *testing.T) {
	// several raw aliases collapsing onto one canonical label keep the
	// max score, not the sum or the last seen
	emotions, scores := testPolicy().Select([]ScoredLabel{
		{Label: "Joy", Score: 0.6},
		{Label: "Joy", Score: 0.9},
		{Label: "Joy", Score: 0.7},
	})

	assert.Equal(t, []string{"Joy"}, emotions)
	assert.Equal(t, 0.9, scores["Joy"])
}

func TestSelectSortedDescendingStableOnTies(t *testing.T) {
	emotions, scores := testPolicy().Select([]ScoredLabel{
		{Label: "Sadness", Score: 0.8},
		{Label: "Anger", Score: 0.8},
		{Label: "Joy", Score: 0.9},
	})

	// ties keep first-observed order: Sadness before Anger
	assert.Equal(t, []string{"Joy", "Sadness", "Anger"}, emotions)

	for i := 1; i < len(emotions); i++ {
		assert.GreaterOrEqual(t, scores[emotions[i-1]], scores[emotions[i]])
	}
	for _, label := range emotions {
		assert.GreaterOrEqual(t, scores[label], 0.5)
	}
}

func TestSelectTruncatesToMaxResults(t *testing.T) {
	emotions, _ := testPolicy().Select([]ScoredLabel{
		{Label: "Joy", Score: 0.9},
		{Label: "Sadness", Score: 0.8},
		{Label: "Anger", Score: 0.7},
		{Label: "Fear", Score: 0.6},
	})

	assert.Equal(t, []string{"Joy", "Sadness", "Anger"}, emotions)
}

func TestSelectEmptyWhenNothingClears(t *testing.T) {
	emotions, scores := testPolicy().Select([]ScoredLabel{
		{Label: "Joy", Score: 0.49},
		{Label: "Neutral", Score: 0.99},
	})

	assert.Empty(t, emotions)
	assert.Empty(t, scores)
}
