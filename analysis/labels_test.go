package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLabel(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"anger", "Anger"},
		{"ANGRY", "Anger"},
		{"  joy  ", "Joy"},
		{"joyful", "Joy"},
		{"happy", "Joy"},
		{"LABEL_3", "Joy"},
		{"label 3", "Joy"},
		{"label_0", "Anger"},
		{"label_5", "Surprise"},
		{"sad", "Sadness"},
		{"surprised", "Surprise"},
		{"fearful", "Fear"},
		{"disgusted", "Disgust"},
		{"", ""},
		{"   ", ""},
		// unknown labels fall back to title-casing the cleaned form
		{"optimism", "Optimism"},
		{"very_excited", "Very Excited"},
		{"ANTICIPATION", "Anticipation"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeLabel(tc.raw), "raw=%q", tc.raw)
	}
}

func TestNormalizeLabelIdempotent(t *testing.T) {
	raws := []string{"", "anger", "ANGRY", "label_4", "joyful", "optimism", "very_excited"}
	for alias := range emotionAliases {
		raws = append(raws, alias)
	}

	for _, raw := range raws {
		once := NormalizeLabel(raw)
		assert.Equal(t, once, NormalizeLabel(once), "raw=%q", raw)
	}
}
