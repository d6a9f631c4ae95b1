package analysis

import "strings"

// this file maps raw classifier label spellings onto the canonical
// emotion vocabulary. Models disagree on casing, underscores, adjective
// vs. noun forms, and some only emit enumerated "LABEL_N" placeholders;
// all of that lands here.

// emotionAliases is data, not code: lookup keys are the cleaned
// (lowercased, underscore-free, whitespace-collapsed) raw labels.
// The "label N" entries map the enumerated placeholder scheme by index
// onto the Ekman set.
var emotionAliases = map[string]string{
	"anger":     "Anger",
	"angry":     "Anger",
	"label 0":   "Anger",
	"disgust":   "Disgust",
	"disgusted": "Disgust",
	"label 1":   "Disgust",
	"fear":      "Fear",
	"fearful":   "Fear",
	"label 2":   "Fear",
	"joy":       "Joy",
	"joyful":    "Joy",
	"happy":     "Joy",
	"label 3":   "Joy",
	"sadness":   "Sadness",
	"sad":       "Sadness",
	"label 4":   "Sadness",
	"surprise":  "Surprise",
	"surprised": "Surprise",
	"label 5":   "Surprise",
}

// NormalizeLabel maps a raw classifier label to its canonical form.
//
// It is pure and idempotent: feeding a canonical label back in returns it
// unchanged. Unknown labels fall back to title-casing each token of the
// cleaned spelling.
func NormalizeLabel(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	cleaned := strings.Join(strings.Fields(strings.ReplaceAll(trimmed, "_", " ")), " ")

	if canonical, ok := emotionAliases[strings.ToLower(cleaned)]; ok {
		return canonical
	}

	return titleCase(cleaned)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
