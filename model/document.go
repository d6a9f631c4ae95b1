package model

import "time"

// this file defines the document shape persisted to the search index.
// It must round-trip through the store unchanged: the index is the only
// source of truth for the library.

// CanonicalEmotions is the selectable emotion vocabulary.
// "Neutral" is deliberately absent: a track with no dominant emotion is
// represented by an empty PrimaryEmotions slice, not by a label.
var CanonicalEmotions = []string{
	"Anger", "Disgust", "Fear", "Joy", "Sadness", "Surprise",
}

// InstrumentalConfidence is the fixed confidence assigned to tracks with
// no transcribable speech content.
const InstrumentalConfidence = 100

// AnalysisDocument is one analyzed audio file, as stored and searched.
//
// Invariants:
//   - every key of Scores appears in PrimaryEmotions, and scores ≥ the
//     configured threshold
//   - PrimaryEmotions is sorted descending by score (stable on ties)
//   - Keywords is never nil
type AnalysisDocument struct {
	FileName        string             `json:"fileName"`
	StoredFileName  string             `json:"storedFileName,omitempty"`
	StoredPath      string             `json:"storedPath,omitempty"`
	Transcription   string             `json:"transcription"`
	Confidence      int                `json:"confidence"`
	Keywords        []string           `json:"keywords"`
	Emotions        []string           `json:"emotions"`
	PrimaryEmotions []string           `json:"primaryEmotions"`
	Scores          map[string]float64 `json:"scores"`
	Timestamp       time.Time          `json:"timestamp"`

	// library metadata, pass-through: merged by the caller, not produced
	// by the analysis pipeline
	TrackID  string  `json:"trackId,omitempty"`
	Title    string  `json:"title,omitempty"`
	Artist   string  `json:"artist,omitempty"`
	Album    string  `json:"album,omitempty"`
	Genre    string  `json:"genre,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	BitRate  int     `json:"bitRate,omitempty"`
}

// StatsSummary is the library-wide aggregate computed from the index.
type StatsSummary struct {
	Total             int            `json:"total"`
	Emotions          map[string]int `json:"emotions"`
	AverageConfidence float64        `json:"averageConfidence"`
	TopEmotion        string         `json:"topEmotion"`
}

// ZeroStats is what an absent index aggregates to: an absent index and an
// empty library are equivalent.
func ZeroStats() StatsSummary {
	return StatsSummary{Emotions: map[string]int{}}
}
