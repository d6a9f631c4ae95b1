package analysis

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"audiolib/model"
)

// DegradedTranscript is the fixed transcript substituted when the ASR
// step fails: transcription failure alone never aborts an analysis.
const DegradedTranscript = "Erreur lors de la transcription audio."

// Normalizer converts an uploaded audio file into a temporary canonical
// waveform. The pipeline owns deletion of the returned file.
type Normalizer interface {
	Normalize(ctx context.Context, src string) (string, error)
}

// Transcriber runs speech recognition over a normalized waveform.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath, language string) (string, error)
}

// Classifier runs multi-label emotion classification over text.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]ScoredLabel, error)
}

// Pipeline sequences one analysis per uploaded file:
//
//	normalize -> transcribe -> classify -> select -> keywords -> document
//
// Failure policy per step:
//   - normalization failure aborts the request (hard dependency)
//   - transcription failure degrades to DegradedTranscript
//   - a blank transcript short-circuits to the instrumental document
//   - classification failure degrades to "no emotions"
//   - keyword extraction never fails (fallback decorator)
type Pipeline struct {
	Normalizer  Normalizer
	Transcriber Transcriber
	Classifier  Classifier
	Keywords    KeywordExtractor

	// Language is the locale hint handed to the transcriber.
	Language string
	Policy   SelectorPolicy
}

// Analyze runs the whole pipeline over the file at path and returns the
// pre-save document. It does not persist anything and never deletes the
// original file: retention of the upload is the caller's policy.
func (p *Pipeline) Analyze(ctx context.Context, path, originalFileName string) (*model.AnalysisDocument, error) {
	wavPath, err := p.Normalizer.Normalize(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("Analyze: %w", err)
	}
	// the temp waveform is gone on every exit path from here on
	defer func() {
		if err := os.Remove(wavPath); err != nil && !os.IsNotExist(err) {
			logger.WithError(err).Warn("Analyze: temp waveform cleanup failed")
		}
	}()

	transcript, err := p.Transcriber.Transcribe(ctx, wavPath, p.Language)
	if err != nil {
		logger.WithError(err).
			WithField("file", originalFileName).
			Error("Analyze: transcription failed, degrading")
		transcript = DegradedTranscript
	}

	doc := &model.AnalysisDocument{
		FileName:        originalFileName,
		Transcription:   strings.TrimSpace(transcript),
		Keywords:        []string{},
		Emotions:        []string{},
		PrimaryEmotions: []string{},
		Scores:          map[string]float64{},
		Timestamp:       time.Now().UTC(),
	}

	if doc.Transcription == "" {
		// instrumental track: no speech, no emotions, no keywords
		doc.Confidence = model.InstrumentalConfidence
		return doc, nil
	}

	pairs := p.classify(ctx, doc.Transcription)
	emotions, scores := p.Policy.Select(pairs)

	doc.Emotions = emotions
	doc.PrimaryEmotions = emotions
	for label, score := range scores {
		doc.Scores[label] = math.Round(score*10000) / 10000
	}
	if len(emotions) > 0 {
		doc.Confidence = int(math.Round(doc.Scores[emotions[0]] * 100))
	}

	doc.Keywords = p.extractKeywords(ctx, doc.Transcription)

	return doc, nil
}

// classify runs the classifier and normalizes its labels. Classifier
// failure degrades to an empty result.
func (p *Pipeline) classify(ctx context.Context, text string) []ScoredLabel {
	raw, err := p.Classifier.Classify(ctx, text)
	if err != nil {
		logger.WithError(err).Error("Analyze: classification failed, degrading")
		return nil
	}

	pairs := make([]ScoredLabel, 0, len(raw))
	for _, r := range raw {
		label := NormalizeLabel(r.Label)
		if label == "" {
			continue
		}
		pairs = append(pairs, ScoredLabel{Label: label, Score: r.Score})
	}
	return pairs
}

func (p *Pipeline) extractKeywords(ctx context.Context, text string) []string {
	keywords, err := p.Keywords.Extract(ctx, text)
	if err != nil || keywords == nil {
		// the fallback decorator should have absorbed this already
		if err != nil {
			logger.WithError(err).Warn("Analyze: keyword extraction failed")
		}
		return []string{}
	}
	return keywords
}
