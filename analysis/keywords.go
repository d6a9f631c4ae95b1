package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// this file derives representative keywords from a transcript.
//
// The primary extractor shells out to the statistical keyphrase service
// (KeyBERT); the fallback is a plain whitespace split. A decorator picks
// the fallback whenever the primary fails, so keyword extraction can
// never fail a request.

// MaxKeywords is how many keywords the fallback keeps.
const MaxKeywords = 5

// KeywordExtractor derives keywords from non-empty text.
type KeywordExtractor interface {
	Extract(ctx context.Context, text string) ([]string, error)
}

// CommandKeywordExtractor feeds the text to an external process on stdin
// and expects a JSON array of strings on stdout (exit code 0).
type CommandKeywordExtractor struct {
	// Command is the argv of the keyphrase process,
	// e.g. ["python3", "keyword_service.py"].
	Command []string
}

func (e *CommandKeywordExtractor) Extract(ctx context.Context, text string) ([]string, error) {
	if len(e.Command) == 0 {
		return nil, fmt.Errorf("CommandKeywordExtractor: no command configured")
	}

	cmd := exec.CommandContext(ctx, e.Command[0], e.Command[1:]...)
	cmd.Stdin = strings.NewReader(text)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("CommandKeywordExtractor: run: %w", err)
	}

	var keywords []string
	if err := json.Unmarshal(stdout.Bytes(), &keywords); err != nil {
		return nil, fmt.Errorf("CommandKeywordExtractor: decode: %w", err)
	}

	return keywords, nil
}

// SplitKeywordExtractor is the deterministic fallback: the first
// MaxKeywords whitespace-separated tokens, verbatim. It never fails.
type SplitKeywordExtractor struct{}

func (SplitKeywordExtractor) Extract(_ context.Context, text string) ([]string, error) {
	tokens := strings.Fields(text)
	if len(tokens) > MaxKeywords {
		tokens = tokens[:MaxKeywords]
	}
	return tokens, nil
}

// WithKeywordFallback decorates primary so that any failure (spawn error,
// non-zero exit, malformed output) silently degrades to the whitespace
// split.
func WithKeywordFallback(primary KeywordExtractor) KeywordExtractor {
	return &fallbackKeywordExtractor{primary: primary}
}

type fallbackKeywordExtractor struct {
	primary KeywordExtractor
}

func (e *fallbackKeywordExtractor) Extract(ctx context.Context, text string) ([]string, error) {
	keywords, err := e.primary.Extract(ctx, text)
	if err == nil {
		return keywords, nil
	}

	logger.WithError(err).Warn("keyword extraction degraded to whitespace split")
	return SplitKeywordExtractor{}.Extract(ctx, text)
}
