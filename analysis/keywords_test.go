package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingExtractor struct{}

func (failingExtractor) Extract(context.Context, string) ([]string, error) {
	return nil, errors.New("subprocess exploded")
}

type fixedExtractor struct{ keywords []string }

func (e fixedExtractor) Extract(context.Context, string) ([]string, error) {
	return e.keywords, nil
}

func TestSplitKeywordExtractor(t *testing.T) {
	keywords, err := SplitKeywordExtractor{}.Extract(context.Background(), "a b c d e f")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, keywords)
}

func TestSplitKeywordExtractorShortText(t *testing.T) {
	keywords, err := SplitKeywordExtractor{}.Extract(context.Background(), "  hello   world ")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world"}, keywords)
}

func TestKeywordFallbackOnPrimaryFailure(t *testing.T) {
	extractor := WithKeywordFallback(failingExtractor{})

	keywords, err := extractor.Extract(context.Background(), "a b c d e f")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, keywords)
}

func TestKeywordFallbackNotUsedOnSuccess(t *testing.T) {
	extractor := WithKeywordFallback(fixedExtractor{keywords: []string{"statistical", "keyphrases"}})

	keywords, err := extractor.Extract(context.Background(), "whatever text")
	require.NoError(t, err)
	assert.Equal(t, []string{"statistical", "keyphrases"}, keywords)
}

func TestCommandKeywordExtractorNoCommand(t *testing.T) {
	_, err := (&CommandKeywordExtractor{}).Extract(context.Background(), "text")
	assert.Error(t, err)
}

func TestCommandKeywordExtractorParsesJSON(t *testing.T) {
	extractor := &CommandKeywordExtractor{Command: []string{"echo", `["alpha", "beta"]`}}

	keywords, err := extractor.Extract(context.Background(), "ignored by echo")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, keywords)
}

func TestCommandKeywordExtractorMalformedOutput(t *testing.T) {
	extractor := &CommandKeywordExtractor{Command: []string{"echo", "not json at all"}}

	_, err := extractor.Extract(context.Background(), "text")
	assert.Error(t, err)
}

func TestCommandKeywordExtractorSpawnFailure(t *testing.T) {
	extractor := &CommandKeywordExtractor{Command: []string{"/no/such/binary"}}

	_, err := extractor.Extract(context.Background(), "text")
	assert.Error(t, err)
}
