// Package analysis implements the analyze pipeline:
// audio normalization -> transcription -> emotion classification ->
// label normalization & selection -> keyword extraction -> document.
//
// The pipeline degrades instead of failing wherever a fallback exists:
// only audio normalization is a hard dependency.
package analysis

import "github.com/cdfmlr/crud/log"

var logger = log.ZoneLogger("audiolib/analysis")
