package model

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cdfmlr/crud/log"
	"github.com/dhowden/tag"
)

var logger = log.ZoneLogger("audiolib/model")

// this file fills the pass-through library metadata of a document
// (trackId, title, artist, album, genre, duration, bitRate) from the
// uploaded audio file. Nothing here is produced by the analysis pipeline;
// every field is best-effort and may stay empty.

// DeriveTrackID builds a stable track id from the original file name,
// keeping only letters, digits, '-' and '_'. Falls back to the stored
// file name when the original name yields nothing usable.
func DeriveTrackID(originalName, storedPath string) string {
	name := originalName
	if name == "" {
		name = filepath.Base(storedPath)
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	var b strings.Builder
	for _, ch := range stem {
		if ch == '-' || ch == '_' ||
			('0' <= ch && ch <= '9') ||
			('a' <= ch && ch <= 'z') ||
			('A' <= ch && ch <= 'Z') {
			b.WriteRune(ch)
		}
	}
	if b.Len() == 0 {
		stored := filepath.Base(storedPath)
		return strings.TrimSuffix(stored, filepath.Ext(stored))
	}
	return b.String()
}

// MergeMediaMetadata fills doc's library metadata from the stored audio
// file: tags first, then stream info from ffprobe.
func MergeMediaMetadata(doc *AnalysisDocument, originalName, storedPath string) {
	doc.TrackID = DeriveTrackID(originalName, storedPath)
	mergeTags(doc, storedPath)
	mergeStreamInfo(doc, storedPath)
}

func mergeTags(doc *AnalysisDocument, path string) {
	f, err := os.Open(path)
	if err != nil {
		logger.WithError(err).Warn("mergeTags: cannot open audio file")
		return
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		// untagged file, nothing to merge
		return
	}

	doc.Title = m.Title()
	doc.Artist = m.Artist()
	doc.Album = m.Album()
	doc.Genre = m.Genre()
}

// ffprobe output we care about:
//
//	{"format": {"duration": "12.34", "bit_rate": "128000"}}
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
}

func mergeStreamInfo(doc *AnalysisDocument, path string) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "format=duration,bit_rate",
		"-of", "json",
		path)

	out, err := cmd.Output()
	if err != nil {
		logger.WithError(err).Warn("mergeStreamInfo: ffprobe failed, skipping")
		return
	}

	var probed ffprobeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		logger.WithError(err).Warn("mergeStreamInfo: unexpected ffprobe output")
		return
	}

	if d, err := strconv.ParseFloat(probed.Format.Duration, 64); err == nil {
		doc.Duration = roundTo(d, 3)
	}
	if br, err := strconv.ParseFloat(probed.Format.BitRate, 64); err == nil {
		doc.BitRate = int(br/1000 + 0.5)
	}
}

func roundTo(v float64, digits int) float64 {
	p := 1.0
	for i := 0; i < digits; i++ {
		p *= 10
	}
	return float64(int64(v*p+0.5)) / p
}
