package analysis

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// this file converts arbitrary uploaded audio into the canonical waveform
// the transcription model accepts: mono, 16 kHz, signed 16-bit wav.

// NormalizationError wraps the underlying ffmpeg failure. Normalization is
// the pipeline's only hard dependency: no retry, the request fails.
type NormalizationError struct {
	Err    error
	Detail string // tail of ffmpeg stderr
}

func (e *NormalizationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("audio normalization failed: %s", e.Detail)
	}
	return fmt.Sprintf("audio normalization failed: %v", e.Err)
}

func (e *NormalizationError) Unwrap() error { return e.Err }

// FFmpegNormalizer shells out to ffmpeg, the same way every iteration of
// this service has.
type FFmpegNormalizer struct {
	// TempDir is where normalized waveforms are written.
	// Empty means os.TempDir(). The caller owns deletion of the
	// returned file.
	TempDir string
}

// Normalize converts src into a temporary mono/16kHz/s16 wav file and
// returns its path. A missing src is a precondition error, not retried.
func (n *FFmpegNormalizer) Normalize(ctx context.Context, src string) (string, error) {
	if _, err := os.Stat(src); err != nil {
		return "", fmt.Errorf("Normalize: input file: %w", err)
	}

	dir := n.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	out := filepath.Join(dir, uuid.NewString()+".wav")

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-i", src,
		"-ac", "1",
		"-ar", "16000",
		"-sample_fmt", "s16",
		out)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// a partially written output must not leak
		_ = os.Remove(out)
		return "", &NormalizationError{Err: err, Detail: stderrTail(stderr.String())}
	}

	return out, nil
}

func stderrTail(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
