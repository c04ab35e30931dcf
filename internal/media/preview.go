package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// PreviewDerivator cuts a promotional clip out of a full track and encodes
// it to a fixed-bitrate mp3 for unauthenticated streaming.
type PreviewDerivator struct {
	ffmpegPath  string
	clipSeconds int
	bitrate     string
}

func NewPreviewDerivator(ffmpegPath string, clipSeconds int, bitrate string) *PreviewDerivator {
	if clipSeconds <= 0 {
		clipSeconds = 30
	}
	if bitrate == "" {
		bitrate = "128k"
	}
	return &PreviewDerivator{
		ffmpegPath:  ffmpegPath,
		clipSeconds: clipSeconds,
		bitrate:     bitrate,
	}
}

// ClipWindow returns the preview start offset and length in seconds. The
// clip starts a quarter of the way in, where hooks and choruses tend to
// live; tracks no longer than the clip are previewed whole.
func ClipWindow(durationSeconds, clipSeconds int) (start, length int) {
	if durationSeconds <= clipSeconds {
		return 0, durationSeconds
	}
	start = durationSeconds / 4
	length = clipSeconds
	if remaining := durationSeconds - start; remaining < length {
		length = remaining
	}
	return start, length
}

// Derive writes the encoded preview clip to a temp file and returns its
// path. The caller owns the file and removes it after uploading.
func (d *PreviewDerivator) Derive(ctx context.Context, inputFile string, durationSeconds int) (string, error) {
	outFile, err := os.CreateTemp("", "preview-*.mp3")
	if err != nil {
		return "", fmt.Errorf("failed to create preview temp file: %w", err)
	}
	outPath := outFile.Name()
	outFile.Close()

	start, length := ClipWindow(durationSeconds, d.clipSeconds)

	args := []string{"-y"}
	if start > 0 {
		args = append(args, "-ss", strconv.Itoa(start))
	}
	if length > 0 && durationSeconds > d.clipSeconds {
		args = append(args, "-t", strconv.Itoa(length))
	}
	args = append(args,
		"-i", inputFile,
		"-vn",
		"-c:a", "libmp3lame",
		"-b:a", d.bitrate,
		"-f", "mp3",
		outPath,
	)

	cmd := exec.CommandContext(ctx, d.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("ffmpeg preview encode failed for %s: %w\nFFmpeg Error: %s", inputFile, err, stderr.String())
	}

	return outPath, nil
}
