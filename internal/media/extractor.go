package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
)

// Metadata holds the audio properties probed from an uploaded file plus any
// embedded tag hints. All probed fields are best effort.
type Metadata struct {
	DurationSeconds int
	FileSize        int
	Bitrate         *int // bits per second
	SampleRate      *int // Hz

	// Embedded tag hints, empty when the container carries none.
	TagTitle  string
	TagArtist string
	TagGenre  string
}

// Extractor probes audio files with ffprobe. It is safe for concurrent use;
// each call spawns its own process.
type Extractor struct {
	ffmpegPath string
}

func NewExtractor(ffmpegPath string) *Extractor {
	return &Extractor{ffmpegPath: ffmpegPath}
}

type ffprobeOutput struct {
	Streams []struct {
		SampleRate string `json:"sample_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
}

// Extract probes duration, size, bitrate and sample rate. Callers treat a
// failure as non-fatal: the enclosing upload still succeeds with the derived
// fields left unset.
func (e *Extractor) Extract(ctx context.Context, inputFile string) (*Metadata, error) {
	ffprobePath := strings.Replace(e.ffmpegPath, "ffmpeg", "ffprobe", 1)

	args := []string{
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=sample_rate",
		"-show_entries", "format=duration,size,bit_rate",
		"-of", "json",
		inputFile,
	}

	cmd := exec.CommandContext(ctx, ffprobePath, args...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe execution failed for %s: %w\nFFprobe Error: %s", inputFile, err, stderr.String())
	}

	var probeData ffprobeOutput
	if err := json.Unmarshal(out.Bytes(), &probeData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ffprobe output: %w", err)
	}

	if probeData.Format.Duration == "" {
		return nil, fmt.Errorf("duration not found in ffprobe output for %s", inputFile)
	}
	durationFloat, err := strconv.ParseFloat(probeData.Format.Duration, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse duration %q: %w", probeData.Format.Duration, err)
	}

	meta := &Metadata{DurationSeconds: int(durationFloat)}

	if size, err := strconv.Atoi(probeData.Format.Size); err == nil {
		meta.FileSize = size
	} else if info, statErr := os.Stat(inputFile); statErr == nil {
		meta.FileSize = int(info.Size())
	}

	if bitrate, err := strconv.Atoi(probeData.Format.BitRate); err == nil && bitrate > 0 {
		meta.Bitrate = &bitrate
	}
	if len(probeData.Streams) > 0 {
		if sampleRate, err := strconv.Atoi(probeData.Streams[0].SampleRate); err == nil && sampleRate > 0 {
			meta.SampleRate = &sampleRate
		}
	}

	e.readTags(inputFile, meta)

	return meta, nil
}

// readTags pulls embedded ID3/MP4/FLAC tags as naming hints. Missing or
// unreadable tags are not an error.
func (e *Extractor) readTags(inputFile string, meta *Metadata) {
	f, err := os.Open(inputFile)
	if err != nil {
		return
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return
	}
	meta.TagTitle = m.Title()
	meta.TagArtist = m.Artist()
	meta.TagGenre = m.Genre()
}
