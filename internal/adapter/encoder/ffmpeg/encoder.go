package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/domain"
	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/infrastructure/logger"
	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/port"
)

// Per-stage execution budgets. A process that exceeds its budget is
// killed by the command context, not merely abandoned.
const (
	speedTimeout  = 300 * time.Second
	filterTimeout = 600 * time.Second
	mergeTimeout  = 600 * time.Second
	probeTimeout  = 5 * time.Second
)

// Encoder invokes the ffmpeg binary for audio re-timing, video
// filtering, and muxing. A weighted semaphore bounds the number of
// concurrently running encoder processes across all jobs.
type Encoder struct {
	ffmpegPath  string
	ffprobePath string
	sem         *semaphore.Weighted
}

func NewEncoder(maxConcurrent int64) *Encoder {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Encoder{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		sem:         semaphore.NewWeighted(maxConcurrent),
	}
}

// AdjustSpeed re-times an audio track by the given tempo multiplier.
// atempo only accepts multipliers in [0.5, 2.0] per pass, so wider
// multipliers are factored into a chain of in-range passes.
func (e *Encoder) AdjustSpeed(ctx context.Context, audioPath string, speed float64, destPath string) error {
	if err := validatePath(audioPath); err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}
	if err := validatePath(destPath); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	filter, err := atempoChain(speed)
	if err != nil {
		return err
	}

	args := []string{
		"-i", audioPath,
		"-af", filter,
		"-y", destPath,
	}
	return e.run(ctx, speedTimeout, args)
}

// ApplyFilter re-encodes a video at a fixed quality target, applying
// the filter expression unless it is the "none" sentinel. The
// expression comes from the trusted catalog, never from request input.
func (e *Encoder) ApplyFilter(ctx context.Context, videoPath, filter, destPath string) error {
	if err := validatePath(videoPath); err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}
	if err := validatePath(destPath); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	args := []string{"-i", videoPath}
	if filter != domain.FilterNone {
		args = append(args, "-vf", filter)
	}
	args = append(args,
		"-c:v", "libx264",
		"-crf", "23",
		"-preset", "fast",
		"-y", destPath,
	)
	return e.run(ctx, filterTimeout, args)
}

// Merge muxes one video stream from the first input and one audio
// stream from the second into a single container, copying video and
// re-encoding audio to AAC. -shortest truncates the output to the
// shorter input so the container never carries trailing silence or
// frozen frames.
func (e *Encoder) Merge(ctx context.Context, videoPath, audioPath, destPath string) error {
	if err := validatePath(videoPath); err != nil {
		return fmt.Errorf("invalid video path: %w", err)
	}
	if err := validatePath(audioPath); err != nil {
		return fmt.Errorf("invalid audio path: %w", err)
	}
	if err := validatePath(destPath); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	args := []string{
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		"-y", destPath,
	}
	return e.run(ctx, mergeTimeout, args)
}

// Available reports whether the ffmpeg binary answers a version query.
func (e *Encoder) Available(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	return exec.CommandContext(probeCtx, e.ffmpegPath, "-version").Run() == nil
}

// Duration returns a media file's duration in seconds via ffprobe.
func (e *Encoder) Duration(ctx context.Context, path string) (float64, error) {
	if err := validatePath(path); err != nil {
		return 0, fmt.Errorf("invalid input path: %w", err)
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, e.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbeDuration(output)
}

func parseProbeDuration(output []byte) (float64, error) {
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration: %w", err)
	}
	return duration, nil
}

func (e *Encoder) run(ctx context.Context, timeout time.Duration, args []string) error {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire encoder slot: %w", err)
	}
	defer e.sem.Release(1)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			logger.Error.Printf("ffmpeg killed after %s: %s", timeout, logger.SanitizeForLog(stderr.String()))
			return fmt.Errorf("ffmpeg timed out after %s", timeout)
		}
		logger.Error.Printf("ffmpeg failed: %v: %s", err, logger.SanitizeForLog(stderr.String()))
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

var _ port.Encoder = (*Encoder)(nil)
