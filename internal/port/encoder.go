package port

import "context"

// Encoder wraps the external ffmpeg binary. Each call blocks until the
// process exits or its stage timeout kills it.
type Encoder interface {
	// AdjustSpeed re-times an audio track by the given tempo multiplier.
	AdjustSpeed(ctx context.Context, audioPath string, speed float64, destPath string) error

	// ApplyFilter re-encodes a video, applying the filter expression
	// unless it is the "none" sentinel.
	ApplyFilter(ctx context.Context, videoPath, filter, destPath string) error

	// Merge muxes one video stream and one audio stream into a single
	// container, copying video, re-encoding audio, truncated to the
	// shorter input.
	Merge(ctx context.Context, videoPath, audioPath, destPath string) error

	// Available reports whether the encoder binary answers a version query.
	Available(ctx context.Context) bool

	// Duration returns a media file's duration in seconds.
	Duration(ctx context.Context, path string) (float64, error)
}
