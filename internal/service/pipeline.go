package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/domain"
	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/infrastructure/logger"
	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/infrastructure/metrics"
	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/port"
)

// Pipeline sequences one merge job: fetch both assets, resolve the
// variant profile, re-time the audio, filter the video, mux the two
// into the shared output area, and verify the artifact. The first
// failing stage is terminal; nothing is retried.
type Pipeline struct {
	catalog    *domain.Catalog
	fetcher    port.AssetFetcher
	encoder    port.Encoder
	history    port.JobStore
	workspaces *WorkspaceManager
	outputDir  string
}

// NewPipeline wires the orchestrator. history may be nil; job history
// is advisory and never affects a job's outcome.
func NewPipeline(
	catalog *domain.Catalog,
	fetcher port.AssetFetcher,
	encoder port.Encoder,
	history port.JobStore,
	workspaces *WorkspaceManager,
	outputDir string,
) *Pipeline {
	return &Pipeline{
		catalog:    catalog,
		fetcher:    fetcher,
		encoder:    encoder,
		history:    history,
		workspaces: workspaces,
		outputDir:  outputDir,
	}
}

// Run executes one job to completion. The workspace is released on
// every exit path; the output artifact is not owned by the pipeline
// once written.
func (p *Pipeline) Run(ctx context.Context, req domain.JobRequest) (*domain.JobResult, *domain.PipelineError) {
	start := time.Now()

	workspace, err := p.workspaces.Acquire(req.WorkflowID, req.VariantName)
	if err != nil {
		return nil, p.fail(req, start, domain.FailureInternal, "failed to allocate workspace", err)
	}
	defer p.workspaces.Release(workspace)

	job := domain.NewJob(req.WorkflowID, req.VariantName, workspace, p.outputDir)

	logger.Info.Printf("processing variant %s for workflow %s",
		logger.SanitizeForLog(req.VariantName), logger.SanitizeForLog(req.WorkflowID))

	logger.Info.Printf("downloading video from %s", logger.SanitizeForLog(req.VideoURL))
	if err := p.stage(ctx, "fetch_video", func(ctx context.Context) error {
		return p.fetcher.Fetch(ctx, req.VideoURL, job.SourceVideo)
	}); err != nil {
		return nil, p.fail(req, start, domain.FailureDownload, "failed to download video", err)
	}

	logger.Info.Printf("downloading audio from %s", logger.SanitizeForLog(req.AudioURL))
	if err := p.stage(ctx, "fetch_audio", func(ctx context.Context) error {
		return p.fetcher.Fetch(ctx, req.AudioURL, job.SourceAudio)
	}); err != nil {
		return nil, p.fail(req, start, domain.FailureDownload, "failed to download audio", err)
	}

	profile, ok := p.catalog.Resolve(req.VariantName)
	if !ok {
		return nil, p.fail(req, start, domain.FailureUnknownVariant,
			fmt.Sprintf("unknown variant: %s", req.VariantName), nil)
	}

	logger.Info.Printf("adjusting audio speed to %vx", profile.Speed)
	if err := p.stage(ctx, "adjust_speed", func(ctx context.Context) error {
		return p.encoder.AdjustSpeed(ctx, job.SourceAudio, profile.Speed, job.SpeedAudio)
	}); err != nil {
		return nil, p.fail(req, start, domain.FailureSpeedAdjust, "failed to adjust audio speed", err)
	}

	logger.Info.Printf("applying filter: %s", logger.SanitizeForLog(profile.Filter))
	if err := p.stage(ctx, "apply_filter", func(ctx context.Context) error {
		return p.encoder.ApplyFilter(ctx, job.SourceVideo, profile.Filter, job.FilteredVideo)
	}); err != nil {
		return nil, p.fail(req, start, domain.FailureFilter, "failed to apply video filter", err)
	}

	p.logDurationDrift(ctx, job)

	logger.Info.Printf("merging audio and video")
	if err := p.stage(ctx, "merge", func(ctx context.Context) error {
		return p.encoder.Merge(ctx, job.FilteredVideo, job.SpeedAudio, job.OutputPath)
	}); err != nil {
		return nil, p.fail(req, start, domain.FailureMerge, "failed to merge audio and video", err)
	}

	info, err := os.Stat(job.OutputPath)
	if err != nil || info.Size() == 0 {
		return nil, p.fail(req, start, domain.FailureOutputMissing, "output file not created", err)
	}

	checksum, err := checksumFile(job.OutputPath)
	if err != nil {
		logger.Warn.Printf("checksum failed for %s: %v", job.OutputPath, err)
	}

	result := &domain.JobResult{
		Variant:     req.VariantName,
		OutputPath:  job.OutputPath,
		OutputFile:  domain.OutputFilename(req.WorkflowID, req.VariantName),
		FileSize:    info.Size(),
		Checksum:    checksum,
		CompletedAt: time.Now().UTC(),
	}

	logger.Info.Printf("created %s (%d bytes)", job.OutputPath, info.Size())
	metrics.JobsTotal.WithLabelValues(req.VariantName, "success").Inc()
	p.record(&domain.JobRecord{
		WorkflowID: req.WorkflowID,
		Variant:    req.VariantName,
		Status:     domain.JobStatusSuccess,
		OutputPath: result.OutputPath,
		FileSize:   result.FileSize,
		Checksum:   result.Checksum,
		DurationMs: time.Since(start).Milliseconds(),
	})

	return result, nil
}

// logDurationDrift reports how far the filtered video and re-timed
// audio have diverged before muxing. The mux truncates to the shorter
// stream, so a large drift means visible content loss in the artifact.
// Probe failures are advisory and never fail the job.
func (p *Pipeline) logDurationDrift(ctx context.Context, job *domain.Job) {
	videoDur, err := p.encoder.Duration(ctx, job.FilteredVideo)
	if err != nil {
		logger.Debug.Printf("video duration probe failed: %v", err)
		return
	}
	audioDur, err := p.encoder.Duration(ctx, job.SpeedAudio)
	if err != nil {
		logger.Debug.Printf("audio duration probe failed: %v", err)
		return
	}
	logger.Info.Printf("pre-merge durations: video %.2fs audio %.2fs (drift %.2fs)",
		videoDur, audioDur, videoDur-audioDur)
}

func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	return err
}

func (p *Pipeline) fail(req domain.JobRequest, start time.Time, kind domain.FailureKind, message string, cause error) *domain.PipelineError {
	perr := domain.NewPipelineError(kind, message, cause)
	logger.Error.Printf("job failed for workflow %s variant %s: %v",
		logger.SanitizeForLog(req.WorkflowID), logger.SanitizeForLog(req.VariantName), perr)

	variant := "unknown"
	if _, ok := p.catalog.Resolve(req.VariantName); ok {
		variant = req.VariantName
	}
	metrics.JobsTotal.WithLabelValues(variant, "failed").Inc()

	p.record(&domain.JobRecord{
		WorkflowID: req.WorkflowID,
		Variant:    req.VariantName,
		Status:     domain.JobStatusFailed,
		Error:      message,
		DurationMs: time.Since(start).Milliseconds(),
	})
	return perr
}

func (p *Pipeline) record(rec *domain.JobRecord) {
	if p.history == nil {
		return
	}
	if err := p.history.Record(rec); err != nil {
		logger.Error.Printf("failed to record job history: %v", err)
	}
}

func checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close() //nolint:errcheck

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
