package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/domain"
)

type fakeFetcher struct {
	mu      sync.Mutex
	err     error
	payload []byte
	calls   int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url, destPath string) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(destPath, f.payload, 0644)
}

type fakeEncoder struct {
	mu            sync.Mutex
	adjustCalls   int
	filterCalls   int
	mergeCalls    int
	durationCalls int
	adjustErr     error
	filterErr     error
	mergeErr      error
	durationErr   error
	mergePayload  []byte
}

func (e *fakeEncoder) AdjustSpeed(ctx context.Context, audioPath string, speed float64, destPath string) error {
	e.mu.Lock()
	e.adjustCalls++
	e.mu.Unlock()
	if e.adjustErr != nil {
		return e.adjustErr
	}
	return os.WriteFile(destPath, []byte("audio"), 0644)
}

func (e *fakeEncoder) ApplyFilter(ctx context.Context, videoPath, filter, destPath string) error {
	e.mu.Lock()
	e.filterCalls++
	e.mu.Unlock()
	if e.filterErr != nil {
		return e.filterErr
	}
	return os.WriteFile(destPath, []byte("video"), 0644)
}

func (e *fakeEncoder) Merge(ctx context.Context, videoPath, audioPath, destPath string) error {
	e.mu.Lock()
	e.mergeCalls++
	e.mu.Unlock()
	if e.mergeErr != nil {
		return e.mergeErr
	}
	return os.WriteFile(destPath, e.mergePayload, 0644)
}

func (e *fakeEncoder) Available(ctx context.Context) bool { return true }

func (e *fakeEncoder) Duration(ctx context.Context, path string) (float64, error) {
	e.mu.Lock()
	e.durationCalls++
	e.mu.Unlock()
	if e.durationErr != nil {
		return 0, e.durationErr
	}
	return 12.5, nil
}

type pipelineFixture struct {
	pipeline  *Pipeline
	fetcher   *fakeFetcher
	encoder   *fakeEncoder
	workDir   string
	outputDir string
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	workDir := t.TempDir()
	outputDir := t.TempDir()
	fetcher := &fakeFetcher{payload: []byte("source")}
	encoder := &fakeEncoder{mergePayload: []byte("merged output bytes")}

	pipeline := NewPipeline(
		domain.DefaultCatalog(),
		fetcher,
		encoder,
		nil,
		NewWorkspaceManager(workDir),
		outputDir,
	)
	return &pipelineFixture{
		pipeline:  pipeline,
		fetcher:   fetcher,
		encoder:   encoder,
		workDir:   workDir,
		outputDir: outputDir,
	}
}

func request(workflowID, variant string) domain.JobRequest {
	return domain.JobRequest{
		VideoURL:    "http://example.com/video.mp4",
		AudioURL:    "http://example.com/audio.mp3",
		VariantName: variant,
		WorkflowID:  workflowID,
	}
}

func (f *pipelineFixture) workspacePath(workflowID, variant string) string {
	return filepath.Join(f.workDir, workflowID, variant)
}

func TestPipeline_Run_Success(t *testing.T) {
	f := newPipelineFixture(t)

	result, perr := f.pipeline.Run(context.Background(), request("wf1", "josh"))
	require.Nil(t, perr)
	require.NotNil(t, result)

	assert.Equal(t, "josh", result.Variant)
	assert.Equal(t, "wf1_josh.mp4", result.OutputFile)
	assert.NotEmpty(t, result.Checksum)
	assert.False(t, result.CompletedAt.IsZero())

	info, err := os.Stat(result.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), result.FileSize)
	assert.Positive(t, result.FileSize)

	// Workspace is gone, artifact survives.
	_, err = os.Stat(f.workspacePath("wf1", "josh"))
	assert.True(t, os.IsNotExist(err))

	// Both streams were probed for drift before the mux.
	assert.Equal(t, 2, f.encoder.durationCalls)
}

func TestPipeline_Run_DurationProbeFailureIsAdvisory(t *testing.T) {
	f := newPipelineFixture(t)
	f.encoder.durationErr = errors.New("ffprobe failed")

	result, perr := f.pipeline.Run(context.Background(), request("wf1", "josh"))
	require.Nil(t, perr)
	require.NotNil(t, result)
	assert.Equal(t, 1, f.encoder.mergeCalls)
}

func TestPipeline_Run_DownloadFailureStopsEarly(t *testing.T) {
	f := newPipelineFixture(t)
	f.fetcher.err = errors.New("connection refused")

	result, perr := f.pipeline.Run(context.Background(), request("wf1", "josh"))
	assert.Nil(t, result)
	require.NotNil(t, perr)
	assert.Equal(t, domain.FailureDownload, perr.Kind)
	assert.True(t, perr.Client())

	// No later stage ran.
	assert.Equal(t, 0, f.encoder.adjustCalls)
	assert.Equal(t, 0, f.encoder.filterCalls)
	assert.Equal(t, 0, f.encoder.mergeCalls)

	// Workspace removed even on failure.
	_, err := os.Stat(f.workspacePath("wf1", "josh"))
	assert.True(t, os.IsNotExist(err))
}

func TestPipeline_Run_UnknownVariant(t *testing.T) {
	f := newPipelineFixture(t)

	result, perr := f.pipeline.Run(context.Background(), request("wf1", "not-a-real-variant"))
	assert.Nil(t, result)
	require.NotNil(t, perr)
	assert.Equal(t, domain.FailureUnknownVariant, perr.Kind)
	assert.True(t, perr.Client())

	// Assets were fetched, but no encoder stage ran.
	assert.Equal(t, 2, f.fetcher.calls)
	assert.Equal(t, 0, f.encoder.adjustCalls)

	_, err := os.Stat(f.workspacePath("wf1", "not-a-real-variant"))
	assert.True(t, os.IsNotExist(err))
}

func TestPipeline_Run_StageFailures(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(e *fakeEncoder)
		wantKind domain.FailureKind
	}{
		{
			name:     "speed adjustment failure",
			mutate:   func(e *fakeEncoder) { e.adjustErr = errors.New("atempo exploded") },
			wantKind: domain.FailureSpeedAdjust,
		},
		{
			name:     "filter failure",
			mutate:   func(e *fakeEncoder) { e.filterErr = errors.New("bad filter graph") },
			wantKind: domain.FailureFilter,
		},
		{
			name:     "merge failure",
			mutate:   func(e *fakeEncoder) { e.mergeErr = errors.New("mux error") },
			wantKind: domain.FailureMerge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPipelineFixture(t)
			tt.mutate(f.encoder)

			result, perr := f.pipeline.Run(context.Background(), request("wf1", "brad"))
			assert.Nil(t, result)
			require.NotNil(t, perr)
			assert.Equal(t, tt.wantKind, perr.Kind)

			_, err := os.Stat(f.workspacePath("wf1", "brad"))
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestPipeline_Run_EmptyOutputIsMissing(t *testing.T) {
	f := newPipelineFixture(t)
	f.encoder.mergePayload = nil // merge "succeeds" but writes zero bytes

	result, perr := f.pipeline.Run(context.Background(), request("wf1", "ryan"))
	assert.Nil(t, result)
	require.NotNil(t, perr)
	assert.Equal(t, domain.FailureOutputMissing, perr.Kind)
}

func TestPipeline_Run_IdenticalRerunOverwrites(t *testing.T) {
	f := newPipelineFixture(t)

	first, perr := f.pipeline.Run(context.Background(), request("wf1", "pablo"))
	require.Nil(t, perr)

	f.encoder.mergePayload = []byte("a different, longer merged output")
	second, perr := f.pipeline.Run(context.Background(), request("wf1", "pablo"))
	require.Nil(t, perr)

	// Same artifact path, last writer wins.
	assert.Equal(t, first.OutputPath, second.OutputPath)
	info, err := os.Stat(second.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, int64(len("a different, longer merged output")), info.Size())
	assert.NotEqual(t, first.Checksum, second.Checksum)
}

func TestPipeline_Run_DistinctWorkflowsAreIsolated(t *testing.T) {
	f := newPipelineFixture(t)

	var wg sync.WaitGroup
	results := make([]*domain.JobResult, 2)
	errs := make([]*domain.PipelineError, 2)
	for i, wf := range []string{"wfA", "wfB"} {
		wg.Add(1)
		go func(i int, wf string) {
			defer wg.Done()
			results[i], errs[i] = f.pipeline.Run(context.Background(), request(wf, "michael"))
		}(i, wf)
	}
	wg.Wait()

	require.Nil(t, errs[0])
	require.Nil(t, errs[1])
	assert.NotEqual(t, results[0].OutputPath, results[1].OutputPath)
	for _, r := range results {
		_, err := os.Stat(r.OutputPath)
		assert.NoError(t, err)
	}
}
