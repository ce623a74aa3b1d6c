package domain

import (
	"path/filepath"
	"time"
)

// JobRequest is the caller's description of one merge job.
type JobRequest struct {
	VideoURL    string `json:"video_url"`
	AudioURL    string `json:"audio_url"`
	VariantName string `json:"variant_name"`
	WorkflowID  string `json:"workflow_id"`
}

// Job holds the filesystem layout of one pipeline run. All intermediate
// files live in the per-job workspace; the final artifact lives in the
// shared output directory and survives workspace removal.
type Job struct {
	WorkflowID  string
	VariantName string

	Workspace     string
	SourceVideo   string
	SourceAudio   string
	SpeedAudio    string
	FilteredVideo string
	OutputPath    string
}

// NewJob lays out all job paths under the given workspace. The output
// artifact name is derived from the (workflowID, variant) tuple, so two
// runs with the identical tuple overwrite one another (last writer wins).
func NewJob(workflowID, variantName, workspace, outputDir string) *Job {
	return &Job{
		WorkflowID:    workflowID,
		VariantName:   variantName,
		Workspace:     workspace,
		SourceVideo:   filepath.Join(workspace, "source_video.mp4"),
		SourceAudio:   filepath.Join(workspace, "source_audio.mp3"),
		SpeedAudio:    filepath.Join(workspace, "audio_speed.mp3"),
		FilteredVideo: filepath.Join(workspace, "video_filtered.mp4"),
		OutputPath:    filepath.Join(outputDir, OutputFilename(workflowID, variantName)),
	}
}

// OutputFilename is the shared-output-area name for a job's artifact.
func OutputFilename(workflowID, variantName string) string {
	return workflowID + "_" + variantName + ".mp4"
}

// JobResult is the success record of a completed job.
type JobResult struct {
	Variant     string
	OutputPath  string
	OutputFile  string
	FileSize    int64
	Checksum    string
	CompletedAt time.Time
}

// JobRecord is one row of persisted job history, success or failure.
type JobRecord struct {
	ID         string
	WorkflowID string
	Variant    string
	Status     string
	Error      string
	OutputPath string
	FileSize   int64
	Checksum   string
	DurationMs int64
	CreatedAt  time.Time
}

const (
	JobStatusSuccess = "success"
	JobStatusFailed  = "failed"
)
