package domain

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("resource not found")

// FailureKind classifies a pipeline failure for the HTTP boundary.
type FailureKind string

const (
	FailureDownload       FailureKind = "download_failed"
	FailureUnknownVariant FailureKind = "unknown_variant"
	FailureSpeedAdjust    FailureKind = "speed_adjustment_failed"
	FailureFilter         FailureKind = "filter_failed"
	FailureMerge          FailureKind = "merge_failed"
	FailureOutputMissing  FailureKind = "output_missing"
	FailureInternal       FailureKind = "internal_error"
)

// PipelineError is the single failure type a job can end in. Every stage
// failure is translated into one of the FailureKind values; the wrapped
// cause stays server-side and only Message crosses the HTTP boundary.
type PipelineError struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Client reports whether the failure maps to a client-visible 400 rather
// than a 500. Everything anticipated by the pipeline is a client error.
func (e *PipelineError) Client() bool {
	return e.Kind != FailureInternal
}

func NewPipelineError(kind FailureKind, message string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, Err: err}
}
