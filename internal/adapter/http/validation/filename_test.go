package validation

import (
	"errors"
	"testing"
)

func TestValidateArtifactName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "generated artifact name",
			input:   "wf1_josh.mp4",
			wantErr: nil,
		},
		{
			name:    "name with spaces",
			input:   "my workflow_pablo.mp4",
			wantErr: nil,
		},
		{
			name:    "unicode name",
			input:   "工作流_josh.mp4",
			wantErr: nil,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: ErrEmptyFilename,
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: ErrEmptyFilename,
		},
		{
			name:    "dot",
			input:   ".",
			wantErr: ErrUnsafeFilename,
		},
		{
			name:    "dotdot",
			input:   "..",
			wantErr: ErrUnsafeFilename,
		},
		{
			name:    "forward slash traversal",
			input:   "../../etc/passwd",
			wantErr: ErrUnsafeFilename,
		},
		{
			name:    "backslash traversal",
			input:   `..\..\secrets.mp4`,
			wantErr: ErrUnsafeFilename,
		},
		{
			name:    "null byte",
			input:   "file\x00.mp4",
			wantErr: ErrUnsafeFilename,
		},
		{
			name:    "newline",
			input:   "file\n.mp4",
			wantErr: ErrUnsafeFilename,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArtifactName(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateArtifactName(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestContentDisposition(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain filename",
			input:    "wf1_josh.mp4",
			expected: `attachment; filename="wf1_josh.mp4"`,
		},
		{
			name:     "quote replaced",
			input:    `a"b.mp4`,
			expected: `attachment; filename="a_b.mp4"`,
		},
		{
			name:     "control char replaced",
			input:    "a\x01b.mp4",
			expected: `attachment; filename="a_b.mp4"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContentDisposition(tt.input); got != tt.expected {
				t.Errorf("ContentDisposition(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
