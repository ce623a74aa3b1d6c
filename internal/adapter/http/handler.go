package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/adapter/http/validation"
	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/domain"
	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/infrastructure/logger"
	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/infrastructure/metrics"
)

// maxMergeBodySize bounds the /merge request body; the payload is four
// short strings, anything larger is abuse.
const maxMergeBodySize = 1 << 20

// maxJobsLimit caps how much history one /jobs request can pull.
const maxJobsLimit = 500

type PipelineRunner interface {
	Run(ctx context.Context, req domain.JobRequest) (*domain.JobResult, *domain.PipelineError)
}

type EncoderProbe interface {
	Available(ctx context.Context) bool
}

type JobHistory interface {
	ListRecent(limit int) ([]*domain.JobRecord, error)
}

type Handlers struct {
	pipeline    PipelineRunner
	catalog     *domain.Catalog
	encoder     EncoderProbe
	history     JobHistory
	outputDir   string
	publicHost  string
	behindProxy bool
}

func NewHandlers(
	pipeline PipelineRunner,
	catalog *domain.Catalog,
	encoder EncoderProbe,
	history JobHistory,
	outputDir, publicHost string,
	behindProxy bool,
) *Handlers {
	return &Handlers{
		pipeline:    pipeline,
		catalog:     catalog,
		encoder:     encoder,
		history:     history,
		outputDir:   outputDir,
		publicHost:  publicHost,
		behindProxy: behindProxy,
	}
}

func (h *Handlers) Home() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "FFmpeg Video Processing API",
			"status":  "online",
			"endpoints": map[string]string{
				"health":   "/health",
				"merge":    "/merge (POST)",
				"variants": "/variants",
				"download": "/download/{filename}",
				"jobs":     "/jobs",
				"metrics":  "/metrics",
			},
		})
	}
}

func (h *Handlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":           "ok",
			"ffmpeg_available": h.encoder.Available(r.Context()),
			"timestamp":        time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func (h *Handlers) Variants() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profiles := h.catalog.List()
		names := make([]string, 0, len(profiles))
		details := make(map[string]domain.VariantProfile, len(profiles))
		for _, p := range profiles {
			names = append(names, p.Name)
			details[p.Name] = p
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"variants": names,
			"details":  details,
		})
	}
}

func (h *Handlers) Merge() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxMergeBodySize)

		var req domain.JobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if req.VideoURL == "" || req.AudioURL == "" || req.VariantName == "" || req.WorkflowID == "" {
			writeError(w, http.StatusBadRequest, "Missing required fields")
			return
		}
		if _, ok := h.catalog.Resolve(req.VariantName); !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown variant: %s", req.VariantName))
			return
		}

		result, perr := h.pipeline.Run(r.Context(), req)
		if perr != nil {
			status := http.StatusInternalServerError
			if perr.Client() {
				status = http.StatusBadRequest
			}
			writeError(w, status, perr.Message)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":       "success",
			"variant":      result.Variant,
			"output_file":  result.OutputPath,
			"download_url": h.downloadURL(r, result.OutputFile),
			"file_size":    result.FileSize,
			"checksum":     result.Checksum,
			"timestamp":    result.CompletedAt.Format(time.RFC3339),
		})
	}
}

func (h *Handlers) Download() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := r.PathValue("filename")
		if err := validation.ValidateArtifactName(filename); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid filename")
			return
		}

		path := filepath.Join(h.outputDir, filename)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}

		metrics.DownloadsServed.Inc()
		w.Header().Set("Content-Disposition", validation.ContentDisposition(filename))
		http.ServeFile(w, r, path)
	}
}

func (h *Handlers) Jobs() http.HandlerFunc {
	type jobView struct {
		ID         string    `json:"id"`
		WorkflowID string    `json:"workflow_id"`
		Variant    string    `json:"variant"`
		Status     string    `json:"status"`
		Error      string    `json:"error,omitempty"`
		OutputPath string    `json:"output_file,omitempty"`
		FileSize   int64     `json:"file_size,omitempty"`
		Checksum   string    `json:"checksum,omitempty"`
		DurationMs int64     `json:"duration_ms"`
		CreatedAt  time.Time `json:"created_at"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if h.history == nil {
			writeJSON(w, http.StatusOK, map[string]any{"jobs": []jobView{}})
			return
		}

		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				writeError(w, http.StatusBadRequest, "Invalid limit")
				return
			}
			limit = min(parsed, maxJobsLimit)
		}

		records, err := h.history.ListRecent(limit)
		if err != nil {
			logger.Error.Printf("list job history: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to list jobs")
			return
		}

		views := make([]jobView, 0, len(records))
		for _, rec := range records {
			views = append(views, jobView{
				ID:         rec.ID,
				WorkflowID: rec.WorkflowID,
				Variant:    rec.Variant,
				Status:     rec.Status,
				Error:      rec.Error,
				OutputPath: rec.OutputPath,
				FileSize:   rec.FileSize,
				Checksum:   rec.Checksum,
				DurationMs: rec.DurationMs,
				CreatedAt:  rec.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"jobs": views})
	}
}

func (h *Handlers) downloadURL(r *http.Request, filename string) string {
	scheme := "http"
	if r.TLS != nil || h.behindProxy || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	host := h.publicHost
	if host == "" {
		host = r.Host
	}
	return fmt.Sprintf("%s://%s/download/%s", scheme, host, url.PathEscape(filename))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
