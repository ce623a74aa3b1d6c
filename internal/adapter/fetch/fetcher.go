package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/port"
)

// downloadTimeout bounds the total wait for one asset, connection
// included, matching the per-stage budget of the pipeline.
const downloadTimeout = 300 * time.Second

// copyBufferSize is the fixed chunk size used when streaming the body
// to disk, keeping memory use independent of payload size.
const copyBufferSize = 8 * 1024

type Fetcher struct {
	client *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: downloadTimeout},
	}
}

// Fetch streams the resource at url into destPath. Any non-success
// status, connection failure, or timeout is returned as an error; the
// destination file's content is undefined after a failure.
func (f *Fetcher) Fetch(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("download: unexpected status %d", resp.StatusCode)
	}

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer dest.Close() //nolint:errcheck

	buf := make([]byte, copyBufferSize)
	if _, err := io.CopyBuffer(dest, resp.Body, buf); err != nil {
		return fmt.Errorf("write body: %w", err)
	}

	return nil
}

var _ port.AssetFetcher = (*Fetcher)(nil)
