package port

import "context"

// AssetFetcher retrieves a remote resource into a local file, streaming
// the body so memory use is independent of payload size. On failure the
// destination file's content is undefined.
type AssetFetcher interface {
	Fetch(ctx context.Context, url, destPath string) error
}
