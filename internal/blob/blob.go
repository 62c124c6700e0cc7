// Package blob fetches attachment binaries from the remote blob store by
// storage path, with a hard byte ceiling so an offline-to-online transition
// cannot balloon memory on oversized files.
package blob

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// DownloadError is a recoverable per-attachment failure: oversized,
// not-found or transient. It never corrupts the attachment's metadata row
// and the download can be retried manually.
type DownloadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DownloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("download %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("download %s: %s", e.Path, e.Reason)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// Fetcher retrieves a binary object by storage path, bounded by maxBytes
type Fetcher interface {
	Fetch(path string, maxBytes int64) ([]byte, error)
}

// HTTPFetcher fetches blobs from a base URL; the storage path is appended
// as the request path.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPFetcher creates a fetcher against the blob store base URL
func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Fetch downloads one object. Reading stops at maxBytes+1: anything larger
// is rejected without buffering the rest.
func (f *HTTPFetcher) Fetch(path string, maxBytes int64) ([]byte, error) {
	// Storage paths are server-assigned and hierarchical; append verbatim
	resp, err := f.Client.Get(f.BaseURL + "/" + path)
	if err != nil {
		return nil, &DownloadError{Path: path, Reason: "fetch failed", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &DownloadError{Path: path, Reason: "object not found"}
	case resp.StatusCode != http.StatusOK:
		return nil, &DownloadError{Path: path, Reason: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, &DownloadError{Path: path, Reason: "read failed", Err: err}
	}
	if int64(len(data)) > maxBytes {
		return nil, &DownloadError{Path: path, Reason: fmt.Sprintf("exceeds %d byte limit", maxBytes)}
	}
	return data, nil
}
