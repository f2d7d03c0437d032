package downloader

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/tanq16/rangedl/internal/utils"
)

// ProbeSize returns the remote content length, trying HEAD first and
// then GET. It never fails: 0 means the size could not be determined.
func ProbeSize(ctx context.Context, client utils.HTTPDoer, url string, logger zerolog.Logger) uint64 {
	log := utils.ComponentLogger(logger, "downloader/probe")
	size, err := contentLength(ctx, client, http.MethodHead, url)
	if err == nil && size > 0 {
		return size
	}
	log.Warn().Err(err).Msg("HEAD request failed, trying GET request to determine file size")

	size, err = contentLength(ctx, client, http.MethodGet, url)
	if err != nil {
		log.Warn().Err(err).Msg("GET request did not report a file size")
		return 0
	}
	return size
}

func contentLength(ctx context.Context, client utils.HTTPDoer, method, url string) (uint64, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("error creating %s request: %w", method, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("error executing %s request: %w", method, err)
	}
	// a GET body is never read here; closing it drops the connection
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	if resp.ContentLength < 0 {
		return 0, errNoContentLength
	}
	return uint64(resp.ContentLength), nil
}

// LocateResume returns the size of an existing partial file at path, or 0
// when nothing is there. The existing bytes are trusted as-is.
func LocateResume(path string) (uint64, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("error checking existing file: %w", err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("target %s is a directory", path)
	}
	return uint64(info.Size()), nil
}
