package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/tanq16/rangedl/internal/utils"
)

// streamFallback downloads the whole body over one connection into a
// fresh file. It is used when the size is unknown and never resumes.
func (e *Engine) streamFallback(ctx context.Context, task DownloadTask, logger zerolog.Logger) (uint64, error) {
	log := utils.ComponentLogger(logger, "downloader/fallback")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, task.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("error creating GET request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("error executing GET request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	outFile, err := os.Create(task.TargetPath)
	if err != nil {
		return 0, fmt.Errorf("error creating output file: %w", err)
	}
	defer outFile.Close()

	e.progress.SetTotal(0)
	e.progress.SetMessage("Downloading")
	var written uint64
	buffer := make([]byte, 32*1024)
	for {
		bytesRead, readErr := resp.Body.Read(buffer)
		if bytesRead > 0 {
			if err := e.waitBandwidth(ctx, bytesRead); err != nil {
				return written, err
			}
			if _, err := outFile.Write(buffer[:bytesRead]); err != nil {
				return written, fmt.Errorf("error writing to output file: %w", err)
			}
			written += uint64(bytesRead)
			e.progress.AddDownloaded(uint64(bytesRead))
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return written, fmt.Errorf("error reading response body: %w", readErr)
		}
	}
	if err := outFile.Sync(); err != nil {
		return written, fmt.Errorf("error syncing output file: %w", err)
	}
	log.Debug().Uint64("written", written).Msg("Fallback stream finished")
	return written, nil
}
