package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tanq16/rangedl/internal/utils"
)

// progressState is the aggregate byte position shared by all workers,
// including bytes that were already on disk when the download started.
type progressState struct {
	position atomic.Uint64
	start    time.Time
}

func (p *progressState) add(n uint64) uint64 {
	return p.position.Add(n)
}

func (p *progressState) throughput(pos uint64) string {
	return utils.Throughput(pos, time.Since(p.start))
}

// downloadChunk makes a single attempt at one range. Failures are logged
// and returned in the result; siblings are never affected.
func (e *Engine) downloadChunk(ctx context.Context, url string, r ChunkRange, sink *FileSink, prog *progressState, logger zerolog.Logger) ChunkResult {
	log := logger.With().Int("chunk", r.ID).Str("range", r.String()).Logger()
	res := ChunkResult{Range: r}
	fail := func(err error) ChunkResult {
		res.Err = err
		log.Error().Err(err).Uint64("written", res.Written).Msg("Chunk failed")
		return res
	}

	log.Debug().Msg("Downloading chunk")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fail(fmt.Errorf("error creating GET request: %w", err))
	}
	req.Header.Set("Range", r.Header())
	req.Header.Set("Connection", "keep-alive")
	resp, err := e.client.Do(req)
	if err != nil {
		return fail(fmt.Errorf("request failed for range %s: %w", r, err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusPartialContent:
	case http.StatusOK:
		// a 200 is only safe when the body is exactly the requested slice
		if resp.ContentLength != int64(r.Len()) {
			return fail(fmt.Errorf("%w: status 200 with %d bytes for a %d-byte range", ErrRangeIgnored, resp.ContentLength, r.Len()))
		}
	default:
		return fail(&StatusError{Code: resp.StatusCode, Status: resp.Status})
	}

	body := io.LimitReader(resp.Body, int64(r.Len()))
	buffer := make([]byte, 32*1024)
	for {
		n, readErr := body.Read(buffer)
		if n > 0 {
			if err := e.waitBandwidth(ctx, n); err != nil {
				return fail(err)
			}
			if err := sink.WriteAt(r.Start+res.Written, buffer[:n]); err != nil {
				return fail(err)
			}
			res.Written += uint64(n)
			pos := prog.add(uint64(n))
			e.progress.AddDownloaded(uint64(n))
			e.progress.SetMessage("Speed: " + prog.throughput(pos))
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return fail(fmt.Errorf("error while downloading chunk %s: %w", r, readErr))
		}
	}
	if res.Written != r.Len() {
		return fail(fmt.Errorf("%w: got %d of %d bytes", ErrShortChunk, res.Written, r.Len()))
	}
	log.Debug().Msg("Chunk downloaded successfully")
	return res
}
