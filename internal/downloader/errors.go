package downloader

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyURL         = errors.New("url is required")
	ErrEmptyTarget      = errors.New("target path is required")
	ErrInvalidChunkSize = errors.New("chunk size must be positive")
	ErrTargetExists     = errors.New("target file already exists")
	ErrRangeIgnored     = errors.New("server ignored the requested range")
	ErrShortChunk       = errors.New("chunk body ended early")
	ErrIncomplete       = errors.New("download incomplete")
)

var errNoContentLength = errors.New("response has no Content-Length")

type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d (%s)", e.Code, e.Status)
}
