package downloader

import (
	"fmt"
	"time"
)

type DownloadTask struct {
	URL        string
	TargetPath string
	ChunkSize  uint64
}

type Mode string

const (
	ModeResume         Mode = "resume"
	ModeRefuseIfExists Mode = "refuse-if-exists"
)

type Options struct {
	Workers        int // 0 starts one worker per chunk
	Mode           Mode
	Strict         bool   // surface chunk failures as ErrIncomplete
	BandwidthLimit uint64 // bytes per second shared by all connections, 0 disables
}

// ChunkRange is an inclusive byte range of the remote resource.
type ChunkRange struct {
	ID    int
	Start uint64
	End   uint64
}

func (r ChunkRange) Len() uint64 {
	return r.End - r.Start + 1
}

func (r ChunkRange) Header() string {
	return fmt.Sprintf("bytes=%d-%d", r.Start, r.End)
}

func (r ChunkRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

type ChunkResult struct {
	Range   ChunkRange
	Written uint64
	Err     error
}

type State int

const (
	StateProbing State = iota
	StateRanged
	StateFallback
	StateFinalizing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateProbing:
		return "probing"
	case StateRanged:
		return "ranged"
	case StateFallback:
		return "fallback"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Result summarizes one Download call. Path is StateRanged or StateFallback.
type Result struct {
	ID            string
	Path          State
	TotalSize     uint64 // 0 when the size was unknown
	ExistingBytes uint64
	Written       uint64
	Chunks        []ChunkResult
	Elapsed       time.Duration
}

// Failed returns the chunks that did not complete.
func (r Result) Failed() []ChunkResult {
	var failed []ChunkResult
	for _, c := range r.Chunks {
		if c.Err != nil {
			failed = append(failed, c)
		}
	}
	return failed
}
