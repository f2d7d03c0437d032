package output

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/tanq16/rangedl/internal/utils"
)

// Reporter receives byte counts and status text from a running download.
// A total of 0 means the size is unknown. Implementations must be safe
// for concurrent use by chunk workers.
type Reporter interface {
	SetTotal(total uint64)
	SetDownloaded(downloaded uint64)
	AddDownloaded(delta uint64)
	SetMessage(msg string)
	Done(msg string)
}

// NewReporter picks a terminal bar when f is a TTY and falls back to
// periodic log lines otherwise.
func NewReporter(f *os.File, logger zerolog.Logger, disabled bool) Reporter {
	if disabled {
		return Noop{}
	}
	if term.IsTerminal(int(f.Fd())) {
		return NewBarReporter(f)
	}
	return NewLogReporter(logger, 2*time.Second)
}

type Noop struct{}

func (Noop) SetTotal(uint64)      {}
func (Noop) SetDownloaded(uint64) {}
func (Noop) AddDownloaded(uint64) {}
func (Noop) SetMessage(string)    {}
func (Noop) Done(string)          {}

type LogReporter struct {
	log      zerolog.Logger
	interval time.Duration

	mu         sync.Mutex
	total      uint64
	downloaded uint64
	message    string
	lastLog    time.Time
}

func NewLogReporter(logger zerolog.Logger, interval time.Duration) *LogReporter {
	return &LogReporter{
		log:      utils.ComponentLogger(logger, "output/progress"),
		interval: interval,
		lastLog:  time.Now(),
	}
}

func (r *LogReporter) SetTotal(total uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total = total
}

func (r *LogReporter) SetDownloaded(downloaded uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.downloaded = downloaded
}

func (r *LogReporter) AddDownloaded(delta uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.downloaded += delta
	if time.Since(r.lastLog) >= r.interval {
		r.emit(r.message)
		r.lastLog = time.Now()
	}
}

func (r *LogReporter) SetMessage(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.message = msg
}

func (r *LogReporter) Done(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emit(msg)
}

// Downloaded returns the byte count seen so far.
func (r *LogReporter) Downloaded() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.downloaded
}

func (r *LogReporter) emit(msg string) {
	ev := r.log.Info().Str("downloaded", utils.FormatBytes(r.downloaded))
	if r.total > 0 {
		ev = ev.Str("total", utils.FormatBytes(r.total)).
			Float64("percent", float64(r.downloaded)/float64(r.total)*100)
	}
	ev.Msg(msg)
}
