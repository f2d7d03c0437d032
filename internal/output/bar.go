package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// BarReporter draws a byte progress bar, or a spinner when the total
// size is unknown. The bar is built on the first SetTotal call.
type BarReporter struct {
	w   io.Writer
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

func NewBarReporter(w io.Writer) *BarReporter {
	return &BarReporter{w: w}
}

func (b *BarReporter) SetTotal(total uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bar = b.newBar(total)
}

func (b *BarReporter) newBar(total uint64) *progressbar.ProgressBar {
	size := int64(total)
	if total == 0 {
		size = -1 // spinner
	}
	return progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionSetDescription("Downloading"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(b.w, "\n")
		}),
	)
}

func (b *BarReporter) current() *progressbar.ProgressBar {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar == nil {
		b.bar = b.newBar(0)
	}
	return b.bar
}

func (b *BarReporter) SetDownloaded(downloaded uint64) {
	_ = b.current().Set64(int64(downloaded))
}

func (b *BarReporter) AddDownloaded(delta uint64) {
	_ = b.current().Add64(int64(delta))
}

func (b *BarReporter) SetMessage(msg string) {
	b.current().Describe(msg)
}

func (b *BarReporter) Done(msg string) {
	bar := b.current()
	bar.Describe(msg)
	_ = bar.Finish()
}
