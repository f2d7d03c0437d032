package downloader

import (
	"context"

	"golang.org/x/time/rate"
)

const bandwidthSlice = 16 * 1024

func newBandwidthLimiter(bytesPerSec uint64) *rate.Limiter {
	if bytesPerSec == 0 {
		return nil
	}
	burst := max(int(bytesPerSec), bandwidthSlice)
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// waitBandwidth blocks until n bytes may pass the shared limiter.
func (e *Engine) waitBandwidth(ctx context.Context, n int) error {
	if e.limiter == nil {
		return nil
	}
	for n > 0 {
		step := min(n, bandwidthSlice)
		if err := e.limiter.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}
