package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

func GetRandomUserAgent() string {
	return userAgents[time.Now().UnixNano()%int64(len(userAgents))]
}

func ParseHeaderArgs(headers []string) map[string]string {
	result := make(map[string]string)
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			result[key] = value
		}
	}
	return result
}

// FormatBytes renders a byte count with IEC units (e.g. "1.5 MiB").
func FormatBytes(bytes uint64) string {
	return humanize.IBytes(bytes)
}

// FormatSpeed renders a rate in bytes per second. The unit switches only
// once the rate is strictly above 1024 (KB/s) or 1048576 (MB/s).
func FormatSpeed(bytesPerSec float64) string {
	switch {
	case bytesPerSec > 1_048_576:
		return fmt.Sprintf("%.2f MB/s", bytesPerSec/1_048_576)
	case bytesPerSec > 1024:
		return fmt.Sprintf("%.2f KB/s", bytesPerSec/1024)
	default:
		return fmt.Sprintf("%.2f B/s", bytesPerSec)
	}
}

// Throughput formats the average rate of downloaded bytes over elapsed.
func Throughput(downloaded uint64, elapsed time.Duration) string {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return "0 B/s"
	}
	return FormatSpeed(float64(downloaded) / secs)
}
