package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func TestLogReporterConcurrentAdds(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogReporter(zerolog.New(&buf), 0)
	r.SetTotal(1000)
	r.SetDownloaded(100)

	var wg sync.WaitGroup
	for i := 0; i < 9; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				r.AddDownloaded(10)
			}
		}()
	}
	wg.Wait()
	r.Done("Download complete")

	if got := r.Downloaded(); got != 1000 {
		t.Errorf("expected 1000 bytes, got %d", got)
	}
	if !strings.Contains(buf.String(), "Download complete") {
		t.Errorf("expected final message in log output, got %q", buf.String())
	}
}

func TestBarReporterUnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	r := NewBarReporter(&buf)
	r.AddDownloaded(512)
	r.SetMessage("Speed: 1.00 KB/s")
	r.Done("Download complete")
	if buf.Len() == 0 {
		t.Error("expected spinner output")
	}
}

func TestPrintHelpers(t *testing.T) {
	var buf bytes.Buffer
	prev := Out
	Out = &buf
	defer func() { Out = prev }()

	PrintSuccess("done")
	PrintWarning("careful")
	if !strings.Contains(buf.String(), "done") || !strings.Contains(buf.String(), "careful") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
