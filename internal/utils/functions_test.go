package utils

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFormatSpeed(t *testing.T) {
	tests := []struct {
		bps      float64
		expected string
	}{
		{0, "0.00 B/s"},
		{500, "500.00 B/s"},
		{1024, "1024.00 B/s"},
		{2048, "2.00 KB/s"},
		{1_048_576, "1024.00 KB/s"},
		{5_242_880, "5.00 MB/s"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatSpeed(tt.bps); got != tt.expected {
				t.Errorf("FormatSpeed(%v) = %q, want %q", tt.bps, got, tt.expected)
			}
		})
	}
}

func TestThroughput(t *testing.T) {
	if got := Throughput(2048, time.Second); got != "2.00 KB/s" {
		t.Errorf("expected 2.00 KB/s, got %s", got)
	}
	if got := Throughput(2048, 0); got != "0 B/s" {
		t.Errorf("expected 0 B/s for zero elapsed, got %s", got)
	}
}

func TestParseHeaderArgs(t *testing.T) {
	got := ParseHeaderArgs([]string{"X-Trace: abc", "Accept:  */* ", "malformed"})
	if len(got) != 2 {
		t.Fatalf("expected 2 headers, got %d: %v", len(got), got)
	}
	if got["X-Trace"] != "abc" || got["Accept"] != "*/*" {
		t.Errorf("unexpected headers: %v", got)
	}
}

func TestClientSetsHeaders(t *testing.T) {
	var gotUA, gotTrace, gotRange string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotTrace = r.Header.Get("X-Trace")
		gotRange = r.Header.Get("Range")
	}))
	defer server.Close()

	client := NewRangeHTTPClient(HTTPClientConfig{Headers: map[string]string{"X-Trace": "abc", "Range": "bytes=0-1"}})
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	req.Header.Set("Range", "bytes=5-9")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()

	if gotUA != ToolUserAgent {
		t.Errorf("expected default user agent %q, got %q", ToolUserAgent, gotUA)
	}
	if gotTrace != "abc" {
		t.Errorf("expected X-Trace header, got %q", gotTrace)
	}
	if gotRange != "bytes=5-9" {
		t.Errorf("request Range header must win over configured headers, got %q", gotRange)
	}
}

func TestClientKeepsRequestUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client := NewRangeHTTPClient(HTTPClientConfig{UserAgent: "configured/1.0"})
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	req.Header.Set("User-Agent", "request/2.0")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()
	if gotUA != "request/2.0" {
		t.Errorf("request User-Agent must win over the configured one, got %q", gotUA)
	}

	req, _ = http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()
	if gotUA != "configured/1.0" {
		t.Errorf("expected configured user agent, got %q", gotUA)
	}
}

func TestClientTimeoutDoesNotCutSlowBody(t *testing.T) {
	part := bytes.Repeat([]byte{0x5A}, 1000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "4000")
		w.WriteHeader(http.StatusPartialContent)
		for i := 0; i < 4; i++ {
			w.Write(part)
			w.(http.Flusher).Flush()
			time.Sleep(150 * time.Millisecond)
		}
	}))
	defer server.Close()

	client := NewRangeHTTPClient(HTTPClientConfig{Timeout: 300 * time.Millisecond})
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("body read cut off after %d bytes: %v", len(body), err)
	}
	if len(body) != 4000 {
		t.Errorf("expected 4000 bytes, got %d", len(body))
	}
}

func TestClientTimeoutBoundsResponseHeaders(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewRangeHTTPClient(HTTPClientConfig{Timeout: 100 * time.Millisecond})
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := client.Do(req)
	if err == nil {
		resp.Body.Close()
		t.Fatal("expected a timeout waiting for response headers")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, false)
	logger.Debug().Msg("hidden")
	component := ComponentLogger(logger, "test/op")
	component.Info().Msg("visible")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug line written at info level")
	}
	if !strings.Contains(out, "visible") || !strings.Contains(out, "test/op") {
		t.Errorf("expected info line with op field, got %q", out)
	}
}
