package downloader

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// FileSink is the single output handle shared by all chunk workers.
// The lock covers exactly one seek+write; network reads happen outside it.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
}

// OpenFileSink opens path for random writes, creating it if needed and
// keeping any bytes already present. No O_APPEND: writes must land at the
// seeked offset.
func OpenFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening output file: %w", err)
	}
	return &FileSink{file: f}, nil
}

func (s *FileSink) WriteAt(offset uint64, p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Seek(int64(offset), io.SeekStart); err != nil {
		return fmt.Errorf("error seeking to %d: %w", offset, err)
	}
	if _, err := s.file.Write(p); err != nil {
		return fmt.Errorf("error writing at %d: %w", offset, err)
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.file.Sync(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
