package log

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger captures gateway traffic to an append-only CBOR file. One
// capture file may span several gateway sessions; the session id on each
// record keeps them apart. Records are written unbuffered so a reader
// following the file sees each one as it is captured. Safe for concurrent
// use.
type FileLogger struct {
	mu sync.Mutex

	path    string
	file    *os.File
	encoder *cbor.Encoder
	closed  bool
}

// NewFileLogger opens path for capture, creating it when absent and
// appending otherwise.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{
		path:    path,
		file:    f,
		encoder: NewEncoder(f),
	}, nil
}

// Path returns the capture file path.
func (l *FileLogger) Path() string {
	return l.path
}

// Log appends one record. Encoding and write errors are swallowed:
// capture must never disturb gateway traffic. Records arriving after
// Close are dropped.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	_ = l.encoder.Encode(event)
}

// Close closes the capture file. Calling Close again is a no-op.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

var _ Logger = (*FileLogger)(nil)
