package log

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func sampleEvent() Event {
	return Event{
		Timestamp:    time.Now().UTC(),
		SessionID:    "3f1c9a70-0000-0000-0000-000000000001",
		Category:     CategoryCommand,
		GatewayModel: "lumi.gateway.v3",
		SID:          "lumi.158d0001234567",
		Command:      "get_device_prop",
		Property:     "voltage",
	}
}

func TestEventEncodeDecode(t *testing.T) {
	event := sampleEvent()

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.SessionID != event.SessionID {
		t.Errorf("session id mismatch: %q", decoded.SessionID)
	}
	if decoded.Category != CategoryCommand {
		t.Errorf("category mismatch: %v", decoded.Category)
	}
	if decoded.Command != "get_device_prop" {
		t.Errorf("command mismatch: %q", decoded.Command)
	}
	if !decoded.Timestamp.Equal(event.Timestamp) {
		t.Errorf("timestamp mismatch: %v vs %v", decoded.Timestamp, event.Timestamp)
	}
}

func TestCategoryString(t *testing.T) {
	cases := map[Category]string{
		CategoryCommand:      "COMMAND",
		CategoryPush:         "PUSH",
		CategorySubscription: "SUBSCRIPTION",
		CategoryWarning:      "WARNING",
		CategoryError:        "ERROR",
		Category(99):         "UNKNOWN",
	}
	for c, want := range cases {
		if c.String() != want {
			t.Errorf("Category(%d).String() = %q, want %q", c, c.String(), want)
		}
	}
}

func TestFileLoggerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.zlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	first := sampleEvent()
	second := sampleEvent()
	second.Category = CategoryPush
	second.Action = "motion"

	logger.Log(first)
	logger.Log(second)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Log after close is a no-op.
	logger.Log(sampleEvent())

	events, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[1].Action != "motion" {
		t.Errorf("unexpected second event: %+v", events[1])
	}
}

func TestFileLoggerRecordsVisibleBeforeClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.zlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	logger.Log(sampleEvent())

	// A reader following a live capture must see each record as it is
	// written, not only after shutdown.
	events, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event before close, got %d", len(events))
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.zlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				logger.Log(sampleEvent())
			}
		}()
	}
	wg.Wait()
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	events, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 200 {
		t.Errorf("expected 200 events, got %d", len(events))
	}
}

func TestReadFiltered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.zlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	command := sampleEvent()
	pushed := sampleEvent()
	pushed.Category = CategoryPush
	pushed.SID = "lumi.158d0007654321"
	logger.Log(command)
	logger.Log(pushed)
	logger.Close()

	category := CategoryPush
	events, err := ReadFiltered(path, &Filter{Category: &category})
	if err != nil {
		t.Fatalf("ReadFiltered failed: %v", err)
	}
	if len(events) != 1 || events[0].SID != "lumi.158d0007654321" {
		t.Errorf("unexpected filtered events: %+v", events)
	}

	events, err = ReadFiltered(path, &Filter{SID: "nope"})
	if err != nil {
		t.Fatalf("ReadFiltered failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestReaderEOF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.zlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Log(sampleEvent())
	logger.Close()

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	if _, err := r.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	event := sampleEvent()
	event.Category = CategoryError
	event.Err = "transport unavailable"
	adapter.Log(event)

	out := buf.String()
	if !strings.Contains(out, "level=ERROR") {
		t.Errorf("expected error level, got: %s", out)
	}
	if !strings.Contains(out, "transport unavailable") {
		t.Errorf("expected error text, got: %s", out)
	}
	if !strings.Contains(out, "lumi.158d0001234567") {
		t.Errorf("expected sid, got: %s", out)
	}
}

func TestMultiLogger(t *testing.T) {
	var a, b recordingLogger
	multi := NewMultiLogger(&a, &b)
	multi.Log(sampleEvent())

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("expected both loggers to receive the event: %d, %d", len(a.events), len(b.events))
	}
}

type recordingLogger struct {
	mu     sync.Mutex
	events []Event
}

func (l *recordingLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}
