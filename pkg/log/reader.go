package log

import (
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Filter specifies criteria for filtering captured events.
// Empty/nil fields match all events for that criterion.
type Filter struct {
	// SessionID filters by exact gateway session match.
	SessionID string

	// SID filters by sub-device identifier.
	SID string

	// Category filters by event category.
	Category *Category

	// TimeStart filters events at or after this time.
	TimeStart *time.Time

	// TimeEnd filters events before this time.
	TimeEnd *time.Time
}

// matches returns true if the event matches all filter criteria.
func (f *Filter) matches(event Event) bool {
	if f.SessionID != "" && event.SessionID != f.SessionID {
		return false
	}
	if f.SID != "" && event.SID != f.SID {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	if f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd) {
		return false
	}
	return true
}

// Reader reads captured events from a CBOR-encoded file.
// It provides an iterator interface for streaming large files.
type Reader struct {
	file    *os.File
	decoder *cbor.Decoder
}

// NewReader opens a capture file for reading.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{
		file:    f,
		decoder: NewDecoder(f),
	}, nil
}

// Next returns the next event from the file.
// Returns io.EOF when the end of the file is reached.
func (r *Reader) Next() (Event, error) {
	var event Event
	if err := r.decoder.Decode(&event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// ReadAll reads every event from a capture file.
func ReadAll(path string) ([]Event, error) {
	return ReadFiltered(path, nil)
}

// ReadFiltered reads events from a capture file, keeping only those that
// match the filter. A nil filter matches everything.
func ReadFiltered(path string, filter *Filter) ([]Event, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var events []Event
	for {
		event, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return events, err
		}
		if filter == nil || filter.matches(event) {
			events = append(events, event)
		}
	}
	return events, nil
}
