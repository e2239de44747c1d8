package log

// MultiLogger fans each record out to several loggers, typically a
// FileLogger for capture plus a SlogAdapter for the console.
type MultiLogger struct {
	sinks []Logger
}

// NewMultiLogger combines the given loggers. Nil entries are skipped.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.sinks = append(m.sinks, l)
		}
	}
	return m
}

// Log delivers the record to every sink in order.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.sinks {
		l.Log(event)
	}
}

var _ Logger = (*MultiLogger)(nil)
