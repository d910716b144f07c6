package logging

// MockLogger is a mock implementation of the Logger interface for testing.
// It captures log entries for verification in tests.
type MockLogger struct {
	Entries       []LogEntry
	pendingError  error
	pendingFields []Field
}

// LogEntry represents a single log entry captured by MockLogger.
type LogEntry struct {
	Level   string
	Message string
	Fields  []Field
	Error   error
}

// Debug logs a debug-level message with optional fields.
func (m *MockLogger) Debug(msg string, fields ...Field) {
	m.record("DEBUG", msg, fields)
}

// Info logs an info-level message with optional fields.
func (m *MockLogger) Info(msg string, fields ...Field) {
	m.record("INFO", msg, fields)
}

// Warn logs a warning-level message with optional fields.
func (m *MockLogger) Warn(msg string, fields ...Field) {
	m.record("WARN", msg, fields)
}

// Error logs an error-level message with optional fields.
func (m *MockLogger) Error(msg string, fields ...Field) {
	m.record("ERROR", msg, fields)
}

// WithError returns the same logger with a pending error attached to the next entry.
func (m *MockLogger) WithError(err error) Logger {
	m.pendingError = err
	return m
}

// WithField returns the same logger with a pending field attached to the next entry.
func (m *MockLogger) WithField(key string, value interface{}) Logger {
	m.pendingFields = append(m.pendingFields, Field{Key: key, Value: value})
	return m
}

// WithFields returns the same logger with pending fields attached to the next entry.
func (m *MockLogger) WithFields(fields ...Field) Logger {
	m.pendingFields = append(m.pendingFields, fields...)
	return m
}

// HasEntry reports whether an entry with the given level and message was logged.
func (m *MockLogger) HasEntry(level, msg string) bool {
	for _, e := range m.Entries {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}

func (m *MockLogger) record(level, msg string, fields []Field) {
	allFields := append(m.pendingFields, fields...)
	m.Entries = append(m.Entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  allFields,
		Error:   m.pendingError,
	})
	m.pendingError = nil
	m.pendingFields = nil
}
