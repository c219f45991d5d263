package logger

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockLogger records log entries in memory for assertions in tests.
type MockLogger struct {
	mu      *sync.Mutex
	entries *[]MockEntry
	fields  []Field
	level   Level
}

// MockEntry stores a single log emission.
type MockEntry struct {
	Level   Level
	Message string
	Fields  []Field
}

// NewMockLogger creates a MockLogger that records every level.
func NewMockLogger() *MockLogger {
	return &MockLogger{
		mu:      &sync.Mutex{},
		entries: &[]MockEntry{},
		level:   LevelDebug,
	}
}

func (m *MockLogger) Debug(format string, args ...interface{}) {
	m.record(LevelDebug, fmt.Sprintf(format, args...), nil)
}

func (m *MockLogger) Info(format string, args ...interface{}) {
	m.record(LevelInfo, fmt.Sprintf(format, args...), nil)
}

func (m *MockLogger) Warn(format string, args ...interface{}) {
	m.record(LevelWarn, fmt.Sprintf(format, args...), nil)
}

func (m *MockLogger) Error(format string, args ...interface{}) {
	m.record(LevelError, fmt.Sprintf(format, args...), nil)
}

func (m *MockLogger) DebugContext(_ context.Context, msg string, fields ...Field) {
	m.record(LevelDebug, msg, fields)
}

func (m *MockLogger) InfoContext(_ context.Context, msg string, fields ...Field) {
	m.record(LevelInfo, msg, fields)
}

func (m *MockLogger) WarnContext(_ context.Context, msg string, fields ...Field) {
	m.record(LevelWarn, msg, fields)
}

func (m *MockLogger) ErrorContext(_ context.Context, msg string, fields ...Field) {
	m.record(LevelError, msg, fields)
}

// With returns a child that records into the same entry list.
func (m *MockLogger) With(fields ...Field) Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &MockLogger{
		mu:      m.mu,
		entries: m.entries,
		fields:  append(append([]Field{}, m.fields...), fields...),
		level:   m.level,
	}
}

func (m *MockLogger) SetLevel(level Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = level
}

func (m *MockLogger) GetLevel() Level {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

func (m *MockLogger) record(level Level, msg string, fields []Field) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if level < m.level {
		return
	}
	*m.entries = append(*m.entries, MockEntry{
		Level:   level,
		Message: msg,
		Fields:  append(append([]Field{}, m.fields...), fields...),
	})
}

// GetEntries returns a copy of all stored entries.
func (m *MockLogger) GetEntries() []MockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockEntry(nil), *m.entries...)
}

// HasEntry reports whether an entry with the provided level contains the substring.
func (m *MockLogger) HasEntry(level Level, substring string) bool {
	for _, entry := range m.GetEntries() {
		if entry.Level == level && strings.Contains(entry.Message, substring) {
			return true
		}
	}
	return false
}

// CountEntries counts entries recorded with the supplied level.
func (m *MockLogger) CountEntries(level Level) int {
	count := 0
	for _, entry := range m.GetEntries() {
		if entry.Level == level {
			count++
		}
	}
	return count
}

// Reset clears all stored entries.
func (m *MockLogger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.entries = nil
}
