package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fatih/color"
)

// Formatter converts log entries to bytes.
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// Entry represents a single log record.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
	Fields  []Field
}

// TextFormatter renders "15:04:05 [LEVEL] message key=value" lines.
type TextFormatter struct {
	TimestampFormat  string
	DisableTimestamp bool
	EnableColors     bool
}

// Format converts the Entry into a textual representation.
func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	var buf bytes.Buffer

	if !f.DisableTimestamp {
		layout := f.TimestampFormat
		if layout == "" {
			layout = "15:04:05"
		}
		buf.WriteString(entry.Time.Format(layout))
		buf.WriteByte(' ')
	}

	level := entry.Level.String()
	if c := levelColors[entry.Level]; f.EnableColors && c != nil {
		level = c.Sprint(level)
	}
	buf.WriteString("[")
	buf.WriteString(level)
	buf.WriteString("] ")
	buf.WriteString(entry.Message)

	faint := color.New(color.Faint)
	for _, field := range entry.Fields {
		text := fmt.Sprintf("%s=%v", field.Key, field.Value)
		if f.EnableColors {
			text = faint.Sprint(text)
		}
		buf.WriteByte(' ')
		buf.WriteString(text)
	}

	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// JSONFormatter renders log entries as one JSON object per line.
type JSONFormatter struct {
	TimestampFormat string
}

// Format converts the Entry into JSON.
func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	layout := f.TimestampFormat
	if layout == "" {
		layout = time.RFC3339
	}

	data := make(map[string]interface{}, len(entry.Fields)+3)
	for _, field := range entry.Fields {
		data[field.Key] = field.Value
	}
	data["time"] = entry.Time.Format(layout)
	data["level"] = entry.Level.String()
	data["msg"] = entry.Message

	out, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
