package ui

import (
	"io"
)

// ConditionalWriter writes to the underlying writer only while enabled.
// The CLI routes log output through one of these so diagnostic logging
// stays hidden unless --verbose is set.
type ConditionalWriter struct {
	writer  io.Writer
	enabled bool
}

// NewConditionalWriter creates a writer that only writes when enabled.
func NewConditionalWriter(writer io.Writer, enabled bool) *ConditionalWriter {
	return &ConditionalWriter{
		writer:  writer,
		enabled: enabled,
	}
}

// Write implements io.Writer. Disabled writes are discarded but still
// reported as successful so logrus never sees an error.
func (w *ConditionalWriter) Write(p []byte) (n int, err error) {
	if !w.enabled {
		return len(p), nil
	}

	return w.writer.Write(p)
}

// SetEnabled enables or disables writing.
func (w *ConditionalWriter) SetEnabled(enabled bool) {
	w.enabled = enabled
}
