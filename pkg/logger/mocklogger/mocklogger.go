package mocklogger

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// MockHandler records every slog record it receives.
type MockHandler struct {
	mu       sync.Mutex
	messages []string
	levels   []slog.Level
}

// Enabled implements slog.Handler.
func (h *MockHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// Handle implements slog.Handler.
func (h *MockHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, r.Message)
	h.levels = append(h.levels, r.Level)
	return nil
}

// WithAttrs implements slog.Handler. Derived loggers share the recording.
func (h *MockHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

// WithGroup implements slog.Handler.
func (h *MockHandler) WithGroup(_ string) slog.Handler {
	return h
}

// Messages returns a copy of the recorded messages.
func (h *MockHandler) Messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.messages)
}

// Count returns how many records were logged at level.
func (h *MockHandler) Count(level slog.Level) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, l := range h.levels {
		if l == level {
			n++
		}
	}
	return n
}

// NewMockLogger creates a logger whose output is discarded into a recorder.
func NewMockLogger() *slog.Logger {
	logger, _ := NewRecorder()
	return logger
}

// NewRecorder returns a logger together with the handler recording it.
func NewRecorder() (*slog.Logger, *MockHandler) {
	h := &MockHandler{}
	return slog.New(h), h
}
