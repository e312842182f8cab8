package mocklogger

import (
	"context"
	"log/slog"
	"sync"
)

// Entry is one captured log record with its attributes flattened to strings.
type Entry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// MockHandler is a slog.Handler that records everything logged through it.
// Handlers derived through WithAttrs share the record list with their parent.
type MockHandler struct {
	mu      *sync.Mutex
	entries *[]Entry
	attrs   []slog.Attr
}

func NewMockHandler() *MockHandler {
	return &MockHandler{mu: &sync.Mutex{}, entries: &[]Entry{}}
}

// Enabled implements slog.Handler.
func (h *MockHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// Handle implements slog.Handler.
func (h *MockHandler) Handle(_ context.Context, r slog.Record) error {
	e := Entry{Level: r.Level, Message: r.Message, Attrs: make(map[string]string)}
	for _, a := range h.attrs {
		e.Attrs[a.Key] = a.Value.String()
	}
	r.Attrs(func(a slog.Attr) bool {
		e.Attrs[a.Key] = a.Value.String()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	*h.entries = append(*h.entries, e)
	return nil
}

// WithAttrs implements slog.Handler.
func (h *MockHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &MockHandler{mu: h.mu, entries: h.entries, attrs: merged}
}

// WithGroup implements slog.Handler. Groups are ignored.
func (h *MockHandler) WithGroup(_ string) slog.Handler {
	return h
}

// Entries returns a copy of everything logged so far.
func (h *MockHandler) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Entry, len(*h.entries))
	copy(out, *h.entries)
	return out
}

// Messages returns the messages logged at level.
func (h *MockHandler) Messages(level slog.Level) []string {
	var out []string
	for _, e := range h.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// NewMockLogger creates a logger backed by a fresh MockHandler.
func NewMockLogger() (*slog.Logger, *MockHandler) {
	h := NewMockHandler()
	return slog.New(h), h
}
