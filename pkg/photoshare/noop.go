package photoshare

import (
	"context"
	"log/slog"
	"sync"
)

// NoopEventSink is a no-operation implementation of EventSink
// Useful for production when you don't need event handling or for testing
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// PhotoCreated does nothing and returns nil
func (n *NoopEventSink) PhotoCreated(ctx context.Context, photo *Photo) error {
	return nil
}

// PhotoDeleted does nothing and returns nil
func (n *NoopEventSink) PhotoDeleted(ctx context.Context, photoID int64) error {
	return nil
}

// CommentAdded does nothing and returns nil
func (n *NoopEventSink) CommentAdded(ctx context.Context, comment *Comment) error {
	return nil
}

// LoggingEventSink is an event sink that logs events but takes no other action
// Useful for development and debugging
type LoggingEventSink struct {
	logger *slog.Logger
}

// NewLoggingEventSink creates a new logging event sink
func NewLoggingEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEventSink{logger: logger}
}

func (l *LoggingEventSink) PhotoCreated(ctx context.Context, photo *Photo) error {
	l.logger.Info("photo created", "photo_id", photo.ID, "title", photo.Title)
	return nil
}

func (l *LoggingEventSink) PhotoDeleted(ctx context.Context, photoID int64) error {
	l.logger.Info("photo deleted", "photo_id", photoID)
	return nil
}

func (l *LoggingEventSink) CommentAdded(ctx context.Context, comment *Comment) error {
	l.logger.Info("comment added", "comment_id", comment.ID, "photo_id", comment.PhotoID)
	return nil
}

// NoopJournal is a no-operation implementation of CleanupJournal. Failed
// blob deletes are only logged; the reconciler finds them by sweeping.
type NoopJournal struct{}

// NewNoopJournal creates a new no-operation cleanup journal
func NewNoopJournal() CleanupJournal {
	return &NoopJournal{}
}

// Record does nothing and returns nil
func (n *NoopJournal) Record(ctx context.Context, objectKey string) error {
	return nil
}

// Pending always returns no keys
func (n *NoopJournal) Pending(ctx context.Context) ([]string, error) {
	return nil, nil
}

// Remove does nothing and returns nil
func (n *NoopJournal) Remove(ctx context.Context, objectKey string) error {
	return nil
}

// MemoryJournal is an in-memory implementation of CleanupJournal for tests
// and single-process deployments.
type MemoryJournal struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewMemoryJournal creates a new in-memory cleanup journal
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{keys: make(map[string]struct{})}
}

func (m *MemoryJournal) Record(ctx context.Context, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[objectKey] = struct{}{}
	return nil
}

func (m *MemoryJournal) Pending(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.keys))
	for key := range m.keys {
		keys = append(keys, key)
	}
	return keys, nil
}

func (m *MemoryJournal) Remove(ctx context.Context, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, objectKey)
	return nil
}
