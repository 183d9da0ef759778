package notify

import (
	"context"
	"log/slog"
)

// Level defines the kind of a toast.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Toast is a transient user-visible message.
type Toast struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message,omitempty"`
}

// Notifier displays toasts to the user.
type Notifier interface {
	Notify(ctx context.Context, toast Toast) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, toast Toast) error

func (f NotifierFunc) Notify(ctx context.Context, toast Toast) error {
	return f(ctx, toast)
}

// LogNotifier writes toasts to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default().
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{Logger: logger}
}

// Make sure we conform to the interface
var _ Notifier = (*LogNotifier)(nil)

// Notify logs the toast at a level matching its kind.
func (n *LogNotifier) Notify(ctx context.Context, toast Toast) error {
	level := slog.LevelInfo
	switch toast.Level {
	case LevelError:
		level = slog.LevelError
	case LevelWarning:
		level = slog.LevelWarn
	}
	n.Logger.Log(ctx, level, "toast", "level", string(toast.Level), "title", toast.Title, "message", toast.Message)
	return nil
}

// Multi fans a toast out to several notifiers.
// Every notifier is tried; the first error is returned.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, toast Toast) error {
	var first error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, toast); err != nil && first == nil {
			first = err
		}
	}
	return first
}
