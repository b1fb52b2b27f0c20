package logger

// Noop is a logger that discards everything. Useful in tests and as a safe
// default when no logger is injected.
type Noop struct{}

// NewNoop creates a no-op logger.
func NewNoop() *Noop {
	return &Noop{}
}

// Debug does nothing.
func (n *Noop) Debug(string, ...any) {}

// Info does nothing.
func (n *Noop) Info(string, ...any) {}

// Warn does nothing.
func (n *Noop) Warn(string, ...any) {}

// Error does nothing.
func (n *Noop) Error(string, ...any) {}

// With returns the same no-op logger.
func (n *Noop) With(...any) Interface { return n }
