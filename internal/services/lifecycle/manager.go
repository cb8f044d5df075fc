package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
)

// CloseFunc releases one resource held by a command.
type CloseFunc func() error

type hook struct {
	name string
	fn   CloseFunc
}

// Manager releases a command's resources when it finishes and turns
// termination signals into context cancellation.
type Manager struct {
	logger *zap.Logger

	mu     sync.Mutex
	hooks  []hook
	closed bool
}

func New(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{logger: logger}
}

// Register adds a close hook. Hooks are executed in reverse order.
func (m *Manager) Register(name string, fn CloseFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook{name: name, fn: fn})
}

// Close runs every hook once, newest first, and joins their errors.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true

	var result error
	for i := len(m.hooks) - 1; i >= 0; i-- {
		h := m.hooks[i]
		if err := h.fn(); err != nil {
			m.logger.Error("close hook failed", zap.String("component", h.name), zap.Error(err))
			result = errors.Join(result, err)
			continue
		}
		m.logger.Debug("component closed", zap.String("component", h.name))
	}
	return result
}

// WithSignals returns a context canceled when SIGINT or SIGTERM arrives
// or when the returned cancel function is called.
func (m *Manager) WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
