// Package shutdown runs ordered cleanup hooks when the docsite server stops.
package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/actionhero/docsite/pkg/logging"
)

// Shutdown errors.
var (
	ErrShutdownTimeout = errors.New("shutdown timed out")
	ErrAlreadyClosed   = errors.New("shutdown handler already closed")
)

// Hook priorities. Lower runs earlier.
const (
	PriorityHTTP      = 100
	PriorityWebSocket = 200
	PriorityLast      = 1000
)

// Hook is one cleanup step.
type Hook struct {
	Name     string
	Priority int
	Fn       func(ctx context.Context) error
}

// Config configures a Handler.
type Config struct {
	// Timeout bounds the whole shutdown.
	Timeout time.Duration

	// Signals trigger shutdown in Wait.
	Signals []os.Signal

	Logger logging.Logger
}

// DefaultConfig returns a 30s timeout on SIGINT and SIGTERM.
func DefaultConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		Signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
}

// Handler collects hooks and runs them once.
type Handler struct {
	config *Config
	logger logging.Logger
	hooks  []Hook
	done   chan struct{}
	closed bool
	mu     sync.Mutex
}

// NewHandler creates a handler. A nil config takes the defaults.
func NewHandler(config *Config) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Handler{
		config: config,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Register adds a hook.
func (h *Handler) Register(hook Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// RegisterFunc registers fn as a hook.
func (h *Handler) RegisterFunc(name string, priority int, fn func(ctx context.Context) error) {
	h.Register(Hook{Name: name, Priority: priority, Fn: fn})
}

// Wait blocks until a configured signal arrives or ctx is cancelled, then
// runs the hooks. It returns nil without running hooks if Shutdown was
// already called elsewhere.
func (h *Handler) Wait(ctx context.Context) error {
	sigCtx, stop := signal.NotifyContext(ctx, h.config.Signals...)
	defer stop()

	select {
	case <-sigCtx.Done():
	case <-h.done:
		return nil
	}
	h.logger.Info("shutdown requested")
	return h.Shutdown()
}

// Shutdown runs every hook in priority order. Hooks with equal priority
// run in registration order.
func (h *Handler) Shutdown() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrAlreadyClosed
	}
	h.closed = true
	close(h.done)

	hooks := make([]Hook, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	sort.SliceStable(hooks, func(i, j int) bool {
		return hooks[i].Priority < hooks[j].Priority
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var errs []error
	for _, hook := range hooks {
		start := time.Now()
		err := hook.Fn(ctx)

		fields := []logging.Field{
			logging.String("hook", hook.Name),
			logging.Duration("duration", time.Since(start)),
		}
		if err != nil {
			h.logger.Error("shutdown hook failed", append(fields, logging.Err(err))...)
			errs = append(errs, err)
		} else {
			h.logger.Debug("shutdown hook done", fields...)
		}

		if ctx.Err() != nil {
			return errors.Join(append(errs, ErrShutdownTimeout)...)
		}
	}

	return errors.Join(errs...)
}

// Done is closed once Shutdown starts.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

// IsClosed reports whether Shutdown has been called.
func (h *Handler) IsClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// HTTPServerHook wraps an http.Server Shutdown method.
func HTTPServerHook(name string, shutdownFn func(ctx context.Context) error) Hook {
	return Hook{Name: name, Priority: PriorityHTTP, Fn: shutdownFn}
}
