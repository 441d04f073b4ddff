package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/danielgatis/go-termdesk/metrics"
)

// ReturnPrefix marks operations whose result is pushed to the results
// channel.
const ReturnPrefix = "get_"

// reservedPrefix marks internal names that can never be registered.
const reservedPrefix = "_"

var (
	ErrInvalidName    = errors.New("invalid command name")
	ErrDuplicate      = errors.New("command already registered")
	ErrNilHandler     = errors.New("nil command handler")
	ErrUnknownCommand = errors.New("unknown command")
)

// Handler executes one command.
type Handler func(ctx context.Context, args Args) (any, error)

// Result is the outcome of a returns-value command.
type Result struct {
	Name  string
	Value any
	Err   error
}

// Returns reports whether name follows the returns-value convention.
func Returns(name string) bool {
	return strings.HasPrefix(name, ReturnPrefix)
}

// Server drains a Queue and applies each command to its registered
// handler. Drain must be called from a single goroutine.
type Server struct {
	mu       sync.RWMutex
	handlers map[string]Handler

	queue   *Queue
	results chan Result
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithResultCapacity bounds the results channel. The default matches the
// queue capacity.
func WithResultCapacity(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.results = make(chan Result, n)
		}
	}
}

// NewServer creates a server reading from q.
func NewServer(q *Queue, opts ...Option) *Server {
	s := &Server{
		handlers: make(map[string]Handler),
		queue:    q,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.results == nil {
		s.results = make(chan Result, q.Cap())
	}
	return s
}

// Register binds name to h.
func (s *Server) Register(name string, h Handler) error {
	if name == "" || strings.HasPrefix(name, reservedPrefix) || strings.ContainsAny(name, " \t\n/") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if h == nil {
		return fmt.Errorf("%w: %q", ErrNilHandler, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.handlers[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicate, name)
	}
	s.handlers[name] = h
	return nil
}

// MustRegister is Register that panics on error, for wiring at startup.
func (s *Server) MustRegister(name string, h Handler) {
	if err := s.Register(name, h); err != nil {
		panic(err)
	}
}

// Names returns the registered command names, sorted.
func (s *Server) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.handlers))
	for name := range s.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Queue returns the queue the server drains.
func (s *Server) Queue() *Queue { return s.queue }

// Results returns the channel of returns-value results, in call order.
func (s *Server) Results() <-chan Result { return s.results }

// Drain applies queued commands in order until the queue is empty or limit
// commands were applied (limit <= 0 means no limit). It never blocks and
// returns the number of commands taken off the queue.
func (s *Server) Drain(ctx context.Context, limit int) int {
	n := 0
	for limit <= 0 || n < limit {
		cmd, ok := s.queue.TryGet()
		if !ok {
			break
		}
		n++
		s.apply(ctx, cmd)
	}
	return n
}

func (s *Server) apply(ctx context.Context, cmd Command) {
	s.mu.RLock()
	h, ok := s.handlers[cmd.Name]
	s.mu.RUnlock()

	if !ok {
		s.logger.Warn("unknown command", zap.String("name", cmd.Name))
		s.metrics.Command(cmd.Name, "unknown")
		if Returns(cmd.Name) {
			s.push(Result{Name: cmd.Name, Err: fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)})
		}
		return
	}

	value, err := h(ctx, Args{Positional: cmd.Args, Keyword: cmd.Kwargs})
	if err != nil {
		s.logger.Warn("command failed", zap.String("name", cmd.Name), zap.Error(err))
		s.metrics.Command(cmd.Name, "error")
	} else {
		s.metrics.Command(cmd.Name, "ok")
	}

	if Returns(cmd.Name) {
		s.push(Result{Name: cmd.Name, Value: value, Err: err})
	}
}

func (s *Server) push(r Result) {
	select {
	case s.results <- r:
	default:
		s.logger.Error("result dropped, nobody is reading results", zap.String("name", r.Name))
		s.metrics.ResultDropped()
	}
}
