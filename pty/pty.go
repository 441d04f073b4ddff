// Package pty runs a child process on a pseudo-terminal and exposes
// non-blocking readiness so a render loop can poll it once per frame.
package pty

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// MaxRead is the largest chunk returned by a single Read.
const MaxRead = 65535

var (
	// ErrChildGone is returned once the child can no longer be written to.
	ErrChildGone = errors.New("child process gone")
	// ErrNoCommand is returned when Options has no command.
	ErrNoCommand = errors.New("no command")
)

// Options describes the child to start.
type Options struct {
	Command string
	Args    []string
	Dir     string
	Rows    int
	Cols    int
	// Term is exported as TERM, "xterm-256color" when empty.
	Term string
	// Locale is exported as LC_ALL when set.
	Locale string
	// Env is appended after the inherited environment.
	Env    []string
	Logger *zap.Logger
}

// Child is a process attached to the master side of a pty.
type Child struct {
	cmd    *exec.Cmd
	ptmx   *os.File
	fd     int
	logger *zap.Logger

	mu     sync.Mutex
	gone   bool
	closed bool

	waitOnce sync.Once
	waitErr  error
	exited   chan struct{}
}

// Start launches opts.Command with the pty sized to opts.Rows x opts.Cols.
func Start(opts Options) (*Child, error) {
	if opts.Command == "" {
		return nil, ErrNoCommand
	}
	if opts.Rows <= 0 {
		opts.Rows = 25
	}
	if opts.Cols <= 0 {
		opts.Cols = 80
	}
	if opts.Term == "" {
		opts.Term = "xterm-256color"
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cmd := exec.Command(opts.Command, opts.Args...)
	cmd.Dir = opts.Dir
	cmd.Env = childEnv(opts)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(opts.Rows),
		Cols: uint16(opts.Cols),
	})
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", opts.Command, err)
	}

	c := &Child{
		cmd:    cmd,
		ptmx:   ptmx,
		fd:     int(ptmx.Fd()),
		logger: logger.With(zap.String("command", opts.Command), zap.Int("pid", cmd.Process.Pid)),
		exited: make(chan struct{}),
	}
	go c.wait()

	c.logger.Info("child started", zap.Int("rows", opts.Rows), zap.Int("cols", opts.Cols))
	return c, nil
}

func childEnv(opts Options) []string {
	env := append(os.Environ(),
		"TERM="+opts.Term,
		"COLUMNS="+strconv.Itoa(opts.Cols),
		"LINES="+strconv.Itoa(opts.Rows),
	)
	if opts.Locale != "" {
		env = append(env, "LC_ALL="+opts.Locale)
	}
	return append(env, opts.Env...)
}

func (c *Child) wait() {
	c.waitOnce.Do(func() {
		c.waitErr = c.cmd.Wait()
		close(c.exited)
		c.logger.Info("child exited", zap.Error(c.waitErr))
	})
}

// Pid returns the child's process id.
func (c *Child) Pid() int { return c.cmd.Process.Pid }

// Exited is closed once the child process has been reaped.
func (c *Child) Exited() <-chan struct{} { return c.exited }

// ExitErr returns the result of waiting on the child. It is only
// meaningful after Exited is closed.
func (c *Child) ExitErr() error {
	select {
	case <-c.exited:
		return c.waitErr
	default:
		return nil
	}
}

// Ready reports whether a Read would not block. It polls with a zero
// timeout. A hung-up pty counts as ready so the next Read surfaces the
// error.
func (c *Child) Ready() (bool, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return false, os.ErrClosed
	}

	fds := []unix.PollFd{{Fd: int32(c.fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, 0)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("poll: %w", err)
		}
		return n > 0 && fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0, nil
	}
}

// Read reads at most MaxRead bytes.
func (c *Child) Read(p []byte) (int, error) {
	if len(p) > MaxRead {
		p = p[:MaxRead]
	}
	return c.ptmx.Read(p)
}

// Write sends input to the child. After the first failed write the child
// is considered gone and further writes are dropped.
func (c *Child) Write(p []byte) (int, error) {
	c.mu.Lock()
	gone := c.gone || c.closed
	c.mu.Unlock()
	if gone {
		return len(p), nil
	}

	n, err := c.ptmx.Write(p)
	if err != nil {
		c.mu.Lock()
		c.gone = true
		c.mu.Unlock()
		c.logger.Warn("child write failed", zap.Error(err))
		return n, fmt.Errorf("%w: %w", ErrChildGone, err)
	}
	return n, nil
}

// Gone reports whether a write has failed.
func (c *Child) Gone() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gone
}

// Resize changes the pty window size, which delivers SIGWINCH to the child.
func (c *Child) Resize(rows, cols int) error {
	if err := pty.Setsize(c.ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	return nil
}

// Signal sends sig to the child unless it already exited.
func (c *Child) Signal(sig syscall.Signal) error {
	select {
	case <-c.exited:
		return nil
	default:
	}
	if err := c.cmd.Process.Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("signal %s: %w", sig, err)
	}
	return nil
}

// Kill sends SIGKILL to the child.
func (c *Child) Kill() error {
	return c.Signal(unix.SIGKILL)
}

// Close kills the child, closes the pty and reaps the process.
func (c *Child) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.gone = true
	c.mu.Unlock()

	err := c.Kill()
	if cerr := c.ptmx.Close(); err == nil {
		err = cerr
	}
	<-c.exited
	return err
}
