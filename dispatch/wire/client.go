package wire

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/danielgatis/go-termdesk/dispatch"
)

var (
	// ErrRemote wraps errors reported by the server.
	ErrRemote = errors.New("remote error")
	// ErrClientClosed is returned after Close or a lost connection.
	ErrClientClosed = errors.New("client closed")
)

// Client sends commands to one queue. Results of returns-value commands
// are matched to Query calls in FIFO order; a single client per queue is
// assumed.
type Client struct {
	ws     *websocket.Conn
	writeM sync.Mutex
	// Query calls are serialized so each one takes the next result.
	queryM sync.Mutex

	results chan Frame
	errs    chan error
	done    chan struct{}
	once    sync.Once
}

// Dial connects to the queue name served by the hub at base, for example
// "ws://127.0.0.1:7777".
func Dial(ctx context.Context, base, name string) (*Client, error) {
	u, err := endpoint(base, QueuePath(name))
	if err != nil {
		return nil, err
	}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u, err)
	}

	c := &Client{
		ws:      ws,
		results: make(chan Frame, dispatch.DefaultCapacity),
		errs:    make(chan error, dispatch.DefaultCapacity),
		done:    make(chan struct{}),
	}
	go c.read()
	return c, nil
}

func endpoint(base, path string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", base, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	return u.String(), nil
}

func (c *Client) read() {
	defer c.Close()
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var f Frame
		if err := sonic.Unmarshal(data, &f); err != nil {
			continue
		}
		switch f.Type {
		case FrameResult:
			c.deliver(f)
		case FrameError:
			if Returns(f.Name) {
				c.deliver(f)
				continue
			}
			select {
			case c.errs <- fmt.Errorf("%w: %s: %s", ErrRemote, f.Name, f.Error):
			default:
			}
		}
	}
}

func (c *Client) deliver(f Frame) {
	select {
	case c.results <- f:
	case <-c.done:
	}
}

// Returns reports whether name is a returns-value command.
func Returns(name string) bool { return dispatch.Returns(name) }

// Errors reports commands the server rejected, such as a full queue.
func (c *Client) Errors() <-chan error { return c.errs }

// Call enqueues name with positional arguments.
func (c *Client) Call(name string, args ...any) error {
	return c.send(dispatch.Command{Name: name, Args: args})
}

// CallKw enqueues name with positional and keyword arguments.
func (c *Client) CallKw(name string, args []any, kwargs map[string]any) error {
	return c.send(dispatch.Command{Name: name, Args: args, Kwargs: kwargs})
}

func (c *Client) send(cmd dispatch.Command) error {
	data, err := EncodeCommand(cmd)
	if err != nil {
		return err
	}

	c.writeM.Lock()
	defer c.writeM.Unlock()

	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Query enqueues a returns-value command and waits for its result.
func (c *Client) Query(ctx context.Context, name string, args ...any) (any, error) {
	if !Returns(name) {
		return nil, fmt.Errorf("%w: %q does not return a value", dispatch.ErrInvalidName, name)
	}

	c.queryM.Lock()
	defer c.queryM.Unlock()

	if err := c.Call(name, args...); err != nil {
		return nil, err
	}

	select {
	case f := <-c.results:
		if f.Error != "" {
			return nil, fmt.Errorf("%w: %s: %s", ErrRemote, f.Name, f.Error)
		}
		return f.Value, nil
	case <-c.done:
		return nil, ErrClientClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		c.writeM.Lock()
		c.ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeM.Unlock()
		err = c.ws.Close()
	})
	return err
}

// Subscribe streams key events from the hub at base until ctx is done or
// the connection drops.
func Subscribe(ctx context.Context, base string) (<-chan dispatch.Event, error) {
	u, err := endpoint(base, "/events")
	if err != nil {
		return nil, err
	}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u, err)
	}

	out := make(chan dispatch.Event, dispatch.DefaultListenerBuffer)
	go func() {
		<-ctx.Done()
		ws.Close()
	}()
	go func() {
		defer close(out)
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			var ev dispatch.Event
			if err := sonic.Unmarshal(data, &ev); err != nil {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
