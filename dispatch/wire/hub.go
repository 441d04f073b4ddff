package wire

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/danielgatis/go-termdesk/dispatch"
	"github.com/danielgatis/go-termdesk/metrics"
)

// conn serializes writes to one websocket.
type conn struct {
	id uuid.UUID
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) writeJSON(v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Hub serves a dispatch Server and Broadcaster over websockets.
type Hub struct {
	server *dispatch.Server
	events *dispatch.Broadcaster

	upgrader websocket.Upgrader
	limit    rate.Limit
	burst    int
	logger   *zap.Logger
	metrics  *metrics.Metrics

	mu    sync.Mutex
	conns map[uuid.UUID]*conn
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithRate limits each queue connection to rps commands per second.
// Zero or less means unlimited. A burst below one defaults to rps,
// rounded down but never under one.
func WithRate(rps float64, burst int) HubOption {
	return func(h *Hub) {
		if rps <= 0 {
			h.limit, h.burst = rate.Inf, 0
			return
		}
		if burst <= 0 {
			burst = max(1, int(rps))
		}
		h.limit, h.burst = rate.Limit(rps), burst
	}
}

// WithHubLogger sets the logger.
func WithHubLogger(l *zap.Logger) HubOption {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithHubMetrics sets the metrics collector.
func WithHubMetrics(m *metrics.Metrics) HubOption {
	return func(h *Hub) {
		h.metrics = m
	}
}

// NewHub creates a hub. events may be nil, in which case /events is not
// served.
func NewHub(server *dispatch.Server, events *dispatch.Broadcaster, opts ...HubOption) *Hub {
	h := &Hub{
		server: server,
		events: events,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		limit:  rate.Inf,
		logger: zap.NewNop(),
		conns:  make(map[uuid.UUID]*conn),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handler returns the HTTP handler for /queue/{name} and /events.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /queue/{name}", h.serveQueue)
	if h.events != nil {
		mux.HandleFunc("GET /events", h.serveEvents)
	}
	return mux
}

// QueuePath is the URL path of the queue named name.
func QueuePath(name string) string {
	return "/queue/" + strings.TrimPrefix(name, "/")
}

// Run forwards results to the connected queue clients until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-h.server.Results():
			h.sendResult(r)
		}
	}
}

func (h *Hub) sendResult(r dispatch.Result) {
	h.mu.Lock()
	conns := make([]*conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	if len(conns) == 0 {
		h.logger.Debug("result without client", zap.String("name", r.Name))
		return
	}
	frame := ResultFrame(r)
	for _, c := range conns {
		if err := c.writeJSON(frame); err != nil {
			h.logger.Debug("result write failed", zap.String("conn", c.id.String()), zap.Error(err))
			continue
		}
		h.metrics.WSMessage("queue", "out")
	}
}

func (h *Hub) serveQueue(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if QueuePath(name) != QueuePath(h.server.Queue().Name()) {
		http.NotFound(w, r)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &conn{id: uuid.New(), ws: ws}
	h.track(c)
	defer h.untrack(c)

	logger := h.logger.With(zap.String("conn", c.id.String()), zap.String("queue", name))
	logger.Info("queue client connected")

	limiter := rate.NewLimiter(h.limit, h.burst)
	queue := h.server.Queue()
	for {
		msgType, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		h.metrics.WSMessage("queue", "in")

		if err := limiter.Wait(r.Context()); err != nil {
			logger.Debug("rate limiter wait failed", zap.Error(err))
			return
		}

		cmd, err := DecodeCommand(data)
		if err != nil {
			if err := c.writeJSON(ErrorFrame("", err)); err != nil {
				logger.Debug("error frame write failed", zap.Error(err))
				return
			}
			continue
		}
		if err := queue.Put(cmd); err != nil {
			if errors.Is(err, dispatch.ErrQueueFull) {
				h.metrics.QueueFull()
			}
			if err := c.writeJSON(ErrorFrame(cmd.Name, err)); err != nil {
				logger.Debug("error frame write failed", zap.String("name", cmd.Name), zap.Error(err))
				return
			}
		}
	}
}

func (h *Hub) serveEvents(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()

	h.metrics.WSConnected()
	defer h.metrics.WSDisconnected()

	id, events := h.events.Subscribe()
	defer h.events.Unsubscribe(id)

	c := &conn{id: id, ws: ws}
	h.logger.Info("event listener connected", zap.String("listener", id.String()))

	// The read side only detects the peer going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := c.writeJSON(ev); err != nil {
				return
			}
			h.metrics.WSMessage("events", "out")
		}
	}
}

func (h *Hub) track(c *conn) {
	h.mu.Lock()
	h.conns[c.id] = c
	h.mu.Unlock()
	h.metrics.WSConnected()
}

func (h *Hub) untrack(c *conn) {
	h.mu.Lock()
	delete(h.conns, c.id)
	h.mu.Unlock()
	c.ws.Close()
	h.metrics.WSDisconnected()
}
