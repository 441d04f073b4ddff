package desktop

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/danielgatis/go-termdesk/dispatch"
	"github.com/danielgatis/go-termdesk/metrics"
	"github.com/danielgatis/go-termdesk/render"
)

// DefaultFPS is the frame rate of Run when none is given.
const DefaultFPS = 60

// Screen owns the window and an ordered stack of layers, bottom first.
type Screen struct {
	window   render.Window
	layers   []Layer
	canvases []render.Canvas
	focus    *TerminalLayer

	server   *dispatch.Server
	drainMax int
	events   *dispatch.Broadcaster

	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a Screen.
type Option func(*Screen)

// WithServer drains server's queue once per frame, applying at most
// drainMax commands (no limit when <= 0).
func WithServer(server *dispatch.Server, drainMax int) Option {
	return func(s *Screen) {
		s.server = server
		s.drainMax = drainMax
	}
}

// WithEvents forwards every key transition to b.
func WithEvents(b *dispatch.Broadcaster) Option {
	return func(s *Screen) {
		s.events = b
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Screen) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Screen) {
		s.metrics = m
	}
}

// NewScreen creates a screen drawing into window.
func NewScreen(window render.Window, opts ...Option) *Screen {
	s := &Screen{
		window: window,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Window returns the window the screen presents to.
func (s *Screen) Window() render.Window { return s.window }

// Add puts l on top of the stack with a fresh canvas. The first terminal
// layer added takes the keyboard focus.
func (s *Screen) Add(l Layer) {
	s.layers = append(s.layers, l)
	s.canvases = append(s.canvases, s.window.NewCanvas())
	if t, ok := l.(*TerminalLayer); ok && s.focus == nil {
		s.focus = t
	}
}

// Layer finds a layer by name.
func (s *Screen) Layer(name string) (Layer, bool) {
	for _, l := range s.layers {
		if l.Name() == name {
			return l, true
		}
	}
	return nil, false
}

// Layers returns the layers bottom first.
func (s *Screen) Layers() []Layer {
	return append([]Layer(nil), s.layers...)
}

// Canvas returns the canvas of the named layer.
func (s *Screen) Canvas(name string) (render.Canvas, bool) {
	for i, l := range s.layers {
		if l.Name() == name {
			return s.canvases[i], true
		}
	}
	return nil, false
}

// Focus routes keyboard input to t.
func (s *Screen) Focus(t *TerminalLayer) { s.focus = t }

// Focused returns the terminal receiving keyboard input, or nil.
func (s *Screen) Focused() *TerminalLayer { return s.focus }

// SetEnabled enables or disables the named layer.
func (s *Screen) SetEnabled(name string, enabled bool) error {
	l, ok := s.Layer(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, name)
	}
	l.SetEnabled(enabled)
	s.logger.Info("layer toggled", zap.String("layer", name), zap.Bool("enabled", enabled))
	return nil
}

// RenderFrame runs one frame: drain queued commands, update and draw
// every enabled layer, then composite them over black. A failing layer is
// logged and skipped for this frame.
func (s *Screen) RenderFrame(ctx context.Context) error {
	start := time.Now()

	if s.server != nil {
		s.server.Drain(ctx, s.drainMax)
	}

	visible := make([]render.Canvas, 0, len(s.layers))
	for i, l := range s.layers {
		if !l.Enabled() {
			continue
		}
		if err := l.Update(ctx); err != nil {
			s.logger.Warn("layer update failed", zap.String("layer", l.Name()), zap.Error(err))
		}
		if err := l.Draw(s.canvases[i]); err != nil {
			s.logger.Warn("layer draw failed", zap.String("layer", l.Name()), zap.Error(err))
			continue
		}
		s.metrics.LayerDrawn(l.Name())
		visible = append(visible, s.canvases[i])
	}

	if err := s.window.Present(visible); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	s.metrics.ObserveFrame(time.Since(start))
	return nil
}

// Run renders at fps frames per second until ctx is done or the window
// closes.
func (s *Screen) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	s.logger.Info("render loop started", zap.Int("fps", fps), zap.Int("layers", len(s.layers)))
	defer s.logger.Info("render loop stopped")

	events := s.window.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if s.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			if err := s.RenderFrame(ctx); err != nil {
				return err
			}
		}
	}
}

// HandleEvent routes one window event. It returns true when the window
// asked to close.
func (s *Screen) HandleEvent(ev render.Event) bool {
	switch ev.Kind {
	case render.EventKey:
		s.handleKey(ev)
	case render.EventMouse:
		if s.focus != nil && s.focus.Enabled() {
			cell := s.window.CellSize()
			s.focus.HandleMouse(ev.Button, ev.X/cell.X, ev.Y/cell.Y, ev.Pressed)
		}
	case render.EventResize:
		s.resize()
	case render.EventClose:
		return true
	}
	return false
}

func (s *Screen) handleKey(ev render.Event) {
	out := dispatch.Event{Action: ev.Key.Code, Mods: int(ev.Key.Action)}
	if s.focus != nil && s.focus.Enabled() {
		s.focus.HandleKey(ev.Key)
		if t := s.focus.Translator(); t != nil {
			m := t.State()
			out.Ctrl, out.Shift, out.Alt, out.AltGr = m.Ctrl, m.Shift, m.Alt, m.AltGr
		}
	}
	if s.events != nil {
		s.events.Publish(out)
	}
}

// resize replaces every canvas and fits terminal layers to the window.
func (s *Screen) resize() {
	size := s.window.Size()
	cell := s.window.CellSize()
	for i, l := range s.layers {
		s.canvases[i] = s.window.NewCanvas()
		if t, ok := l.(*TerminalLayer); ok {
			t.Resize(size.Y/cell.Y, size.X/cell.X)
		}
		if inv, ok := l.(Invalidator); ok {
			inv.Invalidate()
		}
	}
	s.logger.Debug("window resized", zap.Int("width", size.X), zap.Int("height", size.Y))
}

// Close kills every terminal child and closes the window.
func (s *Screen) Close() error {
	for _, l := range s.layers {
		if t, ok := l.(*TerminalLayer); ok {
			if err := t.Close(); err != nil {
				s.logger.Warn("terminal close failed", zap.String("layer", t.Name()), zap.Error(err))
			}
		}
	}
	return s.window.Close()
}
