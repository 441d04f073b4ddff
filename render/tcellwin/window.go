// Package tcellwin is a render backend that draws into the host terminal
// through tcell. One canvas unit is one host cell.
package tcellwin

import (
	"image"
	"image/color"
	"sync"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/danielgatis/go-termdesk/keymap"
	"github.com/danielgatis/go-termdesk/render"
)

// Window is a render.Window over a tcell screen.
type Window struct {
	screen  tcell.Screen
	keys    *keymap.Table
	quit    tcell.Key
	logger  *zap.Logger
	events  chan render.Event
	buttons tcell.ButtonMask

	closeOnce sync.Once
	done      chan struct{}
}

var _ render.Window = (*Window)(nil)

// Option configures a Window.
type Option func(*Window)

// WithKeymap sets the table used to map typed runes back to key codes.
func WithKeymap(t *keymap.Table) Option {
	return func(w *Window) {
		if t != nil {
			w.keys = t
		}
	}
}

// WithQuitKey sets the key that closes the window. The default is Ctrl+Q.
func WithQuitKey(k tcell.Key) Option {
	return func(w *Window) {
		w.quit = k
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Window) {
		if l != nil {
			w.logger = l
		}
	}
}

// New opens the host terminal.
func New(opts ...Option) (*Window, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(screen, opts...)
}

// NewWithScreen wraps an existing, uninitialized screen.
func NewWithScreen(screen tcell.Screen, opts ...Option) (*Window, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	screen.HideCursor()

	w := &Window{
		screen: screen,
		keys:   keymap.Fallback(),
		quit:   tcell.KeyCtrlQ,
		logger: zap.NewNop(),
		events: make(chan render.Event, 100),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	go w.poll()
	return w, nil
}

func (w *Window) Size() image.Point {
	cols, rows := w.screen.Size()
	return image.Pt(cols, rows)
}

func (w *Window) CellSize() image.Point { return image.Pt(1, 1) }

func (w *Window) NewCanvas() render.Canvas {
	size := w.Size()
	return NewGrid(size.X, size.Y)
}

func (w *Window) Present(layers []render.Canvas) error {
	size := w.Size()
	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			out := cell{r: ' ', fg: color.RGBA{255, 255, 255, 255}, bg: render.Black}
			for _, layer := range layers {
				g, ok := layer.(*Grid)
				if !ok {
					continue
				}
				c := g.at(x, y)
				if c == nil {
					continue
				}
				out.bg = over(out.bg, c.bg)
				if c.r != 0 {
					out.r = c.r
					out.fg = c.fg
				}
			}
			style := tcell.StyleDefault.
				Foreground(rgb(out.fg)).
				Background(rgb(out.bg))
			w.screen.SetContent(x, y, out.r, nil, style)
		}
	}
	w.screen.Show()
	return nil
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func (w *Window) Events() <-chan render.Event { return w.events }

// Close restores the host terminal.
func (w *Window) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.screen.Fini()
	})
	return nil
}

func (w *Window) poll() {
	defer close(w.events)

	for {
		ev := w.screen.PollEvent()
		if ev == nil {
			return
		}
		for _, out := range w.convert(ev) {
			select {
			case w.events <- out:
			case <-w.done:
				return
			}
		}
	}
}

func (w *Window) convert(ev tcell.Event) []render.Event {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if w.isQuit(ev) {
			return []render.Event{{Kind: render.EventClose}}
		}
		keys := keyEvents(ev, w.keys)
		if len(keys) == 0 {
			w.logger.Debug("unmapped host key", zap.String("key", ev.Name()))
		}
		out := make([]render.Event, len(keys))
		for i, k := range keys {
			out[i] = render.Event{Kind: render.EventKey, Key: k}
		}
		return out

	case *tcell.EventMouse:
		return w.mouse(ev)

	case *tcell.EventResize:
		cols, rows := ev.Size()
		return []render.Event{{Kind: render.EventResize, Width: cols, Height: rows}}
	}
	return nil
}

// isQuit also accepts the rune-plus-ctrl form some terminals report.
func (w *Window) isQuit(ev *tcell.EventKey) bool {
	if ev.Key() == w.quit {
		return true
	}
	if w.quit < tcell.KeyCtrlA || w.quit > tcell.KeyCtrlZ {
		return false
	}
	return ev.Key() == tcell.KeyRune &&
		ev.Modifiers()&tcell.ModCtrl != 0 &&
		unicode.ToLower(ev.Rune()) == rune('a'+w.quit-tcell.KeyCtrlA)
}

var mouseButtons = []struct {
	mask   tcell.ButtonMask
	button int
}{
	{tcell.Button1, 0},
	{tcell.Button3, 1},
	{tcell.Button2, 2},
}

func (w *Window) mouse(ev *tcell.EventMouse) []render.Event {
	x, y := ev.Position()
	now := ev.Buttons()
	var out []render.Event
	for _, b := range mouseButtons {
		was := w.buttons&b.mask != 0
		is := now&b.mask != 0
		if was == is {
			continue
		}
		out = append(out, render.Event{
			Kind:    render.EventMouse,
			Button:  b.button,
			X:       x,
			Y:       y,
			Pressed: is,
		})
	}
	w.buttons = now
	return out
}
