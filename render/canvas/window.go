package canvas

import (
	"errors"
	"image"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/danielgatis/go-termdesk/render"
)

// ErrClosed is returned by Present after Close.
var ErrClosed = errors.New("canvas: window closed")

// Window is a headless render.Window. Presented frames are composited into
// an image that Frame returns; input comes from Inject.
type Window struct {
	mu     sync.Mutex
	frame  *image.RGBA
	face   font.Face
	events chan render.Event
	closed bool
	frames int
}

var _ render.Window = (*Window)(nil)

// WindowOption configures a Window.
type WindowOption func(*Window)

// WithFace sets the font used by every canvas of the window.
func WithFace(face font.Face) WindowOption {
	return func(w *Window) {
		if face != nil {
			w.face = face
		}
	}
}

// NewWindow creates a headless window of the given pixel size.
func NewWindow(width, height int, opts ...WindowOption) *Window {
	w := &Window{
		frame:  image.NewRGBA(image.Rect(0, 0, width, height)),
		face:   defaultFace(),
		events: make(chan render.Event, 64),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Window) Size() image.Point { return w.frame.Bounds().Size() }

func (w *Window) CellSize() image.Point {
	cw, ch := cellSize(w.face)
	return image.Pt(cw, ch)
}

func (w *Window) NewCanvas() render.Canvas {
	size := w.Size()
	return New(size.X, size.Y, w.face)
}

func (w *Window) Present(layers []render.Canvas) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}

	draw.Draw(w.frame, w.frame.Bounds(), uniform(render.Black), image.Point{}, draw.Src)
	for _, layer := range layers {
		img, ok := layer.(*Image)
		if !ok {
			continue
		}
		draw.Draw(w.frame, w.frame.Bounds(), img.RGBA(), image.Point{}, draw.Over)
	}
	w.frames++
	return nil
}

// Frame returns a copy of the last presented frame.
func (w *Window) Frame() *image.RGBA {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := image.NewRGBA(w.frame.Bounds())
	copy(out.Pix, w.frame.Pix)
	return out
}

// Frames returns the number of successful Present calls.
func (w *Window) Frames() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames
}

// Inject queues an input event. It reports false if the queue is full or
// the window is closed.
func (w *Window) Inject(ev render.Event) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return false
	}
	select {
	case w.events <- ev:
		return true
	default:
		return false
	}
}

func (w *Window) Events() <-chan render.Event { return w.events }

func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.closed {
		w.closed = true
		close(w.events)
	}
	return nil
}
