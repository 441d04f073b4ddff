package desktop

import (
	"context"
	"image"
	"image/color"

	termdesk "github.com/danielgatis/go-termdesk"
	"github.com/danielgatis/go-termdesk/dispatch"
	"github.com/danielgatis/go-termdesk/render"
)

// White is the default color of text and ellipse outlines.
var White = color.RGBA{255, 255, 255, 255}

// MaxHistory bounds the operations kept for replay after a resize. Older
// operations are forgotten and do not reappear on a resized window.
const MaxHistory = 4096

// op is one queued drawing operation.
type op func(c render.Canvas)

// GraphicsLayer is a persistent drawing surface for client commands.
// Operations accumulate until clear.
type GraphicsLayer struct {
	name    string
	enabled bool
	size    image.Point
	cell    image.Point
	palette *termdesk.Palette

	pending []op
	history []op
	replay  bool
}

// NewGraphicsLayer creates a graphics layer for a window of the given
// size and glyph cell size.
func NewGraphicsLayer(name string, size, cell image.Point) *GraphicsLayer {
	return &GraphicsLayer{
		name:    name,
		enabled: true,
		size:    size,
		cell:    cell,
		palette: termdesk.DefaultPalette(),
	}
}

func (l *GraphicsLayer) Name() string  { return l.name }
func (l *GraphicsLayer) Enabled() bool { return l.enabled }

func (l *GraphicsLayer) SetEnabled(enabled bool) { l.enabled = enabled }

// Invalidate replays every operation since the last clear on the next Draw.
func (l *GraphicsLayer) Invalidate() { l.replay = true }

func (l *GraphicsLayer) Update(context.Context) error { return nil }

// Draw applies the queued operations in order.
func (l *GraphicsLayer) Draw(c render.Canvas) error {
	if l.replay {
		c.Clear(render.Transparent)
		for _, o := range l.history {
			o(c)
		}
		l.replay = false
	}
	for _, o := range l.pending {
		o(c)
	}
	l.history = append(l.history, l.pending...)
	if over := len(l.history) - MaxHistory; over > 0 {
		n := copy(l.history, l.history[over:])
		clear(l.history[n:])
		l.history = l.history[:n]
	}
	clear(l.pending)
	l.pending = l.pending[:0]
	return nil
}

func (l *GraphicsLayer) push(o op) { l.pending = append(l.pending, o) }

// Circle queues a filled circle.
func (l *GraphicsLayer) Circle(center image.Point, radius int, c color.RGBA) {
	l.push(func(cv render.Canvas) { cv.DrawCircle(center, radius, c) })
}

// Ellipse queues the ellipse inscribed in r.
func (l *GraphicsLayer) Ellipse(r image.Rectangle, outline, fill color.RGBA) {
	l.push(func(cv render.Canvas) { cv.DrawEllipse(r, outline, fill) })
}

// PrintAt queues text at the glyph cell (col, row).
func (l *GraphicsLayer) PrintAt(col, row int, text string, c color.RGBA) {
	p := image.Pt(col*l.cell.X, row*l.cell.Y)
	l.push(func(cv render.Canvas) { cv.DrawText(p, text, c) })
}

// Clear erases everything drawn so far.
func (l *GraphicsLayer) Clear() {
	l.history = nil
	l.pending = append(l.pending[:0], func(cv render.Canvas) { cv.Clear(render.Transparent) })
}

// Commands exposes circle, ellipse, print_at, clear and get_size.
func (l *GraphicsLayer) Commands() map[string]dispatch.Handler {
	return map[string]dispatch.Handler{
		"circle": func(_ context.Context, a dispatch.Args) (any, error) {
			x, err := a.Int(0, "x")
			if err != nil {
				return nil, err
			}
			y, err := a.Int(1, "y")
			if err != nil {
				return nil, err
			}
			radius, err := a.Int(2, "radius")
			if err != nil {
				return nil, err
			}
			c, err := colorArg(a, 3, "color", White, l.palette)
			if err != nil {
				return nil, err
			}
			l.Circle(image.Pt(x, y), radius, c)
			return nil, nil
		},
		"ellipse": func(_ context.Context, a dispatch.Args) (any, error) {
			var pts [4]int
			for i, name := range []string{"x0", "y0", "x1", "y1"} {
				n, err := a.Int(i, name)
				if err != nil {
					return nil, err
				}
				pts[i] = n
			}
			outline, err := colorArg(a, 4, "outline", White, l.palette)
			if err != nil {
				return nil, err
			}
			fill, err := colorArg(a, 5, "fill", render.Transparent, l.palette)
			if err != nil {
				return nil, err
			}
			l.Ellipse(image.Rect(pts[0], pts[1], pts[2], pts[3]), outline, fill)
			return nil, nil
		},
		"print_at": func(_ context.Context, a dispatch.Args) (any, error) {
			x, err := a.IntOr(0, "x", 0)
			if err != nil {
				return nil, err
			}
			y, err := a.IntOr(1, "y", 0)
			if err != nil {
				return nil, err
			}
			text, err := a.StringOr(2, "text", "")
			if err != nil {
				return nil, err
			}
			c, err := colorArg(a, 3, "color", White, l.palette)
			if err != nil {
				return nil, err
			}
			l.PrintAt(x, y, text, c)
			return nil, nil
		},
		"clear": func(context.Context, dispatch.Args) (any, error) {
			l.Clear()
			return nil, nil
		},
		"get_size": func(context.Context, dispatch.Args) (any, error) {
			return []int{l.size.X, l.size.Y}, nil
		},
	}
}
