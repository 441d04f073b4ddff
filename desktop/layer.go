// Package desktop composites layers (terminals, sprites and free-form
// graphics) into a window, one frame at a time.
package desktop

import (
	"context"
	"errors"
	"fmt"
	"image/color"

	termdesk "github.com/danielgatis/go-termdesk"
	"github.com/danielgatis/go-termdesk/dispatch"
	"github.com/danielgatis/go-termdesk/render"
)

// ErrUnknownLayer is returned by commands naming a layer that does not exist.
var ErrUnknownLayer = errors.New("unknown layer")

// Layer is one independently drawn surface. Draw paints onto the layer's
// own canvas, which keeps its pixels between frames.
type Layer interface {
	Name() string
	Enabled() bool
	SetEnabled(enabled bool)
	Update(ctx context.Context) error
	Draw(c render.Canvas) error
}

// Invalidator is implemented by layers that must repaint everything when
// their canvas is replaced.
type Invalidator interface {
	Invalidate()
}

// Commander is implemented by layers that expose commands to clients.
type Commander interface {
	Commands() map[string]dispatch.Handler
}

// colorArg reads a color given as an [r, g, b] or [r, g, b, a] list, a
// color name or a hex string. A nil value means transparent.
func colorArg(a dispatch.Args, pos int, name string, def color.RGBA, p *termdesk.Palette) (color.RGBA, error) {
	v, ok := a.Value(pos, name)
	if !ok {
		return def, nil
	}
	if v == nil {
		return render.Transparent, nil
	}
	if s, ok := v.(string); ok {
		c, err := termdesk.ParseColor(s)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("%w: %s: %w", dispatch.ErrBadArgument, name, err)
		}
		return p.Resolve(c, true), nil
	}

	rgba, err := a.Ints(pos, name)
	if err != nil {
		return color.RGBA{}, err
	}
	if len(rgba) != 3 && len(rgba) != 4 {
		return color.RGBA{}, fmt.Errorf("%w: %s: want 3 or 4 components, got %d", dispatch.ErrBadArgument, name, len(rgba))
	}
	for _, n := range rgba {
		if n < 0 || n > 255 {
			return color.RGBA{}, fmt.Errorf("%w: %s: component %d out of range", dispatch.ErrBadArgument, name, n)
		}
	}
	alpha := 255
	if len(rgba) == 4 {
		alpha = rgba[3]
	}
	return color.RGBA{uint8(rgba[0]), uint8(rgba[1]), uint8(rgba[2]), uint8(alpha)}, nil
}
