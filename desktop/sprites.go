package desktop

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/danielgatis/go-termdesk/dispatch"
	"github.com/danielgatis/go-termdesk/render"
)

// DefaultSpritePos is where a newly loaded sprite appears.
var DefaultSpritePos = image.Pt(200, 200)

// Sprite is a named image at a position.
type Sprite struct {
	Name  string
	Pos   image.Point
	Image image.Image
}

// SpriteInfo describes a sprite to clients.
type SpriteInfo struct {
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// SpriteLayer draws named sprites in load order.
type SpriteLayer struct {
	name    string
	enabled bool
	order   []string
	sprites map[string]*Sprite
	changed bool
	logger  *zap.Logger
}

// NewSpriteLayer creates an empty sprite layer.
func NewSpriteLayer(name string, logger *zap.Logger) *SpriteLayer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpriteLayer{
		name:    name,
		enabled: true,
		sprites: make(map[string]*Sprite),
		logger:  logger.With(zap.String("layer", name)),
	}
}

func (l *SpriteLayer) Name() string  { return l.name }
func (l *SpriteLayer) Enabled() bool { return l.enabled }

func (l *SpriteLayer) SetEnabled(enabled bool) {
	if enabled && !l.enabled {
		l.changed = true
	}
	l.enabled = enabled
}

func (l *SpriteLayer) Invalidate() { l.changed = true }

func (l *SpriteLayer) Update(context.Context) error { return nil }

// Draw repaints all sprites when any of them changed.
func (l *SpriteLayer) Draw(c render.Canvas) error {
	if !l.changed {
		return nil
	}
	c.Clear(render.Transparent)
	for _, name := range l.order {
		s := l.sprites[name]
		c.DrawImage(s.Pos, s.Image)
	}
	l.changed = false
	return nil
}

// Set adds or replaces the image of a sprite. A new sprite starts at
// DefaultSpritePos; a replaced one keeps its position.
func (l *SpriteLayer) Set(name string, img image.Image) {
	if s, ok := l.sprites[name]; ok {
		s.Image = img
	} else {
		l.sprites[name] = &Sprite{Name: name, Pos: DefaultSpritePos, Image: img}
		l.order = append(l.order, name)
	}
	l.changed = true
}

// Load decodes the image file at path into sprite name.
func (l *SpriteLayer) Load(name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("load sprite %s: %w", name, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode sprite %s: %w", path, err)
	}
	l.Set(name, img)
	l.logger.Debug("sprite loaded", zap.String("sprite", name), zap.String("format", format))
	return nil
}

// Move places a sprite's top-left corner at p.
func (l *SpriteLayer) Move(name string, p image.Point) error {
	s, ok := l.sprites[name]
	if !ok {
		return fmt.Errorf("%w: sprite %q", dispatch.ErrBadArgument, name)
	}
	s.Pos = p
	l.changed = true
	return nil
}

// Remove deletes a sprite. Removing an unknown sprite is a no-op.
func (l *SpriteLayer) Remove(name string) {
	if _, ok := l.sprites[name]; !ok {
		return
	}
	delete(l.sprites, name)
	for i, n := range l.order {
		if n == name {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	l.changed = true
}

// Sprites lists sprites in draw order.
func (l *SpriteLayer) Sprites() []SpriteInfo {
	out := make([]SpriteInfo, 0, len(l.order))
	for _, name := range l.order {
		s := l.sprites[name]
		size := s.Image.Bounds().Size()
		out = append(out, SpriteInfo{Name: name, X: s.Pos.X, Y: s.Pos.Y, Width: size.X, Height: size.Y})
	}
	return out
}

// Commands exposes load_sprite, move_sprite, remove_sprite and get_sprites.
func (l *SpriteLayer) Commands() map[string]dispatch.Handler {
	return map[string]dispatch.Handler{
		"load_sprite": func(_ context.Context, a dispatch.Args) (any, error) {
			name, err := a.String(0, "name")
			if err != nil {
				return nil, err
			}
			path, err := a.String(1, "image")
			if err != nil {
				return nil, err
			}
			return nil, l.Load(name, path)
		},
		"move_sprite": func(_ context.Context, a dispatch.Args) (any, error) {
			name, err := a.String(0, "name")
			if err != nil {
				return nil, err
			}
			x, err := a.Int(1, "x")
			if err != nil {
				return nil, err
			}
			y, err := a.Int(2, "y")
			if err != nil {
				return nil, err
			}
			return nil, l.Move(name, image.Pt(x, y))
		},
		"remove_sprite": func(_ context.Context, a dispatch.Args) (any, error) {
			name, err := a.String(0, "name")
			if err != nil {
				return nil, err
			}
			l.Remove(name)
			return nil, nil
		},
		"get_sprites": func(context.Context, dispatch.Args) (any, error) {
			return l.Sprites(), nil
		},
	}
}
