// Package canvas is an in-memory render backend over image.RGBA. It backs
// headless runs, screenshots and tests.
package canvas

import (
	"image"
	"image/color"
	"sync/atomic"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/danielgatis/go-termdesk/render"
)

// Image is a render.Canvas drawing into an *image.RGBA.
type Image struct {
	img   *image.RGBA
	face  font.Face
	cell  image.Point
	draws atomic.Int64
}

var _ render.Canvas = (*Image)(nil)

// New creates a transparent canvas of the given pixel size. A nil face
// uses basicfont.Face7x13.
func New(width, height int, face font.Face) *Image {
	if face == nil {
		face = defaultFace()
	}
	w, h := cellSize(face)
	return &Image{
		img:  image.NewRGBA(image.Rect(0, 0, width, height)),
		face: face,
		cell: image.Pt(w, h),
	}
}

// RGBA returns the backing image.
func (c *Image) RGBA() *image.RGBA { return c.img }

func (c *Image) Size() image.Point     { return c.img.Bounds().Size() }
func (c *Image) CellSize() image.Point { return c.cell }

// Draws returns the number of drawing calls made since the last reset.
func (c *Image) Draws() int { return int(c.draws.Load()) }

// ResetDraws zeroes the draw counter.
func (c *Image) ResetDraws() { c.draws.Store(0) }

func (c *Image) Clear(col color.RGBA) {
	c.ClearRect(c.img.Bounds(), col)
}

func (c *Image) ClearRect(r image.Rectangle, col color.RGBA) {
	c.draws.Add(1)
	draw.Draw(c.img, r.Intersect(c.img.Bounds()), uniform(col), image.Point{}, draw.Src)
}

func (c *Image) FillRect(r image.Rectangle, col color.RGBA) {
	c.draws.Add(1)
	if col.A == 0 {
		return
	}
	draw.Draw(c.img, r.Intersect(c.img.Bounds()), uniform(col), image.Point{}, draw.Over)
}

func (c *Image) DrawText(p image.Point, s string, col color.RGBA) {
	c.draws.Add(1)
	d := &font.Drawer{
		Dst:  c.img,
		Src:  uniform(col),
		Face: c.face,
		Dot:  fixed.P(p.X, p.Y+c.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

func (c *Image) DrawCircle(center image.Point, radius int, col color.RGBA) {
	r := image.Rect(center.X-radius, center.Y-radius, center.X+radius+1, center.Y+radius+1)
	c.draws.Add(1)
	c.drawMask(r, &ellipse{r: r}, col)
}

func (c *Image) DrawEllipse(r image.Rectangle, outline, fill color.RGBA) {
	c.draws.Add(1)
	r = r.Canon()
	if fill.A != 0 {
		c.drawMask(r, &ellipse{r: r}, fill)
	}
	if outline.A != 0 {
		c.drawMask(r, &ellipse{r: r, ring: true}, outline)
	}
}

func (c *Image) DrawImage(p image.Point, src image.Image) {
	c.draws.Add(1)
	b := src.Bounds()
	dst := image.Rectangle{Min: p, Max: p.Add(b.Size())}
	draw.Draw(c.img, dst, src, b.Min, draw.Over)
}

func (c *Image) drawMask(r image.Rectangle, mask image.Image, col color.RGBA) {
	draw.DrawMask(c.img, r.Intersect(c.img.Bounds()), uniform(col), image.Point{}, mask, r.Intersect(c.img.Bounds()).Min, draw.Over)
}

// uniform converts a straight-alpha color to a source image.
func uniform(col color.RGBA) *image.Uniform {
	return image.NewUniform(color.NRGBA(col))
}

// ellipse is an alpha mask of the ellipse inscribed in r, or of its
// one-pixel outline when ring is set.
type ellipse struct {
	r    image.Rectangle
	ring bool
}

func (e *ellipse) ColorModel() color.Model { return color.AlphaModel }
func (e *ellipse) Bounds() image.Rectangle { return e.r }

func (e *ellipse) At(x, y int) color.Color {
	if !e.inside(x, y, 0) {
		return color.Alpha{}
	}
	if e.ring && e.inside(x, y, 1) {
		return color.Alpha{}
	}
	return color.Alpha{A: 255}
}

// inside tests the pixel center against the ellipse shrunk by inset.
func (e *ellipse) inside(x, y int, inset float64) bool {
	rx := float64(e.r.Dx())/2 - inset
	ry := float64(e.r.Dy())/2 - inset
	if rx <= 0 || ry <= 0 {
		return false
	}
	cx := float64(e.r.Min.X) + float64(e.r.Dx())/2
	cy := float64(e.r.Min.Y) + float64(e.r.Dy())/2
	dx := (float64(x) + 0.5 - cx) / rx
	dy := (float64(y) + 0.5 - cy) / ry
	return dx*dx+dy*dy <= 1
}
