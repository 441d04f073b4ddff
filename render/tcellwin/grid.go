package tcellwin

import (
	"image"
	"image/color"

	"github.com/unilibs/uniwidth"

	"github.com/danielgatis/go-termdesk/render"
)

type cell struct {
	r  rune
	fg color.RGBA
	bg color.RGBA
}

// Grid is a render.Canvas in which one unit is one host terminal cell.
type Grid struct {
	w, h  int
	cells []cell
	draws int
}

var _ render.Canvas = (*Grid)(nil)

// NewGrid creates a transparent grid.
func NewGrid(w, h int) *Grid {
	return &Grid{w: w, h: h, cells: make([]cell, w*h)}
}

func (g *Grid) Size() image.Point     { return image.Pt(g.w, g.h) }
func (g *Grid) CellSize() image.Point { return image.Pt(1, 1) }

// Draws returns the number of drawing calls made so far.
func (g *Grid) Draws() int { return g.draws }

func (g *Grid) at(x, y int) *cell {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return nil
	}
	return &g.cells[y*g.w+x]
}

func (g *Grid) bounds() image.Rectangle { return image.Rect(0, 0, g.w, g.h) }

func (g *Grid) Clear(c color.RGBA) {
	g.ClearRect(g.bounds(), c)
}

func (g *Grid) ClearRect(r image.Rectangle, c color.RGBA) {
	g.draws++
	r = r.Intersect(g.bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			*g.at(x, y) = cell{bg: c}
		}
	}
}

func (g *Grid) FillRect(r image.Rectangle, c color.RGBA) {
	g.draws++
	r = r.Intersect(g.bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p := g.at(x, y)
			p.bg = over(p.bg, c)
		}
	}
}

func (g *Grid) DrawText(p image.Point, s string, c color.RGBA) {
	g.draws++
	x := p.X
	for _, r := range s {
		w := uniwidth.RuneWidth(r)
		if w <= 0 {
			continue
		}
		if dst := g.at(x, p.Y); dst != nil {
			dst.r = r
			dst.fg = c
		}
		x += w
	}
}

func (g *Grid) DrawCircle(center image.Point, radius int, c color.RGBA) {
	g.draws++
	for y := center.Y - radius; y <= center.Y+radius; y++ {
		for x := center.X - radius; x <= center.X+radius; x++ {
			dx, dy := x-center.X, y-center.Y
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			if p := g.at(x, y); p != nil {
				p.bg = over(p.bg, c)
			}
		}
	}
}

func (g *Grid) DrawEllipse(r image.Rectangle, outline, fill color.RGBA) {
	g.draws++
	r = r.Canon()
	rx, ry := float64(r.Dx())/2, float64(r.Dy())/2
	if rx <= 0 || ry <= 0 {
		return
	}
	cx, cy := float64(r.Min.X)+rx, float64(r.Min.Y)+ry
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p := g.at(x, y)
			if p == nil {
				continue
			}
			dx := (float64(x) + 0.5 - cx) / rx
			dy := (float64(y) + 0.5 - cy) / ry
			d := dx*dx + dy*dy
			switch {
			case d > 1:
			case d > 0.6 && outline.A != 0:
				p.bg = over(p.bg, outline)
			case fill.A != 0:
				p.bg = over(p.bg, fill)
			}
		}
	}
}

func (g *Grid) DrawImage(p image.Point, img image.Image) {
	g.draws++
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst := g.at(p.X+x-b.Min.X, p.Y+y-b.Min.Y)
			if dst == nil {
				continue
			}
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst.bg = over(dst.bg, color.RGBA(c))
		}
	}
}

// over blends straight-alpha src onto dst.
func over(dst, src color.RGBA) color.RGBA {
	switch {
	case src.A == 255:
		return src
	case src.A == 0:
		return dst
	}
	sa := float64(src.A) / 255
	da := float64(dst.A) / 255 * (1 - sa)
	a := sa + da
	mix := func(s, d uint8) uint8 {
		return uint8((float64(s)*sa + float64(d)*da) / a)
	}
	return color.RGBA{
		R: mix(src.R, dst.R),
		G: mix(src.G, dst.G),
		B: mix(src.B, dst.B),
		A: uint8(a * 255),
	}
}
