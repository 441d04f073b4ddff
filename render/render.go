// Package render defines the drawing surface the desktop composites onto.
// Backends live in the sub-packages.
package render

import (
	"image"
	"image/color"

	"github.com/danielgatis/go-termdesk/input"
)

// Transparent clears a canvas so the layers below show through.
var Transparent = color.RGBA{}

// Black is the window background under all layers.
var Black = color.RGBA{A: 255}

// Canvas is a drawable layer surface. Colors are straight (not
// premultiplied) alpha; FillRect and the shape calls blend over what is
// already there, Clear and ClearRect replace it.
type Canvas interface {
	Size() image.Point
	// CellSize is the size of one monospace glyph cell.
	CellSize() image.Point

	Clear(c color.RGBA)
	ClearRect(r image.Rectangle, c color.RGBA)
	FillRect(r image.Rectangle, c color.RGBA)
	// DrawText draws s with its top-left corner at p.
	DrawText(p image.Point, s string, c color.RGBA)
	DrawCircle(center image.Point, radius int, c color.RGBA)
	// DrawEllipse draws the ellipse inscribed in r. A zero alpha outline
	// or fill is skipped.
	DrawEllipse(r image.Rectangle, outline, fill color.RGBA)
	DrawImage(p image.Point, img image.Image)
}

// Window owns the layer canvases of one display and presents them.
type Window interface {
	Size() image.Point
	CellSize() image.Point
	// NewCanvas returns a transparent canvas covering the window.
	NewCanvas() Canvas
	// Present clears to Black and composites layers back-to-front.
	Present(layers []Canvas) error
	Events() <-chan Event
	Close() error
}

// EventKind discriminates Event.
type EventKind int

const (
	EventKey EventKind = iota + 1
	EventMouse
	EventResize
	EventClose
)

// Event is an input or lifecycle notification from a Window.
type Event struct {
	Kind EventKind

	// EventKey
	Key input.KeyEvent

	// EventMouse, in canvas units.
	Button  int
	X, Y    int
	Pressed bool

	// EventResize
	Width, Height int
}

// CellRect returns the canvas rectangle of the cell at (col, row).
func CellRect(c Canvas, col, row int) image.Rectangle {
	cs := c.CellSize()
	origin := image.Pt(col*cs.X, row*cs.Y)
	return image.Rectangle{Min: origin, Max: origin.Add(cs)}
}

// RowRect returns the canvas rectangle covering cols cells of row.
func RowRect(c Canvas, row, cols int) image.Rectangle {
	cs := c.CellSize()
	return image.Rect(0, row*cs.Y, cols*cs.X, (row+1)*cs.Y)
}
