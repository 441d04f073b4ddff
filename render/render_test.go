package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sized struct {
	Canvas
	cell image.Point
}

func (s sized) CellSize() image.Point { return s.cell }

func TestCellRect(t *testing.T) {
	c := sized{cell: image.Pt(7, 13)}

	assert.Equal(t, image.Rect(14, 39, 21, 52), CellRect(c, 2, 3))
	assert.Equal(t, image.Rect(0, 13, 70, 26), RowRect(c, 1, 10))
}

func TestColors(t *testing.T) {
	assert.Equal(t, color.RGBA{}, Transparent)
	assert.Equal(t, uint8(255), Black.A)
}
