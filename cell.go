package termdesk

import "image/color"

// CellFlags is a bitmask of cell rendering attributes.
type CellFlags uint16

const (
	CellFlagBold CellFlags = 1 << iota
	CellFlagDim
	CellFlagItalic
	CellFlagUnderline
	CellFlagBlink
	CellFlagReverse
	CellFlagHidden
	CellFlagStrike
	CellFlagWideChar
	CellFlagWideCharSpacer
)

// Cell stores the character, colors and attributes for one grid position.
// Wide characters (2 columns) use a spacer cell in the second position.
type Cell struct {
	Char  rune
	Fg    Color
	Bg    Color
	Flags CellFlags
}

// NewCell creates a blank cell with default colors.
func NewCell() Cell {
	return Cell{Char: ' '}
}

// Reset clears all attributes and sets the cell to a blank default.
func (c *Cell) Reset() {
	*c = NewCell()
}

// HasFlag returns true if the specified flag is set.
func (c *Cell) HasFlag(flag CellFlags) bool {
	return c.Flags&flag != 0
}

// SetFlag enables the specified flag without affecting others.
func (c *Cell) SetFlag(flag CellFlags) {
	c.Flags |= flag
}

// ClearFlag disables the specified flag without affecting others.
func (c *Cell) ClearFlag(flag CellFlags) {
	c.Flags &^= flag
}

// IsWide returns true if this cell holds a character that occupies 2 columns.
func (c *Cell) IsWide() bool {
	return c.HasFlag(CellFlagWideChar)
}

// IsWideSpacer returns true if this is the second cell of a wide character.
func (c *Cell) IsWideSpacer() bool {
	return c.HasFlag(CellFlagWideCharSpacer)
}

// IsBlank reports whether drawing the cell would produce no visible glyph.
func (c *Cell) IsBlank() bool {
	return c.Char == ' ' || c.Char == 0 || c.IsWideSpacer() || c.HasFlag(CellFlagHidden)
}

// Resolve returns the concrete foreground and background for drawing.
// Reverse swaps the resolved pair here; the stored colors are untouched.
func (c *Cell) Resolve(p *Palette) (fg, bg color.RGBA) {
	fg = p.Resolve(c.Fg, true)
	bg = p.Resolve(c.Bg, false)
	if c.HasFlag(CellFlagReverse) {
		fg, bg = bg, fg
		// A reversed default background would be invisible text.
		if fg.A == 0 {
			fg = p.Background
			if fg.A == 0 {
				fg = color.RGBA{A: 255}
			}
		}
	}
	return fg, bg
}
