package termdesk

// CursorStyle determines how the cursor is rendered.
type CursorStyle int

const (
	CursorStyleBlinkingBlock CursorStyle = iota
	CursorStyleSteadyBlock
	CursorStyleBlinkingUnderline
	CursorStyleSteadyUnderline
	CursorStyleBlinkingBar
	CursorStyleSteadyBar
)

// Cursor tracks the current position (0-based) and rendering style.
type Cursor struct {
	Row     int
	Col     int
	Style   CursorStyle
	Visible bool
}

// NewCursor creates a visible cursor at (0, 0).
func NewCursor() *Cursor {
	return &Cursor{Visible: true}
}

// SavedCursor stores what DECSC saves and DECRC restores.
type SavedCursor struct {
	Row          int
	Col          int
	Attrs        Cell
	OriginMode   bool
	CharsetIndex int
	Charsets     [4]Charset
}

// Charset selects the character encoding variant.
type Charset int

const (
	CharsetASCII Charset = iota
	CharsetLineDrawing
)

// lineDrawing maps DEC special graphics characters to their Unicode box
// drawing equivalents.
var lineDrawing = map[rune]rune{
	'`': '◆', 'a': '▒', 'f': '°', 'g': '±', 'j': '┘', 'k': '┐', 'l': '┌',
	'm': '└', 'n': '┼', 'q': '─', 't': '├', 'u': '┤', 'v': '┴', 'w': '┬',
	'x': '│', 'y': '≤', 'z': '≥', '{': 'π', '|': '≠', '}': '£', '~': '·',
}

func (c Charset) translate(r rune) rune {
	if c == CharsetLineDrawing {
		if m, ok := lineDrawing[r]; ok {
			return m
		}
	}
	return r
}
