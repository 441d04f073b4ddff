package termdesk

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewTerminal(t *testing.T) {
	term := New()

	if term.Rows() != 25 {
		t.Errorf("expected 25 rows, got %d", term.Rows())
	}
	if term.Cols() != 80 {
		t.Errorf("expected 80 cols, got %d", term.Cols())
	}
	if term.HasDirty() {
		t.Error("expected empty dirty set on a fresh terminal")
	}
}

func TestTerminalWithSize(t *testing.T) {
	term := New(WithSize(40, 120))

	if term.Rows() != 40 {
		t.Errorf("expected 40 rows, got %d", term.Rows())
	}
	if term.Cols() != 120 {
		t.Errorf("expected 120 cols, got %d", term.Cols())
	}
}

func TestTerminalFeedHello(t *testing.T) {
	term := New(WithSize(25, 80))

	term.Feed([]byte("hello"))

	for i, want := range "hello" {
		cell, ok := term.Cell(0, i)
		if !ok {
			t.Fatalf("expected cell at (0,%d)", i)
		}
		if cell.Char != want {
			t.Errorf("expected %q at col %d, got %q", want, i, cell.Char)
		}
	}

	row, col := term.CursorPos()
	if row != 0 || col != 5 {
		t.Errorf("expected cursor at (0, 5), got (%d, %d)", row, col)
	}

	dirty := term.DirtyRows()
	if len(dirty) != 1 || dirty[0] != 0 {
		t.Errorf("expected dirty rows [0], got %v", dirty)
	}
}

func TestTerminalNewline(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("Line1\r\nLine2")

	if term.LineContent(0) != "Line1" {
		t.Errorf("expected 'Line1', got '%s'", term.LineContent(0))
	}
	if term.LineContent(1) != "Line2" {
		t.Errorf("expected 'Line2', got '%s'", term.LineContent(1))
	}
}

func TestTerminalCursorAdvanceAndWrap(t *testing.T) {
	term := New(WithSize(3, 10))

	for i := 0; i < 10; i++ {
		term.WriteString("x")
		_, col := term.CursorPos()
		want := i + 1
		if want > 9 {
			want = 9
		}
		if col != want {
			t.Fatalf("after %d bytes expected col %d, got %d", i+1, want, col)
		}
	}

	term.WriteString("y")
	row, col := term.CursorPos()
	if row != 1 || col != 1 {
		t.Errorf("expected cursor at (1, 1) after wrap, got (%d, %d)", row, col)
	}
	if c, _ := term.Cell(1, 0); c.Char != 'y' {
		t.Errorf("expected 'y' at (1,0), got %q", c.Char)
	}
}

func TestTerminalScrollEvictsIntoHistory(t *testing.T) {
	storage := NewMemoryScrollback(100)
	term := New(WithSize(3, 10), WithScrollback(storage))

	// Three full rows plus one byte pushes the first row out.
	term.WriteString(strings.Repeat("a", 10) + strings.Repeat("b", 10) + strings.Repeat("c", 10) + "d")

	if term.ScrollbackLen() != 1 {
		t.Fatalf("expected 1 scrollback line, got %d", term.ScrollbackLen())
	}
	if got := lineText(term.ScrollbackLine(0)); got != strings.Repeat("a", 10) {
		t.Errorf("expected evicted row of a's, got %q", got)
	}
	if term.LineContent(0) != strings.Repeat("b", 10) {
		t.Errorf("expected b's on row 0, got %q", term.LineContent(0))
	}
	if term.LineContent(2) != "d" {
		t.Errorf("expected 'd' on row 2, got %q", term.LineContent(2))
	}
}

func TestTerminalCursorPositionMarksOnlyDestination(t *testing.T) {
	term := New(WithSize(25, 80))
	term.WriteString("top")
	term.ClearDirty()

	term.WriteString("\x1b[11;21H")

	row, col := term.CursorPos()
	if row != 10 || col != 20 {
		t.Errorf("expected cursor at (10, 20), got (%d, %d)", row, col)
	}
	dirty := term.DirtyRows()
	if len(dirty) != 1 || dirty[0] != 10 {
		t.Errorf("expected dirty rows [10], got %v", dirty)
	}
}

func TestTerminalCursorPositionClamped(t *testing.T) {
	term := New(WithSize(25, 80))

	term.WriteString("\x1b[99;200H")

	row, col := term.CursorPos()
	if row != 24 || col != 79 {
		t.Errorf("expected cursor clamped to (24, 79), got (%d, %d)", row, col)
	}
}

func TestTerminalPartialSequenceAcrossFeeds(t *testing.T) {
	term := New(WithSize(25, 80))

	term.Feed([]byte("\x1b[3"))
	term.Feed([]byte(";4H"))
	term.Feed([]byte("z"))

	if c, _ := term.Cell(2, 3); c.Char != 'z' {
		t.Errorf("expected 'z' at (2,3), got %q", c.Char)
	}
}

func TestTerminalUnknownSequenceIgnored(t *testing.T) {
	term := New(WithSize(25, 80))

	term.WriteString("a\x1b[?9999zb")

	if term.LineContent(0) != "ab" {
		t.Errorf("expected 'ab', got %q", term.LineContent(0))
	}
}

func TestTerminalClearScreen(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("Hello")
	term.WriteString("\x1b[2J")

	if term.LineContent(0) != "" {
		t.Errorf("expected empty line after clear, got '%s'", term.LineContent(0))
	}
}

func TestTerminalString(t *testing.T) {
	term := New(WithSize(5, 20))

	term.WriteString("one\r\ntwo")

	if term.String() != "one\ntwo" {
		t.Errorf("expected 'one\\ntwo', got %q", term.String())
	}
}

func TestTerminalClearDirty(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("A")
	if !term.HasDirty() {
		t.Error("expected dirty rows after write")
	}

	term.ClearDirty()
	if term.HasDirty() {
		t.Error("expected no dirty rows after ClearDirty")
	}
	if term.DirtyRows() != nil {
		t.Errorf("expected nil dirty rows, got %v", term.DirtyRows())
	}
}

func TestTerminalWideCharacter(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("中")

	cell, _ := term.Cell(0, 0)
	if !cell.IsWide() {
		t.Error("expected wide cell")
	}
	spacer, _ := term.Cell(0, 1)
	if !spacer.IsWideSpacer() {
		t.Error("expected spacer cell to be marked as spacer")
	}
	if _, col := term.CursorPos(); col != 2 {
		t.Errorf("expected cursor at col 2, got %d", col)
	}
}

func TestTerminalColors(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b[31;44mR\x1b[38;2;1;2;3mT\x1b[0mD")

	r, _ := term.Cell(0, 0)
	if r.Fg != NamedColor(Red) {
		t.Errorf("expected red fg, got %v", r.Fg)
	}
	if r.Bg != NamedColor(Blue) {
		t.Errorf("expected blue bg, got %v", r.Bg)
	}

	tc, _ := term.Cell(0, 1)
	if tc.Fg != RGB(1, 2, 3) {
		t.Errorf("expected rgb fg, got %v", tc.Fg)
	}

	d, _ := term.Cell(0, 2)
	if !d.Fg.IsDefault() || !d.Bg.IsDefault() {
		t.Errorf("expected default colors after reset, got %v/%v", d.Fg, d.Bg)
	}
}

func TestTerminalReverseKeepsStoredColors(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b[32;7mX")

	c, _ := term.Cell(0, 0)
	if !c.HasFlag(CellFlagReverse) {
		t.Fatal("expected reverse flag")
	}
	if c.Fg != NamedColor(Green) || !c.Bg.IsDefault() {
		t.Errorf("stored colors changed: %v/%v", c.Fg, c.Bg)
	}

	p := DefaultPalette()
	fg, bg := c.Resolve(p)
	if bg != p.Named[Green] {
		t.Errorf("expected green background after reverse, got %v", bg)
	}
	if fg.A == 0 {
		t.Error("expected opaque foreground after reverse")
	}
}

func TestTerminalSetScrollMarginsPrivateIgnored(t *testing.T) {
	for _, private := range []bool{false, true} {
		term := New(WithSize(10, 20))
		term.SetScrollMargins(2, 5, private)

		top, bottom := term.ScrollRegion()
		if top != 1 || bottom != 5 {
			t.Errorf("private=%v: expected region (1, 5), got (%d, %d)", private, top, bottom)
		}
	}
}

func TestTerminalPrivateScrollRegionFromStream(t *testing.T) {
	tests := []struct {
		name        string
		seq         string
		top, bottom int
	}{
		{"plain", "\x1b[2;5r", 1, 5},
		{"private", "\x1b[?2;5r", 1, 5},
		{"private top only", "\x1b[?3r", 2, 10},
		{"reset", "\x1b[2;5r\x1b[r", 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := New(WithSize(10, 20))
			term.WriteString(tt.seq)

			top, bottom := term.ScrollRegion()
			if top != tt.top || bottom != tt.bottom {
				t.Errorf("expected region (%d, %d), got (%d, %d)", tt.top, tt.bottom, top, bottom)
			}
		})
	}
}

func TestTerminalIgnoresNotificationAndUserVar(t *testing.T) {
	term := New(WithSize(5, 20))

	term.WriteString("\x1b]99;;hello\x1b\\\x1b]1337;SetUserVar=foo=YmFy\x07ok")
	if got := term.LineContent(0); got != "ok" {
		t.Errorf("expected %q, got %q", "ok", got)
	}
}

func TestTerminalScrollRegionFromStream(t *testing.T) {
	term := New(WithSize(10, 20))

	term.WriteString("\x1b[2;4r")
	top, bottom := term.ScrollRegion()
	if top != 1 || bottom != 4 {
		t.Fatalf("expected region (1, 4), got (%d, %d)", top, bottom)
	}

	term.WriteString("\x1b[1;1Hheader\x1b[4;1Hx\n\n\ny")
	if term.LineContent(0) != "header" {
		t.Errorf("expected header to stay outside the region, got %q", term.LineContent(0))
	}
	if term.ScrollbackLen() != 0 {
		t.Errorf("expected no scrollback from a region scroll, got %d", term.ScrollbackLen())
	}
}

func TestTerminalTitle(t *testing.T) {
	var got string
	term := New(WithTitle(titleFunc(func(s string) { got = s })))

	term.WriteString("\x1b]0;My Title\x07")

	if term.Title() != "My Title" {
		t.Errorf("expected 'My Title', got '%s'", term.Title())
	}
	if got != "My Title" {
		t.Errorf("expected provider to see 'My Title', got '%s'", got)
	}
}

type titleFunc func(string)

func (f titleFunc) SetTitle(s string) { f(s) }

type bellCounter struct{ n int }

func (b *bellCounter) Ring() { b.n++ }

func TestTerminalBell(t *testing.T) {
	bell := &bellCounter{}
	term := New(WithBell(bell))

	term.WriteString("\x07\x07")

	if bell.n != 2 {
		t.Errorf("expected 2 rings, got %d", bell.n)
	}
}

func TestTerminalAlternateScreen(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("Main screen")
	term.WriteString("\x1b[?1049h")

	if !term.IsAlternateScreen() {
		t.Fatal("expected alternate screen")
	}
	if term.LineContent(0) != "" {
		t.Error("expected alternate screen to be clear")
	}

	term.WriteString("\x1b[?1049l")
	if term.LineContent(0) != "Main screen" {
		t.Errorf("expected primary content restored, got %q", term.LineContent(0))
	}
	if _, col := term.CursorPos(); col != 11 {
		t.Errorf("expected cursor restored to col 11, got %d", col)
	}
}

func TestResponseWriter(t *testing.T) {
	var buf bytes.Buffer
	term := New(WithSize(24, 80), WithResponse(&buf))

	term.WriteString("\x1b[3;7H\x1b[6n")

	if buf.String() != "\x1b[3;7R" {
		t.Errorf("expected cursor report, got %q", buf.String())
	}
}

func TestTerminalResize(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("\x1b[24;80H")

	term.Resize(10, 40)

	row, col := term.CursorPos()
	if row != 9 || col != 39 {
		t.Errorf("expected cursor clamped to (9, 39), got (%d, %d)", row, col)
	}
	if term.Rows() != 10 || term.Cols() != 40 {
		t.Errorf("expected 10x40, got %dx%d", term.Rows(), term.Cols())
	}
}

func TestResizeInvalidDimensions(t *testing.T) {
	term := New(WithSize(24, 80))

	term.Resize(0, 10)
	term.Resize(10, -1)

	if term.Rows() != 24 || term.Cols() != 80 {
		t.Errorf("expected size unchanged, got %dx%d", term.Rows(), term.Cols())
	}
}

func TestTerminalLineDrawingCharset(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b(0q\x1b(Bq")

	if term.LineContent(0) != "─q" {
		t.Errorf("expected '─q', got %q", term.LineContent(0))
	}
}

func TestTerminalCursorMoveCancelsPendingWrap(t *testing.T) {
	tests := []struct {
		name string
		move string
	}{
		{"cup", "\x1b[1;80H"},
		{"cha", "\x1b[80G"},
		{"cr and cuf", "\r\x1b[79C"},
		{"save and restore", "\x1b7\x1b8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := New(WithSize(5, 80))
			term.WriteString(strings.Repeat("a", 80))
			term.WriteString(tt.move + "b")

			if c, _ := term.Cell(0, 79); c.Char != 'b' {
				t.Errorf("expected 'b' at (0, 79), got %q", c.Char)
			}
			if got := term.LineContent(1); got != "" {
				t.Errorf("expected row 1 empty, got %q", got)
			}
			if row, col := term.CursorPos(); row != 0 || col != 79 {
				t.Errorf("expected cursor (0, 79), got (%d, %d)", row, col)
			}
		})
	}
}

func TestTerminalPendingWrapStillWraps(t *testing.T) {
	term := New(WithSize(5, 10))
	term.WriteString(strings.Repeat("a", 10) + "b")

	if got := term.LineContent(1); got != "b" {
		t.Errorf("expected wrapped %q on row 1, got %q", "b", got)
	}
}
