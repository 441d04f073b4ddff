package termdesk

import (
	"testing"
)

func TestNewBuffer(t *testing.T) {
	b := NewBuffer(24, 80)

	if b.Rows() != 24 {
		t.Errorf("expected 24 rows, got %d", b.Rows())
	}
	if b.Cols() != 80 {
		t.Errorf("expected 80 cols, got %d", b.Cols())
	}
	if b.HasDirty() {
		t.Error("expected a new buffer to have no dirty rows")
	}
}

func TestBufferCellOutOfBounds(t *testing.T) {
	b := NewBuffer(24, 80)

	if b.Cell(-1, 0) != nil {
		t.Error("expected nil for negative row")
	}
	if b.Cell(0, -1) != nil {
		t.Error("expected nil for negative col")
	}
	if b.Cell(24, 0) != nil {
		t.Error("expected nil for row >= rows")
	}
	if b.Cell(0, 80) != nil {
		t.Error("expected nil for col >= cols")
	}
}

func TestBufferSetCellIgnoresOutOfRange(t *testing.T) {
	b := NewBuffer(4, 4)

	b.SetCell(10, 10, Cell{Char: 'x'})

	if b.HasDirty() {
		t.Error("expected out-of-range write to be ignored")
	}
}

func TestBufferDirtyRows(t *testing.T) {
	b := NewBuffer(5, 10)

	b.SetCell(3, 0, Cell{Char: 'a'})
	b.SetCell(1, 5, Cell{Char: 'b'})
	b.SetCell(3, 2, Cell{Char: 'c'})

	rows := b.DirtyRows()
	if len(rows) != 2 || rows[0] != 1 || rows[1] != 3 {
		t.Errorf("expected [1 3], got %v", rows)
	}

	b.ClearAllDirty()
	if b.HasDirty() || b.IsDirty(1) {
		t.Error("expected dirty set to be empty after clear")
	}
}

func TestBufferScrollUpPushesScrollback(t *testing.T) {
	storage := NewMemoryScrollback(10)
	b := NewBufferWithStorage(3, 5, storage)
	b.SetCell(0, 0, Cell{Char: 'A'})
	b.SetCell(1, 0, Cell{Char: 'B'})

	b.ScrollUp(0, 3, 1)

	if storage.Len() != 1 {
		t.Fatalf("expected 1 scrollback line, got %d", storage.Len())
	}
	if storage.Line(0)[0].Char != 'A' {
		t.Errorf("expected 'A' in scrollback, got %q", storage.Line(0)[0].Char)
	}
	if b.Cell(0, 0).Char != 'B' {
		t.Errorf("expected 'B' moved to row 0, got %q", b.Cell(0, 0).Char)
	}
	if len(b.DirtyRows()) != 3 {
		t.Errorf("expected all rows dirty after scroll, got %v", b.DirtyRows())
	}
}

func TestBufferScrollUpInsideRegionSkipsScrollback(t *testing.T) {
	storage := NewMemoryScrollback(10)
	b := NewBufferWithStorage(5, 5, storage)

	b.ScrollUp(1, 4, 1)

	if storage.Len() != 0 {
		t.Errorf("expected no scrollback, got %d", storage.Len())
	}
}

func TestBufferDeleteLinesSkipsScrollback(t *testing.T) {
	storage := NewMemoryScrollback(10)
	b := NewBufferWithStorage(5, 5, storage)
	b.SetCell(0, 0, Cell{Char: 'A'})

	b.DeleteLines(0, 1, 5)

	if storage.Len() != 0 {
		t.Errorf("expected deleted line to bypass scrollback, got %d lines", storage.Len())
	}
}

func TestBufferInsertAndDeleteChars(t *testing.T) {
	b := NewBuffer(1, 5)
	for i, r := range "abcde" {
		b.SetCell(0, i, Cell{Char: r})
	}

	b.InsertBlanks(0, 1, 2)
	if b.LineContent(0) != "a  bc" {
		t.Errorf("expected 'a  bc', got %q", b.LineContent(0))
	}

	b.DeleteChars(0, 1, 2)
	if b.LineContent(0) != "abc" {
		t.Errorf("expected 'abc', got %q", b.LineContent(0))
	}
}

func TestBufferTabStops(t *testing.T) {
	b := NewBuffer(1, 30)

	if b.NextTabStop(0) != 8 {
		t.Errorf("expected 8, got %d", b.NextTabStop(0))
	}
	b.SetTabStop(4)
	if b.NextTabStop(0) != 4 {
		t.Errorf("expected 4, got %d", b.NextTabStop(0))
	}
	b.ClearAllTabStops()
	if b.NextTabStop(0) != 29 {
		t.Errorf("expected last column, got %d", b.NextTabStop(0))
	}
	if b.PrevTabStop(10) != 0 {
		t.Errorf("expected 0, got %d", b.PrevTabStop(10))
	}
}

func TestBufferResize(t *testing.T) {
	b := NewBuffer(2, 2)
	b.SetCell(1, 1, Cell{Char: 'z'})

	b.Resize(3, 20)

	if b.Cell(1, 1).Char != 'z' {
		t.Error("expected content preserved")
	}
	if b.NextTabStop(8) != 16 {
		t.Errorf("expected tab stop at 16, got %d", b.NextTabStop(8))
	}
	if len(b.DirtyRows()) != 3 {
		t.Errorf("expected all rows dirty after resize, got %v", b.DirtyRows())
	}
}
