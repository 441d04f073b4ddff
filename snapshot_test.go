package termdesk

import "testing"

func TestSnapshotText(t *testing.T) {
	term := New(WithSize(3, 10))
	term.WriteString("hi\r\nthere")

	snap := term.Snapshot(SnapshotDetailText)

	if snap.Size.Rows != 3 || snap.Size.Cols != 10 {
		t.Errorf("unexpected size %+v", snap.Size)
	}
	if snap.Lines[0].Text != "hi" || snap.Lines[1].Text != "there" {
		t.Errorf("unexpected lines %+v", snap.Lines)
	}
	if snap.Cursor.Row != 1 || snap.Cursor.Col != 5 {
		t.Errorf("unexpected cursor %+v", snap.Cursor)
	}
	if snap.Lines[0].Segments != nil {
		t.Error("expected no segments at text detail")
	}
}

func TestSnapshotStyledSegments(t *testing.T) {
	term := New(WithSize(1, 6))
	term.WriteString("ab\x1b[31mcd")

	snap := term.Snapshot(SnapshotDetailStyled)
	segs := snap.Lines[0].Segments

	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(segs), segs)
	}
	if segs[0].Text != "ab" || segs[0].Fg != "default" {
		t.Errorf("unexpected first segment %+v", segs[0])
	}
	if segs[1].Text != "cd" || segs[1].Fg != "red" {
		t.Errorf("unexpected second segment %+v", segs[1])
	}
	if segs[2].Text != "  " {
		t.Errorf("unexpected trailing segment %+v", segs[2])
	}
}
