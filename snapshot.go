package termdesk

// SnapshotDetail selects how much per-cell information a Snapshot carries.
type SnapshotDetail string

const (
	// SnapshotDetailText includes only the trimmed text of each line.
	SnapshotDetailText SnapshotDetail = "text"
	// SnapshotDetailStyled groups runs of equally styled cells into segments.
	SnapshotDetailStyled SnapshotDetail = "styled"
)

// Snapshot is a serializable copy of the visible screen.
type Snapshot struct {
	Size   SnapshotSize   `json:"size"`
	Cursor SnapshotCursor `json:"cursor"`
	Title  string         `json:"title,omitempty"`
	Lines  []SnapshotLine `json:"lines"`
}

type SnapshotSize struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

type SnapshotCursor struct {
	Row     int  `json:"row"`
	Col     int  `json:"col"`
	Visible bool `json:"visible"`
}

type SnapshotLine struct {
	Text     string            `json:"text"`
	Segments []SnapshotSegment `json:"segments,omitempty"`
}

// SnapshotSegment is a run of cells sharing colors and attributes.
type SnapshotSegment struct {
	Text    string `json:"text"`
	Fg      string `json:"fg"`
	Bg      string `json:"bg"`
	Bold    bool   `json:"bold,omitempty"`
	Reverse bool   `json:"reverse,omitempty"`
}

// Snapshot captures the active buffer at the requested detail level.
func (t *Terminal) Snapshot(detail SnapshotDetail) *Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := &Snapshot{
		Size:   SnapshotSize{Rows: t.rows, Cols: t.cols},
		Cursor: SnapshotCursor{Row: t.cursor.Row, Col: t.cursor.Col, Visible: t.cursor.Visible},
		Title:  t.title,
		Lines:  make([]SnapshotLine, t.rows),
	}

	for row := 0; row < t.rows; row++ {
		snap.Lines[row].Text = t.activeBuffer.LineContent(row)
		if detail == SnapshotDetailStyled {
			snap.Lines[row].Segments = segments(t.activeBuffer.cells[row])
		}
	}
	return snap
}

func segments(line []Cell) []SnapshotSegment {
	var out []SnapshotSegment
	var chars []rune
	var cur *SnapshotSegment

	flush := func() {
		if cur != nil {
			cur.Text = string(chars)
			out = append(out, *cur)
		}
	}

	for i := range line {
		c := &line[i]
		if c.IsWideSpacer() {
			continue
		}
		seg := SnapshotSegment{
			Fg:      c.Fg.String(),
			Bg:      c.Bg.String(),
			Bold:    c.HasFlag(CellFlagBold),
			Reverse: c.HasFlag(CellFlagReverse),
		}
		if cur == nil || *cur != seg {
			flush()
			cur = &seg
			chars = chars[:0]
		}
		ch := c.Char
		if ch == 0 {
			ch = ' '
		}
		chars = append(chars, ch)
	}
	flush()
	return out
}
