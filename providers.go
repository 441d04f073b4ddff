package termdesk

import "io"

// BellProvider handles bell/beep events (BEL character, 0x07).
type BellProvider interface {
	Ring()
}

// TitleProvider handles window title changes (OSC 0/1/2).
type TitleProvider interface {
	SetTitle(title string)
}

// ResponseProvider receives bytes the terminal sends back to the program,
// such as cursor position reports. Usually the PTY master.
type ResponseProvider = io.Writer

// ScrollbackProvider stores lines scrolled off the top of the primary buffer.
type ScrollbackProvider interface {
	// Push appends a line. The oldest line is dropped once MaxLines is reached.
	Push(line []Cell)
	Len() int
	// Line returns the line at index, where 0 is the oldest. Returns nil if out of range.
	Line(index int) []Cell
	Clear()
	SetMaxLines(max int)
	MaxLines() int
}

// NoopBell ignores all bell events.
type NoopBell struct{}

func (NoopBell) Ring() {}

// NoopTitle ignores all title changes.
type NoopTitle struct{}

func (NoopTitle) SetTitle(title string) {}

// NoopResponse discards all terminal responses.
type NoopResponse struct{}

func (NoopResponse) Write(p []byte) (int, error) { return len(p), nil }

// NoopScrollback discards all scrollback lines (the alternate buffer uses it).
type NoopScrollback struct{}

func (NoopScrollback) Push(line []Cell)      {}
func (NoopScrollback) Len() int              { return 0 }
func (NoopScrollback) Line(index int) []Cell { return nil }
func (NoopScrollback) Clear()                {}
func (NoopScrollback) SetMaxLines(max int)   {}
func (NoopScrollback) MaxLines() int         { return 0 }

var (
	_ BellProvider       = NoopBell{}
	_ TitleProvider      = NoopTitle{}
	_ ResponseProvider   = NoopResponse{}
	_ ScrollbackProvider = NoopScrollback{}
	_ ScrollbackProvider = (*MemoryScrollback)(nil)
)

// MemoryScrollback is a fixed-capacity ring of scrollback lines.
// When full, pushing a line silently overwrites the oldest one.
//
//	storage := termdesk.NewMemoryScrollback(1000)
//	term := termdesk.New(termdesk.WithScrollback(storage))
type MemoryScrollback struct {
	lines    [][]Cell
	start    int
	count    int
	maxLines int
}

// NewMemoryScrollback creates a ring holding at most maxLines lines.
// A maxLines of 0 stores nothing.
func NewMemoryScrollback(maxLines int) *MemoryScrollback {
	if maxLines < 0 {
		maxLines = 0
	}
	return &MemoryScrollback{
		lines:    make([][]Cell, maxLines),
		maxLines: maxLines,
	}
}

// Push stores a copy of line.
func (m *MemoryScrollback) Push(line []Cell) {
	if m.maxLines == 0 {
		return
	}
	lineCopy := make([]Cell, len(line))
	copy(lineCopy, line)

	if m.count < m.maxLines {
		m.lines[(m.start+m.count)%m.maxLines] = lineCopy
		m.count++
		return
	}
	m.lines[m.start] = lineCopy
	m.start = (m.start + 1) % m.maxLines
}

func (m *MemoryScrollback) Len() int {
	return m.count
}

func (m *MemoryScrollback) Line(index int) []Cell {
	if index < 0 || index >= m.count {
		return nil
	}
	return m.lines[(m.start+index)%m.maxLines]
}

func (m *MemoryScrollback) Clear() {
	m.lines = make([][]Cell, m.maxLines)
	m.start = 0
	m.count = 0
}

// SetMaxLines changes the capacity, keeping the newest lines.
func (m *MemoryScrollback) SetMaxLines(max int) {
	if max < 0 {
		max = 0
	}
	keep := m.count
	if keep > max {
		keep = max
	}
	lines := make([][]Cell, max)
	for i := 0; i < keep; i++ {
		lines[i] = m.Line(m.count - keep + i)
	}
	m.lines = lines
	m.start = 0
	m.count = keep
	m.maxLines = max
}

func (m *MemoryScrollback) MaxLines() int {
	return m.maxLines
}
