package termdesk

import (
	"image/color"
	"strings"
	"sync"

	"github.com/danielgatis/go-ansicode"
	"github.com/danielgatis/go-vte"
	"go.uber.org/zap"
)

// Ensure Terminal implements ansicode.Handler
var _ ansicode.Handler = (*Terminal)(nil)

// TerminalMode is a bitmask of terminal behavior flags.
type TerminalMode uint32

const (
	ModeCursorKeys TerminalMode = 1 << iota
	ModeInsert
	ModeOrigin
	ModeLineWrap
	ModeLineFeedNewLine
	ModeShowCursor
	ModeReportMouseClicks
	ModeReportCellMouseMotion
	ModeReportAllMouseMotion
	ModeSGRMouse
	ModeAlternateScreen
	ModeBracketedPaste
	ModeKeypadApplication
)

const (
	DefaultRows = 25
	DefaultCols = 80
)

// Terminal is a VT-style screen state machine. Bytes written to it are
// decoded into a grid of cells, a cursor and a set of dirty rows.
// It keeps two buffers: primary (with scrollback) and alternate (without).
// All methods are safe for concurrent use.
type Terminal struct {
	mu sync.RWMutex

	rows int
	cols int

	primaryBuffer   *Buffer
	alternateBuffer *Buffer
	activeBuffer    *Buffer

	cursor      *Cursor
	savedCursor *SavedCursor

	// set after writing the last column; the next printable wraps first
	wrapPending bool
	wrapAt      Position

	// attributes applied to newly written characters
	template Cell

	charsets      [4]Charset
	activeCharset int

	// scrolling region, 0-based, bottom exclusive
	scrollTop    int
	scrollBottom int

	modes TerminalMode

	title      string
	titleStack []string

	// OSC 4 palette overrides
	colors map[int]color.RGBA

	keyboardModes []ansicode.KeyboardMode

	parser *vte.Parser

	// responses queued while the lock is held, flushed after each Write
	pending []byte

	scrollbackStorage ScrollbackProvider
	responseProvider  ResponseProvider
	bellProvider      BellProvider
	titleProvider     TitleProvider

	logger *zap.Logger
}

// Option configures a Terminal during construction.
type Option func(*Terminal)

// WithSize sets the terminal dimensions. Values <= 0 keep the defaults.
func WithSize(rows, cols int) Option {
	return func(t *Terminal) {
		if rows > 0 {
			t.rows = rows
		}
		if cols > 0 {
			t.cols = cols
		}
	}
}

// WithResponse sets the writer for terminal responses (device status reports).
func WithResponse(p ResponseProvider) Option {
	return func(t *Terminal) {
		t.responseProvider = p
	}
}

// WithBell sets the handler for bell events.
func WithBell(p BellProvider) Option {
	return func(t *Terminal) {
		t.bellProvider = p
	}
}

// WithTitle sets the handler for window title changes.
func WithTitle(p TitleProvider) Option {
	return func(t *Terminal) {
		t.titleProvider = p
	}
}

// WithScrollback sets the storage for lines evicted off the top of the primary buffer.
func WithScrollback(storage ScrollbackProvider) Option {
	return func(t *Terminal) {
		t.scrollbackStorage = storage
	}
}

// WithLogger sets the logger used for ignored or unsupported sequences.
func WithLogger(l *zap.Logger) Option {
	return func(t *Terminal) {
		if l != nil {
			t.logger = l
		}
	}
}

// New creates a terminal. Defaults to 25x80 with line wrap and a visible cursor.
func New(opts ...Option) *Terminal {
	t := &Terminal{
		rows:             DefaultRows,
		cols:             DefaultCols,
		colors:           make(map[int]color.RGBA),
		responseProvider: NoopResponse{},
		bellProvider:     NoopBell{},
		titleProvider:    NoopTitle{},
		logger:           zap.NewNop(),
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.scrollbackStorage == nil {
		t.scrollbackStorage = NoopScrollback{}
	}
	t.primaryBuffer = NewBufferWithStorage(t.rows, t.cols, t.scrollbackStorage)
	t.alternateBuffer = NewBuffer(t.rows, t.cols)
	t.activeBuffer = t.primaryBuffer

	t.cursor = NewCursor()
	t.template = NewCell()

	t.scrollTop = 0
	t.scrollBottom = t.rows

	t.modes = ModeLineWrap | ModeShowCursor

	t.parser = newParser(t)

	return t
}

// Write feeds raw bytes from the program. Partial escape sequences are
// buffered by the parser until the rest arrives.
func (t *Terminal) Write(data []byte) (int, error) {
	for _, b := range data {
		t.parser.Advance(b)
	}
	t.flushResponses()
	return len(data), nil
}

// WriteString is Write for strings.
func (t *Terminal) WriteString(s string) (int, error) {
	return t.Write([]byte(s))
}

// Feed is Write without the io.Writer results; decoding never fails.
func (t *Terminal) Feed(data []byte) {
	_, _ = t.Write(data)
}

func (t *Terminal) flushResponses() {
	t.mu.Lock()
	data := t.pending
	t.pending = nil
	provider := t.responseProvider
	t.mu.Unlock()

	if len(data) == 0 || provider == nil {
		return
	}
	if _, err := provider.Write(data); err != nil {
		t.logger.Debug("terminal response dropped", zap.Error(err))
	}
}

// respond queues a reply to the program. Caller must hold t.mu.
func (t *Terminal) respond(s string) {
	t.pending = append(t.pending, s...)
}

func (t *Terminal) Rows() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rows
}

func (t *Terminal) Cols() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cols
}

// Cell returns a copy of the cell at (row, col) in the active buffer.
// ok is false if the coordinates are out of bounds.
func (t *Terminal) Cell(row, col int) (Cell, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c := t.activeBuffer.Cell(row, col)
	if c == nil {
		return Cell{}, false
	}
	return *c, true
}

// Row returns a copy of one row of the active buffer.
func (t *Terminal) Row(row int) []Cell {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if row < 0 || row >= t.rows {
		return nil
	}
	out := make([]Cell, t.cols)
	copy(out, t.activeBuffer.cells[row])
	return out
}

// CursorPos returns the current cursor position (0-based).
func (t *Terminal) CursorPos() (row, col int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cursor.Row, t.cursor.Col
}

func (t *Terminal) CursorVisible() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cursor.Visible
}

func (t *Terminal) CursorStyle() CursorStyle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cursor.Style
}

func (t *Terminal) Title() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.title
}

// HasMode returns true if the mode flag is set.
func (t *Terminal) HasMode(mode TerminalMode) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.modes&mode != 0
}

func (t *Terminal) IsAlternateScreen() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activeBuffer == t.alternateBuffer
}

// ScrollRegion returns the scrolling region as 0-based rows, bottom exclusive.
func (t *Terminal) ScrollRegion() (top, bottom int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.scrollTop, t.scrollBottom
}

// SetScrollMargins sets the scrolling region from 1-based inclusive
// margins. Zero or out-of-range values select the screen edge. The private
// flag (the DEC private form of the sequence) is accepted and ignored.
func (t *Terminal) SetScrollMargins(top, bottom int, private bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setScrollMarginsLocked(top, bottom)
}

func (t *Terminal) setScrollMarginsLocked(top, bottom int) {
	top--
	if top < 0 {
		top = 0
	}
	if bottom <= 0 || bottom > t.rows {
		bottom = t.rows
	}
	if top >= bottom-1 {
		return
	}

	t.scrollTop = top
	t.scrollBottom = bottom
	t.wrapPending = false

	if t.modes&ModeOrigin != 0 {
		t.cursor.Row = t.scrollTop
	} else {
		t.cursor.Row = 0
	}
	t.cursor.Col = 0
}

// Resize changes the grid dimensions. The scrolling region is reset.
func (t *Terminal) Resize(rows, cols int) {
	if rows <= 0 || cols <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if rows < t.rows && t.activeBuffer == t.primaryBuffer && t.cursor.Row >= rows {
		n := t.cursor.Row - rows + 1
		t.primaryBuffer.ScrollUp(0, t.rows, n)
		t.cursor.Row -= n
	}

	t.rows = rows
	t.cols = cols
	t.primaryBuffer.Resize(rows, cols)
	t.alternateBuffer.Resize(rows, cols)

	t.cursor.Row = clamp(t.cursor.Row, 0, rows-1)
	t.cursor.Col = clamp(t.cursor.Col, 0, cols-1)

	t.scrollTop = 0
	t.scrollBottom = rows
}

// HasDirty reports whether any row changed since the last ClearDirty.
func (t *Terminal) HasDirty() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activeBuffer.HasDirty()
}

// DirtyRows returns the rows changed since the last ClearDirty, ascending.
func (t *Terminal) DirtyRows() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activeBuffer.DirtyRows()
}

// ClearDirty empties the dirty set. Renderers call it after a successful pass.
func (t *Terminal) ClearDirty() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activeBuffer.ClearAllDirty()
}

func (t *Terminal) ScrollbackLen() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.primaryBuffer.ScrollbackLen()
}

// ScrollbackLine returns a scrollback line, 0 being the oldest.
func (t *Terminal) ScrollbackLine(index int) []Cell {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.primaryBuffer.ScrollbackLine(index)
}

func (t *Terminal) ClearScrollback() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.primaryBuffer.ClearScrollback()
}

// LineContent returns the text of a row in the active buffer, trailing blanks trimmed.
func (t *Terminal) LineContent(row int) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activeBuffer.LineContent(row)
}

// String returns the screen text up to the last non-empty row.
func (t *Terminal) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	lines := make([]string, t.rows)
	last := -1
	for row := range lines {
		lines[row] = t.activeBuffer.LineContent(row)
		if lines[row] != "" {
			last = row
		}
	}
	return strings.Join(lines[:last+1], "\n")
}

func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// effectiveRow converts a row relative to origin mode into an absolute row.
func (t *Terminal) effectiveRow(row int) int {
	if t.modes&ModeOrigin != 0 {
		return row + t.scrollTop
	}
	return row
}

// scrollIfNeeded brings the cursor back inside the scrolling region,
// scrolling the region content to make room.
func (t *Terminal) scrollIfNeeded() {
	if t.cursor.Row >= t.scrollBottom {
		n := t.cursor.Row - t.scrollBottom + 1
		t.activeBuffer.ScrollUp(t.scrollTop, t.scrollBottom, n)
		t.cursor.Row = t.scrollBottom - 1
	} else if t.cursor.Row < t.scrollTop {
		n := t.scrollTop - t.cursor.Row
		t.activeBuffer.ScrollDown(t.scrollTop, t.scrollBottom, n)
		t.cursor.Row = t.scrollTop
	}
}
