package termdesk

// Buffer is a fixed grid of cells with per-row dirty tracking.
// Rows scrolled off the top of the full screen are handed to the scrollback provider.
type Buffer struct {
	rows       int
	cols       int
	cells      [][]Cell
	wrapped    []bool // line continued onto the next row by autowrap
	tabStop    []bool
	dirty      []bool
	hasDirty   bool
	scrollback ScrollbackProvider
}

// NewBuffer creates a buffer without scrollback.
func NewBuffer(rows, cols int) *Buffer {
	return NewBufferWithStorage(rows, cols, NoopScrollback{})
}

// NewBufferWithStorage creates a buffer whose evicted rows go to storage.
func NewBufferWithStorage(rows, cols int, storage ScrollbackProvider) *Buffer {
	b := &Buffer{
		rows:       rows,
		cols:       cols,
		cells:      make([][]Cell, rows),
		wrapped:    make([]bool, rows),
		tabStop:    make([]bool, cols),
		dirty:      make([]bool, rows),
		scrollback: storage,
	}

	for i := range b.cells {
		b.cells[i] = blankRow(cols)
	}

	for i := 0; i < cols; i += 8 {
		b.tabStop[i] = true
	}

	return b
}

func blankRow(cols int) []Cell {
	row := make([]Cell, cols)
	for i := range row {
		row[i] = NewCell()
	}
	return row
}

func (b *Buffer) Rows() int { return b.rows }
func (b *Buffer) Cols() int { return b.cols }

// Cell returns the cell at (row, col), or nil when out of range.
func (b *Buffer) Cell(row, col int) *Cell {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return nil
	}
	return &b.cells[row][col]
}

// SetCell stores cell at (row, col) and marks the row dirty. Out-of-range writes are ignored.
func (b *Buffer) SetCell(row, col int, cell Cell) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return
	}
	b.cells[row][col] = cell
	b.MarkDirty(row)
}

// MarkDirty adds row to the dirty set.
func (b *Buffer) MarkDirty(row int) {
	if row < 0 || row >= b.rows {
		return
	}
	b.dirty[row] = true
	b.hasDirty = true
}

func (b *Buffer) markRange(top, bottom int) {
	for row := top; row < bottom; row++ {
		b.MarkDirty(row)
	}
}

// MarkAllDirty adds every row to the dirty set.
func (b *Buffer) MarkAllDirty() {
	b.markRange(0, b.rows)
}

func (b *Buffer) HasDirty() bool {
	return b.hasDirty
}

// IsDirty reports whether row is in the dirty set.
func (b *Buffer) IsDirty(row int) bool {
	if row < 0 || row >= b.rows {
		return false
	}
	return b.dirty[row]
}

// DirtyRows returns the dirty row indices in ascending order.
func (b *Buffer) DirtyRows() []int {
	if !b.hasDirty {
		return nil
	}
	rows := make([]int, 0, b.rows)
	for row, d := range b.dirty {
		if d {
			rows = append(rows, row)
		}
	}
	return rows
}

// ClearAllDirty empties the dirty set.
func (b *Buffer) ClearAllDirty() {
	for i := range b.dirty {
		b.dirty[i] = false
	}
	b.hasDirty = false
}

// ClearRow resets every cell in row.
func (b *Buffer) ClearRow(row int) {
	b.ClearRowRange(row, 0, b.cols)
}

// ClearRowRange resets cells [startCol, endCol) in row.
func (b *Buffer) ClearRowRange(row, startCol, endCol int) {
	if row < 0 || row >= b.rows {
		return
	}
	if startCol < 0 {
		startCol = 0
	}
	if endCol > b.cols {
		endCol = b.cols
	}
	for col := startCol; col < endCol; col++ {
		b.cells[row][col].Reset()
	}
	b.MarkDirty(row)
}

// ClearAll resets every cell in the buffer.
func (b *Buffer) ClearAll() {
	for row := range b.cells {
		b.ClearRow(row)
		b.wrapped[row] = false
	}
}

// ScrollUp moves rows [top, bottom) up by n. When the region starts at the
// top of the screen the evicted rows are pushed to scrollback.
func (b *Buffer) ScrollUp(top, bottom, n int) {
	if top < 0 {
		top = 0
	}
	if bottom > b.rows {
		bottom = b.rows
	}
	if n <= 0 || top >= bottom {
		return
	}
	if n > bottom-top {
		n = bottom - top
	}

	if top == 0 && b.scrollback != nil {
		for i := 0; i < n; i++ {
			b.scrollback.Push(b.cells[i])
		}
	}

	for row := top; row < bottom-n; row++ {
		b.cells[row] = b.cells[row+n]
		b.wrapped[row] = b.wrapped[row+n]
	}
	for row := bottom - n; row < bottom; row++ {
		b.cells[row] = blankRow(b.cols)
		b.wrapped[row] = false
	}
	b.markRange(top, bottom)
}

// ScrollDown moves rows [top, bottom) down by n, inserting blank rows at top.
func (b *Buffer) ScrollDown(top, bottom, n int) {
	if top < 0 {
		top = 0
	}
	if bottom > b.rows {
		bottom = b.rows
	}
	if n <= 0 || top >= bottom {
		return
	}
	if n > bottom-top {
		n = bottom - top
	}

	for row := bottom - 1; row >= top+n; row-- {
		b.cells[row] = b.cells[row-n]
		b.wrapped[row] = b.wrapped[row-n]
	}
	for row := top; row < top+n; row++ {
		b.cells[row] = blankRow(b.cols)
		b.wrapped[row] = false
	}
	b.markRange(top, bottom)
}

// InsertLines inserts n blank lines at row, pushing lines below toward bottom.
func (b *Buffer) InsertLines(row, n, bottom int) {
	if row < 0 || row >= bottom || n <= 0 {
		return
	}
	b.ScrollDown(row, bottom, n)
}

// DeleteLines removes n lines at row, pulling lines from below up.
// Deleted lines never go to scrollback.
func (b *Buffer) DeleteLines(row, n, bottom int) {
	if row < 0 || row >= bottom || n <= 0 {
		return
	}
	storage := b.scrollback
	b.scrollback = nil
	b.ScrollUp(row, bottom, n)
	b.scrollback = storage
}

// InsertBlanks shifts cells right from col by n, blanking the gap.
func (b *Buffer) InsertBlanks(row, col, n int) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols || n <= 0 {
		return
	}
	line := b.cells[row]
	for c := b.cols - 1; c >= col+n; c-- {
		line[c] = line[c-n]
	}
	for c := col; c < col+n && c < b.cols; c++ {
		line[c].Reset()
	}
	b.MarkDirty(row)
}

// DeleteChars removes n cells at col, shifting the rest of the row left.
func (b *Buffer) DeleteChars(row, col, n int) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols || n <= 0 {
		return
	}
	if n > b.cols-col {
		n = b.cols - col
	}
	line := b.cells[row]
	copy(line[col:], line[col+n:])
	for c := b.cols - n; c < b.cols; c++ {
		line[c].Reset()
	}
	b.MarkDirty(row)
}

// Resize changes the grid dimensions, keeping the top-left content.
func (b *Buffer) Resize(rows, cols int) {
	if rows <= 0 || cols <= 0 {
		return
	}

	cells := make([][]Cell, rows)
	for i := range cells {
		cells[i] = blankRow(cols)
		if i < b.rows {
			copy(cells[i], b.cells[i])
		}
	}

	wrapped := make([]bool, rows)
	copy(wrapped, b.wrapped)

	tabStop := make([]bool, cols)
	copy(tabStop, b.tabStop)
	for i := len(b.tabStop); i < cols; i++ {
		tabStop[i] = i%8 == 0
	}

	b.cells = cells
	b.wrapped = wrapped
	b.tabStop = tabStop
	b.dirty = make([]bool, rows)
	b.rows = rows
	b.cols = cols
	b.MarkAllDirty()
}

func (b *Buffer) SetTabStop(col int) {
	if col >= 0 && col < b.cols {
		b.tabStop[col] = true
	}
}

func (b *Buffer) ClearTabStop(col int) {
	if col >= 0 && col < b.cols {
		b.tabStop[col] = false
	}
}

func (b *Buffer) ClearAllTabStops() {
	for i := range b.tabStop {
		b.tabStop[i] = false
	}
}

// NextTabStop returns the next tab stop after col, or the last column.
func (b *Buffer) NextTabStop(col int) int {
	for c := col + 1; c < b.cols; c++ {
		if b.tabStop[c] {
			return c
		}
	}
	return b.cols - 1
}

// PrevTabStop returns the previous tab stop before col, or column 0.
func (b *Buffer) PrevTabStop(col int) int {
	for c := col - 1; c >= 0; c-- {
		if b.tabStop[c] {
			return c
		}
	}
	return 0
}

// Fill sets every cell to r (used by DECALN).
func (b *Buffer) Fill(r rune) {
	for row := range b.cells {
		for col := range b.cells[row] {
			b.cells[row][col].Reset()
			b.cells[row][col].Char = r
		}
	}
	b.MarkAllDirty()
}

func (b *Buffer) ScrollbackLen() int {
	if b.scrollback == nil {
		return 0
	}
	return b.scrollback.Len()
}

func (b *Buffer) ScrollbackLine(index int) []Cell {
	if b.scrollback == nil {
		return nil
	}
	return b.scrollback.Line(index)
}

func (b *Buffer) ClearScrollback() {
	if b.scrollback != nil {
		b.scrollback.Clear()
	}
}

// LineContent returns the text of row with trailing blanks trimmed.
func (b *Buffer) LineContent(row int) string {
	if row < 0 || row >= b.rows {
		return ""
	}
	return lineText(b.cells[row])
}

func lineText(line []Cell) string {
	last := -1
	for col := len(line) - 1; col >= 0; col-- {
		c := &line[col]
		if c.Char != ' ' && c.Char != 0 && !c.IsWideSpacer() {
			last = col
			break
		}
	}
	if last < 0 {
		return ""
	}

	runes := make([]rune, 0, last+1)
	for col := range line[:last+1] {
		c := &line[col]
		if c.IsWideSpacer() {
			continue
		}
		if c.Char == 0 {
			runes = append(runes, ' ')
		} else {
			runes = append(runes, c.Char)
		}
	}
	return string(runes)
}

func (b *Buffer) IsWrapped(row int) bool {
	if row < 0 || row >= b.rows {
		return false
	}
	return b.wrapped[row]
}

func (b *Buffer) SetWrapped(row int, wrapped bool) {
	if row < 0 || row >= b.rows {
		return
	}
	b.wrapped[row] = wrapped
}

// Position is a 0-based grid coordinate.
type Position struct {
	Row int
	Col int
}
