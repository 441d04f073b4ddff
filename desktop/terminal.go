package desktop

import (
	"context"
	"image"
	"image/color"
	"io"

	"go.uber.org/zap"

	termdesk "github.com/danielgatis/go-termdesk"
	"github.com/danielgatis/go-termdesk/input"
	"github.com/danielgatis/go-termdesk/metrics"
	"github.com/danielgatis/go-termdesk/pty"
	"github.com/danielgatis/go-termdesk/render"
)

// CursorColor is blended over the cell under the cursor.
var CursorColor = color.RGBA{255, 255, 255, 100}

// Child is the process behind a terminal layer. *pty.Child implements it.
type Child interface {
	io.ReadWriter
	Ready() (bool, error)
	Resize(rows, cols int) error
	Close() error
}

var _ Child = (*pty.Child)(nil)

type cursorState struct {
	row, col int
	visible  bool
}

// TerminalLayer shows a terminal fed by a child process and routes key
// events to it.
type TerminalLayer struct {
	name    string
	enabled bool

	term       *termdesk.Terminal
	child      Child
	translator *input.Translator
	palette    *termdesk.Palette
	buf        []byte

	spawn  Spawner
	inert  bool
	full   bool
	cursor cursorState

	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Spawner starts a new child sized rows x cols.
type Spawner func(rows, cols int) (Child, error)

// TerminalOption configures a TerminalLayer.
type TerminalOption func(*terminalOptions)

type terminalOptions struct {
	rows, cols int
	termOpts   []termdesk.Option
	translator *input.Translator
	palette    *termdesk.Palette
	disabled   bool
	spawn      Spawner
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// WithTerminalSize sets the grid size, 25x80 by default.
func WithTerminalSize(rows, cols int) TerminalOption {
	return func(o *terminalOptions) {
		o.rows, o.cols = rows, cols
	}
}

// WithTerminalOptions passes extra options to the emulator, such as a
// bell or scrollback provider.
func WithTerminalOptions(opts ...termdesk.Option) TerminalOption {
	return func(o *terminalOptions) {
		o.termOpts = append(o.termOpts, opts...)
	}
}

// WithTranslator sets the key translator. Without one, key events are
// ignored.
func WithTranslator(t *input.Translator) TerminalOption {
	return func(o *terminalOptions) {
		o.translator = t
	}
}

// WithPalette sets the palette cells are resolved through.
func WithPalette(p *termdesk.Palette) TerminalOption {
	return func(o *terminalOptions) {
		if p != nil {
			o.palette = p
		}
	}
}

// WithDisabled creates the layer disabled.
func WithDisabled() TerminalOption {
	return func(o *terminalOptions) {
		o.disabled = true
	}
}

// WithSpawner starts a fresh child whenever the layer is enabled without
// a live one.
func WithSpawner(fn Spawner) TerminalOption {
	return func(o *terminalOptions) {
		o.spawn = fn
	}
}

// WithTerminalLogger sets the logger.
func WithTerminalLogger(l *zap.Logger) TerminalOption {
	return func(o *terminalOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTerminalMetrics sets the metrics collector.
func WithTerminalMetrics(m *metrics.Metrics) TerminalOption {
	return func(o *terminalOptions) {
		o.metrics = m
	}
}

// NewTerminalLayer creates a layer showing child's output. child may be
// nil for a terminal fed only through Feed.
func NewTerminalLayer(name string, child Child, opts ...TerminalOption) *TerminalLayer {
	o := terminalOptions{
		rows:    termdesk.DefaultRows,
		cols:    termdesk.DefaultCols,
		palette: termdesk.DefaultPalette(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	l := &TerminalLayer{
		name:       name,
		enabled:    !o.disabled,
		child:      child,
		translator: o.translator,
		palette:    o.palette,
		buf:        make([]byte, pty.MaxRead),
		spawn:      o.spawn,
		full:       true,
		logger:     o.logger.With(zap.String("layer", name)),
		metrics:    o.metrics,
	}

	termOpts := append([]termdesk.Option{
		termdesk.WithSize(o.rows, o.cols),
		termdesk.WithLogger(o.logger),
		termdesk.WithResponse(childWriter{l}),
	}, o.termOpts...)
	l.term = termdesk.New(termOpts...)
	if l.enabled && child == nil {
		l.respawn()
	}
	return l
}

func (l *TerminalLayer) respawn() {
	if l.spawn == nil {
		return
	}
	child, err := l.spawn(l.term.Rows(), l.term.Cols())
	if err != nil {
		l.logger.Warn("child start failed", zap.Error(err))
		return
	}
	l.child = child
	l.inert = false
	l.logger.Info("child started")
}

func (l *TerminalLayer) Name() string { return l.name }

func (l *TerminalLayer) Enabled() bool { return l.enabled }

// SetEnabled shows or hides the layer. Disabling kills the child; the
// layer keeps showing its last screen if enabled again.
func (l *TerminalLayer) SetEnabled(enabled bool) {
	if enabled == l.enabled {
		return
	}
	l.enabled = enabled
	if enabled {
		l.full = true
		if l.Inert() {
			l.respawn()
		}
		return
	}
	l.stopChild()
}

// Terminal returns the emulator.
func (l *TerminalLayer) Terminal() *termdesk.Terminal { return l.term }

// Translator returns the key translator, or nil.
func (l *TerminalLayer) Translator() *input.Translator { return l.translator }

// Inert reports whether the child is gone.
func (l *TerminalLayer) Inert() bool { return l.inert || l.child == nil }

// Invalidate forces the next Draw to repaint every row.
func (l *TerminalLayer) Invalidate() { l.full = true }

// Update performs at most one non-blocking read from the child and feeds
// it to the terminal.
func (l *TerminalLayer) Update(ctx context.Context) error {
	if l.Inert() {
		return nil
	}
	ready, err := l.child.Ready()
	if err != nil {
		l.markInert(err)
		return nil
	}
	if !ready {
		return nil
	}
	n, err := l.child.Read(l.buf)
	if n > 0 {
		l.term.Feed(l.buf[:n])
		l.metrics.PTYRead(n)
	}
	if err != nil {
		l.markInert(err)
	}
	return nil
}

func (l *TerminalLayer) markInert(err error) {
	if l.inert {
		return
	}
	l.inert = true
	l.logger.Info("child gone, terminal is now inert", zap.Error(err))
	l.metrics.ChildExited()
}

// Feed writes bytes to the terminal as if the child printed them.
func (l *TerminalLayer) Feed(data []byte) {
	l.term.Feed(data)
}

// Send writes input to the child. Errors mark the layer inert and are
// otherwise ignored.
func (l *TerminalLayer) Send(data []byte) {
	if len(data) == 0 || l.Inert() {
		return
	}
	n, err := l.child.Write(data)
	l.metrics.PTYWritten(n)
	if err != nil {
		l.markInert(err)
	}
}

// childWriter carries terminal responses (device reports) to the child.
type childWriter struct{ l *TerminalLayer }

func (w childWriter) Write(p []byte) (int, error) {
	w.l.Send(p)
	return len(p), nil
}

// HandleKey translates ev and sends the result to the child.
func (l *TerminalLayer) HandleKey(ev input.KeyEvent) []byte {
	if l.translator == nil {
		return nil
	}
	out := l.translator.Translate(ev)
	if len(out) > 0 {
		l.Send(out)
		l.metrics.KeyHandled()
	}
	return out
}

// HandleMouse reports a click at cell (col, row) when the child asked for
// SGR mouse reports. It returns whether a report was sent.
func (l *TerminalLayer) HandleMouse(button, col, row int, pressed bool) bool {
	if !l.term.HasMode(termdesk.ModeReportMouseClicks) || !l.term.HasMode(termdesk.ModeSGRMouse) {
		return false
	}
	if row < 0 || col < 0 || row >= l.term.Rows() || col >= l.term.Cols() {
		return false
	}
	l.Send(input.MouseReport(button, col, row, pressed))
	return true
}

// Resize changes the grid and the child's window size.
func (l *TerminalLayer) Resize(rows, cols int) {
	if rows <= 0 || cols <= 0 {
		return
	}
	l.term.Resize(rows, cols)
	if !l.Inert() {
		if err := l.child.Resize(rows, cols); err != nil {
			l.logger.Warn("child resize failed", zap.Error(err))
		}
	}
	l.full = true
}

// Draw repaints the dirty rows and the cells under the previous and the
// current cursor. When nothing changed it issues no draw calls.
func (l *TerminalLayer) Draw(c render.Canvas) error {
	row, col := l.term.CursorPos()
	cur := cursorState{row: row, col: col, visible: l.term.CursorVisible()}

	var rows []int
	if l.full {
		c.Clear(render.Transparent)
		rows = make([]int, l.term.Rows())
		for i := range rows {
			rows[i] = i
		}
	} else {
		rows = l.term.DirtyRows()
	}
	if len(rows) == 0 && cur == l.cursor {
		return nil
	}

	redrawn := make(map[int]bool, len(rows))
	for _, r := range rows {
		l.drawRow(c, r)
		redrawn[r] = true
	}

	prev := l.cursor
	if prev.visible && !redrawn[prev.row] && (prev.row != cur.row || prev.col != cur.col || !cur.visible) {
		l.drawCell(c, prev.row, prev.col)
	}
	if cur.visible {
		if !redrawn[cur.row] && cur != prev {
			l.drawCell(c, cur.row, cur.col)
		}
		if redrawn[cur.row] || cur != prev {
			c.FillRect(render.CellRect(c, cur.col, cur.row), CursorColor)
		}
	}

	l.term.ClearDirty()
	l.cursor = cur
	l.full = false
	return nil
}

func (l *TerminalLayer) drawRow(c render.Canvas, row int) {
	cells := l.term.Row(row)
	c.ClearRect(render.RowRect(c, row, len(cells)), render.Transparent)
	for col := range cells {
		l.paintCell(c, row, col, &cells[col])
	}
}

func (l *TerminalLayer) drawCell(c render.Canvas, row, col int) {
	cell, ok := l.term.Cell(row, col)
	if !ok {
		return
	}
	r := l.cellRect(c, row, col, &cell)
	c.ClearRect(r, render.Transparent)
	l.paintCell(c, row, col, &cell)
}

func (l *TerminalLayer) cellRect(c render.Canvas, row, col int, cell *termdesk.Cell) image.Rectangle {
	r := render.CellRect(c, col, row)
	if cell.IsWide() {
		r.Max.X += c.CellSize().X
	}
	return r
}

func (l *TerminalLayer) paintCell(c render.Canvas, row, col int, cell *termdesk.Cell) {
	if cell.IsWideSpacer() {
		return
	}
	fg, bg := cell.Resolve(l.palette)
	r := l.cellRect(c, row, col, cell)
	if bg.A > 0 {
		c.FillRect(r, bg)
	}
	if !cell.IsBlank() {
		c.DrawText(r.Min, string(cell.Char), fg)
	}
}

// Close kills the child.
func (l *TerminalLayer) Close() error {
	return l.stopChild()
}

func (l *TerminalLayer) stopChild() error {
	if l.child == nil {
		return nil
	}
	err := l.child.Close()
	if !l.inert {
		l.inert = true
		l.logger.Info("child stopped")
	}
	return err
}
