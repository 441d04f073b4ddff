package termdesk

import (
	"fmt"
	"image/color"

	"github.com/danielgatis/go-ansicode"
	"go.uber.org/zap"
)

// This file implements ansicode.Handler. The decoder calls these methods
// as it recognizes sequences; each one takes the terminal lock for the
// duration of its state change.

// Input writes a printable character at the cursor, wrapping and
// scrolling as needed.
func (t *Terminal) Input(r rune) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.activeCharset >= 0 && t.activeCharset < len(t.charsets) {
		r = t.charsets[t.activeCharset].translate(r)
	}

	width := runeWidth(r)
	if width == 0 {
		return
	}

	if t.wrapPending && t.cursor.Row == t.wrapAt.Row && t.cursor.Col == t.wrapAt.Col {
		t.wrapLocked()
	}
	t.wrapPending = false

	if t.cursor.Col+width > t.cols {
		if t.modes&ModeLineWrap == 0 {
			return
		}
		t.wrapLocked()
	}

	if t.modes&ModeInsert != 0 {
		t.activeBuffer.InsertBlanks(t.cursor.Row, t.cursor.Col, width)
	}

	cell := t.template
	cell.Char = r
	cell.ClearFlag(CellFlagWideChar | CellFlagWideCharSpacer)
	if width == 2 {
		cell.SetFlag(CellFlagWideChar)
	}
	t.activeBuffer.SetCell(t.cursor.Row, t.cursor.Col, cell)

	if width == 2 {
		spacer := t.template
		spacer.Char = ' '
		spacer.Flags = (spacer.Flags &^ CellFlagWideChar) | CellFlagWideCharSpacer
		t.activeBuffer.SetCell(t.cursor.Row, t.cursor.Col+1, spacer)
	}

	// Writing the last column leaves the cursor there with a wrap pending,
	// so the cursor never leaves the grid.
	if t.cursor.Col+width >= t.cols {
		t.cursor.Col = t.cols - 1
		t.wrapPending = t.modes&ModeLineWrap != 0
		t.wrapAt = Position{Row: t.cursor.Row, Col: t.cursor.Col}
		return
	}
	t.cursor.Col += width
}

func (t *Terminal) wrapLocked() {
	t.activeBuffer.SetWrapped(t.cursor.Row, true)
	t.cursor.Col = 0
	t.lineFeedLocked()
}

// lineFeedLocked moves the cursor down one row, scrolling the region when
// the cursor sits on its bottom margin.
func (t *Terminal) lineFeedLocked() {
	switch {
	case t.cursor.Row == t.scrollBottom-1:
		t.activeBuffer.ScrollUp(t.scrollTop, t.scrollBottom, 1)
	case t.cursor.Row < t.rows-1:
		t.cursor.Row++
	}
}

func (t *Terminal) LineFeed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wrapPending = false

	t.activeBuffer.SetWrapped(t.cursor.Row, false)
	if t.modes&ModeLineFeedNewLine != 0 {
		t.cursor.Col = 0
	}
	t.lineFeedLocked()
}

func (t *Terminal) CarriageReturn() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wrapPending = false
	t.cursor.Col = 0
}

func (t *Terminal) Backspace() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wrapPending = false
	if t.cursor.Col > 0 {
		t.cursor.Col--
	}
}

// Bell rings the bell provider outside the lock; providers may block on audio.
func (t *Terminal) Bell() {
	t.mu.RLock()
	p := t.bellProvider
	t.mu.RUnlock()
	p.Ring()
}

func (t *Terminal) Substitute() {
	t.Input('?')
}

func (t *Terminal) Tab(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wrapPending = false
	for i := 0; i < n; i++ {
		t.cursor.Col = t.activeBuffer.NextTabStop(t.cursor.Col)
	}
}

func (t *Terminal) MoveForwardTabs(n int) {
	t.Tab(n)
}

func (t *Terminal) MoveBackwardTabs(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wrapPending = false
	for i := 0; i < n; i++ {
		t.cursor.Col = t.activeBuffer.PrevTabStop(t.cursor.Col)
	}
}

func (t *Terminal) HorizontalTabSet() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activeBuffer.SetTabStop(t.cursor.Col)
}

func (t *Terminal) ClearTabs(mode ansicode.TabulationClearMode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch mode {
	case ansicode.TabulationClearModeCurrent:
		t.activeBuffer.ClearTabStop(t.cursor.Col)
	case ansicode.TabulationClearModeAll:
		t.activeBuffer.ClearAllTabStops()
	}
}

// Goto moves the cursor to (row, col), clamped to the screen, and marks the
// destination row dirty so the renderer repaints the cursor there.
func (t *Terminal) Goto(row, col int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wrapPending = false
	t.cursor.Row = clamp(t.effectiveRow(row), 0, t.rows-1)
	t.cursor.Col = clamp(col, 0, t.cols-1)
	t.activeBuffer.MarkDirty(t.cursor.Row)
}

func (t *Terminal) GotoCol(col int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wrapPending = false
	t.cursor.Col = clamp(col, 0, t.cols-1)
}

func (t *Terminal) GotoLine(row int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wrapPending = false
	t.cursor.Row = clamp(t.effectiveRow(row), 0, t.rows-1)
}

func (t *Terminal) MoveUp(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wrapPending = false
	t.cursor.Row = clamp(t.cursor.Row-n, 0, t.rows-1)
}

func (t *Terminal) MoveDown(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wrapPending = false
	t.cursor.Row = clamp(t.cursor.Row+n, 0, t.rows-1)
}

func (t *Terminal) MoveUpCr(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wrapPending = false
	t.cursor.Row = clamp(t.cursor.Row-n, 0, t.rows-1)
	t.cursor.Col = 0
}

func (t *Terminal) MoveDownCr(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wrapPending = false
	t.cursor.Row = clamp(t.cursor.Row+n, 0, t.rows-1)
	t.cursor.Col = 0
}

func (t *Terminal) MoveForward(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wrapPending = false
	t.cursor.Col = clamp(t.cursor.Col+n, 0, t.cols-1)
}

func (t *Terminal) MoveBackward(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wrapPending = false
	t.cursor.Col = clamp(t.cursor.Col-n, 0, t.cols-1)
}

func (t *Terminal) ReverseIndex() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wrapPending = false
	if t.cursor.Row == t.scrollTop {
		t.activeBuffer.ScrollDown(t.scrollTop, t.scrollBottom, 1)
	} else if t.cursor.Row > 0 {
		t.cursor.Row--
	}
}

func (t *Terminal) ScrollUp(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activeBuffer.ScrollUp(t.scrollTop, t.scrollBottom, n)
}

func (t *Terminal) ScrollDown(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activeBuffer.ScrollDown(t.scrollTop, t.scrollBottom, n)
}

// SetScrollingRegion handles DECSTBM; margins arrive 1-based and inclusive.
func (t *Terminal) SetScrollingRegion(top, bottom int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setScrollMarginsLocked(top, bottom)
}

func (t *Terminal) InsertBlank(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activeBuffer.InsertBlanks(t.cursor.Row, t.cursor.Col, n)
}

func (t *Terminal) InsertBlankLines(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cursor.Row < t.scrollTop || t.cursor.Row >= t.scrollBottom {
		return
	}
	t.activeBuffer.InsertLines(t.cursor.Row, n, t.scrollBottom)
}

func (t *Terminal) DeleteLines(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cursor.Row < t.scrollTop || t.cursor.Row >= t.scrollBottom {
		return
	}
	t.activeBuffer.DeleteLines(t.cursor.Row, n, t.scrollBottom)
}

func (t *Terminal) DeleteChars(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activeBuffer.DeleteChars(t.cursor.Row, t.cursor.Col, n)
}

func (t *Terminal) EraseChars(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activeBuffer.ClearRowRange(t.cursor.Row, t.cursor.Col, t.cursor.Col+n)
}

func (t *Terminal) ClearLine(mode ansicode.LineClearMode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch mode {
	case ansicode.LineClearModeRight:
		t.activeBuffer.ClearRowRange(t.cursor.Row, t.cursor.Col, t.cols)
	case ansicode.LineClearModeLeft:
		t.activeBuffer.ClearRowRange(t.cursor.Row, 0, t.cursor.Col+1)
	case ansicode.LineClearModeAll:
		t.activeBuffer.ClearRow(t.cursor.Row)
	}
}

func (t *Terminal) ClearScreen(mode ansicode.ClearMode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch mode {
	case ansicode.ClearModeBelow:
		t.activeBuffer.ClearRowRange(t.cursor.Row, t.cursor.Col, t.cols)
		for row := t.cursor.Row + 1; row < t.rows; row++ {
			t.activeBuffer.ClearRow(row)
		}
	case ansicode.ClearModeAbove:
		for row := 0; row < t.cursor.Row; row++ {
			t.activeBuffer.ClearRow(row)
		}
		t.activeBuffer.ClearRowRange(t.cursor.Row, 0, t.cursor.Col+1)
	case ansicode.ClearModeAll:
		t.activeBuffer.ClearAll()
	case ansicode.ClearModeSaved:
		t.primaryBuffer.ClearScrollback()
	}
}

// Decaln fills the screen with 'E' (DEC screen alignment test).
func (t *Terminal) Decaln() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activeBuffer.Fill('E')
}

func (t *Terminal) SaveCursorPosition() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.saveCursorLocked()
}

func (t *Terminal) saveCursorLocked() {
	t.savedCursor = &SavedCursor{
		Row:          t.cursor.Row,
		Col:          t.cursor.Col,
		Attrs:        t.template,
		OriginMode:   t.modes&ModeOrigin != 0,
		CharsetIndex: t.activeCharset,
		Charsets:     t.charsets,
	}
}

func (t *Terminal) RestoreCursorPosition() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.restoreCursorLocked()
}

func (t *Terminal) restoreCursorLocked() {
	t.wrapPending = false
	if t.savedCursor == nil {
		t.cursor.Row, t.cursor.Col = 0, 0
		t.template = NewCell()
		return
	}
	s := t.savedCursor
	t.cursor.Row = clamp(s.Row, 0, t.rows-1)
	t.cursor.Col = clamp(s.Col, 0, t.cols-1)
	t.template = s.Attrs
	if s.OriginMode {
		t.modes |= ModeOrigin
	} else {
		t.modes &^= ModeOrigin
	}
	t.activeCharset = s.CharsetIndex
	t.charsets = s.Charsets
}

// ResetState performs a full reset (RIS).
func (t *Terminal) ResetState() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wrapPending = false

	t.activeBuffer = t.primaryBuffer
	t.primaryBuffer.ClearAll()
	t.alternateBuffer.ClearAll()
	t.cursor = NewCursor()
	t.savedCursor = nil
	t.template = NewCell()
	t.scrollTop = 0
	t.scrollBottom = t.rows
	t.modes = ModeLineWrap | ModeShowCursor
	t.charsets = [4]Charset{}
	t.activeCharset = 0
	t.colors = make(map[int]color.RGBA)
	t.keyboardModes = nil
}

func (t *Terminal) SetMode(mode ansicode.TerminalMode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setModeLocked(mode, true)
}

func (t *Terminal) UnsetMode(mode ansicode.TerminalMode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setModeLocked(mode, false)
}

func (t *Terminal) setModeLocked(mode ansicode.TerminalMode, set bool) {
	var m TerminalMode
	switch mode {
	case ansicode.TerminalModeCursorKeys:
		m = ModeCursorKeys
	case ansicode.TerminalModeInsert:
		m = ModeInsert
	case ansicode.TerminalModeOrigin:
		m = ModeOrigin
		t.cursor.Row, t.cursor.Col = 0, 0
		if set {
			t.cursor.Row = t.scrollTop
		}
	case ansicode.TerminalModeLineWrap:
		m = ModeLineWrap
	case ansicode.TerminalModeLineFeedNewLine:
		m = ModeLineFeedNewLine
	case ansicode.TerminalModeShowCursor:
		m = ModeShowCursor
		t.cursor.Visible = set
		t.activeBuffer.MarkDirty(t.cursor.Row)
	case ansicode.TerminalModeReportMouseClicks:
		m = ModeReportMouseClicks
	case ansicode.TerminalModeReportCellMouseMotion:
		m = ModeReportCellMouseMotion
	case ansicode.TerminalModeReportAllMouseMotion:
		m = ModeReportAllMouseMotion
	case ansicode.TerminalModeSGRMouse:
		m = ModeSGRMouse
	case ansicode.TerminalModeSwapScreenAndSetRestoreCursor:
		m = ModeAlternateScreen
		t.swapScreenLocked(set)
	case ansicode.TerminalModeBracketedPaste:
		m = ModeBracketedPaste
	default:
		t.logger.Debug("terminal mode ignored", zap.Any("mode", mode), zap.Bool("set", set))
		return
	}

	if set {
		t.modes |= m
	} else {
		t.modes &^= m
	}
}

// swapScreenLocked enters or leaves the alternate screen (DECSET 1049).
func (t *Terminal) swapScreenLocked(enter bool) {
	if enter {
		if t.activeBuffer == t.alternateBuffer {
			return
		}
		t.saveCursorLocked()
		t.activeBuffer = t.alternateBuffer
		t.activeBuffer.ClearAll()
	} else {
		if t.activeBuffer == t.primaryBuffer {
			return
		}
		t.activeBuffer = t.primaryBuffer
		t.restoreCursorLocked()
	}
	t.activeBuffer.MarkAllDirty()
}

func (t *Terminal) SetKeypadApplicationMode() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.modes |= ModeKeypadApplication
}

func (t *Terminal) UnsetKeypadApplicationMode() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.modes &^= ModeKeypadApplication
}

// SetTerminalCharAttribute applies an SGR attribute to the write template.
func (t *Terminal) SetTerminalCharAttribute(attr ansicode.TerminalCharAttribute) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch attr.Attr {
	case ansicode.CharAttributeReset:
		t.template = NewCell()
	case ansicode.CharAttributeBold:
		t.template.SetFlag(CellFlagBold)
	case ansicode.CharAttributeDim:
		t.template.SetFlag(CellFlagDim)
	case ansicode.CharAttributeItalic:
		t.template.SetFlag(CellFlagItalic)
	case ansicode.CharAttributeUnderline, ansicode.CharAttributeDoubleUnderline,
		ansicode.CharAttributeCurlyUnderline, ansicode.CharAttributeDottedUnderline,
		ansicode.CharAttributeDashedUnderline:
		t.template.SetFlag(CellFlagUnderline)
	case ansicode.CharAttributeBlinkSlow, ansicode.CharAttributeBlinkFast:
		t.template.SetFlag(CellFlagBlink)
	case ansicode.CharAttributeReverse:
		t.template.SetFlag(CellFlagReverse)
	case ansicode.CharAttributeHidden:
		t.template.SetFlag(CellFlagHidden)
	case ansicode.CharAttributeStrike:
		t.template.SetFlag(CellFlagStrike)
	case ansicode.CharAttributeCancelBold:
		t.template.ClearFlag(CellFlagBold)
	case ansicode.CharAttributeCancelBoldDim:
		t.template.ClearFlag(CellFlagBold | CellFlagDim)
	case ansicode.CharAttributeCancelItalic:
		t.template.ClearFlag(CellFlagItalic)
	case ansicode.CharAttributeCancelUnderline:
		t.template.ClearFlag(CellFlagUnderline)
	case ansicode.CharAttributeCancelBlink:
		t.template.ClearFlag(CellFlagBlink)
	case ansicode.CharAttributeCancelReverse:
		t.template.ClearFlag(CellFlagReverse)
	case ansicode.CharAttributeCancelHidden:
		t.template.ClearFlag(CellFlagHidden)
	case ansicode.CharAttributeCancelStrike:
		t.template.ClearFlag(CellFlagStrike)
	case ansicode.CharAttributeForeground:
		t.template.Fg = t.resolveColor(attr)
	case ansicode.CharAttributeBackground:
		t.template.Bg = t.resolveColor(attr)
	}
}

// resolveColor converts an SGR color argument to the tagged Color form.
func (t *Terminal) resolveColor(attr ansicode.TerminalCharAttribute) Color {
	if attr.RGBColor != nil {
		return RGB(attr.RGBColor.R, attr.RGBColor.G, attr.RGBColor.B)
	}
	if attr.IndexedColor != nil {
		return indexedColor(int(attr.IndexedColor.Index), t.colors)
	}
	if attr.NamedColor != nil {
		n := int(*attr.NamedColor)
		if n == namedColorForeground || n == namedColorBackground {
			return DefaultColor()
		}
		return indexedColor(n, t.colors)
	}
	return DefaultColor()
}

// SetColor overrides a palette entry (OSC 4).
func (t *Terminal) SetColor(index int, c color.Color) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.colors[index] = toRGBA(c)
}

func (t *Terminal) ResetColor(i int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.colors, i)
}

// SetDynamicColor answers a color query (OSC 4/10/11 with '?').
func (t *Terminal) SetDynamicColor(prefix string, index int, terminator string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var rgba color.RGBA
	if c, ok := t.colors[index]; ok {
		rgba = c
	} else if index >= 0 && index < len(ansiPalette) {
		rgba = ansiPalette[index]
	} else {
		return
	}
	t.respond(fmt.Sprintf("\x1b]%s;rgb:%02x/%02x/%02x%s", prefix, rgba.R, rgba.G, rgba.B, terminator))
}

func (t *Terminal) SetCursorStyle(style ansicode.CursorStyle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cursor.Style = CursorStyle(style)
}

func (t *Terminal) SetTitle(title string) {
	t.mu.Lock()
	t.title = title
	p := t.titleProvider
	t.mu.Unlock()
	p.SetTitle(title)
}

func (t *Terminal) PushTitle() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.titleStack = append(t.titleStack, t.title)
}

func (t *Terminal) PopTitle() {
	t.mu.Lock()
	if len(t.titleStack) == 0 {
		t.mu.Unlock()
		return
	}
	t.title = t.titleStack[len(t.titleStack)-1]
	t.titleStack = t.titleStack[:len(t.titleStack)-1]
	title, p := t.title, t.titleProvider
	t.mu.Unlock()
	p.SetTitle(title)
}

func (t *Terminal) ConfigureCharset(index ansicode.CharsetIndex, charset ansicode.Charset) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := int(index); i >= 0 && i < len(t.charsets) {
		t.charsets[i] = Charset(charset)
	}
}

func (t *Terminal) SetActiveCharset(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n >= 0 && n < len(t.charsets) {
		t.activeCharset = n
	}
}

// DeviceStatus answers DSR 5 (status) and DSR 6 (cursor position, 1-based).
func (t *Terminal) DeviceStatus(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch n {
	case 5:
		t.respond("\x1b[0n")
	case 6:
		t.respond(fmt.Sprintf("\x1b[%d;%dR", t.cursor.Row+1, t.cursor.Col+1))
	}
}

// IdentifyTerminal answers DA1 as a VT220.
func (t *Terminal) IdentifyTerminal(b byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.respond("\x1b[?62;c")
}

func (t *Terminal) TextAreaSizeChars() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.respond(fmt.Sprintf("\x1b[8;%d;%dt", t.rows, t.cols))
}

func (t *Terminal) PushKeyboardMode(mode ansicode.KeyboardMode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.keyboardModes = append(t.keyboardModes, mode)
}

func (t *Terminal) PopKeyboardMode(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := 0; i < n && len(t.keyboardModes) > 0; i++ {
		t.keyboardModes = t.keyboardModes[:len(t.keyboardModes)-1]
	}
}

func (t *Terminal) SetKeyboardMode(mode ansicode.KeyboardMode, behavior ansicode.KeyboardModeBehavior) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current := ansicode.KeyboardModeNoMode
	if len(t.keyboardModes) > 0 {
		current = t.keyboardModes[len(t.keyboardModes)-1]
	}

	next := current
	switch behavior {
	case ansicode.KeyboardModeBehaviorReplace:
		next = mode
	case ansicode.KeyboardModeBehaviorUnion:
		next = current | mode
	case ansicode.KeyboardModeBehaviorDifference:
		next = current &^ mode
	}

	if len(t.keyboardModes) > 0 {
		t.keyboardModes[len(t.keyboardModes)-1] = next
	} else {
		t.keyboardModes = append(t.keyboardModes, next)
	}
}

func (t *Terminal) ReportKeyboardMode() {
	t.mu.Lock()
	defer t.mu.Unlock()
	var mode ansicode.KeyboardMode
	if len(t.keyboardModes) > 0 {
		mode = t.keyboardModes[len(t.keyboardModes)-1]
	}
	t.respond(fmt.Sprintf("\x1b[?%du", mode))
}

// The remaining handlers cover protocols this desktop does not implement
// (graphics, clipboard, pixel sizes, shell integration). They are accepted
// and ignored so the stream keeps flowing.

func (t *Terminal) ignored(what string) {
	t.logger.Debug("sequence ignored", zap.String("sequence", what))
}

func (t *Terminal) ApplicationCommandReceived(data []byte) {
	t.ignored("APC")
}

func (t *Terminal) PrivacyMessageReceived(data []byte) {
	t.ignored("PM")
}

func (t *Terminal) StartOfStringReceived(data []byte) {
	t.ignored("SOS")
}

func (t *Terminal) ClipboardLoad(clipboard byte, terminator string) {
	t.ignored("OSC 52 load")
}

func (t *Terminal) ClipboardStore(clipboard byte, data []byte) {
	t.ignored("OSC 52 store")
}

func (t *Terminal) SetHyperlink(hyperlink *ansicode.Hyperlink) {
	t.ignored("OSC 8")
}

func (t *Terminal) SetModifyOtherKeys(modify ansicode.ModifyOtherKeys) {
	t.ignored("modifyOtherKeys")
}

func (t *Terminal) ReportModifyOtherKeys() {
	t.ignored("modifyOtherKeys report")
}

func (t *Terminal) TextAreaSizePixels() {
	t.ignored("XTWINOPS 14")
}

func (t *Terminal) CellSizePixels() {
	t.ignored("XTWINOPS 16")
}

func (t *Terminal) SetWorkingDirectory(uri string) {
	t.ignored("OSC 7")
}

func (t *Terminal) SixelReceived(params [][]uint16, data []byte) {
	t.ignored("sixel")
}

func (t *Terminal) ShellIntegrationMark(mark ansicode.ShellIntegrationMark, exitCode int) {
	t.ignored("OSC 133")
}

func (t *Terminal) DesktopNotification(payload *ansicode.NotificationPayload) {
	t.ignored("OSC 99")
}

func (t *Terminal) SetUserVar(name, value string) {
	t.ignored("OSC 1337 SetUserVar")
}
