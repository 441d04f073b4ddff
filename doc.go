// Package termdesk is the terminal core of a small graphical desktop: a
// VT-style emulator that turns a child process's byte stream into a grid
// of cells a compositor can draw incrementally.
//
// # Quick Start
//
//	term := termdesk.New(termdesk.WithSize(25, 80))
//	term.WriteString("\x1b[31mhello\x1b[0m")
//	fmt.Println(term.LineContent(0)) // "hello"
//
// Terminal implements [io.Writer]; parsing is incremental, so a sequence
// split across two writes is applied once the second write completes it.
// Unknown or malformed sequences are dropped without touching the grid.
//
// # Cells and Colors
//
// A [Cell] stores a rune, a foreground and background [Color], and flags.
// Colors are a tagged variant:
//
//   - default: resolved by the [Palette] (light grey on transparent)
//   - named: one of the eight built-in names (black ... white)
//   - RGB: an explicit triple, always opaque
//
// Colors become [color.RGBA] only at draw time through [Cell.Resolve].
// Reverse video swaps the resolved pair there; the stored colors are never
// changed.
//
// # Dirty Rows
//
// Every mutation marks the rows it touched. A renderer asks for
// [Terminal.DirtyRows], redraws them, and calls [Terminal.ClearDirty]
// once the frame was drawn:
//
//	for _, row := range term.DirtyRows() {
//	    drawRow(row, term.Row(row))
//	}
//	term.ClearDirty()
//
// Cursor movement alone marks only the row the cursor lands on.
//
// # Scrollback
//
// Rows scrolled off the top of the full-screen region go to a
// [ScrollbackProvider]. [MemoryScrollback] is a fixed-size ring that drops
// the oldest rows once full:
//
//	term := termdesk.New(termdesk.WithScrollback(termdesk.NewMemoryScrollback(1000)))
//
// # Providers
//
// Bell, title and response handling are pluggable with no-op defaults.
// Responses (cursor position reports, device attributes) are written to
// the [ResponseProvider] after the write that produced them returns, so a
// provider may call back into the terminal.
package termdesk
