package tcellwin

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/danielgatis/go-termdesk/input"
	"github.com/danielgatis/go-termdesk/keymap"
)

// X11 key codes of the modifier keys synthesized around host keys.
const (
	codeCtrl  = 37
	codeShift = 50
	codeAlt   = 64
	codeAltGr = 108
)

// specialCodes maps tcell's named keys to pc105 X11 key codes.
var specialCodes = map[tcell.Key]int{
	tcell.KeyEscape:     9,
	tcell.KeyBackspace:  22,
	tcell.KeyBackspace2: 22,
	tcell.KeyTab:        23,
	tcell.KeyEnter:      36,
	tcell.KeyF1:         67,
	tcell.KeyF2:         68,
	tcell.KeyF3:         69,
	tcell.KeyF4:         70,
	tcell.KeyF5:         71,
	tcell.KeyF6:         72,
	tcell.KeyF7:         73,
	tcell.KeyF8:         74,
	tcell.KeyF9:         75,
	tcell.KeyF10:        76,
	tcell.KeyF11:        95,
	tcell.KeyF12:        96,
	tcell.KeyHome:       110,
	tcell.KeyUp:         111,
	tcell.KeyPgUp:       112,
	tcell.KeyLeft:       113,
	tcell.KeyRight:      114,
	tcell.KeyEnd:        115,
	tcell.KeyDown:       116,
	tcell.KeyPgDn:       117,
	tcell.KeyInsert:     118,
	tcell.KeyDelete:     119,
}

// keyEvents expands one host key into the X11 press/release sequence a
// keyboard would have produced, modifiers included.
func keyEvents(ev *tcell.EventKey, table *keymap.Table) []input.KeyEvent {
	var mods []int
	if ev.Modifiers()&tcell.ModAlt != 0 {
		mods = append(mods, codeAlt)
	}

	code, ok := 0, false
	switch key := ev.Key(); {
	case key == tcell.KeyBacktab:
		code, ok = 23, true
		mods = append(mods, codeShift)

	case specialCodes[key] != 0:
		code, ok = specialCodes[key], true
		if ev.Modifiers()&tcell.ModShift != 0 {
			mods = append(mods, codeShift)
		}

	case key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ:
		code, _, ok = table.Lookup(rune('a' + key - tcell.KeyCtrlA))
		mods = append(mods, codeCtrl)

	case key == tcell.KeyRune:
		r := ev.Rune()
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			mods = append(mods, codeCtrl)
			r = unicode.ToLower(r)
		}
		var slot keymap.Slot
		code, slot, ok = table.Lookup(r)
		if slot == keymap.Shifted || slot == keymap.AltGrShifted {
			mods = append(mods, codeShift)
		}
		if slot == keymap.AltGr || slot == keymap.AltGrShifted {
			mods = append(mods, codeAltGr)
		}
	}
	if !ok {
		return nil
	}

	out := make([]input.KeyEvent, 0, 2*len(mods)+2)
	for _, m := range mods {
		out = append(out, input.KeyEvent{Code: m, Action: input.Press})
	}
	out = append(out,
		input.KeyEvent{Code: code, Action: input.Press},
		input.KeyEvent{Code: code, Action: input.Release},
	)
	for i := len(mods) - 1; i >= 0; i-- {
		out = append(out, input.KeyEvent{Code: mods[i], Action: input.Release})
	}
	return out
}
