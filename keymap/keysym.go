package keymap

import "strconv"

// Keysym is an X11 keysym value as printed by xmodmap.
type Keysym uint32

const (
	symNone         Keysym = 0x0000
	symISOLevel3    Keysym = 0xfe03
	symModeSwitch   Keysym = 0xff7e
	symShiftL       Keysym = 0xffe1
	symShiftR       Keysym = 0xffe2
	symControlL     Keysym = 0xffe3
	symControlR     Keysym = 0xffe4
	symMetaL        Keysym = 0xffe7
	symMetaR        Keysym = 0xffe8
	symAltL         Keysym = 0xffe9
	symAltR         Keysym = 0xffea
	symUnicodeBase  Keysym = 0x01000000
	symUnicodeMask  Keysym = 0x00ffffff
	symDeadFirst    Keysym = 0xfe50
	symDeadLast     Keysym = 0xfe8f
	symKeypadDigit0 Keysym = 0xffb0
	symKeypadDigit9 Keysym = 0xffb9
)

// special keys produce fixed sequences regardless of the host layout.
// Index 0 is the plain sequence and index 1 the shifted one.
var special = map[Keysym][2]string{
	0xff08: {"\x7f", "\x7f"},           // BackSpace
	0xff09: {"\t", "\x1b[Z"},           // Tab
	0xff0d: {"\r", "\r"},               // Return
	0xff1b: {"\x1b", "\x1b"},           // Escape
	0xff50: {"\x1b[H", "\x1b[1;2H"},    // Home
	0xff51: {"\x1b[D", "\x1b[1;2D"},    // Left
	0xff52: {"\x1b[A", "\x1b[1;2A"},    // Up
	0xff53: {"\x1b[C", "\x1b[1;2C"},    // Right
	0xff54: {"\x1b[B", "\x1b[1;2B"},    // Down
	0xff55: {"\x1b[5~", "\x1b[5;2~"},   // Prior
	0xff56: {"\x1b[6~", "\x1b[6;2~"},   // Next
	0xff57: {"\x1b[F", "\x1b[1;2F"},    // End
	0xff63: {"\x1b[2~", "\x1b[2;2~"},   // Insert
	0xff8d: {"\r", "\r"},               // KP_Enter
	0xffbe: {"\x1bOP", "\x1b[1;2P"},    // F1
	0xffbf: {"\x1bOQ", "\x1b[1;2Q"},    // F2
	0xffc0: {"\x1bOR", "\x1b[1;2R"},    // F3
	0xffc1: {"\x1bOS", "\x1b[1;2S"},    // F4
	0xffc2: {"\x1b[15~", "\x1b[15;2~"}, // F5
	0xffc3: {"\x1b[17~", "\x1b[17;2~"}, // F6
	0xffc4: {"\x1b[18~", "\x1b[18;2~"}, // F7
	0xffc5: {"\x1b[19~", "\x1b[19;2~"}, // F8
	0xffc6: {"\x1b[20~", "\x1b[20;2~"}, // F9
	0xffc7: {"\x1b[21~", "\x1b[21;2~"}, // F10
	0xffc8: {"\x1b[23~", "\x1b[23;2~"}, // F11
	0xffc9: {"\x1b[24~", "\x1b[24;2~"}, // F12
	0xffff: {"\x1b[3~", "\x1b[3;2~"},   // Delete
}

// named covers the non-Latin-1 keysyms that show up on common layouts.
var named = map[Keysym]rune{
	0x13bc: 'Œ',
	0x13bd: 'œ',
	0x13be: 'Ÿ',
	0x0aa9: '—',
	0x0aaa: '–',
	0x0ad0: '‘',
	0x0ad1: '’',
	0x0ad2: '“',
	0x0ad3: '”',
	0x0afd: '‚',
	0x0afe: '„',
	0x0ae6: '•',
	0x0aae: '…',
	0x20ac: '€',
	0x01a3: 'ł',
	0x01a5: 'Ľ',
	0x01b5: 'ľ',
	0x01a9: 'Š',
	0x01b9: 'š',
	0x01ae: 'Ž',
	0x01be: 'ž',
	0x01e8: 'č',
	0x01c8: 'Č',
	0x01ea: 'ę',
	0x01ca: 'Ę',
	0x01b1: 'ą',
	0x01a1: 'Ą',
	0x02fe: 'ŝ',
	0x03b3: 'ŗ',
	0x0ff7: '·',
}

// deadSpacing maps dead keysyms to the spacing form of their diacritic.
var deadSpacing = map[Keysym]rune{
	0xfe50: '`',  // dead_grave
	0xfe51: '´',  // dead_acute
	0xfe52: '^',  // dead_circumflex
	0xfe53: '~',  // dead_tilde
	0xfe54: '¯',  // dead_macron
	0xfe55: '˘',  // dead_breve
	0xfe56: '˙',  // dead_abovedot
	0xfe57: '¨',  // dead_diaeresis
	0xfe58: '˚',  // dead_abovering
	0xfe59: '˝',  // dead_doubleacute
	0xfe5a: 'ˇ',  // dead_caron
	0xfe5b: '¸',  // dead_cedilla
	0xfe5c: '˛',  // dead_ogonek
}

var keypad = map[Keysym]rune{
	0xffaa: '*',
	0xffab: '+',
	0xffac: ',',
	0xffad: '-',
	0xffae: '.',
	0xffaf: '/',
	0xffbd: '=',
}

// IsDead reports whether k is a combining (dead) keysym.
func (k Keysym) IsDead() bool {
	return k >= symDeadFirst && k <= symDeadLast
}

// IsSpecial reports whether k has a fixed escape sequence.
func (k Keysym) IsSpecial() bool {
	_, ok := special[k]
	return ok
}

// Rune returns the character k types, if any. Dead keys resolve to their
// spacing diacritic.
func (k Keysym) Rune() (rune, bool) {
	switch {
	case k == symNone:
		return 0, false
	case k >= 0x20 && k <= 0x7e, k >= 0xa0 && k <= 0xff:
		return rune(k), true
	case k&^symUnicodeMask == symUnicodeBase:
		return rune(k & symUnicodeMask), true
	case k >= symKeypadDigit0 && k <= symKeypadDigit9:
		return rune('0' + k - symKeypadDigit0), true
	case k.IsDead():
		r, ok := deadSpacing[k]
		return r, ok
	}
	if r, ok := keypad[k]; ok {
		return r, true
	}
	r, ok := named[k]
	return r, ok
}

// parseKeysym accepts the "0x...." form printed by xmodmap.
func parseKeysym(s string) (Keysym, bool) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, false
	}
	return Keysym(v), true
}
