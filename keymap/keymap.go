// Package keymap builds the table that maps X11 key codes to the bytes each
// key types under the host keyboard layout.
package keymap

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

var (
	// ErrKeymapUnavailable is returned when the host layout cannot be queried.
	ErrKeymapUnavailable = errors.New("keymap unavailable")
	// ErrNoKeys is returned when a layout dump contains no key code lines.
	ErrNoKeys = errors.New("keymap: no key codes in layout")
)

// Slot selects one of the four outputs of a key.
type Slot int

const (
	Plain Slot = iota
	Shifted
	AltGr
	AltGrShifted
)

func (s Slot) String() string {
	switch s {
	case Plain:
		return "plain"
	case Shifted:
		return "shift"
	case AltGr:
		return "altgr"
	case AltGrShifted:
		return "altgr+shift"
	}
	return "slot(" + strconv.Itoa(int(s)) + ")"
}

// SlotFor picks the slot for the given shift and alt-gr state.
func SlotFor(shift, altgr bool) Slot {
	switch {
	case shift && altgr:
		return AltGrShifted
	case altgr:
		return AltGr
	case shift:
		return Shifted
	}
	return Plain
}

// Role is the modifier a key code acts as.
type Role int

const (
	RoleNone Role = iota
	RoleCtrl
	RoleShift
	RoleAlt
	RoleAltGr
)

// Entry holds the bytes for each slot of one key code.
type Entry [4][]byte

type location struct {
	code int
	slot Slot
}

// Table maps key codes to entries. It is immutable once built and safe
// for concurrent reads.
type Table struct {
	entries map[int]Entry
	roles   map[int]Role
	reverse map[rune]location
}

// Empty returns a table in which no key produces output.
func Empty() *Table {
	return &Table{
		entries: map[int]Entry{},
		roles:   map[int]Role{},
		reverse: map[rune]location{},
	}
}

// Get returns the bytes for code in slot. Missing keys yield nil.
func (t *Table) Get(code int, slot Slot) []byte {
	if slot < Plain || slot > AltGrShifted {
		return nil
	}
	return t.entries[code][slot]
}

// Entry returns the full entry for code.
func (t *Table) Entry(code int) (Entry, bool) {
	e, ok := t.entries[code]
	return e, ok
}

// Len returns the number of key codes with at least one non-empty slot.
func (t *Table) Len() int {
	return len(t.entries)
}

// Codes returns the mapped key codes in ascending order.
func (t *Table) Codes() []int {
	codes := make([]int, 0, len(t.entries))
	for code := range t.entries {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

// Role returns the modifier role of code.
func (t *Table) Role(code int) Role {
	return t.roles[code]
}

// Modifiers returns every key code that acts as a modifier, grouped by role.
func (t *Table) Modifiers() map[Role][]int {
	out := make(map[Role][]int)
	for code, role := range t.roles {
		out[role] = append(out[role], code)
	}
	for _, codes := range out {
		sort.Ints(codes)
	}
	return out
}

// Lookup finds the lowest key code and slot that types r.
func (t *Table) Lookup(r rune) (code int, slot Slot, ok bool) {
	loc, ok := t.reverse[r]
	return loc.code, loc.slot, ok
}

// Parse reads the output of "xmodmap -pk".
func Parse(r io.Reader) (*Table, error) {
	t := Empty()
	lines := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		code, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		lines++
		t.add(code, keysyms(fields[1:]))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("keymap: read layout: %w", err)
	}
	if lines == 0 {
		return nil, ErrNoKeys
	}

	t.index()
	return t, nil
}

// keysyms extracts the hex values of the "0x.... (name)" pairs.
func keysyms(fields []string) []Keysym {
	var syms []Keysym
	for i := 0; i < len(fields); i += 2 {
		sym, ok := parseKeysym(fields[i])
		if !ok {
			sym = symNone
		}
		syms = append(syms, sym)
	}
	return syms
}

// Columns of the xmodmap dump feeding each slot: group 1 plain and shift,
// then level 3 plain and shift.
var slotColumns = [4]int{0, 1, 4, 5}

func (t *Table) add(code int, syms []Keysym) {
	if len(syms) == 0 || syms[0] == symNone {
		return
	}

	base := syms[0]
	if role := roleOf(base); role != RoleNone {
		t.roles[code] = role
		return
	}

	var e Entry
	if seq, ok := special[base]; ok {
		e[Plain] = []byte(seq[0])
		e[Shifted] = []byte(seq[1])
		t.entries[code] = e
		return
	}

	altgr := symNone
	if len(syms) > slotColumns[AltGr] {
		altgr = syms[slotColumns[AltGr]]
	}

	empty := true
	for slot, col := range slotColumns {
		if col >= len(syms) {
			continue
		}
		sym := syms[col]
		if Slot(slot) == Plain && sym.IsDead() && altgr != symNone && !altgr.IsDead() {
			sym = altgr
		}
		if r, ok := sym.Rune(); ok {
			e[slot] = []byte(string(r))
			empty = false
		}
	}
	if !empty {
		t.entries[code] = e
	}
}

func (t *Table) index() {
	for _, code := range t.Codes() {
		e := t.entries[code]
		for slot := Plain; slot <= AltGrShifted; slot++ {
			b := e[slot]
			r, size := utf8.DecodeRune(b)
			if size == 0 || size != len(b) || r == utf8.RuneError {
				continue
			}
			if _, seen := t.reverse[r]; !seen {
				t.reverse[r] = location{code: code, slot: slot}
			}
		}
	}
}

func roleOf(sym Keysym) Role {
	switch sym {
	case symControlL, symControlR:
		return RoleCtrl
	case symShiftL, symShiftR:
		return RoleShift
	case symAltL, symAltR, symMetaL, symMetaR:
		return RoleAlt
	case symISOLevel3, symModeSwitch:
		return RoleAltGr
	}
	return RoleNone
}

//go:embed layouts/us.txt
var usLayout []byte

// Fallback returns the built-in US layout.
func Fallback() *Table {
	t, err := Parse(bytes.NewReader(usLayout))
	if err != nil {
		return Empty()
	}
	return t
}

type resolver struct {
	name   string
	args   []string
	logger *zap.Logger
}

// Option configures Resolve.
type Option func(*resolver)

// WithCommand replaces the layout query command.
func WithCommand(name string, args ...string) Option {
	return func(r *resolver) {
		r.name = name
		r.args = args
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// Resolve queries the host layout with "xmodmap -pk" and parses it.
// On failure the error wraps ErrKeymapUnavailable; callers are expected to
// carry on with Empty or Fallback.
func Resolve(ctx context.Context, opts ...Option) (*Table, error) {
	r := &resolver{
		name:   "xmodmap",
		args:   []string{"-pk"},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	out, err := exec.CommandContext(ctx, r.name, r.args...).Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrKeymapUnavailable, r.name, err)
	}

	t, err := Parse(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeymapUnavailable, err)
	}

	r.logger.Debug("keymap resolved",
		zap.String("command", r.name),
		zap.Int("keys", t.Len()),
		zap.Int("modifiers", len(t.roles)),
	)
	return t, nil
}
