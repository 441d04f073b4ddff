// Package input turns key events into the bytes a shell expects on its
// terminal input.
package input

import (
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/danielgatis/go-termdesk/keymap"
)

// Action is the key transition reported by the window system.
type Action int

const (
	Release Action = 0
	Press   Action = 1
	Repeat  Action = 2
)

func (a Action) String() string {
	switch a {
	case Release:
		return "release"
	case Press:
		return "press"
	case Repeat:
		return "repeat"
	}
	return "action(" + strconv.Itoa(int(a)) + ")"
}

// KeyEvent is one physical key transition.
type KeyEvent struct {
	Code     int
	Scancode int
	Action   Action
}

// Modifiers is the tracked modifier state.
type Modifiers struct {
	Ctrl  bool `json:"ctrl"`
	Shift bool `json:"shift"`
	Alt   bool `json:"alt"`
	AltGr bool `json:"altgr"`
}

// ModifierCodes lists the key codes acting as each modifier.
type ModifierCodes struct {
	Ctrl  []int
	Shift []int
	Alt   []int
	AltGr []int
}

// DefaultModifierCodes returns the X11 codes of a pc105 keyboard.
func DefaultModifierCodes() ModifierCodes {
	return ModifierCodes{
		Ctrl:  []int{37, 105},
		Shift: []int{50, 62},
		Alt:   []int{64},
		AltGr: []int{108},
	}
}

func (m ModifierCodes) roles() map[int]keymap.Role {
	roles := make(map[int]keymap.Role)
	for _, c := range m.Ctrl {
		roles[c] = keymap.RoleCtrl
	}
	for _, c := range m.Shift {
		roles[c] = keymap.RoleShift
	}
	for _, c := range m.Alt {
		roles[c] = keymap.RoleAlt
	}
	for _, c := range m.AltGr {
		roles[c] = keymap.RoleAltGr
	}
	return roles
}

// Translator resolves key events against a keymap while tracking modifier
// state across events. It is safe for concurrent use.
type Translator struct {
	mu    sync.Mutex
	state Modifiers

	table  *keymap.Table
	roles  map[int]keymap.Role
	logger *zap.Logger
}

// Option configures a Translator.
type Option func(*Translator)

// WithModifierCodes replaces the modifier key codes.
func WithModifierCodes(codes ModifierCodes) Option {
	return func(t *Translator) {
		t.roles = codes.roles()
	}
}

// WithTableModifiers adds the modifier keys discovered in the keymap.
func WithTableModifiers() Option {
	return func(t *Translator) {
		for role, codes := range t.table.Modifiers() {
			for _, c := range codes {
				t.roles[c] = role
			}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Translator) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTranslator creates a Translator over table. A nil table behaves like
// keymap.Empty.
func NewTranslator(table *keymap.Table, opts ...Option) *Translator {
	if table == nil {
		table = keymap.Empty()
	}
	t := &Translator{
		table:  table,
		roles:  DefaultModifierCodes().roles(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate returns the bytes for ev, or nil when the event types nothing.
// Modifier keys only update state. Releases never produce output.
func (t *Translator) Translate(ev KeyEvent) []byte {
	role := t.roles[ev.Code]

	t.mu.Lock()
	if role != keymap.RoleNone {
		t.setRole(role, ev.Action != Release)
	}
	state := t.state
	t.mu.Unlock()

	if role != keymap.RoleNone || ev.Action == Release {
		return nil
	}

	out := t.resolve(ev.Code, state)
	if len(out) == 0 {
		t.logger.Debug("key produces no output", zap.Int("code", ev.Code))
	}
	return out
}

func (t *Translator) resolve(code int, m Modifiers) []byte {
	switch {
	case m.Ctrl:
		return Ctrl(t.table.Get(code, keymap.Plain))
	case m.Alt:
		plain := t.table.Get(code, keymap.Plain)
		if len(plain) == 0 {
			return nil
		}
		return append([]byte{0x1b}, plain...)
	}
	return clone(t.table.Get(code, keymap.SlotFor(m.Shift, m.AltGr)))
}

// Ctrl applies the control-key transform: an ASCII letter is masked into
// the C0 range, anything else passes through unchanged.
func Ctrl(b []byte) []byte {
	if len(b) == 1 && isLetter(b[0]) {
		return []byte{b[0] & 0x1f}
	}
	return clone(b)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func clone(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return append([]byte(nil), b...)
}

// must hold t.mu
func (t *Translator) setRole(role keymap.Role, down bool) {
	switch role {
	case keymap.RoleCtrl:
		t.state.Ctrl = down
	case keymap.RoleShift:
		t.state.Shift = down
	case keymap.RoleAlt:
		t.state.Alt = down
	case keymap.RoleAltGr:
		t.state.AltGr = down
	}
}

// State returns a copy of the modifier state.
func (t *Translator) State() Modifiers {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// SetModifiers overwrites the modifier state, for backends that report
// modifier bits with every event instead of separate key transitions.
func (t *Translator) SetModifiers(m Modifiers) {
	t.mu.Lock()
	t.state = m
	t.mu.Unlock()
}

// IsModifier reports whether code is one of the tracked modifier keys.
func (t *Translator) IsModifier(code int) bool {
	return t.roles[code] != keymap.RoleNone
}

// Table returns the keymap the translator resolves against.
func (t *Translator) Table() *keymap.Table {
	return t.table
}
