package termdesk

import (
	"github.com/danielgatis/go-ansicode"
	"github.com/danielgatis/go-vte"
)

// performer wraps the ansicode performer so DECSTBM is handled here in
// both its plain (CSI t ; b r) and DEC private (CSI ? t ; b r) forms.
// ansicode only dispatches the plain form and defaults a missing bottom
// margin to 1 instead of the last row.
type performer struct {
	*ansicode.Performer
	term *Terminal
}

func newParser(t *Terminal) *vte.Parser {
	return vte.NewParser(performer{Performer: ansicode.NewPerformer(t), term: t})
}

func (p performer) CsiDispatch(params [][]uint16, intermediates []byte, ignore bool, action rune) {
	if action == 'r' && !ignore && isMarginForm(intermediates) {
		top, bottom := marginParams(params)
		p.term.SetScrollMargins(top, bottom, len(intermediates) == 1)
		return
	}
	p.Performer.CsiDispatch(params, intermediates, ignore, action)
}

func isMarginForm(intermediates []byte) bool {
	return len(intermediates) == 0 || (len(intermediates) == 1 && intermediates[0] == '?')
}

// marginParams returns the first two parameters; missing ones are 0,
// which SetScrollMargins reads as the screen edge.
func marginParams(params [][]uint16) (top, bottom int) {
	var flat []uint16
	for _, p := range params {
		flat = append(flat, p...)
	}
	if len(flat) > 0 {
		top = int(flat[0])
	}
	if len(flat) > 1 {
		bottom = int(flat[1])
	}
	return top, bottom
}
