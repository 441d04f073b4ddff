package input

import "strconv"

// Mouse buttons as encoded in SGR reports.
const (
	ButtonLeft   = 0
	ButtonMiddle = 1
	ButtonRight  = 2
)

// MouseReport encodes a button transition at the 0-based cell (col, row)
// as an SGR mouse report: ESC [ < b ; x ; y M on press, m on release.
func MouseReport(button, col, row int, pressed bool) []byte {
	final := byte('m')
	if pressed {
		final = 'M'
	}

	b := make([]byte, 0, 16)
	b = append(b, "\x1b[<"...)
	b = strconv.AppendInt(b, int64(button), 10)
	b = append(b, ';')
	b = strconv.AppendInt(b, int64(col+1), 10)
	b = append(b, ';')
	b = strconv.AppendInt(b, int64(row+1), 10)
	return append(b, final)
}
