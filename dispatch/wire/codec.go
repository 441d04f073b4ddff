// Package wire carries the dispatch protocol over websockets: commands as
// JSON 3-tuples on /queue/{name}, results and errors back on the same
// connection, and key events on /events.
package wire

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/danielgatis/go-termdesk/dispatch"
)

// ErrMalformed is returned for frames that are not a command tuple.
var ErrMalformed = errors.New("malformed command frame")

// Frame types sent from server to client.
const (
	FrameResult = "result"
	FrameError  = "error"
)

// Frame is a server reply on a queue connection.
type Frame struct {
	Type  string `json:"type"`
	Name  string `json:"name,omitempty"`
	Value any    `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

// EncodeCommand serializes cmd as ["name", [args...], {kwargs}].
func EncodeCommand(cmd dispatch.Command) ([]byte, error) {
	args := cmd.Args
	if args == nil {
		args = []any{}
	}
	kwargs := cmd.Kwargs
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	return sonic.Marshal([]any{cmd.Name, args, kwargs})
}

// DecodeCommand parses a command tuple. The argument list and keyword map
// may be omitted.
func DecodeCommand(data []byte) (dispatch.Command, error) {
	var tuple []any
	if err := sonic.Unmarshal(data, &tuple); err != nil {
		return dispatch.Command{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if len(tuple) == 0 || len(tuple) > 3 {
		return dispatch.Command{}, fmt.Errorf("%w: want 1 to 3 elements, got %d", ErrMalformed, len(tuple))
	}

	name, ok := tuple[0].(string)
	if !ok || name == "" {
		return dispatch.Command{}, fmt.Errorf("%w: name must be a non-empty string", ErrMalformed)
	}
	cmd := dispatch.Command{Name: name}

	if len(tuple) > 1 && tuple[1] != nil {
		args, ok := tuple[1].([]any)
		if !ok {
			return dispatch.Command{}, fmt.Errorf("%w: arguments must be a list", ErrMalformed)
		}
		cmd.Args = args
	}
	if len(tuple) > 2 && tuple[2] != nil {
		kwargs, ok := tuple[2].(map[string]any)
		if !ok {
			return dispatch.Command{}, fmt.Errorf("%w: keyword arguments must be an object", ErrMalformed)
		}
		cmd.Kwargs = kwargs
	}
	return cmd, nil
}

// ResultFrame converts a dispatch result for the wire.
func ResultFrame(r dispatch.Result) Frame {
	f := Frame{Type: FrameResult, Name: r.Name, Value: r.Value}
	if r.Err != nil {
		f.Error = r.Err.Error()
	}
	return f
}

// ErrorFrame reports a command that never reached the queue.
func ErrorFrame(name string, err error) Frame {
	return Frame{Type: FrameError, Name: name, Error: err.Error()}
}
