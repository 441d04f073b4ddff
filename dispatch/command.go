// Package dispatch lets an external client invoke named operations on a
// running desktop through a bounded command queue, read back results in
// call order, and listen to forwarded input events.
package dispatch

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
)

// ErrBadArgument is wrapped by the Args accessors.
var ErrBadArgument = errors.New("bad argument")

// Command is one queued invocation.
type Command struct {
	Name   string
	Args   []any
	Kwargs map[string]any
}

// NewCommand builds a command with positional arguments only.
func NewCommand(name string, args ...any) Command {
	return Command{Name: name, Args: args}
}

// Args gives handlers typed access to a command's arguments. A keyword
// argument wins over the positional argument at the same position.
type Args struct {
	Positional []any
	Keyword    map[string]any
}

// Value returns the argument at pos or named name.
func (a Args) Value(pos int, name string) (any, bool) {
	if name != "" {
		if v, ok := a.Keyword[name]; ok {
			return v, true
		}
	}
	if pos >= 0 && pos < len(a.Positional) {
		return a.Positional[pos], true
	}
	return nil, false
}

// Has reports whether the argument was given.
func (a Args) Has(pos int, name string) bool {
	_, ok := a.Value(pos, name)
	return ok
}

// Int returns a required integer argument.
func (a Args) Int(pos int, name string) (int, error) {
	v, ok := a.Value(pos, name)
	if !ok {
		return 0, missing(pos, name)
	}
	n, ok := toInt(v)
	if !ok {
		return 0, fmt.Errorf("%w: %s: want integer, got %T", ErrBadArgument, name, v)
	}
	return n, nil
}

// IntOr returns an integer argument or def when absent.
func (a Args) IntOr(pos int, name string, def int) (int, error) {
	if !a.Has(pos, name) {
		return def, nil
	}
	return a.Int(pos, name)
}

// String returns a required string argument.
func (a Args) String(pos int, name string) (string, error) {
	v, ok := a.Value(pos, name)
	if !ok {
		return "", missing(pos, name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s: want string, got %T", ErrBadArgument, name, v)
	}
	return s, nil
}

// StringOr returns a string argument or def when absent.
func (a Args) StringOr(pos int, name, def string) (string, error) {
	if !a.Has(pos, name) {
		return def, nil
	}
	return a.String(pos, name)
}

// Ints returns a list argument of integers, such as an RGBA tuple. The
// result never aliases the caller's slice.
func (a Args) Ints(pos int, name string) ([]int, error) {
	v, ok := a.Value(pos, name)
	if !ok {
		return nil, missing(pos, name)
	}
	list, ok := v.([]any)
	if !ok {
		if ints, ok := v.([]int); ok {
			return slices.Clone(ints), nil
		}
		return nil, fmt.Errorf("%w: %s: want list, got %T", ErrBadArgument, name, v)
	}
	out := make([]int, len(list))
	for i, item := range list {
		n, ok := toInt(item)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d]: want integer, got %T", ErrBadArgument, name, i, item)
		}
		out[i] = n
	}
	return out, nil
}

func missing(pos int, name string) error {
	if name == "" {
		name = "#" + strconv.Itoa(pos)
	}
	return fmt.Errorf("%w: %s: missing", ErrBadArgument, name)
}

// toInt accepts the numeric types produced by Go callers and JSON decoding.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case float32:
		return floatInt(float64(n))
	case float64:
		return floatInt(n)
	case interface{ Int64() (int64, error) }:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}

func floatInt(f float64) (int, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return int(f), true
}
