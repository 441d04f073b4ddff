package desktop

import (
	"context"
	"fmt"

	termdesk "github.com/danielgatis/go-termdesk"
	"github.com/danielgatis/go-termdesk/dispatch"
)

// LayerInfo describes a layer to clients.
type LayerInfo struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// Register exports the screen commands and the commands of every layer
// added so far on server.
func (s *Screen) Register(server *dispatch.Server) error {
	handlers := map[string]dispatch.Handler{
		"enable":     s.toggleCommand(true),
		"disable":    s.toggleCommand(false),
		"get_layers": s.getLayers,
		"write":      s.write,
		"get_line":   s.getLine,
		"get_cursor": s.getCursor,
		"get_title":  s.getTitle,
		"get_screen": s.getScreen,
	}
	for name, h := range handlers {
		if err := server.Register(name, h); err != nil {
			return err
		}
	}
	for _, l := range s.layers {
		c, ok := l.(Commander)
		if !ok {
			continue
		}
		for name, h := range c.Commands() {
			if err := server.Register(name, h); err != nil {
				return fmt.Errorf("layer %s: %w", l.Name(), err)
			}
		}
	}
	return nil
}

func (s *Screen) toggleCommand(enabled bool) dispatch.Handler {
	return func(_ context.Context, a dispatch.Args) (any, error) {
		name, err := a.String(0, "layer")
		if err != nil {
			return nil, err
		}
		return nil, s.SetEnabled(name, enabled)
	}
}

func (s *Screen) getLayers(context.Context, dispatch.Args) (any, error) {
	out := make([]LayerInfo, len(s.layers))
	for i, l := range s.layers {
		out[i] = LayerInfo{Name: l.Name(), Enabled: l.Enabled()}
	}
	return out, nil
}

// terminalArg picks the terminal named by the "layer" keyword, or the
// focused one.
func (s *Screen) terminalArg(a dispatch.Args) (*TerminalLayer, error) {
	name, err := a.StringOr(-1, "layer", "")
	if err != nil {
		return nil, err
	}
	if name == "" {
		if s.focus == nil {
			return nil, fmt.Errorf("%w: no terminal", ErrUnknownLayer)
		}
		return s.focus, nil
	}
	l, ok := s.Layer(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
	}
	t, ok := l.(*TerminalLayer)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a terminal", ErrUnknownLayer, name)
	}
	return t, nil
}

// write sends text to the terminal's child as if typed.
func (s *Screen) write(_ context.Context, a dispatch.Args) (any, error) {
	t, err := s.terminalArg(a)
	if err != nil {
		return nil, err
	}
	text, err := a.String(0, "text")
	if err != nil {
		return nil, err
	}
	t.Send([]byte(text))
	return nil, nil
}

func (s *Screen) getLine(_ context.Context, a dispatch.Args) (any, error) {
	t, err := s.terminalArg(a)
	if err != nil {
		return nil, err
	}
	row, err := a.Int(0, "row")
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= t.term.Rows() {
		return nil, fmt.Errorf("%w: row %d out of range", dispatch.ErrBadArgument, row)
	}
	return t.term.LineContent(row), nil
}

func (s *Screen) getCursor(_ context.Context, a dispatch.Args) (any, error) {
	t, err := s.terminalArg(a)
	if err != nil {
		return nil, err
	}
	row, col := t.term.CursorPos()
	return []int{row, col}, nil
}

func (s *Screen) getTitle(_ context.Context, a dispatch.Args) (any, error) {
	t, err := s.terminalArg(a)
	if err != nil {
		return nil, err
	}
	return t.term.Title(), nil
}

func (s *Screen) getScreen(_ context.Context, a dispatch.Args) (any, error) {
	t, err := s.terminalArg(a)
	if err != nil {
		return nil, err
	}
	detail, err := a.StringOr(0, "detail", string(termdesk.SnapshotDetailText))
	if err != nil {
		return nil, err
	}
	switch termdesk.SnapshotDetail(detail) {
	case termdesk.SnapshotDetailText, termdesk.SnapshotDetailStyled:
	default:
		return nil, fmt.Errorf("%w: detail %q", dispatch.ErrBadArgument, detail)
	}
	return t.term.Snapshot(termdesk.SnapshotDetail(detail)), nil
}
