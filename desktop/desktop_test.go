package desktop

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	termdesk "github.com/danielgatis/go-termdesk"
	"github.com/danielgatis/go-termdesk/dispatch"
	"github.com/danielgatis/go-termdesk/input"
	"github.com/danielgatis/go-termdesk/keymap"
	"github.com/danielgatis/go-termdesk/render"
	"github.com/danielgatis/go-termdesk/render/canvas"
)

// fakeChild is a child process whose output is queued by the test.
type fakeChild struct {
	mu      sync.Mutex
	out     bytes.Buffer
	in      bytes.Buffer
	readErr error
	pollErr error
	rows    int
	cols    int
	closed  bool
}

func (f *fakeChild) emit(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out.WriteString(s)
}

func (f *fakeChild) Ready() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pollErr != nil {
		return false, f.pollErr
	}
	return f.out.Len() > 0 || f.readErr != nil, nil
}

func (f *fakeChild) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.out.Len() > 0 {
		return f.out.Read(p)
	}
	return 0, f.readErr
}

func (f *fakeChild) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.in.Write(p)
}

func (f *fakeChild) input() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.in.String()
}

func (f *fakeChild) Resize(rows, cols int) error {
	f.rows, f.cols = rows, cols
	return nil
}

func (f *fakeChild) Close() error {
	f.closed = true
	return nil
}

// 80x25 cells of basicfont.Face7x13.
func newWindow() *canvas.Window {
	return canvas.NewWindow(80*7, 25*13)
}

func newTerminalScreen(t *testing.T) (*Screen, *TerminalLayer, *fakeChild, *canvas.Window) {
	t.Helper()
	win := newWindow()
	child := &fakeChild{}
	term := NewTerminalLayer("terminal", child,
		WithTranslator(input.NewTranslator(keymap.Fallback())))
	s := NewScreen(win)
	s.Add(term)
	return s, term, child, win
}

func layerCanvas(t *testing.T, s *Screen, name string) *canvas.Image {
	t.Helper()
	c, ok := s.Canvas(name)
	require.True(t, ok)
	return c.(*canvas.Image)
}

func TestHelloOnFreshTerminal(t *testing.T) {
	l := NewTerminalLayer("terminal", nil)
	assert.Empty(t, l.Terminal().DirtyRows())

	l.Feed([]byte("hello"))

	row, col := l.Terminal().CursorPos()
	assert.Equal(t, 0, row)
	assert.Equal(t, 5, col)
	assert.Equal(t, []int{0}, l.Terminal().DirtyRows())
}

func TestIdleFrameHasNoDrawCalls(t *testing.T) {
	s, _, _, _ := newTerminalScreen(t)
	ctx := context.Background()

	require.NoError(t, s.RenderFrame(ctx))
	c := layerCanvas(t, s, "terminal")
	assert.Greater(t, c.Draws(), 0)

	c.ResetDraws()
	require.NoError(t, s.RenderFrame(ctx))
	assert.Equal(t, 0, c.Draws())
}

func TestDirtyRowsRedrawnThenCleared(t *testing.T) {
	s, term, child, _ := newTerminalScreen(t)
	ctx := context.Background()
	require.NoError(t, s.RenderFrame(ctx))
	c := layerCanvas(t, s, "terminal")
	c.ResetDraws()

	child.emit("hello")
	require.NoError(t, s.RenderFrame(ctx))
	assert.Equal(t, "hello", term.Terminal().LineContent(0))
	assert.Greater(t, c.Draws(), 0)
	assert.False(t, term.Terminal().HasDirty())

	c.ResetDraws()
	require.NoError(t, s.RenderFrame(ctx))
	assert.Equal(t, 0, c.Draws())
}

func TestCursorOverlay(t *testing.T) {
	s, _, child, win := newTerminalScreen(t)
	require.NoError(t, s.RenderFrame(context.Background()))

	frame := win.Frame()
	px := frame.RGBAAt(3, 6)
	assert.InDelta(t, 100, int(px.R), 2)
	assert.Equal(t, uint8(255), px.A)
	// Outside the cursor the terminal is transparent over black.
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, frame.RGBAAt(7*10+3, 13*10+6))

	// Moving the cursor repaints the old cell.
	child.emit("\x1b[3;3H")
	require.NoError(t, s.RenderFrame(context.Background()))
	frame = win.Frame()
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, frame.RGBAAt(3, 6))
	assert.InDelta(t, 100, int(frame.RGBAAt(2*7+3, 2*13+6).R), 2)
}

func TestCursorMoveDrawsOnlyCursorCells(t *testing.T) {
	s, term, child, _ := newTerminalScreen(t)
	ctx := context.Background()
	require.NoError(t, s.RenderFrame(ctx))
	c := layerCanvas(t, s, "terminal")

	child.emit("\x1b[10;10H")
	require.NoError(t, term.Update(ctx))
	// CUP marks only the destination row.
	assert.Equal(t, []int{9}, term.Terminal().DirtyRows())

	c.ResetDraws()
	require.NoError(t, term.Draw(c))
	// Row 9 is cleared and its 80 blank cells need no paint; the old
	// cursor cell is cleared, then the overlay is drawn.
	assert.Equal(t, 3, c.Draws())
}

func TestChildGoneKeepsLastScreen(t *testing.T) {
	s, term, child, _ := newTerminalScreen(t)
	ctx := context.Background()

	child.emit("bye")
	require.NoError(t, s.RenderFrame(ctx))
	assert.False(t, term.Inert())

	child.readErr = errors.New("EIO")
	require.NoError(t, s.RenderFrame(ctx))
	assert.True(t, term.Inert())
	assert.Equal(t, "bye", term.Terminal().LineContent(0))

	// Input to a gone child is dropped.
	term.Send([]byte("x"))
	assert.Empty(t, child.input())
}

func TestPollErrorMarksInert(t *testing.T) {
	_, term, child, _ := newTerminalScreen(t)
	child.pollErr = errors.New("bad fd")
	require.NoError(t, term.Update(context.Background()))
	assert.True(t, term.Inert())
}

func TestResponsesGoToChild(t *testing.T) {
	s, _, child, _ := newTerminalScreen(t)
	child.emit("\x1b[6n")
	require.NoError(t, s.RenderFrame(context.Background()))
	assert.Equal(t, "\x1b[1;1R", child.input())
}

func keyEvent(code int, action input.Action) render.Event {
	return render.Event{Kind: render.EventKey, Key: input.KeyEvent{Code: code, Action: action}}
}

func TestKeysRouteToFocusedTerminal(t *testing.T) {
	s, _, child, _ := newTerminalScreen(t)
	events := dispatch.NewBroadcaster(8, nil, nil)
	s.events = events
	_, ch := events.Subscribe()

	s.HandleEvent(keyEvent(27, input.Press))   // r
	s.HandleEvent(keyEvent(27, input.Release)) // r
	s.HandleEvent(keyEvent(37, input.Press))   // Control_L
	s.HandleEvent(keyEvent(27, input.Press))
	s.HandleEvent(keyEvent(37, input.Release))

	assert.Equal(t, "r\x12", child.input())

	want := []dispatch.Event{
		{Action: 27, Mods: 1},
		{Action: 27, Mods: 0},
		{Action: 37, Mods: 1, Ctrl: true},
		{Action: 27, Mods: 1, Ctrl: true},
		{Action: 37, Mods: 0},
	}
	for _, w := range want {
		assert.Equal(t, w, <-ch)
	}
}

func TestKeysIgnoredWhenFocusDisabled(t *testing.T) {
	s, term, child, _ := newTerminalScreen(t)
	term.SetEnabled(false)
	s.HandleEvent(keyEvent(27, input.Press))
	assert.Empty(t, child.input())
}

func TestMouseReportsWhenRequested(t *testing.T) {
	s, term, child, _ := newTerminalScreen(t)
	click := render.Event{Kind: render.EventMouse, Button: input.ButtonLeft, X: 3*7 + 2, Y: 2*13 + 1, Pressed: true}

	s.HandleEvent(click)
	assert.Empty(t, child.input())

	term.Feed([]byte("\x1b[?1000h\x1b[?1006h"))
	s.HandleEvent(click)
	click.Pressed = false
	s.HandleEvent(click)
	assert.Equal(t, "\x1b[<0;4;3M\x1b[<0;4;3m", child.input())
}

func TestDisableKillsChild(t *testing.T) {
	s, term, child, _ := newTerminalScreen(t)
	require.NoError(t, s.SetEnabled("terminal", false))
	assert.True(t, child.closed)
	assert.True(t, term.Inert())

	c := layerCanvas(t, s, "terminal")
	c.ResetDraws()
	require.NoError(t, s.RenderFrame(context.Background()))
	assert.Equal(t, 0, c.Draws())

	assert.ErrorIs(t, s.SetEnabled("nope", true), ErrUnknownLayer)
}

func TestCloseEventStops(t *testing.T) {
	s, _, _, _ := newTerminalScreen(t)
	assert.True(t, s.HandleEvent(render.Event{Kind: render.EventClose}))
}

func TestRunStopsOnWindowClose(t *testing.T) {
	s, _, _, win := newTerminalScreen(t)
	require.True(t, win.Inject(render.Event{Kind: render.EventClose}))
	assert.NoError(t, s.Run(context.Background(), 1000))
}

func TestRunStopsOnCancel(t *testing.T) {
	s, _, _, _ := newTerminalScreen(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.Run(ctx, 0))
}

func TestResizeFitsTerminal(t *testing.T) {
	s, term, child, _ := newTerminalScreen(t)
	s.HandleEvent(render.Event{Kind: render.EventResize})
	assert.Equal(t, 25, term.Terminal().Rows())
	assert.Equal(t, 80, child.cols)
	assert.Equal(t, 25, child.rows)
}

func TestLayersCompositeInOrder(t *testing.T) {
	win := newWindow()
	s := NewScreen(win)
	bottom := NewGraphicsLayer("bottom", win.Size(), win.CellSize())
	top := NewGraphicsLayer("top", win.Size(), win.CellSize())
	s.Add(bottom)
	s.Add(top)

	bottom.Circle(image.Pt(50, 50), 20, color.RGBA{255, 0, 0, 255})
	top.Circle(image.Pt(50, 50), 10, color.RGBA{0, 0, 255, 255})
	require.NoError(t, s.RenderFrame(context.Background()))

	frame := win.Frame()
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, frame.RGBAAt(50, 50))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, frame.RGBAAt(50, 35))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, frame.RGBAAt(5, 5))

	// A disabled layer keeps its slot but is not composited.
	top.SetEnabled(false)
	require.NoError(t, s.RenderFrame(context.Background()))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, win.Frame().RGBAAt(50, 50))
}

func newCommandScreen(t *testing.T) (*Screen, *dispatch.Server, *canvas.Window, *fakeChild) {
	t.Helper()
	win := newWindow()
	server := dispatch.NewServer(dispatch.NewQueue("/termdesk", 0))
	s := NewScreen(win, WithServer(server, 0))

	child := &fakeChild{}
	s.Add(NewGraphicsLayer("graphics", win.Size(), win.CellSize()))
	s.Add(NewSpriteLayer("sprites", nil))
	s.Add(NewTerminalLayer("terminal", child))
	s.Add(NewTerminalLayer("editor", &fakeChild{}, WithDisabled()))
	require.NoError(t, s.Register(server))
	return s, server, win, child
}

func put(t *testing.T, server *dispatch.Server, name string, args ...any) {
	t.Helper()
	require.NoError(t, server.Queue().Put(dispatch.NewCommand(name, args...)))
}

func result(t *testing.T, server *dispatch.Server) dispatch.Result {
	t.Helper()
	select {
	case r := <-server.Results():
		return r
	default:
		t.Fatal("no result")
		return dispatch.Result{}
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	s, server, _, _ := newCommandScreen(t)
	assert.ErrorIs(t, s.Register(server), dispatch.ErrDuplicate)
	assert.Contains(t, server.Names(), "circle")
	assert.Contains(t, server.Names(), "load_sprite")
	assert.Contains(t, server.Names(), "get_screen")
}

func TestGraphicsCommands(t *testing.T) {
	s, server, win, _ := newCommandScreen(t)
	ctx := context.Background()

	put(t, server, "circle", 100, 100, 10, []any{255.0, 0.0, 0.0, 255.0})
	require.NoError(t, server.Queue().Put(dispatch.Command{
		Name:   "ellipse",
		Args:   []any{200, 100, 260, 140},
		Kwargs: map[string]any{"fill": "blue", "outline": nil},
	}))
	put(t, server, "print_at", 1, 1, "X", "#00ff00")
	put(t, server, "get_size")
	require.NoError(t, s.RenderFrame(ctx))

	frame := win.Frame()
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, frame.RGBAAt(100, 100))
	assert.Equal(t, color.RGBA{0, 121, 241, 255}, frame.RGBAAt(230, 120))

	r := result(t, server)
	assert.Equal(t, "get_size", r.Name)
	assert.Equal(t, []int{560, 325}, r.Value)

	put(t, server, "clear")
	require.NoError(t, s.RenderFrame(ctx))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, win.Frame().RGBAAt(100, 100))
}

func TestGraphicsHistoryIsBounded(t *testing.T) {
	l := NewGraphicsLayer("graphics", image.Pt(200, 100), image.Pt(7, 13))
	c := canvas.New(200, 100, nil)

	red := color.RGBA{255, 0, 0, 255}
	for frame := 0; frame < 60; frame++ {
		for i := 0; i < 100; i++ {
			l.Circle(image.Pt(10, 10), 2, White)
		}
		require.NoError(t, l.Draw(c))
	}
	l.Circle(image.Pt(150, 50), 5, red)
	require.NoError(t, l.Draw(c))
	assert.Len(t, l.history, MaxHistory)

	// A resize hands the layer a fresh canvas; replay repaints from history.
	fresh := canvas.New(200, 100, nil)
	l.Invalidate()
	require.NoError(t, l.Draw(fresh))
	assert.Equal(t, 1+MaxHistory, fresh.Draws())
	assert.Equal(t, red, fresh.RGBA().RGBAAt(150, 50))
	assert.Len(t, l.history, MaxHistory)
}

func TestColorArgLeavesCallerSlice(t *testing.T) {
	rgb := make([]int, 3, 4)
	copy(rgb, []int{10, 20, 30})

	c, err := colorArg(dispatch.Args{Positional: []any{rgb}}, 0, "color", White, termdesk.DefaultPalette())
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{10, 20, 30, 255}, c)
	assert.Equal(t, []int{10, 20, 30, 0}, rgb[:4])
}

func TestBadColorIsRejected(t *testing.T) {
	s, server, win, _ := newCommandScreen(t)
	put(t, server, "circle", 10, 10, 5, "mauve")
	put(t, server, "circle", 10, 10, 5, []any{300, 0, 0})
	require.NoError(t, s.RenderFrame(context.Background()))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, win.Frame().RGBAAt(10, 10))
}

func writePNG(t *testing.T, w, h int, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "sprite.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestSpriteCommands(t *testing.T) {
	s, server, win, _ := newCommandScreen(t)
	ctx := context.Background()
	green := color.RGBA{0, 255, 0, 255}

	put(t, server, "load_sprite", "ship", writePNG(t, 4, 4, green))
	require.NoError(t, s.RenderFrame(ctx))
	assert.Equal(t, green, win.Frame().RGBAAt(201, 201))

	put(t, server, "move_sprite", "ship", 10, 20)
	put(t, server, "get_sprites")
	require.NoError(t, s.RenderFrame(ctx))
	frame := win.Frame()
	assert.Equal(t, green, frame.RGBAAt(11, 21))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, frame.RGBAAt(201, 201))
	assert.Equal(t, []SpriteInfo{{Name: "ship", X: 10, Y: 20, Width: 4, Height: 4}}, result(t, server).Value)

	put(t, server, "remove_sprite", "ship")
	put(t, server, "get_sprites")
	require.NoError(t, s.RenderFrame(ctx))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, win.Frame().RGBAAt(11, 21))
	assert.Empty(t, result(t, server).Value)
}

func TestSpriteLoadFailure(t *testing.T) {
	l := NewSpriteLayer("sprites", nil)
	assert.Error(t, l.Load("x", filepath.Join(t.TempDir(), "missing.png")))
	assert.ErrorIs(t, l.Move("x", image.Pt(1, 1)), dispatch.ErrBadArgument)
}

func TestTerminalCommands(t *testing.T) {
	s, server, _, child := newCommandScreen(t)
	ctx := context.Background()

	child.emit("\x1b]2;shell\x07hi there")
	put(t, server, "write", "ls\n")
	require.NoError(t, s.RenderFrame(ctx))
	assert.Equal(t, "ls\n", child.input())

	put(t, server, "get_line", 0)
	put(t, server, "get_cursor")
	put(t, server, "get_title")
	put(t, server, "get_line", 99)
	require.NoError(t, s.RenderFrame(ctx))

	assert.Equal(t, "hi there", result(t, server).Value)
	assert.Equal(t, []int{0, 8}, result(t, server).Value)
	assert.Equal(t, "shell", result(t, server).Value)
	assert.ErrorIs(t, result(t, server).Err, dispatch.ErrBadArgument)
}

func TestGetScreenSnapshot(t *testing.T) {
	s, server, _, child := newCommandScreen(t)
	child.emit("abc")
	require.NoError(t, s.RenderFrame(context.Background()))

	require.NoError(t, server.Queue().Put(dispatch.Command{
		Name:   "get_screen",
		Kwargs: map[string]any{"layer": "terminal", "detail": "styled"},
	}))
	require.NoError(t, s.RenderFrame(context.Background()))

	r := result(t, server)
	require.NoError(t, r.Err)
	snap, ok := r.Value.(*termdesk.Snapshot)
	require.True(t, ok)
	assert.Equal(t, 25, snap.Size.Rows)
	assert.Equal(t, "abc", snap.Lines[0].Text)
	assert.NotEmpty(t, snap.Lines[0].Segments)
	assert.Equal(t, 3, snap.Cursor.Col)
}

func TestLayerToggleCommands(t *testing.T) {
	s, server, _, _ := newCommandScreen(t)
	editor, ok := s.Layer("editor")
	require.True(t, ok)
	assert.False(t, editor.Enabled())

	put(t, server, "enable", "editor")
	put(t, server, "get_layers")
	put(t, server, "disable", "sprites")
	require.NoError(t, s.RenderFrame(context.Background()))

	assert.True(t, editor.Enabled())
	sprites, _ := s.Layer("sprites")
	assert.False(t, sprites.Enabled())
	assert.Equal(t, []LayerInfo{
		{Name: "graphics", Enabled: true},
		{Name: "sprites", Enabled: true},
		{Name: "terminal", Enabled: true},
		{Name: "editor", Enabled: true},
	}, result(t, server).Value)
}

func TestWriteToUnknownLayer(t *testing.T) {
	s, server, _, _ := newCommandScreen(t)
	require.NoError(t, server.Queue().Put(dispatch.Command{
		Name:   "get_cursor",
		Kwargs: map[string]any{"layer": "graphics"},
	}))
	require.NoError(t, s.RenderFrame(context.Background()))
	assert.ErrorIs(t, result(t, server).Err, ErrUnknownLayer)
}

func TestEnableSpawnsChild(t *testing.T) {
	var spawned []*fakeChild
	spawn := func(rows, cols int) (Child, error) {
		c := &fakeChild{rows: rows, cols: cols}
		spawned = append(spawned, c)
		return c, nil
	}
	l := NewTerminalLayer("editor", nil, WithSpawner(spawn), WithDisabled(), WithTerminalSize(10, 40))
	assert.Empty(t, spawned)
	assert.True(t, l.Inert())

	l.SetEnabled(true)
	require.Len(t, spawned, 1)
	assert.Equal(t, 10, spawned[0].rows)
	assert.Equal(t, 40, spawned[0].cols)
	assert.False(t, l.Inert())

	l.SetEnabled(false)
	assert.True(t, spawned[0].closed)

	l.SetEnabled(true)
	require.Len(t, spawned, 2)
	assert.False(t, l.Inert())
}

func TestSpawnFailureLeavesLayerInert(t *testing.T) {
	l := NewTerminalLayer("shell", nil, WithSpawner(func(int, int) (Child, error) {
		return nil, errors.New("no such file")
	}))
	assert.True(t, l.Enabled())
	assert.True(t, l.Inert())
	require.NoError(t, l.Update(context.Background()))
}
