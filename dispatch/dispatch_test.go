package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielgatis/go-termdesk/metrics"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
	args  []Args
}

func (r *recorder) handler(name string) Handler {
	return func(_ context.Context, a Args) (any, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, name)
		r.args = append(r.args, a)
		return len(r.calls), nil
	}
}

func TestRegisterValidation(t *testing.T) {
	s := NewServer(NewQueue("/foo", 0))
	noop := func(context.Context, Args) (any, error) { return nil, nil }

	require.NoError(t, s.Register("circle", noop))
	assert.ErrorIs(t, s.Register("circle", noop), ErrDuplicate)
	assert.ErrorIs(t, s.Register("", noop), ErrInvalidName)
	assert.ErrorIs(t, s.Register("_internal", noop), ErrInvalidName)
	assert.ErrorIs(t, s.Register("has space", noop), ErrInvalidName)
	assert.ErrorIs(t, s.Register("nil", nil), ErrNilHandler)
	assert.Panics(t, func() { s.MustRegister("circle", noop) })

	assert.Equal(t, []string{"circle"}, s.Names())
}

func TestDrainCircleExactlyOnceInOrder(t *testing.T) {
	q := NewQueue("/foo", 0)
	s := NewServer(q)
	rec := &recorder{}
	s.MustRegister("circle", rec.handler("circle"))
	s.MustRegister("clear", rec.handler("clear"))

	require.NoError(t, q.Put(Command{Name: "clear"}))
	require.NoError(t, q.Put(NewCommand("circle", 10, 10, 5, []any{255, 0, 0, 255})))
	require.NoError(t, q.Put(Command{Name: "clear"}))

	n := s.Drain(context.Background(), 0)

	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"clear", "circle", "clear"}, rec.calls)
	assert.Equal(t, []any{10, 10, 5, []any{255, 0, 0, 255}}, rec.args[1].Positional)
	assert.Empty(t, rec.args[1].Keyword)
	assert.Zero(t, q.Len())

	assert.Zero(t, s.Drain(context.Background(), 0))
	assert.Len(t, rec.calls, 3)
}

func TestDrainLimit(t *testing.T) {
	q := NewQueue("/foo", 0)
	s := NewServer(q)
	rec := &recorder{}
	s.MustRegister("circle", rec.handler("circle"))
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Put(NewCommand("circle", i)))
	}

	assert.Equal(t, 2, s.Drain(context.Background(), 2))
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 3, s.Drain(context.Background(), 10))
}

func TestDrainUnknownIsSkipped(t *testing.T) {
	q := NewQueue("/foo", 0)
	m := metrics.New()
	s := NewServer(q, WithMetrics(m))
	rec := &recorder{}
	s.MustRegister("circle", rec.handler("circle"))

	require.NoError(t, q.Put(Command{Name: "square"}))
	require.NoError(t, q.Put(NewCommand("circle", 1, 2, 3)))

	assert.Equal(t, 2, s.Drain(context.Background(), 0))
	assert.Equal(t, []string{"circle"}, rec.calls)
	assert.Empty(t, s.Results())
}

func TestResultsFIFO(t *testing.T) {
	q := NewQueue("/foo", 0)
	s := NewServer(q)
	s.MustRegister("get_size", func(context.Context, Args) (any, error) {
		return []int{800, 600}, nil
	})
	s.MustRegister("get_fail", func(context.Context, Args) (any, error) {
		return nil, errors.New("boom")
	})
	s.MustRegister("circle", func(context.Context, Args) (any, error) {
		return "ignored", nil
	})

	for _, name := range []string{"get_size", "circle", "get_missing", "get_fail", "get_size"} {
		require.NoError(t, q.Put(Command{Name: name}))
	}
	s.Drain(context.Background(), 0)

	var got []Result
	for len(s.Results()) > 0 {
		got = append(got, <-s.Results())
	}
	require.Len(t, got, 4)
	assert.Equal(t, "get_size", got[0].Name)
	assert.Equal(t, []int{800, 600}, got[0].Value)
	assert.ErrorIs(t, got[1].Err, ErrUnknownCommand)
	assert.EqualError(t, got[2].Err, "boom")
	assert.Equal(t, "get_size", got[3].Name)
}

func TestResultsDroppedWhenFull(t *testing.T) {
	q := NewQueue("/foo", 0)
	s := NewServer(q, WithResultCapacity(1))
	s.MustRegister("get_x", func(context.Context, Args) (any, error) { return 1, nil })

	require.NoError(t, q.Put(Command{Name: "get_x"}))
	require.NoError(t, q.Put(Command{Name: "get_x"}))
	s.Drain(context.Background(), 0)

	assert.Len(t, s.Results(), 1)
}

func TestQueueFull(t *testing.T) {
	q := NewQueue("/foo", 2)

	require.NoError(t, q.Put(Command{Name: "a"}))
	require.NoError(t, q.Put(Command{Name: "b"}))
	assert.ErrorIs(t, q.Put(Command{Name: "c"}), ErrQueueFull)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.PutContext(ctx, Command{Name: "c"}), context.DeadlineExceeded)

	cmd, ok := q.TryGet()
	require.True(t, ok)
	assert.Equal(t, "a", cmd.Name)
	assert.NoError(t, q.PutContext(context.Background(), Command{Name: "c"}))
}

func TestQueueDefaultCapacity(t *testing.T) {
	q := NewQueue("/foo", 0)

	assert.Equal(t, DefaultCapacity, q.Cap())
	assert.Equal(t, "/foo", q.Name())
}

func TestArgs(t *testing.T) {
	a := Args{
		Positional: []any{10, 20.0, "hi", []any{1.0, 2, 3}},
		Keyword:    map[string]any{"y": 99.0, "bad": 1.5},
	}

	x, err := a.Int(0, "x")
	require.NoError(t, err)
	assert.Equal(t, 10, x)

	y, err := a.Int(1, "y")
	require.NoError(t, err)
	assert.Equal(t, 99, y)

	s, err := a.String(2, "text")
	require.NoError(t, err)
	assert.Equal(t, "hi", s)

	ints, err := a.Ints(3, "color")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ints)

	def, err := a.IntOr(9, "missing", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, def)

	_, err = a.Int(9, "missing")
	assert.ErrorIs(t, err, ErrBadArgument)
	_, err = a.Int(-1, "bad")
	assert.ErrorIs(t, err, ErrBadArgument)
	_, err = a.String(0, "")
	assert.ErrorIs(t, err, ErrBadArgument)
}

func TestArgsIntsDoesNotAlias(t *testing.T) {
	rgb := make([]int, 3, 4)
	copy(rgb, []int{1, 2, 3})
	a := Args{Positional: []any{rgb}}

	ints, err := a.Ints(0, "color")
	require.NoError(t, err)
	ints[0] = 200
	_ = append(ints, 255)

	assert.Equal(t, []int{1, 2, 3}, rgb)
	assert.Equal(t, []int{1, 2, 3, 0}, rgb[:4])
}

func TestBroadcaster(t *testing.T) {
	b := NewBroadcaster(2, nil, nil)
	id1, ch1 := b.Subscribe()
	_, ch2 := b.Subscribe()
	assert.Equal(t, 2, b.Len())

	ev := Event{Action: 27, Mods: 1, Ctrl: true}
	b.Publish(ev)

	assert.Equal(t, ev, <-ch1)
	assert.Equal(t, ev, <-ch2)

	b.Unsubscribe(id1)
	_, ok := <-ch1
	assert.False(t, ok)
	assert.Equal(t, 1, b.Len())

	b.Close()
	_, ok = <-ch2
	assert.False(t, ok)
}

func TestBroadcasterDropsForSlowListener(t *testing.T) {
	b := NewBroadcaster(1, nil, metrics.New())
	_, ch := b.Subscribe()

	b.Publish(Event{Action: 1})
	b.Publish(Event{Action: 2})

	assert.Equal(t, 1, (<-ch).Action)
	assert.Empty(t, ch)
}
