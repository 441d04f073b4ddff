package pty

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readUntil polls the child the way the render loop does and collects
// output until it contains want.
func readUntil(t *testing.T, c *Child, want string) string {
	t.Helper()
	var out bytes.Buffer
	buf := make([]byte, MaxRead)
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		ready, err := c.Ready()
		require.NoError(t, err)
		if !ready {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		n, err := c.Read(buf)
		out.Write(buf[:n])
		if strings.Contains(out.String(), want) {
			return out.String()
		}
		if err != nil {
			break
		}
	}
	t.Fatalf("expected output containing %q, got %q", want, out.String())
	return ""
}

func TestStartRequiresCommand(t *testing.T) {
	_, err := Start(Options{})
	assert.ErrorIs(t, err, ErrNoCommand)
}

func TestEnvironment(t *testing.T) {
	c, err := Start(Options{
		Command: "/bin/sh",
		Args:    []string{"-c", `echo "term=$TERM cols=$COLUMNS lines=$LINES lc=$LC_ALL x=$EXTRA"; sleep 5`},
		Rows:    30,
		Cols:    100,
		Locale:  "C.UTF-8",
		Env:     []string{"EXTRA=1"},
	})
	require.NoError(t, err)
	defer c.Close()

	out := readUntil(t, c, "x=1")
	assert.Contains(t, out, "term=xterm-256color cols=100 lines=30 lc=C.UTF-8 x=1")
}

func TestEcho(t *testing.T) {
	c, err := Start(Options{Command: "/bin/cat"})
	require.NoError(t, err)
	defer c.Close()

	ready, err := c.Ready()
	require.NoError(t, err)
	assert.False(t, ready)

	_, err = c.Write([]byte("ping\n"))
	require.NoError(t, err)
	readUntil(t, c, "ping")
}

func TestResize(t *testing.T) {
	c, err := Start(Options{Command: "/bin/cat"})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Resize(40, 120))
}

func TestKill(t *testing.T) {
	c, err := Start(Options{Command: "/bin/cat"})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Kill())
	select {
	case <-c.Exited():
	case <-time.After(5 * time.Second):
		t.Fatal("child did not exit")
	}
	assert.Error(t, c.ExitErr())
	// A second kill after exit is harmless.
	assert.NoError(t, c.Kill())
}

func TestWriteAfterCloseIsNoop(t *testing.T) {
	c, err := Start(Options{Command: "/bin/cat"})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	n, err := c.Write([]byte("late"))
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.True(t, c.Gone())

	_, err = c.Ready()
	assert.Error(t, err)
	assert.NoError(t, c.Close())
}
