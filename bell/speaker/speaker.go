// Package speaker plays a bell on the default audio device.
package speaker

import (
	"fmt"
	"time"

	"github.com/gopxl/beep/speaker"

	"github.com/danielgatis/go-termdesk/bell"
)

type lock struct{}

func (lock) Lock()   { speaker.Lock() }
func (lock) Unlock() { speaker.Unlock() }

// Open initializes the speaker and starts playing a new Bell's mixer.
// It fails when no audio device is available; callers fall back to
// termdesk.NoopBell.
func Open(opts ...bell.Option) (*bell.Bell, error) {
	if err := speaker.Init(bell.SampleRate, bell.SampleRate.N(100*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("speaker init: %w", err)
	}
	b := bell.New(append(opts, bell.WithLocker(lock{}))...)
	speaker.Play(b.Streamer())
	return b, nil
}

// Close stops playback.
func Close() {
	speaker.Clear()
}
