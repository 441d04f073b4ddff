// Package bell turns terminal BEL characters into a short tone.
//
// The Bell mixes tones into a beep.Mixer; package bell/speaker plays that
// mixer on the host audio device.
package bell

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"go.uber.org/zap"
)

// SampleRate is the rate tones are generated at.
const SampleRate = beep.SampleRate(48000)

// Tone is a sine wave with a short linear attack and release so it does
// not click.
type Tone struct {
	freq  float64
	total int
	ramp  int
	pos   int
	rate  beep.SampleRate
}

// NewTone creates a tone of the given frequency and duration.
func NewTone(freq float64, d time.Duration, rate beep.SampleRate) *Tone {
	total := rate.N(d)
	ramp := rate.N(5 * time.Millisecond)
	if ramp*2 > total {
		ramp = total / 2
	}
	return &Tone{freq: freq, total: total, ramp: ramp, rate: rate}
}

func (t *Tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.pos >= t.total {
			return i, i > 0
		}
		v := math.Sin(2*math.Pi*t.freq*float64(t.pos)/float64(t.rate)) * t.gain()
		samples[i][0] = v
		samples[i][1] = v
		t.pos++
	}
	return len(samples), true
}

func (t *Tone) gain() float64 {
	if t.ramp == 0 {
		return 1
	}
	switch {
	case t.pos < t.ramp:
		return float64(t.pos) / float64(t.ramp)
	case t.pos >= t.total-t.ramp:
		return float64(t.total-t.pos) / float64(t.ramp)
	}
	return 1
}

func (t *Tone) Err() error { return nil }

// Bell implements termdesk.BellProvider.
type Bell struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	locker sync.Locker

	freq   float64
	dur    time.Duration
	volume float64
	last   time.Time
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Bell.
type Option func(*Bell)

// WithTone sets the frequency in Hz and the duration of each ring.
func WithTone(freq float64, d time.Duration) Option {
	return func(b *Bell) {
		if freq > 0 {
			b.freq = freq
		}
		if d > 0 {
			b.dur = d
		}
	}
}

// WithVolume sets the linear volume in (0, 1].
func WithVolume(v float64) Option {
	return func(b *Bell) {
		if v > 0 && v <= 1 {
			b.volume = v
		}
	}
}

// WithLocker guards mixer mutations, e.g. with the speaker lock while the
// mixer is playing.
func WithLocker(l sync.Locker) Option {
	return func(b *Bell) {
		b.locker = l
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bell) {
		if l != nil {
			b.logger = l
		}
	}
}

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

// New creates a bell at 880 Hz for 120ms at half volume.
func New(opts ...Option) *Bell {
	b := &Bell{
		mixer:  &beep.Mixer{},
		locker: nopLocker{},
		freq:   880,
		dur:    120 * time.Millisecond,
		volume: 0.5,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Streamer is the mixer tones are added to.
func (b *Bell) Streamer() beep.Streamer { return b.mixer }

// Ring adds a tone to the mixer. Rings arriving while the previous tone
// is still sounding are dropped. Ring never blocks on audio output.
func (b *Bell) Ring() {
	b.mu.Lock()
	now := b.now()
	if !b.last.IsZero() && now.Sub(b.last) < b.dur {
		b.mu.Unlock()
		return
	}
	b.last = now
	b.mu.Unlock()

	tone := &effects.Volume{
		Streamer: NewTone(b.freq, b.dur, SampleRate),
		Base:     2,
		Volume:   math.Log2(b.volume),
	}

	b.locker.Lock()
	b.mixer.Add(tone)
	b.locker.Unlock()
	b.logger.Debug("bell")
}

// Pending returns the number of tones still playing.
func (b *Bell) Pending() int {
	b.locker.Lock()
	defer b.locker.Unlock()
	return b.mixer.Len()
}
