package cli

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	pulseSampleRate = beep.SampleRate(48000)
	pulseVolume     = 0.3
)

// Pulser plays short tones for game feedback. Every method is a no-op when
// the audio device could not be opened.
type Pulser struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewPulser opens the speaker unless muted. Audio failures leave a silent
// pulser rather than an error.
func NewPulser(muted bool) *Pulser {
	p := &Pulser{mixer: &beep.Mixer{}}
	if muted {
		return p
	}
	if err := speaker.Init(pulseSampleRate, pulseSampleRate.N(100*time.Millisecond)); err != nil {
		return p
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return p
}

// Bump plays a low thud for a hazard hit
func (p *Pulser) Bump() {
	p.play(tone{110, 120 * time.Millisecond})
}

// Key plays a short chirp for a collected key
func (p *Pulser) Key() {
	p.play(tone{880, 80 * time.Millisecond})
}

// Win plays a rising pair of tones
func (p *Pulser) Win() {
	p.play(tone{660, 100 * time.Millisecond}, tone{990, 180 * time.Millisecond})
}

// tone is a sine note of a given length
type tone struct {
	freq float64
	d    time.Duration
}

// sequence plays the tones one after another
func sequence(rate beep.SampleRate, tones ...tone) beep.Streamer {
	parts := make([]beep.Streamer, 0, len(tones))
	for _, t := range tones {
		parts = append(parts, beep.Take(rate.N(t.d), sineTone(t.freq, rate)))
	}
	return beep.Seq(parts...)
}

func (p *Pulser) play(tones ...tone) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Add(sequence(pulseSampleRate, tones...))
	speaker.Unlock()
}

// Close stops playback and releases the device
func (p *Pulser) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.initialized = false
}

// sineTone is an endless sine wave at freq
func sineTone(freq float64, rate beep.SampleRate) beep.Streamer {
	phase := 0.0
	step := freq / float64(rate)
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			v := pulseVolume * math.Sin(2*math.Pi*phase)
			samples[i][0] = v
			samples[i][1] = v
			phase += step
			phase -= math.Floor(phase)
		}
		return len(samples), true
	})
}
