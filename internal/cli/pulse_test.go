package cli

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain reads a streamer to the end in small chunks
func drain(s beep.Streamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 7)
	for i := 0; i < 100; i++ {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			break
		}
	}
	return out
}

func TestSequencePlaysTonesInOrder(t *testing.T) {
	rate := beep.SampleRate(1000)
	samples := drain(sequence(rate,
		tone{freq: 100, d: 10 * time.Millisecond}, // 10 samples
		tone{freq: 250, d: 20 * time.Millisecond}, // 20 samples
	))

	require.Len(t, samples, 30, "tones follow each other instead of overlapping")

	step1 := pulseVolume * math.Sin(2*math.Pi*100/1000)
	step2 := pulseVolume * math.Sin(2*math.Pi*250/1000)

	assert.InDelta(t, 0, samples[0][0], 1e-9)
	assert.InDelta(t, step1, samples[1][0], 1e-9)
	assert.InDelta(t, 0, samples[10][0], 1e-9, "second tone starts at its own phase")
	assert.InDelta(t, step2, samples[11][0], 1e-9)
	assert.Equal(t, samples[11][0], samples[11][1])
}

func TestMutedPulserIsSilent(t *testing.T) {
	p := NewPulser(true)
	p.Bump()
	p.Key()
	p.Win()
	p.Close()
}
