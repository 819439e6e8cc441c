// Package beep plays the short start, stop and cancel cues.
package beep

import (
	"math"
	"sync"
)

type Sound int

const (
	Start Sound = iota
	Stop
	Cancel
)

const sampleRate = 44100

type tone struct {
	freq     float64
	duration float64
	volume   float64
	decay    float64
	repeat   bool // two ticks separated by a gap
}

var tones = map[Sound]tone{
	Start:  {freq: 1200, duration: startDuration, volume: 0.5, decay: 60},
	Stop:   {freq: 900, duration: stopDuration, volume: 0.5, decay: 40},
	Cancel: {freq: 350, duration: 0.08, volume: 0.6, decay: 30, repeat: true},
}

const gapDuration = 0.05

var (
	pcmOnce sync.Once
	pcm     map[Sound][]int16
)

// Samples returns the mono 16-bit PCM for s at 44.1 kHz.
func Samples(s Sound) []int16 {
	pcmOnce.Do(func() {
		pcm = make(map[Sound][]int16, len(tones))
		for snd, t := range tones {
			pcm[snd] = render(t)
		}
	})
	return pcm[s]
}

func render(t tone) []int16 {
	tick := generateTick(t.freq, t.duration, t.volume, t.decay)
	if !t.repeat {
		return tick
	}
	gap := make([]int16, int(sampleRate*gapDuration))
	out := make([]int16, 0, len(tick)*2+len(gap))
	out = append(out, tick...)
	out = append(out, gap...)
	return append(out, tick...)
}

func generateTick(freq, duration, volume, decay float64) []int16 {
	n := int(sampleRate * duration)
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / sampleRate
		envelope := math.Exp(-t * decay)
		samples[i] = int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
	}
	return samples
}

// Play starts s and returns without waiting for it to finish.
func Play(s Sound) {
	play(Samples(s))
}
