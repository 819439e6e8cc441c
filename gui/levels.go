// Package gui draws the overlay pill in a frameless fyne window and puts the
// tray menu into fyne's system tray. Build with -tags gui.
package gui

import "image/color"

// Level smoothing: bars rise quickly and fall slowly.
const (
	attack  = 0.8
	release = 0.3
	// fadeStep is the alpha removed per animation frame while fading out.
	fadeStep = 0.15
)

func smooth(cur, target float32) float32 {
	if target > cur {
		return cur*(1-attack) + target*attack
	}
	return cur*(1-release) + target*release
}

// smoothInto blends target into cur in place. cur is resized to target.
func smoothInto(cur, target []float32) []float32 {
	if len(cur) != len(target) {
		cur = make([]float32, len(target))
	}
	for i, v := range target {
		cur[i] = smooth(cur[i], v)
	}
	return cur
}

var (
	colorRecording    = color.RGBA{R: 255, G: 59, B: 48, A: 255}
	colorTranscribing = color.RGBA{R: 255, G: 159, B: 10, A: 255}
	colorProcessing   = color.RGBA{R: 10, G: 132, B: 255, A: 255}
	colorBar          = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	colorBackground   = color.RGBA{R: 18, G: 18, B: 18, A: 230}
)

// stateStyle returns the dot color and label for a coordinator state name.
func stateStyle(state string) (color.RGBA, string) {
	switch state {
	case "recording":
		return colorRecording, "Recording"
	case "transcribing":
		return colorTranscribing, "Transcribing…"
	case "processing":
		return colorProcessing, "Pasting…"
	}
	return colorBar, state
}

// withAlpha scales c's alpha by a in [0, 1].
func withAlpha(c color.RGBA, a float32) color.RGBA {
	c.A = uint8(float32(c.A) * min(max(a, 0), 1))
	return c
}
