//go:build gui

package gui

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"uttr/audio"
	"uttr/overlay"
)

const (
	dotSize  = 10
	barWidth = 3
	barGap   = 2
	padding  = 12
)

// Pill is the overlay content: a state dot, a label and level bars.
type Pill struct {
	widget.BaseWidget
	mu     sync.Mutex
	state  string
	levels []float32
	alpha  float32
	fading bool
	stopCh chan struct{}
}

func NewPill() *Pill {
	p := &Pill{alpha: 1, levels: make([]float32, audio.LevelBuckets), stopCh: make(chan struct{})}
	p.ExtendBaseWidget(p)
	go p.animate()
	return p
}

func (p *Pill) SetState(state string) {
	p.mu.Lock()
	p.state = state
	p.alpha = 1
	p.fading = false
	if state != "recording" {
		clear(p.levels)
	}
	p.mu.Unlock()
}

func (p *Pill) SetLevels(levels []float32) {
	p.mu.Lock()
	if p.state == "recording" {
		p.levels = smoothInto(p.levels, levels)
	}
	p.mu.Unlock()
}

func (p *Pill) FadeOut() {
	p.mu.Lock()
	p.fading = true
	p.mu.Unlock()
}

func (p *Pill) Stop() {
	select {
	case <-p.stopCh:
	default:
		close(p.stopCh)
	}
}

func (p *Pill) animate() {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.mu.Lock()
			if p.fading {
				p.alpha = max(p.alpha-fadeStep, 0)
			}
			p.mu.Unlock()
			fyne.Do(func() {
				p.Refresh()
			})
		}
	}
}

func (p *Pill) MinSize() fyne.Size {
	return fyne.NewSize(overlay.Width, overlay.Height)
}

func (p *Pill) CreateRenderer() fyne.WidgetRenderer {
	r := &pillRenderer{
		pill:  p,
		bg:    canvas.NewRectangle(colorBackground),
		dot:   canvas.NewCircle(colorRecording),
		label: canvas.NewText("", colorBar),
		bars:  make([]*canvas.Rectangle, audio.LevelBuckets),
	}
	r.bg.CornerRadius = overlay.Height / 2
	r.label.TextSize = 12
	for i := range r.bars {
		r.bars[i] = canvas.NewRectangle(colorBar)
	}
	return r
}

type pillRenderer struct {
	pill  *Pill
	bg    *canvas.Rectangle
	dot   *canvas.Circle
	label *canvas.Text
	bars  []*canvas.Rectangle
	size  fyne.Size
}

func (r *pillRenderer) Layout(size fyne.Size) {
	r.size = size
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))

	r.dot.Resize(fyne.NewSize(dotSize, dotSize))
	r.dot.Move(fyne.NewPos(padding, (size.Height-dotSize)/2))

	r.label.Move(fyne.NewPos(padding+dotSize+8, (size.Height-r.label.MinSize().Height)/2))
	r.layoutBars(nil)
}

// layoutBars places the bars at the right edge, their height following levels.
func (r *pillRenderer) layoutBars(levels []float32) {
	maxH := r.size.Height - 16
	x := r.size.Width - padding - float32(len(r.bars))*(barWidth+barGap)
	for i, b := range r.bars {
		var lvl float32
		if i < len(levels) {
			lvl = levels[i]
		}
		h := max(2, lvl*maxH)
		b.Resize(fyne.NewSize(barWidth, h))
		b.Move(fyne.NewPos(x+float32(i)*(barWidth+barGap), (r.size.Height-h)/2))
	}
}

func (r *pillRenderer) MinSize() fyne.Size {
	return r.pill.MinSize()
}

func (r *pillRenderer) Refresh() {
	r.pill.mu.Lock()
	state := r.pill.state
	levels := append([]float32(nil), r.pill.levels...)
	alpha := r.pill.alpha
	r.pill.mu.Unlock()

	dotColor, text := stateStyle(state)
	r.bg.FillColor = withAlpha(colorBackground, alpha)
	r.dot.FillColor = withAlpha(dotColor, alpha)
	r.label.Text = text
	r.label.Color = withAlpha(colorBar, alpha)

	showBars := state == "recording"
	for _, b := range r.bars {
		b.FillColor = withAlpha(colorBar, alpha)
		if showBars {
			b.Show()
		} else {
			b.Hide()
		}
	}
	r.layoutBars(levels)

	for _, o := range r.Objects() {
		o.Refresh()
	}
}

func (r *pillRenderer) Objects() []fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, 0, 3+len(r.bars))
	objs = append(objs, r.bg, r.dot, r.label)
	for _, b := range r.bars {
		objs = append(objs, b)
	}
	return objs
}

func (r *pillRenderer) Destroy() {
	r.pill.Stop()
}
