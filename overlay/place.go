package overlay

import "uttr/config"

const (
	Width  = 172.0
	Height = 36.0
)

type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Place returns the top-left corner of the pill, horizontally centered in
// the work area. "none" is placed like "bottom".
func Place(position string, area Rect) (x, y float64) {
	x = area.X + (area.W-Width)/2
	if position == config.PositionTop {
		return x, area.Y + topOffset
	}
	return x, area.Y + area.H - Height - bottomOffset
}

// MonitorAt picks the monitor containing the cursor, or the first one.
func MonitorAt(monitors []Rect, cx, cy float64) (Rect, bool) {
	for _, m := range monitors {
		if m.Contains(cx, cy) {
			return m, true
		}
	}
	if len(monitors) > 0 {
		return monitors[0], true
	}
	return Rect{}, false
}
