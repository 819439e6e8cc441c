//go:build gui

package gui

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/go-gl/glfw/v3.3/glfw"

	"uttr/overlay"
	"uttr/tray"
)

// App owns the fyne event loop. It is an overlay.Window, and when the
// platform has a system tray it backs the given tray.Tray.
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	pill    *Pill
	tray    *tray.Tray
	actions tray.Actions
	onReady func()

	mu   sync.Mutex
	posX int
	posY int
	area overlay.Rect
	ok   bool
}

func NewApp(t *tray.Tray, actions tray.Actions, onReady func()) *App {
	return &App{tray: t, actions: actions, onReady: onReady}
}

// Run blocks in the fyne event loop. It must be called on the main thread.
func Run(a *App) error {
	a.fyneApp = app.NewWithID("io.uttr.gui")
	a.fyneApp.Settings().SetTheme(&darkTheme{})

	if desk, ok := a.fyneApp.(desktop.App); ok && a.tray != nil {
		a.tray.Attach(newTrayMenu(desk, a.actions, a.fyneApp.Quit))
	}

	// Work area of the primary monitor. glfw is only safe on this thread, so
	// it is read once here.
	if monitor := glfw.GetPrimaryMonitor(); monitor != nil {
		x, y, w, h := monitor.GetWorkarea()
		a.mu.Lock()
		a.area = overlay.Rect{X: float64(x), Y: float64(y), W: float64(w), H: float64(h)}
		a.ok = true
		a.mu.Unlock()
	}

	if drv, ok := a.fyneApp.Driver().(desktop.Driver); ok {
		a.window = drv.CreateSplashWindow()
	} else {
		a.window = a.fyneApp.NewWindow("uttr")
	}

	a.pill = NewPill()
	a.window.SetContent(a.pill)
	a.window.SetFixedSize(true)
	a.window.SetPadded(false)
	a.window.Resize(a.pill.MinSize())

	go a.onReady()

	// Stays hidden until the first session starts.
	a.fyneApp.Run()
	return nil
}

func (a *App) Quit() {
	if a.fyneApp != nil {
		a.fyneApp.Quit()
	}
}

// Screen reports the primary monitor's work area.
func (a *App) Screen() (overlay.Rect, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.area, a.ok
}

func (a *App) SetPosition(x, y float64) {
	a.mu.Lock()
	a.posX, a.posY = int(x), int(y)
	a.mu.Unlock()
}

func (a *App) Show() {
	a.mu.Lock()
	x, y := a.posX, a.posY
	a.mu.Unlock()

	fyne.Do(func() {
		if a.window == nil {
			return
		}
		// Configure GLFW attributes before showing so the pill never takes focus.
		if glfwWin := glfw.GetCurrentContext(); glfwWin != nil {
			glfwWin.SetPos(x, y)
			glfwWin.SetAttrib(glfw.FocusOnShow, glfw.False)
			glfwWin.SetAttrib(glfw.Floating, glfw.True)
			glfwWin.Show()
			return
		}
		a.window.Show()
	})
}

func (a *App) SetState(state string) {
	if a.pill != nil {
		a.pill.SetState(state)
	}
}

func (a *App) FadeOut() {
	if a.pill != nil {
		a.pill.FadeOut()
	}
}

func (a *App) Hide() {
	fyne.Do(func() {
		if a.window != nil {
			a.window.Hide()
		}
	})
}

func (a *App) SetLevels(levels []float32) {
	if a.pill != nil {
		a.pill.SetLevels(levels)
	}
}
