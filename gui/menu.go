//go:build gui

package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"uttr/tray"
)

// trayMenu is the tray.Menu backed by fyne's system tray.
type trayMenu struct {
	desk   desktop.App
	menu   *fyne.Menu
	toggle *fyne.MenuItem
	cancel *fyne.MenuItem
	copy   *fyne.MenuItem
}

func newTrayMenu(desk desktop.App, a tray.Actions, quit func()) *trayMenu {
	m := &trayMenu{
		desk:   desk,
		toggle: fyne.NewMenuItem("Start Recording", call(a.Toggle)),
		cancel: fyne.NewMenuItem("Cancel", call(a.Cancel)),
		copy:   fyne.NewMenuItem("Copy Last Transcript", call(a.CopyLast)),
	}
	quitItem := fyne.NewMenuItem("Quit", func() {
		call(a.Quit)()
		quit()
	})
	quitItem.IsQuit = true
	m.menu = fyne.NewMenu("uttr", m.toggle, m.cancel, m.copy, fyne.NewMenuItemSeparator(), quitItem)
	desk.SetSystemTrayMenu(m.menu)
	return m
}

func call(fn func()) func() {
	return func() {
		if fn != nil {
			// Menu callbacks run on the UI thread; session work must not.
			go fn()
		}
	}
}

func (m *trayMenu) SetIcon(png []byte) {
	fyne.Do(func() {
		m.desk.SetSystemTrayIcon(fyne.NewStaticResource("tray.png", png))
	})
}

// SetTooltip is a no-op: fyne's tray has no tooltip. The icon carries the state.
func (m *trayMenu) SetTooltip(string) {}

func (m *trayMenu) SetToggleTitle(title string) {
	fyne.Do(func() {
		m.toggle.Label = title
		m.menu.Refresh()
	})
}

func (m *trayMenu) SetCancelEnabled(on bool) {
	fyne.Do(func() {
		m.cancel.Disabled = !on
		m.menu.Refresh()
	})
}

func (m *trayMenu) SetCopyEnabled(on bool) {
	fyne.Do(func() {
		m.copy.Disabled = !on
		m.menu.Refresh()
	})
}
