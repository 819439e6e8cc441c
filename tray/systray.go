package tray

import (
	"fyne.io/systray"

	"uttr/log"
)

type systrayMenu struct {
	toggle *systray.MenuItem
	cancel *systray.MenuItem
	copy   *systray.MenuItem
	quit   *systray.MenuItem
}

func (m *systrayMenu) SetIcon(png []byte)      { systray.SetIcon(png) }
func (m *systrayMenu) SetTooltip(text string)  { systray.SetTooltip(text) }
func (m *systrayMenu) SetToggleTitle(t string) { m.toggle.SetTitle(t) }

func (m *systrayMenu) SetCancelEnabled(on bool) { setEnabled(m.cancel, on) }
func (m *systrayMenu) SetCopyEnabled(on bool)   { setEnabled(m.copy, on) }

func setEnabled(item *systray.MenuItem, on bool) {
	if on {
		item.Enable()
	} else {
		item.Disable()
	}
}

// Start brings up the system tray. State set before the menu is ready is
// applied once it appears. stop removes the tray.
func Start(actions Actions) (t *Tray, stop func()) {
	t = New()
	onReady := func() {
		systray.SetTitle("")
		m := &systrayMenu{
			toggle: systray.AddMenuItem("Start Recording", "Start or stop dictation"),
			cancel: systray.AddMenuItem("Cancel", "Discard the current recording"),
			copy:   systray.AddMenuItem("Copy Last Transcript", "Copy the last transcript to the clipboard"),
		}
		systray.AddSeparator()
		m.quit = systray.AddMenuItem("Quit", "Quit "+appName)
		go m.loop(actions)
		t.Attach(m)
	}
	onExit := func() { log.Debug("tray exited") }

	start, end := systray.RunWithExternalLoop(onReady, onExit)
	runOnMain(start)
	return t, end
}

func (m *systrayMenu) loop(a Actions) {
	for {
		select {
		case <-m.toggle.ClickedCh:
			call(a.Toggle)
		case <-m.cancel.ClickedCh:
			call(a.Cancel)
		case <-m.copy.ClickedCh:
			call(a.CopyLast)
		case <-m.quit.ClickedCh:
			call(a.Quit)
			return
		}
	}
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
