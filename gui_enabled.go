//go:build gui

package main

import (
	"runtime"

	"uttr/gui"
	"uttr/tray"
)

func initGUI() {
	// Fyne and GLFW must stay on the main thread.
	runtime.LockOSThread()

	ref := &appRef{}
	t := tray.New()
	var guiApp *gui.App
	guiApp = gui.NewApp(t, ref.actions(), func() {
		run(&frontend{
			window: guiApp,
			screen: guiApp.Screen,
			tray:   t,
			ref:    ref,
			quit:   guiApp.Quit,
		})
	})
	if err := gui.Run(guiApp); err != nil {
		panic(err)
	}
}
