//go:build !linux

package main

import (
	"os"
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	// The GUI takes the main thread itself and calls run on a goroutine.
	if wantsGUI(os.Args[1:]) {
		initGUI()
		return
	}
	mainthread.Init(func() { run(nil) })
}
