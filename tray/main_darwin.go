package tray

import "golang.design/x/hotkey/mainthread"

// The Cocoa status item must be created on the main thread.
func runOnMain(fn func()) { mainthread.Call(fn) }
