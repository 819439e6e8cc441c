//go:build linux

package main

import "os"

func main() {
	if wantsGUI(os.Args[1:]) {
		initGUI()
		return
	}
	run(nil)
}
