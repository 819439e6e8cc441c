// Package doctor runs interactive checks of everything a dictation session
// depends on: settings, the API key, the global shortcut, the microphone,
// the transcription API and the clipboard.
package doctor

import (
	"errors"
	"fmt"
	"io"
)

// ErrSkipped marks a check that could not run because an earlier one failed.
var ErrSkipped = errors.New("skipped")

// Check is one diagnostic step. Run writes progress to w and returns nil on
// success.
type Check struct {
	Name string
	Run  func(w io.Writer) error
	// Required checks stop the run on failure; later checks depend on them.
	Required bool
}

// Run executes checks in order and returns an exit code (0=all pass, 1=any fail).
func Run(w io.Writer, checks []Check) int {
	allPass := true
	blocked := ""
	for i, c := range checks {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "[%d/%d] %s\n", i+1, len(checks), c.Name)
		if blocked != "" {
			fmt.Fprintf(w, "  SKIP: %s failed\n", blocked)
			continue
		}
		if err := c.Run(w); err != nil {
			allPass = false
			if errors.Is(err, ErrSkipped) {
				fmt.Fprintf(w, "  SKIP: %v\n", err)
			} else {
				fmt.Fprintf(w, "  FAIL: %v\n", err)
			}
			if c.Required {
				blocked = c.Name
			}
			continue
		}
		fmt.Fprintln(w, "  PASS")
	}

	fmt.Fprintln(w)
	if allPass {
		fmt.Fprintln(w, "All checks passed!")
		return 0
	}
	fmt.Fprintln(w, "Some checks failed. See details above.")
	return 1
}
