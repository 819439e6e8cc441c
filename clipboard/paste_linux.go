package clipboard

import (
	"time"

	"github.com/micmonay/keybd_event"
)

const pasteShortcut = "Ctrl+V"

func setPasteModifier(kb *keybd_event.KeyBonding) { kb.HasCTRL(true) }

// uinput devices are ignored until udev has classified them.
func settle() { time.Sleep(2 * time.Second) }
