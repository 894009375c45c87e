package framing

import "sync"

var registerOnce sync.Once

// Register makes the dplay and hexline rules available to core.Config.
func Register() {
	registerOnce.Do(func() {
		registerBinary()
		registerText()
	})
}
