// Package radio provides the GPIO capability used to key a 433MHz ASK
// transmitter: configure a pin for output, drive it, and busy-wait.
package radio

import "time"

// Level is the binary state of an output pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "High"
	}
	return "Low"
}

// Pin identifies a GPIO line by number.
type Pin int

// Driver is the capability a transmitter keys its pin through.
//
// WriteDigital and DelayMicroseconds cannot fail: the pulse train has no
// recovery semantics, so implementations that can observe write errors keep
// them for later inspection instead.
type Driver interface {
	// ConfigureOutput configures pin as a digital output.
	ConfigureOutput(pin Pin) error

	// WriteDigital drives pin to level.
	WriteDigital(pin Pin, level Level)

	// DelayMicroseconds holds the current pin state for us microseconds
	// without yielding.
	DelayMicroseconds(us uint32)
}

// Spin busy-waits for d on the monotonic clock.
func Spin(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}
