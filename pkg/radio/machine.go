//go:build tinygo

package radio

import (
	"machine"
	"time"
)

// MachineDriver drives pins through the TinyGo machine package.
type MachineDriver struct{}

func (MachineDriver) ConfigureOutput(pin Pin) error {
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinOutput})
	return nil
}

func (MachineDriver) WriteDigital(pin Pin, level Level) {
	machine.Pin(pin).Set(bool(level))
}

func (MachineDriver) DelayMicroseconds(us uint32) {
	Spin(time.Duration(us) * time.Microsecond)
}
