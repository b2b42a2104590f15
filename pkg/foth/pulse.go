package foth

import (
	"time"

	"github.com/ericogr/foth433/pkg/radio"
)

// Pulse widths in units of the base pulse length.
const (
	oneHigh   = 1
	zeroHigh  = 3
	bitLow    = 2
	stopUnits = 9
)

func (t *Transmitter) hold(level radio.Level, units int) {
	t.drv.WriteDigital(t.pin, level)
	t.drv.DelayMicroseconds(uint32(t.pulse/time.Microsecond) * uint32(units))
}

// sendBit sends a 1 as a short high pulse and a 0 as a long one; both end
// with the same low gap.
func (t *Transmitter) sendBit(one bool) {
	if one {
		t.hold(radio.High, oneHigh)
	} else {
		t.hold(radio.High, zeroHigh)
	}
	t.hold(radio.Low, bitLow)
}

func (t *Transmitter) sendStop() {
	t.hold(radio.Low, stopUnits)
}
