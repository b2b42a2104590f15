package foth

import (
	"errors"
	"fmt"
	"time"

	"github.com/ericogr/foth433/pkg/radio"
)

// PulseLength is the default base unit of the bit encoding.
const PulseLength = 500 * time.Microsecond

var (
	ErrRepeats         = errors.New("repeats must be > 0")
	ErrPulseLength     = errors.New("pulse length must be at least 1µs")
	ErrTemperatureBits = errors.New("temperature bits must be between 12 and 16")
)

// Transmitter holds the state of one sensor and keys it onto a pin.
//
// A Transmitter is not safe for concurrent use. Setters must not run while
// Send is in flight.
type Transmitter struct {
	drv         radio.Driver
	pin         radio.Pin
	deviceID    uint8
	humidity    uint8
	temperature uint16
	repeats     int
	pulse       time.Duration
	tempBits    int
}

type Option func(*Transmitter)

// WithPulseLength overrides PulseLength.
func WithPulseLength(d time.Duration) Option {
	return func(t *Transmitter) { t.pulse = d }
}

// WithTemperatureBits sends only the n leading bits of the temperature word.
// 12 matches the nominal FineOffset layout (sign plus 11-bit magnitude); the
// default sends all 16.
func WithTemperatureBits(n int) Option {
	return func(t *Transmitter) { t.tempBits = n }
}

// New configures pin for output and returns a Transmitter with zero
// humidity and temperature.
func New(drv radio.Driver, pin radio.Pin, deviceID uint8, repeats int, opts ...Option) (*Transmitter, error) {
	t := &Transmitter{
		drv:      drv,
		pin:      pin,
		deviceID: deviceID,
		repeats:  repeats,
		pulse:    PulseLength,
		tempBits: temperatureLen,
	}
	for _, o := range opts {
		o(t)
	}
	if repeats < 1 {
		return nil, ErrRepeats
	}
	if t.pulse < time.Microsecond {
		return nil, ErrPulseLength
	}
	if t.tempBits < 12 || t.tempBits > temperatureLen {
		return nil, ErrTemperatureBits
	}
	if err := drv.ConfigureOutput(pin); err != nil {
		return nil, fmt.Errorf("configure pin %d: %w", pin, err)
	}
	return t, nil
}

func (t *Transmitter) SetDeviceID(id uint8) { t.deviceID = id }

// SetHumidity sets the humidity percentage, capped at 100.
func (t *Transmitter) SetHumidity(percent uint8) { t.humidity = ClampHumidity(percent) }

// SetTemperature encodes celsius with EncodeTemperature.
func (t *Transmitter) SetTemperature(celsius float64) { t.temperature = EncodeTemperature(celsius) }

func (t *Transmitter) SetRepeats(n int) error {
	if n < 1 {
		return ErrRepeats
	}
	t.repeats = n
	return nil
}

func (t *Transmitter) Pin() radio.Pin          { return t.pin }
func (t *Transmitter) DeviceID() uint8         { return t.deviceID }
func (t *Transmitter) Humidity() uint8         { return t.humidity }
func (t *Transmitter) TemperatureWord() uint16 { return t.temperature }
func (t *Transmitter) Repeats() int            { return t.repeats }

// Frame returns the frame Send would transmit.
func (t *Transmitter) Frame() Frame {
	return Frame{
		DeviceID:        t.deviceID,
		Temperature:     t.temperature,
		Humidity:        t.humidity,
		Checksum:        Checksum,
		TemperatureBits: t.tempBits,
	}
}

// Duration is how long Send blocks for the current state.
func (t *Transmitter) Duration() time.Duration {
	var units time.Duration
	for _, b := range t.Frame().Bits() {
		if b {
			units += oneHigh + bitLow
		} else {
			units += zeroHigh + bitLow
		}
	}
	units += stopUnits
	return units * t.pulse * time.Duration(t.repeats)
}

// Send transmits the current frame Repeats times back to back. It returns
// only after the last stop period, busy-waiting the whole time; if it is
// interrupted the partial frame is garbage and the next Send starts over.
func (t *Transmitter) Send() {
	bits := t.Frame().Bits()
	for i := 0; i < t.repeats; i++ {
		for _, b := range bits {
			t.sendBit(b)
		}
		t.sendStop()
	}
}
