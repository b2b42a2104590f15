package foth

import (
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/ericogr/foth433/pkg/radio"
)

const txPin radio.Pin = 17

// demodulate turns a recorded train back into frames of bits. It checks
// every pulse width against the encoding as it goes.
func demodulate(c *qt.C, pulses []radio.Pulse, pulse time.Duration) [][]bool {
	var frames [][]bool
	var cur []bool
	for i := 0; i < len(pulses); {
		p := pulses[i]
		if p.Level == radio.Low {
			c.Assert(p.Duration, qt.Equals, 9*pulse, qt.Commentf("stop at pulse %d", i))
			frames = append(frames, cur)
			cur = nil
			i++
			continue
		}
		c.Assert(i+1 < len(pulses), qt.IsTrue, qt.Commentf("high pulse %d has no low tail", i))
		low := pulses[i+1]
		c.Assert(low.Level, qt.Equals, radio.Low)
		c.Assert(low.Duration, qt.Equals, 2*pulse, qt.Commentf("low tail at pulse %d", i+1))
		switch p.Duration {
		case pulse:
			cur = append(cur, true)
		case 3 * pulse:
			cur = append(cur, false)
		default:
			c.Fatalf("pulse %d: unexpected high width %s", i, p.Duration)
		}
		i += 2
	}
	c.Assert(cur, qt.HasLen, 0, qt.Commentf("trailing bits without stop"))
	return frames
}

func bits(s string) []bool {
	var out []bool
	for _, r := range s {
		switch r {
		case '0':
			out = append(out, false)
		case '1':
			out = append(out, true)
		}
	}
	return out
}

func newTx(c *qt.C, repeats int, opts ...Option) (*Transmitter, *radio.Recorder) {
	rec := radio.NewRecorder()
	tx, err := New(rec, txPin, 0, repeats, opts...)
	c.Assert(err, qt.IsNil)
	return tx, rec
}

func TestNewConfiguresPin(t *testing.T) {
	c := qt.New(t)
	tx, rec := newTx(c, 3)
	c.Assert(rec.Configured(txPin), qt.IsTrue)
	c.Assert(tx.Pin(), qt.Equals, txPin)
	c.Assert(tx.Humidity(), qt.Equals, uint8(0))
	c.Assert(tx.TemperatureWord(), qt.Equals, uint16(0))
	c.Assert(tx.Repeats(), qt.Equals, 3)
}

type failingDriver struct{ radio.Recorder }

func (*failingDriver) ConfigureOutput(radio.Pin) error { return errors.New("busy") }

func TestNewErrors(t *testing.T) {
	c := qt.New(t)
	rec := radio.NewRecorder()
	_, err := New(rec, txPin, 1, 0)
	c.Assert(err, qt.ErrorIs, ErrRepeats)
	_, err = New(rec, txPin, 1, 1, WithPulseLength(0))
	c.Assert(err, qt.ErrorIs, ErrPulseLength)
	_, err = New(rec, txPin, 1, 1, WithTemperatureBits(11))
	c.Assert(err, qt.ErrorIs, ErrTemperatureBits)
	_, err = New(&failingDriver{}, txPin, 1, 1)
	c.Assert(err, qt.ErrorMatches, "configure pin 17: busy")
	c.Assert(rec.Configured(txPin), qt.IsFalse)
}

func TestSetters(t *testing.T) {
	c := qt.New(t)
	tx, _ := newTx(c, 1)
	tx.SetDeviceID(0xFF)
	c.Assert(tx.DeviceID(), qt.Equals, uint8(0xFF))
	tx.SetHumidity(150)
	c.Assert(tx.Humidity(), qt.Equals, uint8(100))
	tx.SetHumidity(42)
	c.Assert(tx.Humidity(), qt.Equals, uint8(42))
	tx.SetTemperature(-5.3)
	c.Assert(tx.TemperatureWord(), qt.Equals, uint16(0b1_00000110101_0000))
	tx.SetTemperature(1)
	c.Assert(tx.TemperatureWord(), qt.Equals, uint16(10<<4))
	c.Assert(tx.SetRepeats(0), qt.ErrorIs, ErrRepeats)
	c.Assert(tx.SetRepeats(5), qt.IsNil)
	c.Assert(tx.Repeats(), qt.Equals, 5)
}

func TestSendBitExact(t *testing.T) {
	c := qt.New(t)
	tx, rec := newTx(c, 1)
	tx.SetDeviceID(0x3C)
	tx.SetHumidity(45)
	tx.SetTemperature(21.5)
	tx.Send()

	want := bits("11111111" + // start
		"0000 00111100" + // function nibble, device id
		"0 00011010111 0000" + // temperature
		"00101101" + // humidity
		"11111111") // checksum
	frames := demodulate(c, rec.Pulses(), PulseLength)
	c.Assert(frames, qt.HasLen, 1)
	c.Assert(frames[0], qt.DeepEquals, want)
}

func TestSendNegativeTemperature(t *testing.T) {
	c := qt.New(t)
	tx, rec := newTx(c, 1)
	tx.SetTemperature(-5.3)
	tx.Send()
	frames := demodulate(c, rec.Pulses(), PulseLength)
	c.Assert(frames, qt.HasLen, 1)
	c.Assert(frames[0][20:36], qt.DeepEquals, bits("1 00000110101 0000"))
}

func TestSendRepeats(t *testing.T) {
	c := qt.New(t)
	for _, n := range []int{1, 3, 7} {
		tx, rec := newTx(c, n)
		tx.SetDeviceID(0x81)
		tx.SetHumidity(99)
		tx.SetTemperature(-12.4)
		tx.Send()
		pulses := rec.Pulses()
		frames := demodulate(c, pulses, PulseLength)
		c.Assert(frames, qt.HasLen, n)
		for i, f := range frames {
			c.Assert(f, qt.HasLen, 52)
			c.Assert(f[:8], qt.DeepEquals, bits("11111111"), qt.Commentf("frame %d start", i))
			c.Assert(f, qt.DeepEquals, frames[0])
		}
		c.Assert(pulses[len(pulses)-1], qt.Equals, radio.Pulse{Level: radio.Low, Duration: 9 * PulseLength})
		c.Assert(rec.Total(), qt.Equals, tx.Duration())
	}
}

func TestSendIdempotent(t *testing.T) {
	c := qt.New(t)
	tx, rec := newTx(c, 2)
	tx.SetDeviceID(7)
	tx.SetHumidity(60)
	tx.SetTemperature(3.3)
	tx.Send()
	first := rec.Pulses()
	rec.Reset()
	tx.Send()
	c.Assert(rec.Pulses(), qt.DeepEquals, first)
}

func TestSendTwelveTemperatureBits(t *testing.T) {
	c := qt.New(t)
	tx, rec := newTx(c, 1, WithTemperatureBits(12), WithPulseLength(250*time.Microsecond))
	tx.SetDeviceID(0x3C)
	tx.SetHumidity(45)
	tx.SetTemperature(21.5)
	tx.Send()
	frames := demodulate(c, rec.Pulses(), 250*time.Microsecond)
	c.Assert(frames, qt.HasLen, 1)
	c.Assert(frames[0], qt.DeepEquals, bits("11111111 0000 00111100 0 00011010111 00101101 11111111"))
	c.Assert(rec.Total(), qt.Equals, tx.Duration())
}

func TestFrameString(t *testing.T) {
	c := qt.New(t)
	tx, _ := newTx(c, 1)
	tx.SetDeviceID(0x3C)
	tx.SetHumidity(45)
	tx.SetTemperature(-5.3)
	c.Assert(tx.Frame().String(), qt.Equals, "id=0x3C temp=0x8350 (-5.3) hum=45 sum=0xFF")
}
