package foth

import "fmt"

const (
	startBits      = 8
	functionBits   = 4
	temperatureLen = 16
)

// Frame is one FineOffset transmission, before bit encoding.
type Frame struct {
	DeviceID    uint8
	Temperature uint16
	Humidity    uint8
	Checksum    uint8

	// TemperatureBits is how many leading bits of Temperature are sent.
	// Zero means all 16.
	TemperatureBits int
}

// Bits returns the frame MSB first: start marker, function nibble,
// device id, temperature, humidity, checksum.
func (f Frame) Bits() []bool {
	tbits := f.TemperatureBits
	if tbits <= 0 || tbits > temperatureLen {
		tbits = temperatureLen
	}
	out := make([]bool, 0, startBits+functionBits+8+tbits+8+8)
	for i := 0; i < startBits; i++ {
		out = append(out, true)
	}
	for i := 0; i < functionBits; i++ {
		out = append(out, false)
	}
	out = appendBits(out, uint16(f.DeviceID)<<8, 8)
	out = appendBits(out, f.Temperature, tbits)
	out = appendBits(out, uint16(f.Humidity)<<8, 8)
	out = appendBits(out, uint16(f.Checksum)<<8, 8)
	return out
}

// appendBits appends the n most significant bits of v.
func appendBits(dst []bool, v uint16, n int) []bool {
	for i := 0; i < n; i++ {
		dst = append(dst, v&0x8000 != 0)
		v <<= 1
	}
	return dst
}

func (f Frame) String() string {
	sign := ""
	if Negative(f.Temperature) {
		sign = "-"
	}
	m := Magnitude(f.Temperature)
	return fmt.Sprintf("id=0x%02X temp=0x%04X (%s%d.%d) hum=%d sum=0x%02X",
		f.DeviceID, f.Temperature, sign, m/10, m%10, f.Humidity, f.Checksum)
}
