// Package foth keys FineOffset temperature/humidity frames onto a 433MHz
// ASK transmitter.
//
// Protocol description:
// http://lucsmall.com/2012/04/27/weather-station-hacking-part-1/
//
// The checksum byte is always 0xFF. Lenient receivers such as the Telldus
// TellStick Duo accept it; receivers that verify the FineOffset checksum
// will drop the frames.
package foth

import (
	"errors"
	"fmt"
	"math"
)

const (
	// MaxHumidity is the largest humidity percentage a frame carries.
	MaxHumidity = 100

	// MaxTemperature is the largest magnitude, in °C, that encodes without
	// truncation.
	MaxTemperature = 204.7

	// Checksum is sent in place of a computed checksum.
	Checksum uint8 = 0xFF

	signBit       = 0x8000
	magnitudeMask = 0x7FF
	magnitudeLSB  = 4
)

var (
	ErrTemperatureRange = errors.New("temperature out of range")
	ErrTemperatureNaN   = errors.New("temperature is not a number")
)

// EncodeTemperature packs celsius into the 16-bit frame word: bit 15 is the
// sign, bits 4-14 the magnitude in tenths of a degree, bits 0-3 zero.
// The magnitude is truncated toward zero and masked to 11 bits, so values
// past ±204.7 alias to smaller magnitudes. Non-finite input encodes a zero
// magnitude.
func EncodeTemperature(celsius float64) uint16 {
	var word uint16
	v := float32(celsius)
	if v < 0 {
		word = signBit
		v = -v
	}
	tenths := float64(v * 10)
	if math.IsNaN(tenths) || math.IsInf(tenths, 0) {
		return word
	}
	mag := uint16(math.Mod(math.Trunc(tenths), magnitudeMask+1))
	return word | (mag&magnitudeMask)<<magnitudeLSB
}

// Magnitude returns the temperature magnitude of word in tenths of a degree.
func Magnitude(word uint16) uint16 {
	return (word >> magnitudeLSB) & magnitudeMask
}

// Negative reports whether the sign bit of word is set.
func Negative(word uint16) bool {
	return word&signBit != 0
}

// ClampHumidity caps h at MaxHumidity.
func ClampHumidity(h uint8) uint8 {
	if h > MaxHumidity {
		return MaxHumidity
	}
	return h
}

// ValidateTemperature returns an error if celsius would not survive
// EncodeTemperature intact (beyond tenth-of-a-degree truncation).
func ValidateTemperature(celsius float64) error {
	if math.IsNaN(celsius) {
		return ErrTemperatureNaN
	}
	if math.Abs(float64(float32(celsius)*10)) >= magnitudeMask+1 {
		return fmt.Errorf("%w: %.1f", ErrTemperatureRange, celsius)
	}
	return nil
}
