//go:build tinygo && rp2040

// Command foth433-pico turns a Raspberry Pi Pico with an AHT20 and a 433MHz
// ASK transmitter into a FineOffset temperature/humidity sensor.
//
// Wiring: AHT20 on I2C0 (SDA GP4, SCL GP5), transmitter data on GP15.
package main

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/aht20"

	"github.com/ericogr/foth433/pkg/foth"
	"github.com/ericogr/foth433/pkg/radio"
)

const (
	txPin    = machine.GP15
	deviceID = 0x3C
	repeats  = 3
	interval = 60 * time.Second
)

func main() {
	machine.I2C0.Configure(machine.I2CConfig{SDA: machine.GP4, SCL: machine.GP5})
	sensor := aht20.New(machine.I2C0)
	sensor.Configure()
	sensor.Reset()

	tx, err := foth.New(radio.MachineDriver{}, radio.Pin(txPin), deviceID, repeats)
	if err != nil {
		println("transmitter:", err.Error())
		return
	}

	for {
		if err := sensor.Read(); err != nil {
			println("aht20:", err.Error())
		} else {
			tx.SetTemperature(float64(sensor.DeciCelsius()) / 10)
			tx.SetHumidity(humidity(sensor.DeciRelHumidity()))
			tx.Send()
		}
		time.Sleep(interval)
	}
}

// humidity converts tenths of a percent to whole percent.
func humidity(deci int32) uint8 {
	if deci <= 0 {
		return 0
	}
	if deci >= 1000 {
		return 100
	}
	return uint8((deci + 5) / 10)
}
