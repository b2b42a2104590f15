package sensor

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/aht20"
	"periph.io/x/host/v3"

	"github.com/ericogr/foth433/pkg/config"
)

type AHT20Sensor struct {
	dev *aht20.Dev
	bus i2c.BusCloser
}

func NewAHT20Sensor(cfg config.Config) (Sensor, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("open i2c: %w", err)
	}
	dev, err := aht20.NewI2C(bus, nil)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("aht20 init: %w", err)
	}
	return &AHT20Sensor{dev: dev, bus: bus}, nil
}

func (s *AHT20Sensor) Read() (Reading, error) {
	var e physic.Env
	if err := s.dev.Sense(&e); err != nil {
		return Reading{}, fmt.Errorf("aht20 sense: %w", err)
	}
	return fromEnv(e, time.Now()), nil
}

func (s *AHT20Sensor) Close() error {
	if s.bus != nil {
		return s.bus.Close()
	}
	return nil
}

func fromEnv(e physic.Env, ts time.Time) Reading {
	celsius := float64(e.Temperature-physic.ZeroCelsius) / float64(physic.Celsius)
	rh := float64(e.Humidity) / float64(physic.PercentRH)
	return Reading{Temperature: celsius, Humidity: humidityPercent(rh), Timestamp: ts}
}
