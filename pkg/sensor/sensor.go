// Package sensor provides the sources of temperature/humidity readings.
package sensor

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ericogr/foth433/pkg/config"
)

// ErrNoReading is returned by sources that have not produced a value yet.
var ErrNoReading = errors.New("no reading available")

type Reading struct {
	Temperature float64   `json:"temperature"`
	Humidity    uint8     `json:"humidity"`
	Timestamp   time.Time `json:"timestamp"`
}

type Sensor interface {
	Read() (Reading, error)
	Close() error
}

// New builds the sensor selected by cfg.SensorType.
func New(cfg config.Config, log *zap.SugaredLogger) (Sensor, error) {
	switch cfg.SensorType {
	case "real", "aht20":
		return NewAHT20Sensor(cfg)
	case "simulation":
		return NewFakeSensor()
	case "mqtt":
		return NewMQTTSensor(cfg.Source, log)
	default:
		return nil, fmt.Errorf("unknown sensor type %q", cfg.SensorType)
	}
}

// humidityPercent rounds a relative humidity to whole percent within 0-100.
func humidityPercent(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 100 {
		return 100
	}
	return uint8(math.Round(v))
}
