package sensor

import (
	"math/rand"
	"sync"
	"time"
)

const (
	fakeBaseTemperature = 20.0
	fakeBaseHumidity    = 50.0
)

// FakeSensor random-walks around room conditions.
type FakeSensor struct {
	mu          sync.Mutex
	rnd         *rand.Rand
	temperature float64
	humidity    float64
}

func NewFakeSensor() (Sensor, error) {
	return newFake(rand.New(rand.NewSource(time.Now().UnixNano()))), nil
}

func newFake(rnd *rand.Rand) *FakeSensor {
	return &FakeSensor{rnd: rnd, temperature: fakeBaseTemperature, humidity: fakeBaseHumidity}
}

func (f *FakeSensor) Read() (Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.temperature += f.rnd.Float64() - 0.5
	f.humidity += f.rnd.Float64()*4 - 2
	if f.humidity < 0 {
		f.humidity = 0
	} else if f.humidity > 100 {
		f.humidity = 100
	}
	return Reading{Temperature: f.temperature, Humidity: humidityPercent(f.humidity), Timestamp: time.Now()}, nil
}

func (f *FakeSensor) Close() error { return nil }
