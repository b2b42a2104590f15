//go:build !tinygo

package radio

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphDriver drives pins on a Linux host through periph.io.
type PeriphDriver struct {
	mu   sync.Mutex
	pins map[Pin]gpio.PinOut
	err  error
}

func NewPeriphDriver() (*PeriphDriver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	return &PeriphDriver{pins: map[Pin]gpio.PinOut{}}, nil
}

func (d *PeriphDriver) ConfigureOutput(pin Pin) error {
	p := gpioreg.ByName(strconv.Itoa(int(pin)))
	if p == nil {
		return fmt.Errorf("gpio %d: no such pin", pin)
	}
	if err := p.Out(gpio.Low); err != nil {
		return fmt.Errorf("gpio %d: configure output: %w", pin, err)
	}
	d.mu.Lock()
	d.pins[pin] = p
	d.mu.Unlock()
	return nil
}

func (d *PeriphDriver) WriteDigital(pin Pin, level Level) {
	d.mu.Lock()
	p, ok := d.pins[pin]
	d.mu.Unlock()
	if !ok {
		d.keep(fmt.Errorf("gpio %d: not configured for output", pin))
		return
	}
	if err := p.Out(gpio.Level(level)); err != nil {
		d.keep(fmt.Errorf("gpio %d: write %s: %w", pin, level, err))
	}
}

func (d *PeriphDriver) DelayMicroseconds(us uint32) {
	Spin(time.Duration(us) * time.Microsecond)
}

// Err returns the first write error seen since the last call, and clears it.
func (d *PeriphDriver) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.err
	d.err = nil
	return err
}

func (d *PeriphDriver) keep(err error) {
	d.mu.Lock()
	if d.err == nil {
		d.err = err
	}
	d.mu.Unlock()
}
