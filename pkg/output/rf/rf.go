// Package rf sends readings over the 433MHz link.
package rf

import (
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/ericogr/foth433/pkg/foth"
	"github.com/ericogr/foth433/pkg/output"
	"github.com/ericogr/foth433/pkg/radio"
	"github.com/ericogr/foth433/pkg/sensor"
)

// errorReporter is implemented by drivers that keep write failures.
type errorReporter interface {
	Err() error
}

type RFOutput struct {
	tx     *foth.Transmitter
	drv    radio.Driver
	strict bool
	log    *zap.SugaredLogger
}

// NewRF wraps tx, which must have been built on drv. With strict set,
// readings whose temperature would be truncated are rejected instead of
// sent.
func NewRF(tx *foth.Transmitter, drv radio.Driver, strict bool, log *zap.SugaredLogger) output.Output {
	return &RFOutput{tx: tx, drv: drv, strict: strict, log: log}
}

func (o *RFOutput) Publish(r sensor.Reading) error {
	if o.strict {
		if err := foth.ValidateTemperature(r.Temperature); err != nil {
			return err
		}
	}
	o.tx.SetTemperature(r.Temperature)
	o.tx.SetHumidity(r.Humidity)

	// keep the busy-wait on one thread for the whole train
	runtime.LockOSThread()
	start := time.Now()
	o.tx.Send()
	elapsed := time.Since(start)
	runtime.UnlockOSThread()

	o.log.Debugw("frame sent", "frame", o.tx.Frame().String(), "repeats", o.tx.Repeats(), "elapsed", elapsed, "nominal", o.tx.Duration())
	if rec, ok := o.drv.(*radio.Recorder); ok {
		rec.Reset()
	}
	if er, ok := o.drv.(errorReporter); ok {
		if err := er.Err(); err != nil {
			return fmt.Errorf("transmit: %w", err)
		}
	}
	return nil
}

func (o *RFOutput) Close() error {
	o.drv.WriteDigital(o.tx.Pin(), radio.Low)
	return nil
}
