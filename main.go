// Command foth433 reads temperature and humidity and rebroadcasts them as a
// FineOffset 433MHz sensor, optionally mirroring readings to the console and
// MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ericogr/foth433/pkg/config"
	"github.com/ericogr/foth433/pkg/foth"
	"github.com/ericogr/foth433/pkg/logging"
	"github.com/ericogr/foth433/pkg/output"
	"github.com/ericogr/foth433/pkg/output/console"
	"github.com/ericogr/foth433/pkg/output/mqtt"
	"github.com/ericogr/foth433/pkg/output/rf"
	"github.com/ericogr/foth433/pkg/radio"
	"github.com/ericogr/foth433/pkg/sensor"
)

type outputEntry struct {
	Type       string
	Output     output.Output
	IntervalMs int
	last       time.Time
}

// due reports whether the entry's interval has elapsed at now.
func (e *outputEntry) due(now time.Time) bool {
	return e.last.IsZero() || now.Sub(e.last) >= time.Duration(e.IntervalMs)*time.Millisecond
}

func main() {
	os.Exit(realMain(os.Args[1:]))
}

// realMain returns the process exit code; deferred cleanup runs before
// main exits.
func realMain(args []string) int {
	cfg, err := config.Load(flag.NewFlagSet("foth433", flag.ContinueOnError), args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 2
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Errorw("stopped", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) error {
	sens, err := sensor.New(cfg, log)
	if err != nil {
		return fmt.Errorf("sensor: %w", err)
	}
	defer sens.Close()

	entries, err := initOutputs(&cfg, cfg.IntervalMs, log)
	if err != nil {
		return err
	}
	defer func() {
		for _, e := range entries {
			if err := e.Output.Close(); err != nil {
				log.Warnw("close output", "output", e.Type, "error", err)
			}
		}
	}()

	log.Infow("starting", "sensor", cfg.SensorType, "interval_ms", cfg.IntervalMs, "outputs", len(entries))
	ticker := time.NewTicker(time.Duration(cfg.IntervalMs) * time.Millisecond)
	defer ticker.Stop()
	for {
		tick(sens, entries, time.Now(), log)
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return nil
		case <-ticker.C:
		}
	}
}

// tick reads the sensor once and hands the reading to every due output.
// Outputs run one after another; the rf output blocks for the whole train.
func tick(sens sensor.Sensor, entries []outputEntry, now time.Time, log *zap.SugaredLogger) {
	r, err := sens.Read()
	if errors.Is(err, sensor.ErrNoReading) {
		log.Debug("no reading yet")
		return
	}
	if err != nil {
		log.Errorw("sensor read", "error", err)
		return
	}
	for i := range entries {
		e := &entries[i]
		if !e.due(now) {
			continue
		}
		if err := e.Output.Publish(r); err != nil {
			log.Errorw("publish", "output", e.Type, "error", err)
			continue
		}
		e.last = now
	}
}

// initOutputs builds every configured output. Outputs without an interval
// get defaultInterval, written back into cfg.
func initOutputs(cfg *config.Config, defaultInterval int, log *zap.SugaredLogger) ([]outputEntry, error) {
	entries := make([]outputEntry, 0, len(cfg.Outputs))
	for i := range cfg.Outputs {
		oc := &cfg.Outputs[i]
		if oc.IntervalMs == 0 {
			oc.IntervalMs = defaultInterval
		}
		var (
			out output.Output
			err error
		)
		switch strings.ToLower(oc.Type) {
		case "console":
			out = console.NewConsole()
		case "mqtt":
			mc := config.MQTTConfig{}
			if oc.MQTT != nil {
				mc = *oc.MQTT
			}
			out, err = mqtt.NewMQTT(mc, log)
		case "foth":
			out, err = newRF(cfg.Radio, log)
		default:
			err = fmt.Errorf("unknown output type %q", oc.Type)
		}
		if err != nil {
			for _, e := range entries {
				_ = e.Output.Close()
			}
			return nil, fmt.Errorf("output %s: %w", oc.Type, err)
		}
		entries = append(entries, outputEntry{Type: oc.Type, Output: out, IntervalMs: oc.IntervalMs})
	}
	return entries, nil
}

func newDriver(rc config.RadioConfig) (radio.Driver, error) {
	switch rc.Driver {
	case "", "periph":
		return radio.NewPeriphDriver()
	case "recorder":
		return radio.NewRecorder(), nil
	default:
		return nil, fmt.Errorf("unknown driver %q", rc.Driver)
	}
}

func newRF(rc config.RadioConfig, log *zap.SugaredLogger) (output.Output, error) {
	drv, err := newDriver(rc)
	if err != nil {
		return nil, err
	}
	tx, err := foth.New(drv, radio.Pin(rc.Pin), uint8(rc.DeviceID), rc.Repeats,
		foth.WithPulseLength(time.Duration(rc.PulseUs)*time.Microsecond),
		foth.WithTemperatureBits(rc.TemperatureBits))
	if err != nil {
		return nil, err
	}
	log.Infow("transmitter ready", "driver", rc.Driver, "pin", rc.Pin, "device_id", rc.DeviceID, "repeats", rc.Repeats, "send_duration", tx.Duration())
	return rf.NewRF(tx, drv, rc.Strict, log), nil
}
