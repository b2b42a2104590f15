package config

import (
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func load(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	return Load(flag.NewFlagSet("test", flag.ContinueOnError), args)
}

func TestParseKeyIntMap(t *testing.T) {
	tests := []struct {
		in   string
		want map[string]int
		ok   bool
	}{
		{"", map[string]int{}, true},
		{"foth=60000,mqtt=5000", map[string]int{"foth": 60000, "mqtt": 5000}, true},
		{" console = 10 , foth=20", map[string]int{"console": 10, "foth": 20}, true},
		{"bad", nil, false},
		{"foth=x", nil, false},
	}
	for _, tt := range tests {
		got, err := parseKeyIntMap(tt.in)
		if (err == nil) != tt.ok {
			t.Fatalf("parseKeyIntMap(%q) ok=%v err=%v", tt.in, tt.ok, err)
		}
		if tt.ok && !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("parseKeyIntMap(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseIntOrHex(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"60", 60, true},
		{"0x3C", 0x3C, true},
		{"0X38", 0x38, true},
		{"zz", 0, false},
	}
	for _, tt := range tests {
		got, err := parseIntOrHex(tt.in)
		if (err == nil) != tt.ok || (tt.ok && got != tt.want) {
			t.Fatalf("parseIntOrHex(%q) = %d, %v", tt.in, got, err)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(t)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Radio.Pin != 17 || cfg.Radio.Repeats != 3 || cfg.Radio.PulseUs != 500 || cfg.Radio.TemperatureBits != 16 {
		t.Fatalf("radio defaults: %+v", cfg.Radio)
	}
	for _, o := range cfg.Outputs {
		if o.IntervalMs != cfg.IntervalMs {
			t.Fatalf("output %s interval %d; want %d", o.Type, o.IntervalMs, cfg.IntervalMs)
		}
	}
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	js := `{
        "radio": {"driver": "recorder", "pin": 4, "device_id": 7, "repeats": 5, "pulse_us": 500, "temperature_bits": 12},
        "sensor_type": "simulation",
        "interval_ms": 1000,
        "outputs": [{"type": "foth"}, {"type": "mqtt", "interval_ms": 3000, "mqtt": {"server": "tcp://broker:1883", "state_topic": "weather"}}]
    }`
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(js), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := load(t, "-config", path, "-device-id", "0xFE", "-output-intervals", "foth=2000", "-mqtt-client-id", "bridge")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Radio.Driver != "recorder" || cfg.Radio.Pin != 4 || cfg.Radio.Repeats != 5 || cfg.Radio.TemperatureBits != 12 {
		t.Fatalf("radio from file: %+v", cfg.Radio)
	}
	if cfg.Radio.DeviceID != 0xFE {
		t.Fatalf("device id: got %d", cfg.Radio.DeviceID)
	}
	if cfg.SensorType != "simulation" {
		t.Fatalf("sensor_type: got %q", cfg.SensorType)
	}
	if len(cfg.Outputs) != 2 || cfg.Outputs[0].IntervalMs != 2000 || cfg.Outputs[1].IntervalMs != 3000 {
		t.Fatalf("outputs: %+v", cfg.Outputs)
	}
	m := cfg.Outputs[1].MQTT
	if m.Server != "tcp://broker:1883" || m.StateTopic != "weather" || m.ClientID != "bridge" {
		t.Fatalf("mqtt: %+v", m)
	}
}

func TestLoadCreatesMQTTOutput(t *testing.T) {
	cfg, err := load(t, "-outputs", "console", "-mqtt-server", "tcp://x:1883")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Outputs) != 2 || cfg.Outputs[1].Type != "mqtt" || cfg.Outputs[1].MQTT.Server != "tcp://x:1883" {
		t.Fatalf("outputs: %+v", cfg.Outputs)
	}
}

func TestLoadRejects(t *testing.T) {
	for _, args := range [][]string{
		{"-device-id", "256"},
		{"-repeats", "0"},
		{"-pulse-us", "0"},
		{"-temperature-bits", "8"},
		{"-interval-ms", "0"},
		{"-output-intervals", "foth"},
	} {
		if _, err := load(t, args...); err == nil {
			t.Fatalf("load(%v): expected error", args)
		}
	}
}
