package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type MQTTConfig struct {
	Server          string `json:"server"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ClientID        string `json:"client_id"`
	StateTopic      string `json:"state_topic"`
	DiscoveryPrefix string `json:"discovery_prefix,omitempty"`
	DiscoveryName   string `json:"discovery_name,omitempty"`
}

// SourceConfig describes the MQTT topic readings are taken from when
// sensor_type is "mqtt".
type SourceConfig struct {
	Server   string `json:"server"`
	Username string `json:"username"`
	Password string `json:"password"`
	ClientID string `json:"client_id"`
	Topic    string `json:"topic"`
}

type OutputConfig struct {
	Type       string      `json:"type"`
	IntervalMs int         `json:"interval_ms,omitempty"`
	MQTT       *MQTTConfig `json:"mqtt,omitempty"`
}

// RadioConfig is the 433MHz transmitter setup.
type RadioConfig struct {
	Driver          string `json:"driver"`
	Pin             int    `json:"pin"`
	DeviceID        int    `json:"device_id"`
	Repeats         int    `json:"repeats"`
	PulseUs         int    `json:"pulse_us"`
	TemperatureBits int    `json:"temperature_bits"`
	Strict          bool   `json:"strict"`
}

type Config struct {
	Radio      RadioConfig    `json:"radio"`
	SensorType string         `json:"sensor_type"`
	I2CBus     string         `json:"i2c_bus"`
	Source     SourceConfig   `json:"mqtt_source"`
	Outputs    []OutputConfig `json:"outputs"`
	IntervalMs int            `json:"interval_ms"`
	LogLevel   string         `json:"log_level"`
	LogFormat  string         `json:"log_format"`
}

func DefaultConfig() Config {
	return Config{
		Radio: RadioConfig{
			Driver:          "periph",
			Pin:             17,
			DeviceID:        0x3C,
			Repeats:         3,
			PulseUs:         500,
			TemperatureBits: 16,
		},
		SensorType: "real",
		I2CBus:     "1",
		Source:     SourceConfig{Server: "tcp://localhost:1883", ClientID: "foth433-source", Topic: "foth433/reading"},
		Outputs:    []OutputConfig{{Type: "foth"}, {Type: "console"}},
		IntervalMs: 60000,
		LogLevel:   "info",
		LogFormat:  "console",
	}
}

// Load loads configuration from a JSON file (optional) and the flags in
// args, parsed with fs. Flags override values present in the JSON file.
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	cfgPath := fs.String("config", "", "Path to JSON config file")
	flagDriver := fs.String("driver", "", "GPIO driver: periph|recorder")
	flagPin := fs.Int("pin", -1, "GPIO pin wired to the 433MHz transmitter")
	flagDeviceID := fs.String("device-id", "", "Device id 0-255 (decimal or 0x hex)")
	flagRepeats := fs.Int("repeats", -1, "Frames sent per transmission")
	flagPulse := fs.Int("pulse-us", -1, "Base pulse length in microseconds")
	flagTempBits := fs.Int("temperature-bits", -1, "Temperature word bits sent (12 or 16)")
	flagStrict := fs.Bool("strict", false, "Skip readings whose temperature would be truncated")
	flagSensorType := fs.String("sensor-type", "", "sensor type: real|simulation|mqtt")
	flagI2CBus := fs.String("i2c-bus", "", "I2C bus (e.g., '1' -> /dev/i2c-1)")
	flagSourceServer := fs.String("source-server", "", "MQTT server readings are taken from")
	flagSourceTopic := fs.String("source-topic", "", "MQTT topic readings are taken from")
	flagOutputs := fs.String("outputs", "", "Comma-separated outputs (foth,console,mqtt)")
	flagOutputIntervals := fs.String("output-intervals", "", "Comma-separated output intervals e.g. foth=60000,mqtt=5000")
	flagMQTTServer := fs.String("mqtt-server", "", "MQTT server (tcp://host:port)")
	flagMQTTUser := fs.String("mqtt-user", "", "MQTT username")
	flagMQTTPass := fs.String("mqtt-pass", "", "MQTT password")
	flagClientID := fs.String("mqtt-client-id", "", "MQTT client id")
	flagTopic := fs.String("mqtt-topic", "", "MQTT state topic")
	flagInterval := fs.Int("interval-ms", -1, "Sensor read interval in ms")
	flagLogLevel := fs.String("log-level", "", "Log level: debug|info|warn|error")
	flagLogFormat := fs.String("log-format", "", "Log format: console|json")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()

	if *cfgPath != "" {
		b, err := os.ReadFile(*cfgPath)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if *flagDriver != "" {
		cfg.Radio.Driver = *flagDriver
	}
	if *flagPin != -1 {
		cfg.Radio.Pin = *flagPin
	}
	if *flagDeviceID != "" {
		v, err := parseIntOrHex(*flagDeviceID)
		if err != nil {
			return cfg, fmt.Errorf("device-id: %w", err)
		}
		cfg.Radio.DeviceID = v
	}
	if *flagRepeats != -1 {
		cfg.Radio.Repeats = *flagRepeats
	}
	if *flagPulse != -1 {
		cfg.Radio.PulseUs = *flagPulse
	}
	if *flagTempBits != -1 {
		cfg.Radio.TemperatureBits = *flagTempBits
	}
	if *flagStrict {
		cfg.Radio.Strict = true
	}
	if *flagSensorType != "" {
		cfg.SensorType = *flagSensorType
	}
	if *flagI2CBus != "" {
		cfg.I2CBus = *flagI2CBus
	}
	if *flagSourceServer != "" {
		cfg.Source.Server = *flagSourceServer
	}
	if *flagSourceTopic != "" {
		cfg.Source.Topic = *flagSourceTopic
	}
	if *flagInterval != -1 {
		cfg.IntervalMs = *flagInterval
	}
	if *flagOutputs != "" {
		// convert simple CSV of types into structured OutputConfig entries
		parts := parseCSV(*flagOutputs)
		outs := make([]OutputConfig, 0, len(parts))
		for _, p := range parts {
			outs = append(outs, OutputConfig{Type: p})
		}
		cfg.Outputs = outs
	}
	if *flagOutputIntervals != "" {
		outIntervals, err := parseKeyIntMap(*flagOutputIntervals)
		if err != nil {
			return cfg, fmt.Errorf("output-intervals: %w", err)
		}
		for i := range cfg.Outputs {
			if v, ok := outIntervals[cfg.Outputs[i].Type]; ok {
				cfg.Outputs[i].IntervalMs = v
			}
		}
	}
	// mqtt flags apply to every mqtt output; create one if none exist
	if *flagMQTTServer != "" || *flagMQTTUser != "" || *flagMQTTPass != "" || *flagClientID != "" || *flagTopic != "" {
		apply := func(m *MQTTConfig) {
			if *flagMQTTServer != "" {
				m.Server = *flagMQTTServer
			}
			if *flagMQTTUser != "" {
				m.Username = *flagMQTTUser
			}
			if *flagMQTTPass != "" {
				m.Password = *flagMQTTPass
			}
			if *flagClientID != "" {
				m.ClientID = *flagClientID
			}
			if *flagTopic != "" {
				m.StateTopic = *flagTopic
			}
		}
		applied := false
		for i := range cfg.Outputs {
			if strings.ToLower(cfg.Outputs[i].Type) == "mqtt" {
				if cfg.Outputs[i].MQTT == nil {
					cfg.Outputs[i].MQTT = &MQTTConfig{}
				}
				apply(cfg.Outputs[i].MQTT)
				applied = true
			}
		}
		if !applied {
			mqttOut := OutputConfig{Type: "mqtt", MQTT: &MQTTConfig{}}
			apply(mqttOut.MQTT)
			cfg.Outputs = append(cfg.Outputs, mqttOut)
		}
	}
	if *flagLogLevel != "" {
		cfg.LogLevel = *flagLogLevel
	}
	if *flagLogFormat != "" {
		cfg.LogFormat = *flagLogFormat
	}
	// ensure outputs have interval default
	for i := range cfg.Outputs {
		if cfg.Outputs[i].IntervalMs == 0 {
			cfg.Outputs[i].IntervalMs = cfg.IntervalMs
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks the ranges the transmitter and the run loop depend on.
func (c Config) Validate() error {
	if c.Radio.DeviceID < 0 || c.Radio.DeviceID > 255 {
		return fmt.Errorf("device-id %d: must be 0-255", c.Radio.DeviceID)
	}
	if c.Radio.Repeats < 1 {
		return errors.New("repeats must be > 0")
	}
	if c.Radio.PulseUs < 1 {
		return errors.New("pulse-us must be > 0")
	}
	if c.Radio.TemperatureBits < 12 || c.Radio.TemperatureBits > 16 {
		return fmt.Errorf("temperature-bits %d: must be 12-16", c.Radio.TemperatureBits)
	}
	if c.Radio.Pin < 0 {
		return fmt.Errorf("pin %d: must be >= 0", c.Radio.Pin)
	}
	if c.IntervalMs <= 0 {
		return errors.New("interval-ms must be > 0")
	}
	return nil
}

func parseIntOrHex(s string) (int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 0)
		return int(v), err
	}
	v, err := strconv.Atoi(s)
	return v, err
}

func parseCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parseKeyIntMap parses "a=1,b=2" into a map.
func parseKeyIntMap(s string) (map[string]int, error) {
	out := map[string]int{}
	for _, p := range parseCSV(s) {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid entry '%s': want key=value", p)
		}
		v, err := strconv.Atoi(strings.TrimSpace(kv[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid value in '%s': %w", p, err)
		}
		out[strings.TrimSpace(kv[0])] = v
	}
	return out, nil
}
