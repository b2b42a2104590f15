package sensor

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/ericogr/foth433/pkg/broker"
	"github.com/ericogr/foth433/pkg/config"
)

// MQTTSensor takes readings published by another system on a topic and
// returns the most recent one.
type MQTTSensor struct {
	client mqtt.Client
	topic  string
	log    *zap.SugaredLogger

	mu   sync.Mutex
	last *Reading
}

func NewMQTTSensor(cfg config.SourceConfig, log *zap.SugaredLogger) (Sensor, error) {
	client, err := broker.Connect(broker.Options{Server: cfg.Server, ClientID: cfg.ClientID, Username: cfg.Username, Password: cfg.Password})
	if err != nil {
		return nil, err
	}
	s := &MQTTSensor{client: client, topic: cfg.Topic, log: log}
	token := client.Subscribe(cfg.Topic, 1, s.handle)
	if token.Wait() && token.Error() != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("mqtt subscribe %s: %w", cfg.Topic, token.Error())
	}
	log.Infow("subscribed to readings", "server", cfg.Server, "topic", cfg.Topic)
	return s, nil
}

func (s *MQTTSensor) handle(_ mqtt.Client, msg mqtt.Message) {
	r, err := DecodeReading(msg.Payload(), time.Now())
	if err != nil {
		s.log.Warnw("dropping reading", "topic", msg.Topic(), "error", err)
		return
	}
	s.mu.Lock()
	s.last = &r
	s.mu.Unlock()
	s.log.Debugw("reading received", "topic", msg.Topic(), "temperature", r.Temperature, "humidity", r.Humidity)
}

func (s *MQTTSensor) Read() (Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Reading{}, ErrNoReading
	}
	return *s.last, nil
}

func (s *MQTTSensor) Close() error {
	if s.client != nil {
		s.client.Unsubscribe(s.topic).Wait()
		s.client.Disconnect(250)
	}
	return nil
}

type readingPayload struct {
	Temperature *float64   `json:"temperature"`
	Humidity    *float64   `json:"humidity"`
	Timestamp   *time.Time `json:"timestamp"`
}

// DecodeReading parses {"temperature": 21.5, "humidity": 45}. Humidity is
// rounded and clamped to 0-100; a missing timestamp defaults to now.
func DecodeReading(b []byte, now time.Time) (Reading, error) {
	var p readingPayload
	if err := json.Unmarshal(b, &p); err != nil {
		return Reading{}, fmt.Errorf("decode reading: %w", err)
	}
	if p.Temperature == nil || p.Humidity == nil {
		return Reading{}, errors.New("decode reading: temperature and humidity are required")
	}
	r := Reading{Temperature: *p.Temperature, Humidity: humidityPercent(*p.Humidity), Timestamp: now}
	if p.Timestamp != nil {
		r.Timestamp = *p.Timestamp
	}
	return r, nil
}
