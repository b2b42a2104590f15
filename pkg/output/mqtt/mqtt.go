package mqtt

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/ericogr/foth433/pkg/broker"
	"github.com/ericogr/foth433/pkg/config"
	"github.com/ericogr/foth433/pkg/output"
	"github.com/ericogr/foth433/pkg/sensor"
)

const (
	// defaults
	DefaultServer     = "tcp://localhost:1883"
	DefaultClientID   = "foth433-bridge"
	DefaultStateTopic = "foth433/state"
	discoveryTopicFmt = "%s/sensor/%s_%s/config"
	// discovery payload keys/values
	keyName                = "name"
	keyStateTopic          = "state_topic"
	keyUnitOfMeasurement   = "unit_of_measurement"
	keyDeviceClass         = "device_class"
	keyStateClass          = "state_class"
	keyValueTemplate       = "value_template"
	keyJSONAttributesTopic = "json_attributes_topic"
	keyUniqueID            = "unique_id"
	stateClassMeasurement  = "measurement"
)

// discoveryEntity is one Home Assistant sensor carried by the state payload.
type discoveryEntity struct {
	field       string
	unit        string
	deviceClass string
}

var entities = []discoveryEntity{
	{field: "temperature", unit: "°C", deviceClass: "temperature"},
	{field: "humidity", unit: "%", deviceClass: "humidity"},
}

type MQTTOutput struct {
	client     mqtt.Client
	stateTopic string
	log        *zap.SugaredLogger
}

func NewMQTT(cfg config.MQTTConfig, log *zap.SugaredLogger) (output.Output, error) {
	cfg = withDefaults(cfg)
	client, err := broker.Connect(broker.Options{Server: cfg.Server, ClientID: cfg.ClientID, Username: cfg.Username, Password: cfg.Password})
	if err != nil {
		return nil, err
	}
	m := &MQTTOutput{client: client, stateTopic: cfg.StateTopic, log: log}

	// Publish Home Assistant discovery payloads if requested
	if cfg.DiscoveryPrefix != "" {
		for topic, payload := range discoveryPayloads(cfg) {
			if err := m.publishJSON(topic, true, payload); err != nil {
				log.Warnw("mqtt discovery publish error", "topic", topic, "error", err)
			}
		}
	}
	log.Infow("mqtt output connected", "server", cfg.Server, "state_topic", cfg.StateTopic)
	return m, nil
}

func (m *MQTTOutput) Publish(r sensor.Reading) error {
	return m.publishJSON(m.stateTopic, false, statePayload(r))
}

func (m *MQTTOutput) Close() error {
	if m.client != nil {
		m.client.Disconnect(250)
	}
	return nil
}

func (m *MQTTOutput) publishJSON(topic string, retained bool, payload map[string]interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	token := m.client.Publish(topic, 0, retained, b)
	token.Wait()
	return token.Error()
}

func withDefaults(cfg config.MQTTConfig) config.MQTTConfig {
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}
	if cfg.StateTopic == "" {
		cfg.StateTopic = DefaultStateTopic
	}
	return cfg
}

func statePayload(r sensor.Reading) map[string]interface{} {
	return map[string]interface{}{
		"temperature": r.Temperature,
		"humidity":    r.Humidity,
		"timestamp":   r.Timestamp,
	}
}

// discoveryPayloads builds one retained config message per entity, keyed by
// discovery topic.
func discoveryPayloads(cfg config.MQTTConfig) map[string]map[string]interface{} {
	name := cfg.DiscoveryName
	if name == "" {
		name = fmt.Sprintf("FOTH433 %s", cfg.ClientID)
	}
	out := make(map[string]map[string]interface{}, len(entities))
	for _, e := range entities {
		uid := fmt.Sprintf("%s_%s", cfg.ClientID, e.field)
		out[fmt.Sprintf(discoveryTopicFmt, cfg.DiscoveryPrefix, cfg.ClientID, e.field)] = map[string]interface{}{
			keyName:                fmt.Sprintf("%s %s", name, e.field),
			keyStateTopic:          cfg.StateTopic,
			keyUnitOfMeasurement:   e.unit,
			keyDeviceClass:         e.deviceClass,
			keyStateClass:          stateClassMeasurement,
			keyValueTemplate:       fmt.Sprintf("{{ value_json.%s }}", e.field),
			keyJSONAttributesTopic: cfg.StateTopic,
			keyUniqueID:            uid,
		}
	}
	return out
}
