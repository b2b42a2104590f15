// Package broker opens the MQTT connections used by the bridge.
package broker

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const connectTimeout = 10 * time.Second

type Options struct {
	Server   string
	ClientID string
	Username string
	Password string
}

// ClientOptions maps o onto paho client options.
func ClientOptions(o Options) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions().AddBroker(o.Server).SetClientID(o.ClientID)
	if o.Username != "" {
		opts.SetUsername(o.Username)
	}
	if o.Password != "" {
		opts.SetPassword(o.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)
	return opts
}

// Connect dials the broker and waits for the connection to complete.
func Connect(o Options) (mqtt.Client, error) {
	client := mqtt.NewClient(ClientOptions(o))
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", o.Server, token.Error())
	}
	return client, nil
}
