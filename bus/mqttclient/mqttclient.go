// Package mqttclient is the production bus.Client: a thin wrapper around
// github.com/eclipse/paho.mqtt.golang (the LWT from ConnectOptions,
// retained flag and QoS per publish, NewClientOptions/AddBroker/
// SetClientID option wiring). The retained "online" announcement is
// published by PresenceManager, not by this wrapper.
//
// Reconnection is intentionally NOT left to the library: PresenceManager
// must re-assert the retained "online" message and re-subscribe after
// every reconnect, so auto-reconnect is disabled here and PresenceManager
// drives Connect itself on each tick while disconnected.
package mqttclient

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"medbox-fw/bus"
)

// Client wraps a paho client behind bus.Client.
type Client struct {
	broker string
	cli    mqtt.Client
}

// New returns a disconnected client that will dial broker (e.g.
// "tcp://10.212.77.224:1883") on Connect.
func New(broker string) *Client {
	return &Client{broker: broker}
}

func (c *Client) Connect(opts bus.ConnectOptions) error {
	o := mqtt.NewClientOptions().
		AddBroker(c.broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetOrderMatters(false).
		SetConnectTimeout(5 * time.Second)

	if opts.WillTopic != "" {
		o.SetBinaryWill(opts.WillTopic, opts.WillPayload, opts.WillQoS, opts.WillRetained)
	}

	c.cli = mqtt.NewClient(o)
	tok := c.cli.Connect()
	if !tok.WaitTimeout(5*time.Second) || tok.Error() != nil {
		return tok.Error()
	}
	return nil
}

func (c *Client) Connected() bool {
	return c.cli != nil && c.cli.IsConnected()
}

func (c *Client) Subscribe(topic string, qos byte, handler bus.Handler) error {
	if c.cli == nil {
		return errNotConnected{}
	}
	tok := c.cli.Subscribe(topic, qos, func(_ mqtt.Client, m mqtt.Message) {
		handler(m.Topic(), m.Payload())
	})
	tok.Wait()
	return tok.Error()
}

func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) bool {
	if c.cli == nil || !c.cli.IsConnected() {
		return false
	}
	tok := c.cli.Publish(topic, qos, retained, payload)
	if !tok.WaitTimeout(2 * time.Second) {
		return false
	}
	return tok.Error() == nil
}

func (c *Client) Disconnect() {
	if c.cli != nil {
		c.cli.Disconnect(250)
	}
}

type errNotConnected struct{}

func (errNotConnected) Error() string { return "mqttclient: not connected" }
