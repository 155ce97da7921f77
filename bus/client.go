// Package bus defines the message-bus contract the medbox firmware talks
// to, and nothing else — the wire client itself is an external
// collaborator; only its contract is in scope here. Two implementations
// satisfy it: bus/mqttclient (production, real broker) and bus/busmem
// (in-memory, for tests and the host simulation harness).
package bus

// Handler is invoked for each inbound message delivered on a subscribed
// topic. Implementations MUST NOT block in Handler and MUST NOT call back
// into the Client synchronously — handlers forward into a mailbox instead
// of acting directly.
type Handler func(topic string, payload []byte)

// ConnectOptions carries the identity and last-will needed to (re)connect.
type ConnectOptions struct {
	ClientID     string
	WillTopic    string
	WillPayload  []byte
	WillQoS      byte
	WillRetained bool
}

// Client is the bus-facing contract: connect with an LWT, subscribe,
// publish (best-effort boolean result), and report connection state.
// PresenceManager owns Connect/Disconnect; everything else may be called
// at any time and must be safe to call when disconnected (Publish
// reports failure; mqttclient's Subscribe reports failure too, while
// busmem's Subscribe registers the handler regardless).
type Client interface {
	// Connect dials the broker with the given options. It is called by
	// PresenceManager; it may be called again after a disconnect.
	Connect(opts ConnectOptions) error

	// Connected reports whether the client currently believes it has a
	// live connection to the broker.
	Connected() bool

	// Subscribe registers handler for topic (which may contain MQTT-style
	// "+"/"#" wildcards). Subscribing again for the same topic replaces
	// the previous handler.
	Subscribe(topic string, qos byte, handler Handler) error

	// Publish best-effort publishes payload to topic. It returns false on
	// a disconnected client or a full outbound buffer; the caller is
	// expected to retry.
	Publish(topic string, qos byte, retained bool, payload []byte) bool

	// Disconnect tears down the connection. Safe to call when already
	// disconnected.
	Disconnect()
}
