// Package presence owns connecting to the bus, announcing a retained
// "online" status with an "offline" Last-Will, and resubscribing to
// the dispense topic — re-asserted after every reconnect.
package presence

import (
	"medbox-fw/bus"
	"medbox-fw/errcode"
	"medbox-fw/hal/clock"
	"medbox-fw/internal/dispense"
	"medbox-fw/internal/diag"
	"medbox-fw/internal/protocol"
)

const (
	backoffFloorMs = 250
	backoffCapMs   = 5000
)

// Manager drives the connect/announce/subscribe sequence and an
// exponential reconnect backoff.
type Manager struct {
	busClient bus.Client
	clock     clock.Clock
	log       *diag.Log
	topics    protocol.Topics
	clientID  string
	mailbox   dispense.Mailbox

	backoffMs     int64
	nextAttemptMs int64
}

// New returns a Manager ready to (re)connect busClient as clientID,
// forwarding parsed dispense requests into mailbox.
func New(busClient bus.Client, clk clock.Clock, log *diag.Log, topics protocol.Topics, clientID string, mailbox dispense.Mailbox) *Manager {
	return &Manager{
		busClient: busClient,
		clock:     clk,
		log:       log,
		topics:    topics,
		clientID:  clientID,
		mailbox:   mailbox,
		backoffMs: backoffFloorMs,
	}
}

// Tick ensures the bus connection is live, retrying with exponential
// backoff on failure. It is a no-op while already connected.
func (m *Manager) Tick() {
	if m.busClient.Connected() {
		return
	}
	now := m.clock.NowMs()
	if now < m.nextAttemptMs {
		return
	}

	opts := bus.ConnectOptions{
		ClientID:     m.clientID,
		WillTopic:    m.topics.Status(),
		WillPayload:  []byte("offline"),
		WillQoS:      1,
		WillRetained: true,
	}
	if err := m.busClient.Connect(opts); err != nil {
		m.scheduleRetry(now)
		if m.log != nil {
			m.log.Event("bus_connect_failed", "code", string(errcode.BusDisconnected))
		}
		return
	}

	m.busClient.Publish(m.topics.Status(), 1, true, []byte("online"))
	_ = m.busClient.Subscribe(m.topics.Dispense(), 0, m.onDispense)
	m.backoffMs = backoffFloorMs
	if m.log != nil {
		m.log.Event("bus_connected")
	}
}

func (m *Manager) scheduleRetry(now int64) {
	m.nextAttemptMs = now + m.backoffMs
	m.backoffMs *= 2
	if m.backoffMs > backoffCapMs {
		m.backoffMs = backoffCapMs
	}
}

func (m *Manager) onDispense(_ string, payload []byte) {
	reqs, err := protocol.ParseDispense(payload)
	if err != nil {
		if m.log != nil {
			m.log.Event("malformed_dispense_payload", "code", string(errcode.MalformedPayload))
		}
		return
	}
	if !m.mailbox.Offer(reqs) {
		if m.log != nil {
			m.log.Event("mailbox_full")
		}
	}
}
