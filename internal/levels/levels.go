// Package levels is the periodic fill-level publisher: on a
// rate-limited schedule it reads both magazines' time-of-flight
// sensors and publishes a small structured payload.
package levels

import (
	"medbox-fw/bus"
	"medbox-fw/hal/clock"
	"medbox-fw/hal/tof"
	"medbox-fw/internal/diag"
	"medbox-fw/internal/protocol"
)

// failAlertStreak is the number of consecutive failed reads on one
// channel before a degraded note is logged once. Diagnostic only,
// never altering the published -1.
const failAlertStreak = 5

// Publisher reads both RangeFinders on a fixed interval and publishes
// the levels payload. It never blocks the Supervisor tick beyond the
// two (fast, bounded) sensor reads themselves.
type Publisher struct {
	mag1, mag2 tof.RangeFinder
	clock      clock.Clock
	busClient  bus.Client
	topic      string
	log        *diag.Log
	intervalMs int64

	lastPublishMs int64
	started       bool

	mag1FailStreak int
	mag2FailStreak int
	mag1Degraded   bool
	mag2Degraded   bool
}

// New returns a Publisher that reads mag1/mag2 no more often than
// intervalMs apart.
func New(mag1, mag2 tof.RangeFinder, clk clock.Clock, busClient bus.Client, topic string, log *diag.Log, intervalMs int64) *Publisher {
	return &Publisher{
		mag1: mag1, mag2: mag2,
		clock: clk, busClient: busClient, topic: topic, log: log,
		intervalMs: intervalMs,
	}
}

// Tick publishes a fresh levels reading if at least intervalMs has
// elapsed since the last publish (or this is the first tick).
func (p *Publisher) Tick() {
	now := p.clock.NowMs()
	if p.started && now-p.lastPublishMs < p.intervalMs {
		return
	}
	p.started = true
	p.lastPublishMs = now

	mm1, ok1 := p.mag1.Read()
	mm2, ok2 := p.mag2.Read()

	p.trackStreak(&p.mag1FailStreak, &p.mag1Degraded, "magazine1", ok1)
	p.trackStreak(&p.mag2FailStreak, &p.mag2Degraded, "magazine2", ok2)

	payload := protocol.BuildLevels(mm1, ok1, mm2, ok2)
	p.busClient.Publish(p.topic, 0, false, payload)
}

func (p *Publisher) trackStreak(streak *int, degraded *bool, label string, ok bool) {
	if ok {
		if *degraded && p.log != nil {
			p.log.Event("level_read_recovered", "magazine", label)
		}
		*streak = 0
		*degraded = false
		return
	}
	*streak++
	if *streak >= failAlertStreak && !*degraded {
		*degraded = true
		if p.log != nil {
			p.log.Event("level_read_degraded", "magazine", label, "consecutive_failures", *streak)
		}
	}
}
