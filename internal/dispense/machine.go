package dispense

import (
	"medbox-fw/bus"
	"medbox-fw/errcode"
	"medbox-fw/hal/clock"
	"medbox-fw/internal/diag"
	"medbox-fw/internal/protocol"
)

// Config holds the compile-time tunables DispenseMachine needs.
type Config struct {
	MaxStepsSafety  int32
	SensorThreshold int
	JamTimeoutMs    int64
	CooldownMs      int64
}

// DispenseMachine is the cooperative state machine driving one pill at
// a time through IDLE -> INIT_PILL -> MOVING -> (JAM_REVERSE) ->
// COOLDOWN -> REPORTING. Tick advances it by at most one motor step or
// one state transition and must be called unconditionally every
// Supervisor tick.
type DispenseMachine struct {
	magazines      map[MagazineID]*Magazine
	queue          *Queue
	clock          clock.Clock
	busClient      bus.Client
	dispensedTopic string
	log            *diag.Log
	cfg            Config

	state               State
	active              MagazineID
	pillStartTimeMs     int64
	hasReversedThisPill bool
	cooldownStartMs     int64
	batchSuccess        bool
	batchInProgress     bool
}

// NewMachine wires a DispenseMachine. magazines must contain exactly
// Magazine1 and Magazine2.
func NewMachine(magazines map[MagazineID]*Magazine, queue *Queue, clk clock.Clock, busClient bus.Client, dispensedTopic string, log *diag.Log, cfg Config) *DispenseMachine {
	return &DispenseMachine{
		magazines:      magazines,
		queue:          queue,
		clock:          clk,
		busClient:      busClient,
		dispensedTopic: dispensedTopic,
		log:            log,
		cfg:            cfg,
		state:          StateIdle,
	}
}

// State reports the current machine state, for diagnostics and tests.
func (m *DispenseMachine) State() State { return m.state }

// Active reports which magazine is currently being serviced, if any.
func (m *DispenseMachine) Active() MagazineID { return m.active }

func (m *DispenseMachine) activeMagazine() *Magazine { return m.magazines[m.active] }

func (m *DispenseMachine) targetFor(dir Direction) int32 {
	if dir == DirCounterClockwise {
		return -m.cfg.MaxStepsSafety
	}
	return m.cfg.MaxStepsSafety
}

// Tick advances the machine by at most one motor step or one state
// transition. It is safe, and required, to call on every tick
// regardless of queue state.
func (m *DispenseMachine) Tick() {
	switch m.state {
	case StateIdle:
		id := m.queue.NextPending()
		if id == None {
			return
		}
		m.active = id
		if !m.batchInProgress {
			// First non-idle transition of a fresh batch; a mid-batch
			// reselection of the other magazine (queue not yet empty
			// in doCooldown) leaves an in-flight BatchResult alone.
			m.batchSuccess = true
			m.batchInProgress = true
		}
		m.state = StateInitPill
	case StateInitPill:
		m.doInitPill()
	case StateMoving:
		m.doMoving()
	case StateJamReverse:
		m.doJamReverse()
	case StateCooldown:
		m.doCooldown()
	case StateReporting:
		m.doReporting()
	}
}

func (m *DispenseMachine) doInitPill() {
	mag := m.activeMagazine()
	mag.Stepper.Zero()
	mag.Stepper.SetTarget(m.targetFor(mag.NextDirection))
	m.pillStartTimeMs = m.clock.NowMs()
	m.hasReversedThisPill = false
	m.state = StateMoving
}

func (m *DispenseMachine) doMoving() {
	mag := m.activeMagazine()
	mag.Stepper.Step()
	reading := mag.Photo.Read()
	now := m.clock.NowMs()

	switch {
	case reading < m.cfg.SensorThreshold:
		mag.Stepper.Stop()
		mag.Stepper.Disable()
		m.queue.Decrement(mag.ID)
		mag.NextDirection = mag.NextDirection.Toggle()
		m.cooldownStartMs = now
		m.logEvent("pill_detected", mag)
		m.state = StateCooldown

	case !m.hasReversedThisPill && now-m.pillStartTimeMs > m.cfg.JamTimeoutMs:
		m.logCode(errcode.Jammed, "jam_suspected", mag)
		m.state = StateJamReverse

	case mag.Stepper.DistanceToGo() == 0:
		mag.Stepper.Disable()
		m.queue.Decrement(mag.ID)
		m.batchSuccess = false
		m.cooldownStartMs = now
		m.logCode(errcode.MagazineEmpty, "pill_exhausted", mag)
		m.state = StateCooldown
	}
}

// doJamReverse halts the stalled motor and reverses direction for one
// retry. Stop is synchronous for both Driver implementations (plain
// step/dir GPIO pulsing has no velocity ramp to decelerate through), so
// DistanceToGo is already 0 the instant Stop returns; there is no
// residual motion to wait out here.
func (m *DispenseMachine) doJamReverse() {
	mag := m.activeMagazine()
	mag.Stepper.Stop()

	mag.NextDirection = mag.NextDirection.Toggle()
	mag.Stepper.SetTarget(m.targetFor(mag.NextDirection))
	m.hasReversedThisPill = true
	m.pillStartTimeMs = m.clock.NowMs()
	m.logEvent("jam_reverse", mag)
	m.state = StateMoving
}

func (m *DispenseMachine) doCooldown() {
	now := m.clock.NowMs()
	if now-m.cooldownStartMs < m.cfg.CooldownMs {
		return
	}
	if m.queue.Empty() {
		m.state = StateReporting
		return
	}
	m.active = None
	m.state = StateIdle
}

func (m *DispenseMachine) doReporting() {
	payload := protocol.BuildDispensed(m.batchSuccess)
	if !m.busClient.Publish(m.dispensedTopic, 0, false, payload) {
		if m.log != nil {
			m.log.Event("error", "code", string(errcode.PublishFailed))
		}
		return // retry next tick
	}
	if m.log != nil {
		m.log.Event("batch_reported", "success", m.batchSuccess)
	}
	m.active = None
	m.batchSuccess = false
	m.batchInProgress = false
	m.state = StateIdle
}

func (m *DispenseMachine) logEvent(tag string, mag *Magazine) {
	if m.log == nil {
		return
	}
	m.log.Event(tag, "magazine", mag.ID.String(), "direction", mag.NextDirection.String())
}

// logCode is logEvent plus the stable error code an operator reading the
// diagnostic log can match on, for the two magazine-level conditions errcode defines codes
// for (Jammed, MagazineEmpty).
func (m *DispenseMachine) logCode(code errcode.Code, tag string, mag *Magazine) {
	if m.log == nil {
		return
	}
	m.log.Event(tag, "code", string(code), "magazine", mag.ID.String(), "direction", mag.NextDirection.String())
}
