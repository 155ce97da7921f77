// Package supervisor is the single cooperative scheduler: one Tick
// call per loop iteration, always running presence, drain, dispense
// and levels in that fixed order.
package supervisor

import (
	"medbox-fw/internal/diag"
	"medbox-fw/internal/dispense"
	"medbox-fw/internal/levels"
	"medbox-fw/internal/presence"
)

// Supervisor owns the tick order. It holds no state of its own beyond
// its collaborators; Queue/State/BatchResult live in DispenseMachine,
// which it never bypasses.
type Supervisor struct {
	presence *presence.Manager
	mailbox  dispense.Mailbox
	queue    *dispense.Queue
	machine  *dispense.DispenseMachine
	levels   *levels.Publisher
	log      *diag.Log

	amountClamp int
}

// New wires a Supervisor from its already-constructed collaborators.
func New(pm *presence.Manager, mailbox dispense.Mailbox, queue *dispense.Queue, machine *dispense.DispenseMachine, levelPub *levels.Publisher, log *diag.Log, amountClamp int) *Supervisor {
	return &Supervisor{
		presence:    pm,
		mailbox:     mailbox,
		queue:       queue,
		machine:     machine,
		levels:      levelPub,
		log:         log,
		amountClamp: amountClamp,
	}
}

// Tick runs one cooperative scheduling pass: ensure the bus connection,
// drain inbound requests into the Queue, advance the dispense machine
// by at most one step, then (rate-limited) publish fill levels last so
// it can never starve the dispense machine.
func (s *Supervisor) Tick() {
	s.presence.Tick()
	dispense.Drain(s.mailbox, s.queue, s.amountClamp, s.log)
	s.machine.Tick()
	s.levels.Tick()
}
