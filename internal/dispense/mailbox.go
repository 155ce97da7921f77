package dispense

import (
	"medbox-fw/errcode"
	"medbox-fw/internal/diag"
	"medbox-fw/internal/protocol"
	"medbox-fw/x/mathx"
)

// Mailbox is the single bounded channel the bus client's inbound
// callback forwards parsed requests into. The callback runs
// synchronously for busmem but on the wire client's own goroutine for
// mqttclient; draining it at the top of Supervisor.Tick keeps Queue
// single-writer either way.
type Mailbox chan []protocol.Request

// NewMailbox returns a Mailbox with the given capacity.
func NewMailbox(capacity int) Mailbox {
	return make(Mailbox, capacity)
}

// Offer enqueues a parsed batch without blocking; it reports whether
// the mailbox had room. A full mailbox means the Supervisor is falling
// behind inbound traffic, which should never happen at the cooperative
// tick rate this firmware runs at, but dropping beats blocking the bus
// callback.
func (mb Mailbox) Offer(reqs []protocol.Request) bool {
	select {
	case mb <- reqs:
		return true
	default:
		return false
	}
}

// Drain empties the mailbox into q, clamping each amount to
// [0, amountClamp] and dropping unknown magazine IDs, logging both via
// log. It must be called before DispenseMachine.tick() examines q.
func Drain(mb Mailbox, q *Queue, amountClamp int, log *diag.Log) {
	for {
		select {
		case reqs := <-mb:
			for _, r := range reqs {
				id, ok := FromInt(r.MagazineID)
				if !ok {
					if log != nil {
						log.Event("unknown_magazine", "code", string(errcode.UnknownMagazine), "magazineId", r.MagazineID)
					}
					continue
				}
				amount := mathx.Clamp(r.Amount, 0, amountClamp)
				if amount != r.Amount && log != nil {
					log.Event("amount_clamped", "magazine", id.String(), "requested", r.Amount, "clamped_to", amount)
				}
				q.Enqueue(id, amount)
			}
		default:
			return
		}
	}
}
