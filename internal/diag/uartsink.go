package diag

import "medbox-fw/x/shmring"

// RingSink adapts an x/shmring.Ring as a diag.Sink, mirroring log lines
// onto a UART ring buffer. Writes are best-effort: a full ring silently
// drops bytes rather than blocking the tick loop.
type RingSink struct {
	ring *shmring.Ring
}

// NewRingSink wraps ring as a Sink.
func NewRingSink(ring *shmring.Ring) *RingSink { return &RingSink{ring: ring} }

func (r *RingSink) Write(s string) {
	if r.ring == nil || s == "" {
		return
	}
	_ = r.ring.TryWriteFrom([]byte(s))
}
