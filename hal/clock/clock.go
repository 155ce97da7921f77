// Package clock is the time collaborator: DispenseMachine and
// LevelPublisher never call time.Now or x/timex directly, so tests can
// drive the cooperative tick loop with a fake clock instead of real
// wall time.
package clock

import "medbox-fw/x/timex"

// Clock reports the current time in milliseconds since some fixed
// epoch. Only differences between calls matter to callers.
type Clock interface {
	NowMs() int64
}

// System is the real clock, backed by x/timex.NowMs on both host and
// rp2xxx builds.
type System struct{}

func (System) NowMs() int64 { return timex.NowMs() }

// Fake is a settable clock for tests and the host simulation harness.
type Fake struct {
	ms int64
}

// NewFake returns a Fake starting at startMs.
func NewFake(startMs int64) *Fake { return &Fake{ms: startMs} }

func (f *Fake) NowMs() int64 { return f.ms }

// Advance moves the fake clock forward by deltaMs and returns the new time.
func (f *Fake) Advance(deltaMs int64) int64 {
	f.ms += deltaMs
	return f.ms
}

// Set pins the fake clock to ms.
func (f *Fake) Set(ms int64) { f.ms = ms }
