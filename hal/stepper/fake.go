//go:build !rp2040 && !rp2350

package stepper

// Fake is an in-memory Driver for the host simulation harness and
// tests. Each Step call moves exactly one step toward the target
// unless Jam is set, in which case DistanceToGo never reaches zero so
// callers can exercise jam-reversal behaviour deterministically.
type Fake struct {
	pos      int32
	target   int32
	disabled bool
	jammed   bool
}

// NewFake returns a Fake starting at position zero.
func NewFake() *Fake { return &Fake{} }

func (f *Fake) Zero() { f.pos = 0 }

func (f *Fake) SetTarget(steps int32) {
	f.target = steps
	f.disabled = false
}

func (f *Fake) CurrentPosition() int32 { return f.pos }

func (f *Fake) DistanceToGo() int32 { return f.target - f.pos }

func (f *Fake) Step() bool {
	d := f.target - f.pos
	if d == 0 || f.jammed {
		return false
	}
	if d > 0 {
		f.pos++
	} else {
		f.pos--
	}
	return true
}

func (f *Fake) Stop() { f.target = f.pos }

func (f *Fake) Disable() { f.disabled = true }

// SetJammed freezes progress toward the target so tests can simulate a
// physically stuck magazine.
func (f *Fake) SetJammed(jammed bool) { f.jammed = jammed }

// Disabled reports whether Disable has been called since the last SetTarget.
func (f *Fake) Disabled() bool { return f.disabled }
