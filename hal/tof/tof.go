// Package tof is the time-of-flight collaborator used to estimate
// remaining pill level in a magazine hopper.
package tof

// RangeFinder reads a distance in millimetres. ok is false when the
// reading could not be taken (sensor timeout, I2C NACK, out of range);
// callers must not trust mm when ok is false.
type RangeFinder interface {
	Read() (mm int, ok bool)
}

// Fake is an in-memory RangeFinder for tests and the host simulation
// harness.
type Fake struct {
	MM int
	OK bool
}

// NewFake returns a Fake that reports mm with ok=true.
func NewFake(mm int) *Fake { return &Fake{MM: mm, OK: true} }

func (f *Fake) Read() (int, bool) { return f.MM, f.OK }

// Fail makes every Read report a failed reading until Recover is
// called, exercising the degraded-levels path.
func (f *Fake) Fail() { f.OK = false }

// Recover clears a prior Fail.
func (f *Fake) Recover(mm int) { f.MM = mm; f.OK = true }
