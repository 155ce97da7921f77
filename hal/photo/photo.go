// Package photo is the photo-interrupter collaborator that detects a
// pill passing the dispense chute.
package photo

// Detector reads the raw analog level of a photo-interrupter gate. A
// pill breaking the beam is a dip against SensorThreshold, not
// hard-coded here: thresholding is a DispenseMachine policy so the
// same Detector works across magazines calibrated differently.
type Detector interface {
	Read() int
}

// Fake is an in-memory Detector for tests and the host simulation
// harness; set Level directly to script a beam break.
type Fake struct {
	Level int
}

// NewFake returns a Fake reading the given baseline level.
func NewFake(level int) *Fake { return &Fake{Level: level} }

func (f *Fake) Read() int { return f.Level }
