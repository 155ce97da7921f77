package dispense

import (
	"medbox-fw/hal/photo"
	"medbox-fw/hal/stepper"
)

// Magazine is one physical cartridge: its stepper, its throat
// photodetector, and the direction the next pill attempt should drive
// in. Direction lives here, owned by the Supervisor, rather than as a
// process-wide boolean.
type Magazine struct {
	ID            MagazineID
	Stepper       stepper.Driver
	Photo         photo.Detector
	NextDirection Direction
}
