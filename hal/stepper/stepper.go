// Package stepper is the motor collaborator DispenseMachine drives: a
// position-tracking stepper contract that is agnostic to whether the
// motor is pulsed directly over step/dir GPIO or driven through a
// register-based driver IC.
package stepper

// Driver is a single stepper axis tracked in microsteps. A positive
// target is clockwise, negative is counter-clockwise; DispenseMachine
// never reasons about electrical direction, only about DistanceToGo.
type Driver interface {
	// Zero resets the tracked position to 0, establishing the origin
	// a pill attempt's safety travel cap is measured from.
	Zero()

	// SetTarget sets an absolute target position in steps and latches
	// the direction for subsequent Step calls.
	SetTarget(steps int32)

	// CurrentPosition returns the tracked absolute position.
	CurrentPosition() int32

	// DistanceToGo returns target-minus-current; zero means arrived.
	DistanceToGo() int32

	// Step issues one step toward the target if one is due and returns
	// whether it stepped. Drivers that pace steps against a fixed
	// pulse rate return false between paced steps even with distance
	// remaining; DispenseMachine just calls Step once per tick.
	Step() bool

	// Stop cancels any pending target without moving further.
	Stop()

	// Disable cuts holding current. Safe to call repeatedly.
	Disable()
}
