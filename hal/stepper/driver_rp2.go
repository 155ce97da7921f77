//go:build rp2040 || rp2350

package stepper

import "machine"

// GPIO drives a step/dir/enable stepper (e.g. an A4988/DRV8825 style
// driver IC) directly, the way services/hal's rp2Registry drives plain
// GPIO outputs on this board family. EnableLow mirrors those drivers'
// convention of an active-low enable pin.
type GPIO struct {
	step, dir, enable machine.Pin
	enableLow         bool

	pos, target int32
}

// NewGPIO configures the three pins and returns a disabled driver at
// position zero.
func NewGPIO(step, dir, enable machine.Pin, enableLow bool) *GPIO {
	step.Configure(machine.PinConfig{Mode: machine.PinOutput})
	dir.Configure(machine.PinConfig{Mode: machine.PinOutput})
	enable.Configure(machine.PinConfig{Mode: machine.PinOutput})
	g := &GPIO{step: step, dir: dir, enable: enable, enableLow: enableLow}
	g.setEnabled(false)
	return g
}

func (g *GPIO) setEnabled(on bool) {
	level := on
	if g.enableLow {
		level = !level
	}
	g.enable.Set(level)
}

func (g *GPIO) Zero() { g.pos = 0 }

func (g *GPIO) SetTarget(steps int32) {
	g.target = steps
	g.setEnabled(true)
	g.dir.Set(steps >= g.pos)
}

func (g *GPIO) CurrentPosition() int32 { return g.pos }

func (g *GPIO) DistanceToGo() int32 { return g.target - g.pos }

func (g *GPIO) Step() bool {
	d := g.target - g.pos
	if d == 0 {
		return false
	}
	g.step.High()
	g.step.Low()
	if d > 0 {
		g.pos++
	} else {
		g.pos--
	}
	return true
}

func (g *GPIO) Stop() { g.target = g.pos }

func (g *GPIO) Disable() { g.setEnabled(false) }
