//go:build rp2040 || rp2350

package tof

import (
	"machine"

	"tinygo.org/x/drivers/vl53l1x"
)

// VL53L1X wraps tinygo.org/x/drivers' VL53L1X time-of-flight driver
// behind RangeFinder, one sensor per magazine hopper, each on the I2C
// bus it is constructed with.
type VL53L1X struct {
	dev vl53l1x.Device
}

// NewVL53L1X configures a sensor at its default I2C address on bus.
func NewVL53L1X(bus *machine.I2C) (*VL53L1X, error) {
	dev := vl53l1x.New(bus)
	if err := dev.Configure(vl53l1x.Configuration{}); err != nil {
		return nil, err
	}
	return &VL53L1X{dev: dev}, nil
}

func (v *VL53L1X) Read() (int, bool) {
	if !v.dev.Available() {
		return 0, false
	}
	mm := v.dev.ReadDistance()
	return int(mm), true
}
