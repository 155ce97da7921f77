//go:build rp2040 || rp2350

package photo

import "machine"

// ADC reads a photo-interrupter's phototransistor output on an analog
// pin, the same machine.ADC path the rp2 resource provider uses for
// its analog-capable GPIOs.
type ADC struct {
	pin machine.ADC
}

// NewADC configures pin as an analog input and returns an ADC Detector.
func NewADC(pin machine.Pin) *ADC {
	a := machine.ADC{Pin: pin}
	a.Configure(machine.ADCConfig{})
	return &ADC{pin: a}
}

func (a *ADC) Read() int { return int(a.pin.Get()) }
