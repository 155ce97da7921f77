package protocol

import "medbox-fw/x/strconvx"

// BuildDispensed renders the dispense-result payload as the literal
// string "true"/"false", not a JSON boolean.
func BuildDispensed(success bool) []byte {
	if success {
		return []byte("true")
	}
	return []byte("false")
}

// BuildLevels renders {"mag1_mm":<int|-1>,"mag2_mm":<int|-1>}. mag1Ok/
// mag2Ok false substitutes -1 for a failed ToF read, never altering the
// sibling channel.
func BuildLevels(mag1MM int, mag1OK bool, mag2MM int, mag2OK bool) []byte {
	m1 := mag1MM
	if !mag1OK {
		m1 = -1
	}
	m2 := mag2MM
	if !mag2OK {
		m2 = -1
	}
	return []byte(`{"mag1_mm":` + strconvx.Itoa(m1) + `,"mag2_mm":` + strconvx.Itoa(m2) + `}`)
}
