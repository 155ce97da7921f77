// Package protocol owns the wire shape of the bus topics: topic names
// under the device prefix, and the parse/build functions for each
// payload.
package protocol

// Topics builds the medbox/<prefix>/... topic names for one device.
type Topics struct {
	prefix string
}

// New returns a Topics rooted at medbox/<prefix>.
func New(prefix string) Topics { return Topics{prefix: "medbox/" + prefix} }

func (t Topics) Dispense() string  { return t.prefix + "/dispense" }
func (t Topics) Dispensed() string { return t.prefix + "/dispensed" }
func (t Topics) Levels() string    { return t.prefix + "/levels" }
func (t Topics) Status() string    { return t.prefix + "/status" }
func (t Topics) Config(key string) string { return t.prefix + "/config/" + key }
