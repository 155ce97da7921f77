package protocol

import (
	"github.com/andreyvit/tinyjson"

	"medbox-fw/errcode"
)

// Request is one {magazineId, amount} entry from an inbound dispense
// message, still in raw wire form — mapping the int to a known
// magazine and clamping the amount happens downstream in dispense.Drain.
type Request struct {
	MagazineID int
	Amount     int
}

func malformed(op, msg string) error {
	return &errcode.E{C: errcode.MalformedPayload, Op: op, Msg: msg}
}

var (
	errNotObject = malformed("ParseDispense", "payload is not a JSON object")
	errNoAmounts = malformed("ParseDispense", "missing or invalid \"amounts\" array")
	errBadEntry  = malformed("ParseDispense", "amounts entry missing magazineId/amount")
)

// ParseDispense parses an inbound dispense payload: an object with an
// "amounts" array of {magazineId, amount, ...} objects. Extra fields are
// ignored. Any schema violation fails the whole message (dropped and
// logged by the caller); unknown magazine IDs are NOT rejected here —
// that check happens at enqueue time, so the rest of the batch still
// lands.
func ParseDispense(payload []byte) ([]Request, error) {
	r := tinyjson.Raw(payload)
	val := r.Value()
	if err := r.EnsureEOF(); err != nil {
		return nil, err
	}

	obj, ok := val.(map[string]any)
	if !ok {
		return nil, errNotObject
	}

	rawAmounts, ok := obj["amounts"].([]any)
	if !ok {
		return nil, errNoAmounts
	}

	reqs := make([]Request, 0, len(rawAmounts))
	for _, e := range rawAmounts {
		entry, ok := e.(map[string]any)
		if !ok {
			return nil, errBadEntry
		}
		magF, ok := entry["magazineId"].(float64)
		if !ok {
			return nil, errBadEntry
		}
		amtF, ok := entry["amount"].(float64)
		if !ok {
			return nil, errBadEntry
		}
		amt := int(amtF)
		if amt < 0 {
			return nil, errBadEntry
		}
		reqs = append(reqs, Request{MagazineID: int(magF), Amount: amt})
	}
	return reqs, nil
}
