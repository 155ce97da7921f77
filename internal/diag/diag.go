// Package diag is the zero-allocation diagnostic logger: it writes
// parts directly with print and optional UART mirroring, never
// fmt.Sprintf, so the hot tick path never churns the heap.
package diag

import "medbox-fw/x/strconvx"

// Sink receives each piece of a diagnostic line as it is written, so one
// Event/Println call makes several Write calls. A Log with no Sink set
// writes to the console only.
type Sink interface {
	Write(s string)
}

// Log mirrors every message to the console and, when set, to a Sink
// (the UART ring on rp2xxx, an in-memory recorder in tests).
type Log struct {
	sink Sink
}

// New returns a Log that writes only to the console until SetSink is called.
func New() *Log { return &Log{} }

// SetSink attaches a mirror target (UART ring, test recorder, ...).
func (l *Log) SetSink(s Sink) { l.sink = s }

func (l *Log) writeString(s string) {
	if s == "" {
		return
	}
	print(s)
	if l.sink != nil {
		l.sink.Write(s)
	}
}

func (l *Log) writePart(v any) {
	switch x := v.(type) {
	case string:
		l.writeString(x)
	case int:
		l.writeString(strconvx.Itoa(x))
	case int32:
		l.writeString(strconvx.Itoa(int(x)))
	case int64:
		l.writeString(strconvx.FormatInt(x, 10))
	case bool:
		if x {
			l.writeString("true")
		} else {
			l.writeString("false")
		}
	default:
		l.writeString("?")
	}
}

// Print writes each part with no separator.
func (l *Log) Print(parts ...any) {
	for i := range parts {
		l.writePart(parts[i])
	}
}

// Println is Print followed by a newline.
func (l *Log) Println(parts ...any) {
	l.Print(parts...)
	l.writeString("\n")
}

// Event logs a stable diagnostic tag with free-form context, the shape
// DispenseMachine's logged outcomes use: diag.Event("pill_detected",
// "magazine", 1, "direction", "cw").
func (l *Log) Event(tag string, fields ...any) {
	l.Print("[", tag, "]")
	for i := 0; i < len(fields); i += 2 {
		l.Print(" ", fields[i])
		if i+1 < len(fields) {
			l.Print("=", fields[i+1])
		}
	}
	l.writeString("\n")
}
