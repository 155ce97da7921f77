package diag

import "testing"

type recorder struct {
	lines []string
}

func (r *recorder) Write(s string) { r.lines = append(r.lines, s) }

func joined(r *recorder) string {
	out := ""
	for _, s := range r.lines {
		out += s
	}
	return out
}

func TestEventFormatsTagAndFields(t *testing.T) {
	rec := &recorder{}
	l := New()
	l.SetSink(rec)

	l.Event("pill_detected", "magazine", 1, "direction", "cw")

	got := joined(rec)
	want := "[pill_detected] magazine=1 direction=cw\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPrintlnMirrorsToSink(t *testing.T) {
	rec := &recorder{}
	l := New()
	l.SetSink(rec)

	l.Println("count=", 3)

	if joined(rec) != "count=3\n" {
		t.Fatalf("unexpected output: %q", joined(rec))
	}
}

func TestWithoutSinkDoesNotPanic(t *testing.T) {
	l := New()
	l.Event("boot")
}
