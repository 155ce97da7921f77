package protocol

import "testing"

func TestParseDispenseHappyPath(t *testing.T) {
	reqs, err := ParseDispense([]byte(`{"amounts":[{"magazineId":1,"amount":2}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reqs) != 1 || reqs[0].MagazineID != 1 || reqs[0].Amount != 2 {
		t.Fatalf("unexpected requests: %+v", reqs)
	}
}

func TestParseDispenseIgnoresExtraFields(t *testing.T) {
	reqs, err := ParseDispense([]byte(`{"amounts":[{"magazineId":2,"amount":1,"magazineName":"left"}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reqs) != 1 || reqs[0].MagazineID != 2 {
		t.Fatalf("unexpected requests: %+v", reqs)
	}
}

func TestParseDispenseKeepsUnknownMagazineEntry(t *testing.T) {
	// Schema-valid but an unknown magazine id; rejecting it is the
	// caller's (dispense.Drain's) job, not the parser's.
	reqs, err := ParseDispense([]byte(`{"amounts":[{"magazineId":9,"amount":1},{"magazineId":1,"amount":3}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("expected both entries preserved, got %+v", reqs)
	}
}

func TestParseDispenseRejectsMalformedJSON(t *testing.T) {
	if _, err := ParseDispense([]byte(`not json`)); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}

func TestParseDispenseRejectsMissingAmounts(t *testing.T) {
	if _, err := ParseDispense([]byte(`{"foo":1}`)); err == nil {
		t.Fatal("expected an error for a missing amounts array")
	}
}

func TestParseDispenseRejectsEntryMissingFields(t *testing.T) {
	if _, err := ParseDispense([]byte(`{"amounts":[{"magazineId":1}]}`)); err == nil {
		t.Fatal("expected an error for an entry missing amount")
	}
}

func TestParseDispenseRejectsNegativeAmount(t *testing.T) {
	if _, err := ParseDispense([]byte(`{"amounts":[{"magazineId":1,"amount":-1}]}`)); err == nil {
		t.Fatal("expected an error for a negative amount")
	}
}

func TestBuildDispensed(t *testing.T) {
	if string(BuildDispensed(true)) != "true" {
		t.Fatal("expected literal true")
	}
	if string(BuildDispensed(false)) != "false" {
		t.Fatal("expected literal false")
	}
}

func TestBuildLevels(t *testing.T) {
	got := string(BuildLevels(120, true, 0, false))
	want := `{"mag1_mm":120,"mag2_mm":-1}`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
