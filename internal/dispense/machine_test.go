package dispense

import (
	"testing"

	"medbox-fw/bus"
	"medbox-fw/bus/busmem"
	"medbox-fw/hal/clock"
	"medbox-fw/hal/stepper"
	"medbox-fw/internal/diag"
)

// countingStepper tracks total successful Step() calls since the last
// Zero(), which lines up with "N further steps" in the scenarios
// below regardless of any jam reversal in between.
type countingStepper struct {
	*stepper.Fake
	steps int32
}

func newCountingStepper() *countingStepper {
	return &countingStepper{Fake: stepper.NewFake()}
}

func (c *countingStepper) Step() bool {
	stepped := c.Fake.Step()
	if stepped {
		c.steps++
	}
	return stepped
}

func (c *countingStepper) Zero() {
	c.steps = 0
	c.Fake.Zero()
}

// scriptedDetector reports a pill detected once its stepper's
// cumulative step count reaches fireAt. fireAt == 0 means never.
type scriptedDetector struct {
	st     *countingStepper
	fireAt int32
}

func (d *scriptedDetector) Read() int {
	if d.fireAt > 0 && d.st.steps >= d.fireAt {
		return 100
	}
	return 1000
}

const testDispensedTopic = "medbox/01/dispensed"

func newTestMachine(t *testing.T) (*DispenseMachine, *Queue, map[MagazineID]*countingStepperRig, *clock.Fake, *busmem.Client) {
	t.Helper()
	q := NewQueue()
	clk := clock.NewFake(0)
	busClient := busmem.New()
	if err := busClient.Connect(bus.ConnectOptions{ClientID: "test"}); err != nil {
		t.Fatalf("connect: %v", err)
	}

	rigs := map[MagazineID]*countingStepperRig{
		Magazine1: newRig(Magazine1),
		Magazine2: newRig(Magazine2),
	}
	magazines := map[MagazineID]*Magazine{
		Magazine1: rigs[Magazine1].magazine,
		Magazine2: rigs[Magazine2].magazine,
	}

	cfg := Config{
		MaxStepsSafety:  5000,
		SensorThreshold: 500,
		JamTimeoutMs:    8000,
		CooldownMs:      200,
	}
	m := NewMachine(magazines, q, clk, busClient, testDispensedTopic, diag.New(), cfg)
	return m, q, rigs, clk, busClient
}

type countingStepperRig struct {
	stepper  *countingStepper
	detector *scriptedDetector
	magazine *Magazine
}

func newRig(id MagazineID) *countingStepperRig {
	st := newCountingStepper()
	det := &scriptedDetector{st: st}
	return &countingStepperRig{
		stepper:  st,
		detector: det,
		magazine: &Magazine{ID: id, Stepper: st, Photo: det, NextDirection: DirClockwise},
	}
}

// runUntilIdle ticks m until it returns to StateIdle with an empty
// queue (batch complete) or maxTicks is exceeded, advancing the fake
// clock past CooldownMs whenever the machine is waiting it out.
func runUntilIdle(t *testing.T, m *DispenseMachine, q *Queue, clk *clock.Fake, maxTicks int) {
	t.Helper()
	seenNonIdle := false
	for i := 0; i < maxTicks; i++ {
		if m.State() != StateIdle {
			seenNonIdle = true
		}
		if m.State() == StateCooldown {
			clk.Advance(200)
		}
		m.Tick()
		if seenNonIdle && m.State() == StateIdle && q.Empty() {
			return
		}
	}
	t.Fatalf("machine did not reach idle within %d ticks (state=%v)", maxTicks, m.State())
}

func subscribeDispensed(t *testing.T, c *busmem.Client) *[]string {
	t.Helper()
	got := []string{}
	if err := c.Subscribe(testDispensedTopic, 0, func(_ string, payload []byte) {
		got = append(got, string(payload))
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	return &got
}

func TestHappyPath(t *testing.T) {
	m, q, rigs, clk, c := newTestMachine(t)
	published := subscribeDispensed(t, c)

	rigs[Magazine1].detector.fireAt = 1200
	q.Enqueue(Magazine1, 1)

	runUntilIdle(t, m, q, clk, 20000)

	if len(*published) != 1 || (*published)[0] != "true" {
		t.Fatalf("unexpected publishes: %v", *published)
	}
	if q.Pending(Magazine1) != 0 {
		t.Fatal("expected magazine 1 drained")
	}
	// One detection toggles direction once.
	if rigs[Magazine1].magazine.NextDirection != DirCounterClockwise {
		t.Fatalf("expected direction toggled once, got %v", rigs[Magazine1].magazine.NextDirection)
	}
}

func TestHappyPathTwoPillsNetsDirectionBackToStart(t *testing.T) {
	m, q, rigs, clk, c := newTestMachine(t)
	published := subscribeDispensed(t, c)

	rigs[Magazine1].detector.fireAt = 1200
	q.Enqueue(Magazine1, 2)

	runUntilIdle(t, m, q, clk, 40000)

	if len(*published) != 1 || (*published)[0] != "true" {
		t.Fatalf("unexpected publishes: %v", *published)
	}
	if q.Pending(Magazine1) != 0 {
		t.Fatal("expected magazine 1 fully drained")
	}
	if rigs[Magazine1].magazine.NextDirection != DirClockwise {
		t.Fatalf("expected direction toggled twice (back to start), got %v", rigs[Magazine1].magazine.NextDirection)
	}
}

func TestMixedBatchMagazine1BeforeMagazine2(t *testing.T) {
	m, q, rigs, clk, c := newTestMachine(t)
	published := subscribeDispensed(t, c)

	rigs[Magazine1].detector.fireAt = 500
	rigs[Magazine2].detector.fireAt = 500
	q.Enqueue(Magazine1, 1)
	q.Enqueue(Magazine2, 1)

	runUntilIdle(t, m, q, clk, 20000)

	if len(*published) != 1 || (*published)[0] != "true" {
		t.Fatalf("expected exactly one dispensed=true publish, got %v", *published)
	}
	if q.Pending(Magazine1) != 0 || q.Pending(Magazine2) != 0 {
		t.Fatal("expected both magazines drained")
	}
}

func TestJamThenSuccess(t *testing.T) {
	m, q, rigs, clk, c := newTestMachine(t)
	published := subscribeDispensed(t, c)

	q.Enqueue(Magazine1, 1)

	// IDLE -> INIT_PILL
	m.Tick()
	// INIT_PILL -> MOVING
	m.Tick()

	// Jump the clock past the jam timeout before the next MOVING tick
	// so the very first moving step (no detection yet) trips the jam
	// path instead of exhausting travel.
	rigs[Magazine1].detector.fireAt = 0
	clk.Advance(8001)
	m.Tick() // MOVING: jam suspected -> JAM_REVERSE
	if m.State() != StateJamReverse {
		t.Fatalf("expected JAM_REVERSE, got %v", m.State())
	}
	stepsAtReversal := rigs[Magazine1].stepper.steps

	m.Tick() // JAM_REVERSE -> MOVING
	if m.State() != StateMoving {
		t.Fatalf("expected MOVING after reversal, got %v", m.State())
	}

	// Detect after 800 further steps past the reversal point.
	rigs[Magazine1].detector.fireAt = stepsAtReversal + 800

	runUntilIdle(t, m, q, clk, 20000)

	if len(*published) != 1 || (*published)[0] != "true" {
		t.Fatalf("unexpected publishes: %v", *published)
	}
	// Net direction: toggled once on reversal, once on detection -> back to start.
	if rigs[Magazine1].magazine.NextDirection != DirClockwise {
		t.Fatalf("expected net two toggles (back to start), got %v", rigs[Magazine1].magazine.NextDirection)
	}
}

func TestEmptyMagazineAfterJamNeverDetects(t *testing.T) {
	m, q, rigs, clk, c := newTestMachine(t)
	published := subscribeDispensed(t, c)

	rigs[Magazine1].detector.fireAt = 0 // never fires
	q.Enqueue(Magazine1, 1)

	m.Tick() // IDLE -> INIT_PILL
	m.Tick() // INIT_PILL -> MOVING
	clk.Advance(8001)
	m.Tick() // MOVING -> JAM_REVERSE
	if m.State() != StateJamReverse {
		t.Fatalf("expected JAM_REVERSE, got %v", m.State())
	}
	m.Tick() // JAM_REVERSE -> MOVING

	runUntilIdle(t, m, q, clk, 20000)

	if len(*published) != 1 || (*published)[0] != "false" {
		t.Fatalf("expected a single dispensed=false publish, got %v", *published)
	}
	if q.Pending(Magazine1) != 0 {
		t.Fatal("expected the empty pill to still be counted as attempted")
	}
	// Exactly one toggle, from the reversal.
	if rigs[Magazine1].magazine.NextDirection != DirCounterClockwise {
		t.Fatalf("expected exactly one toggle (from reversal), got %v", rigs[Magazine1].magazine.NextDirection)
	}
}

func TestEnqueueDuringBatchFoldsIntoSamePublish(t *testing.T) {
	m, q, rigs, clk, c := newTestMachine(t)
	published := subscribeDispensed(t, c)

	rigs[Magazine1].detector.fireAt = 300
	rigs[Magazine2].detector.fireAt = 300
	q.Enqueue(Magazine1, 1)

	// Drive until magazine 1's pill is detected and the machine is in
	// COOLDOWN, before REPORTING would have fired (queue had only one magazine).
	for i := 0; i < 2000 && m.State() != StateCooldown; i++ {
		m.Tick()
	}
	// A second request arrives for magazine 2 while magazine 1 is
	// cooling down, i.e. before REPORTING completes.
	q.Enqueue(Magazine2, 1)

	runUntilIdle(t, m, q, clk, 20000)

	if len(*published) != 1 || (*published)[0] != "true" {
		t.Fatalf("expected exactly one dispensed=true publish folding both pills, got %v", *published)
	}
	if q.Pending(Magazine2) != 0 {
		t.Fatal("expected magazine 2's pill to have been serviced in the same batch")
	}
}

func TestReportingRetriesUntilPublishSucceeds(t *testing.T) {
	m, q, rigs, clk, c := newTestMachine(t)
	published := subscribeDispensed(t, c)

	rigs[Magazine1].detector.fireAt = 300
	q.Enqueue(Magazine1, 1)

	for i := 0; i < 2000 && m.State() != StateReporting; i++ {
		if m.State() == StateCooldown {
			clk.Advance(200)
		}
		m.Tick()
	}
	if m.State() != StateReporting {
		t.Fatalf("expected REPORTING, got %v", m.State())
	}

	c.SetPublishFailure(true)
	for i := 0; i < 10; i++ {
		m.Tick()
		if m.State() != StateReporting {
			t.Fatalf("machine left REPORTING while publish is failing")
		}
	}
	if len(*published) != 0 {
		t.Fatalf("expected no successful publish yet, got %v", *published)
	}

	c.SetPublishFailure(false)
	m.Tick()

	if m.State() != StateIdle {
		t.Fatalf("expected IDLE once publish succeeds, got %v", m.State())
	}
	if len(*published) != 1 || (*published)[0] != "true" {
		t.Fatalf("expected exactly one successful publish, got %v", *published)
	}
}
