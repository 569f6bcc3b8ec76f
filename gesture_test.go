package mosaic

import (
	"math"
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// collect registers a recording listener and returns the backing slice.
func collect(r *Recognizer) *[]Gesture {
	var got []Gesture
	r.OnGesture(func(g Gesture) { got = append(got, g) })
	return &got
}

func TestTapClassification(t *testing.T) {
	r := NewRecognizer()
	got := collect(r)

	// 3px total displacement over 120ms: a tap.
	r.ContactStart(1, 100, 100, t0)
	r.ContactMove(1, 102, 101, t0.Add(60*time.Millisecond))
	r.ContactEnd(1, 103, 100, t0.Add(120*time.Millisecond))

	if len(*got) != 1 {
		t.Fatalf("gestures = %d, want 1 tap", len(*got))
	}
	g := (*got)[0]
	if g.Type != GestureTap {
		t.Fatalf("type = %v, want tap", g.Type)
	}
	if g.CenterX != 103 || g.CenterY != 100 {
		t.Errorf("center = (%f,%f), want final position (103,100)", g.CenterX, g.CenterY)
	}
	if g.Duration != 120*time.Millisecond {
		t.Errorf("duration = %v, want 120ms", g.Duration)
	}
	if r.State() != "idle" {
		t.Errorf("state = %s, want idle after release", r.State())
	}
}

func TestTapTooSlowIsNotTap(t *testing.T) {
	r := NewRecognizer()
	got := collect(r)

	r.ContactStart(1, 100, 100, t0)
	r.ContactEnd(1, 100, 100, t0.Add(400*time.Millisecond))

	if len(*got) != 0 {
		t.Errorf("gestures = %d, want 0 for a 400ms press", len(*got))
	}
}

func TestPanReclassification(t *testing.T) {
	r := NewRecognizer()
	got := collect(r)

	// Same shape as a tap but 50px of displacement: a pan.
	r.ContactStart(1, 100, 100, t0)
	r.ContactMove(1, 150, 100, t0.Add(40*time.Millisecond))
	if r.State() != "pan" {
		t.Fatalf("state = %s after 50px move, want pan", r.State())
	}
	r.ContactMove(1, 170, 110, t0.Add(80*time.Millisecond))
	r.ContactEnd(1, 170, 110, t0.Add(120*time.Millisecond))

	if len(*got) == 0 {
		t.Fatal("no gestures emitted")
	}
	for _, g := range *got {
		if g.Type != GesturePan {
			t.Fatalf("type = %v, want only pan (no tap on release)", g.Type)
		}
	}
	// Deltas are relative to the last reported centroid: entering pan
	// anchored at (150,100), so the second move reports (20,10).
	g := (*got)[0]
	if g.DeltaX != 20 || g.DeltaY != 10 {
		t.Errorf("delta = (%f,%f), want (20,10)", g.DeltaX, g.DeltaY)
	}
}

func TestPanWithinDeadZoneStaysPending(t *testing.T) {
	r := NewRecognizer()

	r.ContactStart(1, 100, 100, t0)
	r.ContactMove(1, 104, 103, t0.Add(20*time.Millisecond))
	if r.State() != "tap_pending" {
		t.Errorf("state = %s after 5px move, want tap_pending", r.State())
	}
}

func TestPinchClassification(t *testing.T) {
	r := NewRecognizer()
	got := collect(r)

	r.ContactStart(1, 100, 200, t0)
	r.ContactStart(2, 200, 200, t0.Add(10*time.Millisecond))
	if r.State() != "pinch" {
		t.Fatalf("state = %s after second contact, want pinch", r.State())
	}

	// Spread from 100px apart to 150px apart.
	r.ContactMove(1, 80, 200, t0.Add(50*time.Millisecond))
	r.ContactMove(2, 230, 200, t0.Add(80*time.Millisecond))

	var pinches []Gesture
	for _, g := range *got {
		if g.Type == GesturePinch {
			pinches = append(pinches, g)
		}
	}
	if len(pinches) == 0 {
		t.Fatal("no pinch gestures emitted")
	}
	last := pinches[len(pinches)-1]
	if last.Scale <= 1 {
		t.Errorf("scale = %f, want > 1 for spreading contacts", last.Scale)
	}
	if last.CenterX != 155 || last.CenterY != 200 {
		t.Errorf("center = (%f,%f), want centroid (155,200)", last.CenterX, last.CenterY)
	}
}

func TestPinchCancelsLongPress(t *testing.T) {
	r := NewRecognizer()
	got := collect(r)

	r.ContactStart(1, 100, 100, t0)
	r.ContactStart(2, 200, 100, t0.Add(50*time.Millisecond))
	r.Tick(t0.Add(600 * time.Millisecond))

	for _, g := range *got {
		if g.Type == GestureLongPress {
			t.Fatal("long press fired despite a second contact")
		}
	}
}

func TestLongPress(t *testing.T) {
	r := NewRecognizer()
	got := collect(r)

	r.ContactStart(1, 100, 100, t0)
	r.Tick(t0.Add(400 * time.Millisecond))
	if len(*got) != 0 {
		t.Fatal("long press fired early")
	}
	r.Tick(t0.Add(520 * time.Millisecond))

	if len(*got) != 1 || (*got)[0].Type != GestureLongPress {
		t.Fatalf("gestures = %v, want one long_press", *got)
	}

	// The release afterward must not also emit a tap.
	r.ContactEnd(1, 100, 100, t0.Add(550*time.Millisecond))
	if len(*got) != 1 {
		t.Errorf("gestures = %d after release, want still 1", len(*got))
	}
}

func TestLongPressCancelledByMove(t *testing.T) {
	r := NewRecognizer()
	got := collect(r)

	r.ContactStart(1, 100, 100, t0)
	r.ContactMove(1, 150, 100, t0.Add(100*time.Millisecond))
	r.Tick(t0.Add(600 * time.Millisecond))

	for _, g := range *got {
		if g.Type == GestureLongPress {
			t.Fatal("long press fired after pan reclassification")
		}
	}
}

func TestLongPressThenPan(t *testing.T) {
	// A fired long-press stands; a later over-threshold move still
	// reclassifies the contact to pan.
	r := NewRecognizer()
	got := collect(r)

	r.ContactStart(1, 100, 100, t0)
	r.Tick(t0.Add(520 * time.Millisecond))
	r.ContactMove(1, 200, 100, t0.Add(700*time.Millisecond))
	r.ContactMove(1, 220, 100, t0.Add(800*time.Millisecond))
	r.ContactEnd(1, 220, 100, t0.Add(900*time.Millisecond))

	var types []GestureType
	for _, g := range *got {
		types = append(types, g.Type)
	}
	if len(types) < 2 || types[0] != GestureLongPress {
		t.Fatalf("types = %v, want long_press followed by pan", types)
	}
	for _, ty := range types[1:] {
		if ty != GesturePan {
			t.Fatalf("types = %v, want only pan after the long_press", types)
		}
	}
}

func TestEmissionThrottle(t *testing.T) {
	r := NewRecognizer()
	got := collect(r)

	r.ContactStart(1, 0, 0, t0)
	r.ContactMove(1, 50, 0, t0.Add(1*time.Millisecond)) // enters pan

	// 30 moves 1ms apart: classification sees every one, emission is
	// rate-limited to the 16ms interval.
	for i := 1; i <= 30; i++ {
		r.ContactMove(1, 50+float64(i), 0, t0.Add(time.Duration(1+i)*time.Millisecond))
	}

	if len(*got) > 3 {
		t.Errorf("emitted %d pans in 30ms, want at most 3", len(*got))
	}
	// Tracked state is still current: the next emission carries the full
	// outstanding delta.
	r.ContactMove(1, 100, 0, t0.Add(60*time.Millisecond))
	last := (*got)[len(*got)-1]
	var total float64
	for _, g := range *got {
		total += g.DeltaX
	}
	if total != 50 {
		t.Errorf("cumulative delta = %f, want 50 (no movement lost), last %+v", total, last)
	}
}

func TestOrphanEventsDropped(t *testing.T) {
	r := NewRecognizer()
	got := collect(r)

	r.ContactMove(99, 10, 10, t0)
	r.ContactEnd(99, 10, 10, t0)
	r.ContactCancel(99, t0)

	if len(*got) != 0 || r.State() != "idle" || r.ContactCount() != 0 {
		t.Errorf("orphan events changed state: %d gestures, state %s, %d contacts",
			len(*got), r.State(), r.ContactCount())
	}
}

func TestCancelResetsAtZeroContacts(t *testing.T) {
	r := NewRecognizer()
	got := collect(r)

	r.ContactStart(1, 100, 100, t0)
	r.ContactMove(1, 200, 100, t0.Add(20*time.Millisecond))
	if r.State() != "pan" {
		t.Fatal("setup: expected pan state")
	}
	r.ContactCancel(1, t0.Add(40*time.Millisecond))
	if r.State() != "idle" || r.ContactCount() != 0 {
		t.Errorf("state = %s contacts = %d after cancel, want idle/0", r.State(), r.ContactCount())
	}
	// No tap from a cancel.
	for _, g := range *got {
		if g.Type == GestureTap {
			t.Error("cancel emitted a tap")
		}
	}
}

func TestPinchSurvivorEmitsNothing(t *testing.T) {
	r := NewRecognizer()
	got := collect(r)

	r.ContactStart(1, 100, 200, t0)
	r.ContactStart(2, 200, 200, t0)
	r.ContactEnd(2, 200, 200, t0.Add(50*time.Millisecond))

	before := len(*got)
	r.ContactMove(1, 120, 200, t0.Add(100*time.Millisecond))
	if len(*got) != before {
		t.Errorf("lone pinch survivor emitted %d gestures", len(*got)-before)
	}
	if r.State() != "pinch" {
		t.Errorf("state = %s, want pinch until the set empties", r.State())
	}

	r.ContactEnd(1, 120, 200, t0.Add(150*time.Millisecond))
	if r.State() != "idle" {
		t.Errorf("state = %s at zero contacts, want idle", r.State())
	}
}

func TestNonFiniteContactClamped(t *testing.T) {
	r := NewRecognizer()

	r.ContactStart(1, math.NaN(), math.Inf(1), t0)
	c := r.findContact(1)
	if c == nil {
		t.Fatal("contact not tracked")
	}
	if math.IsNaN(c.x) || math.IsInf(c.y, 0) {
		t.Errorf("non-finite coordinates leaked: (%f,%f)", c.x, c.y)
	}
}

func TestGestureHandleRemove(t *testing.T) {
	r := NewRecognizer()

	fired := 0
	h := r.OnGesture(func(Gesture) { fired++ })
	h.Remove()

	r.ContactStart(1, 100, 100, t0)
	r.ContactEnd(1, 100, 100, t0.Add(50*time.Millisecond))
	if fired != 0 {
		t.Errorf("removed handler fired %d times", fired)
	}
}

func TestDuplicateStartTreatedAsMove(t *testing.T) {
	r := NewRecognizer()

	r.ContactStart(1, 100, 100, t0)
	r.ContactStart(1, 150, 100, t0.Add(20*time.Millisecond))
	if r.ContactCount() != 1 {
		t.Errorf("contacts = %d after duplicate start, want 1", r.ContactCount())
	}
	if r.State() != "pan" {
		t.Errorf("state = %s, want pan (duplicate start moved the contact)", r.State())
	}
}
