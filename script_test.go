package mosaic

import (
	"testing"
	"time"
)

func TestLoadScript(t *testing.T) {
	data := []byte(`{
		"steps": [
			{"action": "tap", "x": 105, "y": 205},
			{"action": "wait", "frames": 3},
			{"action": "drag", "fromX": 400, "fromY": 300, "toX": 300, "toY": 300, "frames": 4},
			{"action": "pinch", "x": 400, "y": 300, "fromDist": 100, "toDist": 200, "frames": 5}
		]
	}`)

	r, err := LoadScript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.steps) != 4 {
		t.Fatalf("steps = %d, want 4", len(r.steps))
	}
	if r.steps[0].Action != "tap" || r.steps[0].X != 105 || r.steps[0].Y != 205 {
		t.Error("step 0 mismatch")
	}
	if r.steps[3].Action != "pinch" || r.steps[3].FromDist != 100 || r.steps[3].ToDist != 200 {
		t.Error("step 3 mismatch")
	}
}

func TestLoadScript_Invalid(t *testing.T) {
	if _, err := LoadScript([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestLoadScript_Empty(t *testing.T) {
	if _, err := LoadScript([]byte(`{"steps": []}`)); err == nil {
		t.Error("expected error for empty steps")
	}
}

func TestScriptTapQueuesInjection(t *testing.T) {
	e := testEngine(nil)
	r, err := LoadScript([]byte(`{"steps": [{"action": "tap", "x": 105, "y": 205}]}`))
	if err != nil {
		t.Fatal(err)
	}
	e.SetScriptRunner(r)

	r.step(e)
	if len(e.injectQueue) != 2 {
		t.Fatalf("inject queue = %d frames, want 2 (press + release)", len(e.injectQueue))
	}
	if r.Done() {
		t.Error("runner done while injections pending")
	}
}

func TestScriptWaitsForInjectQueue(t *testing.T) {
	e := testEngine(nil)
	r, err := LoadScript([]byte(`{"steps": [
		{"action": "tap", "x": 105, "y": 205},
		{"action": "tap", "x": 115, "y": 205}
	]}`))
	if err != nil {
		t.Fatal(err)
	}

	r.step(e)
	if r.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", r.cursor)
	}
	// Queue not drained: the runner must not advance.
	r.step(e)
	if r.cursor != 1 {
		t.Errorf("cursor advanced to %d with pending injections", r.cursor)
	}

	now := t0
	for len(e.injectQueue) > 0 {
		e.consumeInjected(now)
		now = now.Add(16 * time.Millisecond)
	}
	r.step(e)
	if r.cursor != 2 {
		t.Errorf("cursor = %d after drain, want 2", r.cursor)
	}
}

func TestScriptWaitCountsFrames(t *testing.T) {
	e := testEngine(nil)
	r, err := LoadScript([]byte(`{"steps": [
		{"action": "wait", "frames": 3},
		{"action": "tap", "x": 10, "y": 10}
	]}`))
	if err != nil {
		t.Fatal(err)
	}

	r.step(e) // executes wait (counts as frame 1)
	r.step(e) // frame 2
	r.step(e) // frame 3
	if len(e.injectQueue) != 0 {
		t.Fatal("tap queued during wait")
	}
	r.step(e) // executes tap
	if len(e.injectQueue) != 2 {
		t.Errorf("inject queue = %d after wait, want 2", len(e.injectQueue))
	}
}

func TestScriptedTapPlacesCell(t *testing.T) {
	p := &fakePlacer{}
	e := testEngine(p)
	e.SetColor(red)
	r, err := LoadScript([]byte(`{"steps": [{"action": "tap", "x": 105, "y": 205}]}`))
	if err != nil {
		t.Fatal(err)
	}
	e.SetScriptRunner(r)

	r.step(e)
	now := t0
	for len(e.injectQueue) > 0 {
		e.consumeInjected(now)
		now = now.Add(16 * time.Millisecond)
	}
	r.step(e)

	if len(p.calls) != 1 || p.calls[0].x != 10 || p.calls[0].y != 20 {
		t.Errorf("scripted tap placed %+v, want (10,20)", p.calls)
	}
	if !r.Done() {
		t.Error("runner not done after final step and drain")
	}
}

func TestInjectDragPansViewport(t *testing.T) {
	e := testEngine(nil)
	e.vp.SetPan(-10, -10)

	e.InjectDrag(400, 300, 300, 300, 6)
	now := t0
	for len(e.injectQueue) > 0 {
		e.consumeInjected(now)
		now = now.Add(20 * time.Millisecond)
	}

	v := e.vp.View()
	if v.OffsetX <= -10 {
		t.Errorf("offsetX = %f, want > -10 after leftward drag", v.OffsetX)
	}
}

func TestInjectPinchZoomsViewport(t *testing.T) {
	e := testEngine(nil)

	e.InjectPinch(400, 300, 100, 250, 6)
	now := t0
	for len(e.injectQueue) > 0 {
		e.consumeInjected(now)
		now = now.Add(20 * time.Millisecond)
	}

	if got := e.vp.View().Zoom; got <= 1 {
		t.Errorf("zoom = %f after spreading pinch, want > 1", got)
	}
}

func TestInjectCancelsAnimation(t *testing.T) {
	e := testEngine(nil)
	e.vp.NavigateToGrid(50, 50, 1.0, nil)

	e.InjectTap(105, 205)
	e.consumeInjected(t0)
	if e.vp.Animating() {
		t.Error("injected contact left the animation running")
	}
}
