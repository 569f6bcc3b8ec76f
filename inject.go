package mosaic

import "time"

// contactPhase is the lifecycle phase of a synthetic contact event.
type contactPhase uint8

const (
	phaseStart contactPhase = iota
	phaseMove
	phaseEnd
)

// contactEvent is one synthetic contact transition in screen coordinates.
type contactEvent struct {
	id    int64
	phase contactPhase
	x, y  float64
}

// injectedFrame is the set of contact events delivered in one frame. Pinch
// injection moves both contacts in the same frame, matching real multi-touch
// reporting.
type injectedFrame []contactEvent

// Injected contacts use negative ids so they can never collide with the
// mouse (0) or live touches (positive).
const (
	injectContactA int64 = -1
	injectContactB int64 = -2
)

// InjectTap queues a synthetic tap at the given screen coordinates: a press
// one frame and a release the next, through the same recognizer path as real
// input.
func (e *Engine) InjectTap(x, y float64) {
	e.injectQueue = append(e.injectQueue,
		injectedFrame{{id: injectContactA, phase: phaseStart, x: x, y: y}},
		injectedFrame{{id: injectContactA, phase: phaseEnd, x: x, y: y}},
	)
}

// InjectDrag queues a synthetic one-contact drag: press at (fromX, fromY),
// linearly interpolated moves, release at (toX, toY). The sequence consumes
// frames frames; minimum is 2 (press + release).
func (e *Engine) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	e.injectQueue = append(e.injectQueue,
		injectedFrame{{id: injectContactA, phase: phaseStart, x: fromX, y: fromY}})
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		e.injectQueue = append(e.injectQueue,
			injectedFrame{{id: injectContactA, phase: phaseMove, x: x, y: y}})
	}
	e.injectQueue = append(e.injectQueue,
		injectedFrame{{id: injectContactA, phase: phaseEnd, x: toX, y: toY}})
}

// InjectPinch queues a synthetic two-contact pinch centered at (cx, cy),
// opening (or closing) the contacts horizontally from fromDist apart to
// toDist apart over the given number of frames.
func (e *Engine) InjectPinch(cx, cy, fromDist, toDist float64, frames int) {
	if frames < 3 {
		frames = 3
	}
	half := fromDist / 2
	e.injectQueue = append(e.injectQueue, injectedFrame{
		{id: injectContactA, phase: phaseStart, x: cx - half, y: cy},
		{id: injectContactB, phase: phaseStart, x: cx + half, y: cy},
	})
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		half = (fromDist + (toDist-fromDist)*t) / 2
		e.injectQueue = append(e.injectQueue, injectedFrame{
			{id: injectContactA, phase: phaseMove, x: cx - half, y: cy},
			{id: injectContactB, phase: phaseMove, x: cx + half, y: cy},
		})
	}
	e.injectQueue = append(e.injectQueue, injectedFrame{
		{id: injectContactA, phase: phaseEnd, x: cx - half, y: cy},
		{id: injectContactB, phase: phaseEnd, x: cx + half, y: cy},
	})
}

// consumeInjected pops one injected frame and feeds it to the recognizer.
// Returns true if a frame was consumed; real input is skipped that frame.
func (e *Engine) consumeInjected(now time.Time) bool {
	if len(e.injectQueue) == 0 {
		return false
	}
	frame := e.injectQueue[0]
	copy(e.injectQueue, e.injectQueue[1:])
	e.injectQueue = e.injectQueue[:len(e.injectQueue)-1]

	for _, ev := range frame {
		switch ev.phase {
		case phaseStart:
			e.beginContact()
			e.rec.ContactStart(ev.id, ev.x, ev.y, now)
		case phaseMove:
			e.rec.ContactMove(ev.id, ev.x, ev.y, now)
		case phaseEnd:
			e.rec.ContactEnd(ev.id, ev.x, ev.y, now)
		}
	}
	return true
}
