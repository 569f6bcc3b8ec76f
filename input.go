package mosaic

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	// mouseContactID is the recognizer contact id reserved for the mouse.
	// Touch contacts get increasing positive ids; injected ones negative.
	mouseContactID int64 = 0

	// wheelZoomStep is the zoom delta applied per wheel notch, at the
	// cursor.
	wheelZoomStep = 0.1
)

// touchRec maps one live ebiten touch to its recognizer contact.
type touchRec struct {
	id   int64
	x, y float64
}

// inputState is the ebiten polling bridge. It feeds raw contacts to the
// recognizer; all classification thresholds live there, shared across mouse
// and touch.
type inputState struct {
	mouseDown      bool
	mouseX, mouseY float64
	touches        map[ebiten.TouchID]*touchRec
	nextTouchID    int64
	scratch        []ebiten.TouchID
}

// pollInput reads mouse and touch state for this frame and forwards contact
// transitions to the recognizer. Injected frames, when queued, replace real
// input for the frame so scripted interactions run through the same path.
func (e *Engine) pollInput(now time.Time) {
	if e.consumeInjected(now) {
		return
	}
	e.pollMouse(now)
	e.pollTouches(now)
	e.pollWheel()
}

// pollMouse drives the mouse as contact 0.
func (e *Engine) pollMouse(now time.Time) {
	in := &e.input
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

	switch {
	case pressed && !in.mouseDown:
		in.mouseDown = true
		e.beginContact()
		e.rec.ContactStart(mouseContactID, x, y, now)
	case pressed && in.mouseDown:
		if x != in.mouseX || y != in.mouseY {
			e.rec.ContactMove(mouseContactID, x, y, now)
		}
	case !pressed && in.mouseDown:
		in.mouseDown = false
		e.rec.ContactEnd(mouseContactID, x, y, now)
	default:
		e.updateHover(x, y)
	}
	in.mouseX, in.mouseY = x, y
}

// pollTouches maps ebiten touch ids to recognizer contacts for their whole
// lifecycle. Touches that vanish without an end event are released at their
// last known position.
func (e *Engine) pollTouches(now time.Time) {
	in := &e.input
	if in.touches == nil {
		in.touches = make(map[ebiten.TouchID]*touchRec)
	}
	in.scratch = ebiten.AppendTouchIDs(in.scratch[:0])
	if len(in.scratch) > 0 {
		e.touchSeen = true
	}

	seen := make(map[ebiten.TouchID]bool, len(in.scratch))
	for _, tid := range in.scratch {
		seen[tid] = true
		tx, ty := ebiten.TouchPosition(tid)
		x, y := float64(tx), float64(ty)

		rec := in.touches[tid]
		if rec == nil {
			in.nextTouchID++
			rec = &touchRec{id: in.nextTouchID, x: x, y: y}
			in.touches[tid] = rec
			e.beginContact()
			e.rec.ContactStart(rec.id, x, y, now)
			continue
		}
		if x != rec.x || y != rec.y {
			e.rec.ContactMove(rec.id, x, y, now)
			rec.x, rec.y = x, y
		}
	}

	for tid, rec := range in.touches {
		if !seen[tid] {
			e.rec.ContactEnd(rec.id, rec.x, rec.y, now)
			delete(in.touches, tid)
		}
	}
}

// pollWheel applies desktop wheel zoom at the cursor, through the same
// clamped focal-zoom path as pinch.
func (e *Engine) pollWheel() {
	_, wy := ebiten.Wheel()
	if wy == 0 {
		return
	}
	mx, my := ebiten.CursorPosition()
	e.vp.StopAnimations()
	e.vp.ApplyZoomDeltaAt(wy*wheelZoomStep, float64(mx), float64(my))
}

// updateHover tracks the cell under an idle pointer for UI highlight.
func (e *Engine) updateHover(x, y float64) {
	c, ok := e.tr.ScreenToGrid(x, y, e.vp.View())
	e.hoverCoord, e.hasHover = c, ok
}
