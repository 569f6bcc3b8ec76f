package mosaic

import (
	"math"
	"time"
)

// Classification thresholds. Shared by mouse and touch input so desktop and
// mobile behave identically.
const (
	// tapMaxDuration is the longest press that can still resolve as a tap.
	tapMaxDuration = 300 * time.Millisecond
	// tapMoveThreshold is the centroid displacement in screen pixels that
	// reclassifies a pending tap into a pan.
	tapMoveThreshold = 8.0
	// longPressDelay is how long a single stationary contact must be held
	// before a long-press fires.
	longPressDelay = 500 * time.Millisecond
	// gestureEmitInterval rate-limits continuous pan/pinch emission to
	// roughly one gesture per render frame. Classification itself is not
	// throttled.
	gestureEmitInterval = 16 * time.Millisecond
)

// recognizerState is the current phase of the gesture state machine.
type recognizerState uint8

const (
	stateIdle recognizerState = iota
	stateTapPending
	statePan
	statePinch
)

// String returns the state name used in diagnostics.
func (s recognizerState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateTapPending:
		return "tap_pending"
	case statePan:
		return "pan"
	case statePinch:
		return "pinch"
	default:
		return "unknown"
	}
}

// Gesture is one classified interaction event. Gestures are ephemeral:
// produced and consumed within a single input cycle, never persisted.
type Gesture struct {
	Type     GestureType
	Start    time.Time
	Duration time.Duration
	// CenterX and CenterY are the contact centroid in screen coordinates.
	CenterX, CenterY float64
	// DeltaX and DeltaY carry the screen-space movement since the last
	// emitted pan.
	DeltaX, DeltaY float64
	// Scale is the current inter-contact distance over the initial one.
	// ScaleDelta is the change relative to the last emitted pinch.
	Scale, ScaleDelta float64
}

// contact is one live pointer/touch point, from start to end.
type contact struct {
	id   int64
	x, y float64
	t    time.Time
}

// gestureHandler is one registered gesture listener.
type gestureHandler struct {
	id uint32
	fn func(Gesture)
}

// GestureHandle allows removing a registered gesture listener.
type GestureHandle struct {
	id uint32
	r  *Recognizer
}

// Remove unregisters this listener so it no longer fires.
func (h GestureHandle) Remove() {
	if h.r == nil {
		return
	}
	s := h.r.handlers
	for i := range s {
		if s[i].id == h.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = gestureHandler{}
			h.r.handlers = s[:len(s)-1]
			return
		}
	}
}

// Recognizer classifies a live set of contact points into discrete gestures.
// It owns the contact set exclusively and performs no coordinate math beyond
// screen-space distances; callers feed it raw contact events plus a Tick per
// frame for the long-press timer.
//
// State machine: idle -> tap_pending -> {pan, pinch} -> idle, with
// long_press as a timed side branch of tap_pending, and pinch reachable
// directly when a second concurrent contact starts.
type Recognizer struct {
	state    recognizerState
	contacts []contact // in start order

	startTime        time.Time
	startCX, startCY float64 // centroid at gesture start
	lastCX, lastCY   float64 // centroid at last emission

	initialDist float64
	lastDist    float64

	// longPressAt is the pending long-press deadline; zero when cancelled.
	longPressAt    time.Time
	longPressFired bool

	lastEmit time.Time

	handlers []gestureHandler
	nextID   uint32
}

// NewRecognizer creates an idle Recognizer.
func NewRecognizer() *Recognizer {
	return &Recognizer{}
}

// OnGesture registers a listener for classified gestures.
func (r *Recognizer) OnGesture(fn func(Gesture)) GestureHandle {
	r.nextID++
	id := r.nextID
	r.handlers = append(r.handlers, gestureHandler{id: id, fn: fn})
	return GestureHandle{id: id, r: r}
}

// State returns the current state name for diagnostics.
func (r *Recognizer) State() string {
	return r.state.String()
}

// ContactCount returns the number of live contacts.
func (r *Recognizer) ContactCount() int {
	return len(r.contacts)
}

// ContactStart begins tracking a contact. The first contact arms a pending
// tap and the long-press timer; a second concurrent contact cancels the
// timer and enters the pinch state.
func (r *Recognizer) ContactStart(id int64, x, y float64, t time.Time) {
	x = clampFinite(x, -maxCoordinate, maxCoordinate)
	y = clampFinite(y, -maxCoordinate, maxCoordinate)

	if r.findContact(id) != nil {
		// Duplicate start from a misbehaving source; treat as a move.
		r.ContactMove(id, x, y, t)
		return
	}
	r.contacts = append(r.contacts, contact{id: id, x: x, y: y, t: t})

	switch len(r.contacts) {
	case 1:
		r.state = stateTapPending
		r.startTime = t
		r.startCX, r.startCY = x, y
		r.lastCX, r.lastCY = x, y
		r.longPressAt = t.Add(longPressDelay)
		r.longPressFired = false
		r.lastEmit = time.Time{}
	case 2:
		r.longPressAt = time.Time{}
		r.state = statePinch
		cx, cy := r.centroid()
		r.startCX, r.startCY = cx, cy
		r.lastCX, r.lastCY = cx, cy
		r.initialDist = r.pairDistance()
		r.lastDist = r.initialDist
		r.lastEmit = time.Time{}
	default:
		// Extra contacts are tracked but do not change classification;
		// pinch math uses the first two.
	}
}

// ContactMove updates a contact's position and advances classification.
// Moves for unknown contacts are dropped silently.
func (r *Recognizer) ContactMove(id int64, x, y float64, t time.Time) {
	c := r.findContact(id)
	if c == nil {
		return
	}
	c.x = clampFinite(x, -maxCoordinate, maxCoordinate)
	c.y = clampFinite(y, -maxCoordinate, maxCoordinate)
	c.t = t

	switch r.state {
	case stateTapPending:
		cx, cy := r.centroid()
		if math.Hypot(cx-r.startCX, cy-r.startCY) > tapMoveThreshold {
			// Reclassified: the pending tap becomes a pan and the
			// long-press timer dies with it.
			r.longPressAt = time.Time{}
			r.state = statePan
			r.lastCX, r.lastCY = cx, cy
			r.lastEmit = time.Time{}
		}
	case statePan:
		r.emitPan(t)
	case statePinch:
		if len(r.contacts) >= 2 {
			r.emitPinch(t)
		}
	}
}

// ContactEnd stops tracking a contact. A release still inside the tap
// thresholds emits a tap; any other termination emits nothing extra, since
// the continuous pan/pinch stream already carried the information.
func (r *Recognizer) ContactEnd(id int64, x, y float64, t time.Time) {
	c := r.findContact(id)
	if c == nil {
		// End without a matching start (OS-level cancel); drop silently.
		return
	}
	c.x = clampFinite(x, -maxCoordinate, maxCoordinate)
	c.y = clampFinite(y, -maxCoordinate, maxCoordinate)

	if r.state == stateTapPending && len(r.contacts) == 1 && !r.longPressFired {
		elapsed := t.Sub(r.startTime)
		disp := math.Hypot(c.x-r.startCX, c.y-r.startCY)
		if elapsed <= tapMaxDuration && disp <= tapMoveThreshold {
			r.emit(Gesture{
				Type:     GestureTap,
				Start:    r.startTime,
				Duration: elapsed,
				CenterX:  c.x,
				CenterY:  c.y,
			})
		}
	}

	r.removeContact(id)
	r.afterContactLoss(t)
}

// ContactCancel drops a contact without any gesture resolution.
func (r *Recognizer) ContactCancel(id int64, t time.Time) {
	if r.findContact(id) == nil {
		return
	}
	r.removeContact(id)
	r.afterContactLoss(t)
}

// afterContactLoss resets to idle at zero contacts, regardless of prior
// state. A pinch that loses its second contact stays in the pinch state but
// emits nothing until another contact arrives or the set empties.
func (r *Recognizer) afterContactLoss(t time.Time) {
	if len(r.contacts) == 0 {
		r.reset()
		return
	}
	if r.state == statePinch && len(r.contacts) == 1 {
		r.initialDist = 0
	}
}

// Tick advances time-driven classification; call once per frame. The
// long-press fires only while still tap_pending with exactly one live
// contact. Any transition that superseded it already cleared the deadline,
// so a stale deadline is a silent no-op.
func (r *Recognizer) Tick(t time.Time) {
	if r.longPressAt.IsZero() || t.Before(r.longPressAt) {
		return
	}
	if r.state != stateTapPending || len(r.contacts) != 1 {
		r.longPressAt = time.Time{}
		return
	}
	r.longPressAt = time.Time{}
	r.longPressFired = true
	c := r.contacts[0]
	r.emit(Gesture{
		Type:     GestureLongPress,
		Start:    r.startTime,
		Duration: t.Sub(r.startTime),
		CenterX:  c.x,
		CenterY:  c.y,
	})
}

// emitPan reports centroid movement since the last emission, throttled to
// the emit interval. Tracked state is always current; only emission is
// rate-limited.
func (r *Recognizer) emitPan(t time.Time) {
	if !r.lastEmit.IsZero() && t.Sub(r.lastEmit) < gestureEmitInterval {
		return
	}
	cx, cy := r.centroid()
	dx := cx - r.lastCX
	dy := cy - r.lastCY
	if dx == 0 && dy == 0 {
		return
	}
	r.lastEmit = t
	r.lastCX, r.lastCY = cx, cy
	r.emit(Gesture{
		Type:     GesturePan,
		Start:    r.startTime,
		Duration: t.Sub(r.startTime),
		CenterX:  cx,
		CenterY:  cy,
		DeltaX:   dx,
		DeltaY:   dy,
	})
}

// emitPinch reports the scale relative to the initial inter-contact
// distance, throttled to the emit interval.
func (r *Recognizer) emitPinch(t time.Time) {
	if !r.lastEmit.IsZero() && t.Sub(r.lastEmit) < gestureEmitInterval {
		return
	}
	dist := r.pairDistance()
	if r.initialDist <= 0 {
		// Second contact re-arrived after a partial pinch; re-anchor.
		r.initialDist = dist
		r.lastDist = dist
		return
	}
	cx, cy := r.centroid()
	scale := dist / r.initialDist
	scaleDelta := 0.0
	if r.lastDist > 0 {
		scaleDelta = dist/r.lastDist - 1.0
	}
	r.lastEmit = t
	r.lastDist = dist
	r.lastCX, r.lastCY = cx, cy
	r.emit(Gesture{
		Type:       GesturePinch,
		Start:      r.startTime,
		Duration:   t.Sub(r.startTime),
		CenterX:    cx,
		CenterY:    cy,
		Scale:      scale,
		ScaleDelta: scaleDelta,
	})
}

func (r *Recognizer) emit(g Gesture) {
	for _, h := range r.handlers {
		h.fn(g)
	}
}

// reset returns the recognizer to idle and clears all timers.
func (r *Recognizer) reset() {
	r.state = stateIdle
	r.contacts = r.contacts[:0]
	r.longPressAt = time.Time{}
	r.longPressFired = false
	r.initialDist = 0
	r.lastDist = 0
	r.lastEmit = time.Time{}
}

func (r *Recognizer) findContact(id int64) *contact {
	for i := range r.contacts {
		if r.contacts[i].id == id {
			return &r.contacts[i]
		}
	}
	return nil
}

func (r *Recognizer) removeContact(id int64) {
	for i := range r.contacts {
		if r.contacts[i].id == id {
			copy(r.contacts[i:], r.contacts[i+1:])
			r.contacts = r.contacts[:len(r.contacts)-1]
			return
		}
	}
}

// centroid returns the mean position of the contacts that define the current
// gesture: the first two for a pinch, all of them otherwise.
func (r *Recognizer) centroid() (float64, float64) {
	n := len(r.contacts)
	if n == 0 {
		return 0, 0
	}
	if r.state == statePinch && n > 2 {
		n = 2
	}
	var sx, sy float64
	for i := 0; i < n; i++ {
		sx += r.contacts[i].x
		sy += r.contacts[i].y
	}
	return sx / float64(n), sy / float64(n)
}

// pairDistance returns the distance between the first two contacts, or 0
// when fewer than two are live.
func (r *Recognizer) pairDistance() float64 {
	if len(r.contacts) < 2 {
		return 0
	}
	a, b := r.contacts[0], r.contacts[1]
	return math.Hypot(b.x-a.x, b.y-a.y)
}
