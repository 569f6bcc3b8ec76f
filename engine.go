package mosaic

import (
	"image/color"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// momentumGrace is how recently the last pan emission must have happened,
// at release, for the pan to coast. Slower releases stop dead.
const momentumGrace = 100 * time.Millisecond

// pendingPlace tracks one optimistic cache write awaiting the placement
// collaborator's outcome.
type pendingPlace struct {
	coord      GridCoord
	prev       color.RGBA
	hadPrev    bool
	superseded bool // an authoritative update overwrote this coordinate
}

// placeOutcome is a resolved placement, queued from the collaborator's
// callback goroutine and drained on the engine's frame loop.
type placeOutcome struct {
	p  *pendingPlace
	ok bool
}

// Engine composes the transform, viewport, and recognizer, owns the pixel
// cache, and drives the repaint cycle. It implements [ebiten.Game]; embed it
// directly or run it with [Run].
//
// All engine state is mutated on the frame loop only. The single exception
// is the placement outcome queue, which collaborator callbacks may append to
// from any goroutine.
type Engine struct {
	cfg Config

	tr  *Transform
	vp  *Viewport
	rec *Recognizer

	placer  Placer
	tapMode TapMode

	// ClearColor fills the surface before each repaint.
	ClearColor color.RGBA
	// GridLineZoom is the zoom at or above which grid lines are overlaid.
	GridLineZoom float64
	// ShowDiagnostics overlays frame metrics and gesture state on the
	// surface.
	ShowDiagnostics bool
	// ScreenshotDir is where Screenshot writes its PNG files.
	ScreenshotDir string

	// OnPlacementRejected fires when the collaborator rejects a placement,
	// after the optimistic cache entry has been reverted. The engine never
	// retries on its own.
	OnPlacementRejected func(c GridCoord)

	drawColor color.RGBA

	// cells is the read-through pixel cache, exclusively owned and mutated
	// by the engine.
	cells   map[GridCoord]color.RGBA
	pending map[GridCoord]*pendingPlace

	mu       sync.Mutex
	resolved []placeOutcome

	// Precision-mode preview awaiting confirm/cancel.
	previewCoord GridCoord
	hasPreview   bool

	// Hover cell under an idle pointer, for UI highlight.
	hoverCoord GridCoord
	hasHover   bool

	input   inputState
	metrics frameMetrics
	quadBuf []quad

	// Momentum bookkeeping from the live pan stream.
	prevRecState   string
	panVelX        float64 // screen px per second
	panVelY        float64
	panVelAt       time.Time
	lastPanEmitAt  time.Time
	closed         bool
	scriptRunner   *ScriptRunner
	injectQueue    []injectedFrame
	touchSeen      bool
	gestureStarted bool // a contact began this frame; cancels animations

	screenshotQueue []string
}

// NewEngine creates an Engine for the given board configuration and
// placement collaborator. The placer may be nil, in which case placements
// stay local.
func NewEngine(cfg Config, placer Placer) *Engine {
	cfg = cfg.withDefaults()
	tr := NewTransform(cfg)
	e := &Engine{
		cfg:           cfg,
		tr:            tr,
		vp:            NewViewport(tr, cfg),
		rec:           NewRecognizer(),
		placer:        placer,
		ClearColor:    color.RGBA{R: 24, G: 24, B: 28, A: 255},
		GridLineZoom:  4.0,
		ScreenshotDir: "screenshots",
		drawColor:     color.RGBA{R: 255, G: 255, B: 255, A: 255},
		cells:         make(map[GridCoord]color.RGBA),
		pending:       make(map[GridCoord]*pendingPlace),
		prevRecState:  "idle",
	}
	e.rec.OnGesture(e.handleGesture)
	return e
}

// Transform returns the engine's coordinate transform.
func (e *Engine) Transform() *Transform { return e.tr }

// Viewport returns the engine's viewport manager.
func (e *Engine) Viewport() *Viewport { return e.vp }

// Recognizer returns the engine's gesture recognizer. Secondary UI can
// subscribe to classified gestures here without re-implementing recognition.
func (e *Engine) Recognizer() *Recognizer { return e.rec }

// OnGesture registers a listener for every classified gesture.
func (e *Engine) OnGesture(fn func(Gesture)) GestureHandle {
	return e.rec.OnGesture(fn)
}

// OnTap registers a listener for tap gestures only.
func (e *Engine) OnTap(fn func(Gesture)) GestureHandle {
	return e.onGestureType(GestureTap, fn)
}

// OnPan registers a listener for pan gestures only.
func (e *Engine) OnPan(fn func(Gesture)) GestureHandle {
	return e.onGestureType(GesturePan, fn)
}

// OnPinch registers a listener for pinch gestures only.
func (e *Engine) OnPinch(fn func(Gesture)) GestureHandle {
	return e.onGestureType(GesturePinch, fn)
}

// OnLongPress registers a listener for long-press gestures only. The engine
// attaches no default action to long-press; this is where collaborators
// hang context menus or cell inspection.
func (e *Engine) OnLongPress(fn func(Gesture)) GestureHandle {
	return e.onGestureType(GestureLongPress, fn)
}

func (e *Engine) onGestureType(t GestureType, fn func(Gesture)) GestureHandle {
	return e.rec.OnGesture(func(g Gesture) {
		if g.Type == t {
			fn(g)
		}
	})
}

// SetTapMode selects direct or precision placement for resolved taps.
func (e *Engine) SetTapMode(m TapMode) { e.tapMode = m }

// TapMode returns the current tap mode.
func (e *Engine) TapMode() TapMode { return e.tapMode }

// SetColor sets the color used for subsequent placements. The palette UI is
// an external collaborator; it only hands the chosen color in.
func (e *Engine) SetColor(clr color.RGBA) { e.drawColor = clr }

// Color returns the current placement color.
func (e *Engine) Color() color.RGBA { return e.drawColor }

// CellColor returns the cached color for a cell.
func (e *Engine) CellColor(c GridCoord) (color.RGBA, bool) {
	clr, ok := e.cells[c]
	return clr, ok
}

// CellCount returns the number of cached cells.
func (e *Engine) CellCount() int { return len(e.cells) }

// HoverCell returns the grid cell under an idle pointer, if any.
func (e *Engine) HoverCell() (GridCoord, bool) {
	return e.hoverCoord, e.hasHover
}

// PendingPlacement returns the precision-mode preview cell awaiting
// confirmation, if any.
func (e *Engine) PendingPlacement() (GridCoord, bool) {
	return e.previewCoord, e.hasPreview
}

// ConfirmPlacement commits the precision-mode preview, if any.
func (e *Engine) ConfirmPlacement() {
	if !e.hasPreview {
		return
	}
	e.hasPreview = false
	e.placeAt(e.previewCoord, e.drawColor)
}

// CancelPlacement discards the precision-mode preview, if any.
func (e *Engine) CancelPlacement() {
	e.hasPreview = false
}

// ApplyCellUpdates folds a batch from the external cell update stream into
// the pixel cache. Order within the batch is don't-care; the last write per
// coordinate wins. Authoritative updates always overwrite optimistic ones.
func (e *Engine) ApplyCellUpdates(batch []CellUpdate) {
	for _, u := range batch {
		if u.X < 0 || u.X >= e.cfg.GridWidth || u.Y < 0 || u.Y >= e.cfg.GridHeight {
			continue
		}
		c := GridCoord{X: u.X, Y: u.Y}
		e.cells[c] = u.Color
		if p := e.pending[c]; p != nil {
			p.superseded = true
		}
	}
}

// Shutdown requests engine teardown; the next Update returns
// ebiten.Termination, which cancels the pending frame callback.
func (e *Engine) Shutdown() { e.closed = true }

// Update runs one cooperative input cycle: placement reconciliation,
// scripted and real input, time-driven gesture classification, and viewport
// animation. Part of the [ebiten.Game] contract.
func (e *Engine) Update() error {
	if e.closed {
		return ebiten.Termination
	}
	now := time.Now()
	dt := float32(1.0 / float64(ebiten.TPS()))

	e.drainResolved()

	if e.scriptRunner != nil {
		e.scriptRunner.step(e)
	}

	e.gestureStarted = false
	e.pollInput(now)
	e.rec.Tick(now)
	e.maybeStartMomentum(now)
	e.prevRecState = e.rec.State()

	e.vp.Update(dt)
	return nil
}

// Layout reports the drawing surface size. Part of the [ebiten.Game]
// contract.
func (e *Engine) Layout(outsideWidth, outsideHeight int) (int, int) {
	e.tr.SetSurfaceSize(float64(outsideWidth), float64(outsideHeight))
	return outsideWidth, outsideHeight
}

// handleGesture interprets classified gestures into viewport or placement
// commands. Registered on the recognizer at construction.
func (e *Engine) handleGesture(g Gesture) {
	switch g.Type {
	case GestureTap:
		e.handleTap(g)
	case GesturePan:
		// Screen drag direction is opposite to the offset direction.
		gdx, gdy := e.tr.ScreenDeltaToGrid(g.DeltaX, g.DeltaY, e.vp.View())
		e.vp.ApplyPanDelta(-gdx, -gdy)
		e.recordPanVelocity(g)
	case GesturePinch:
		e.vp.ApplyZoomDeltaAt(g.ScaleDelta, g.CenterX, g.CenterY)
	case GestureLongPress:
		// Reserved for context actions; collaborators subscribe via
		// Recognizer().OnGesture.
	}
}

// handleTap resolves the tap position to a cell and either places directly
// or surfaces a precision preview.
func (e *Engine) handleTap(g Gesture) {
	c, ok := e.tr.ScreenToGrid(g.CenterX, g.CenterY, e.vp.View())
	if !ok {
		// Tap outside the board; a normal outcome.
		return
	}
	if e.tapMode == TapModePrecision {
		e.previewCoord = c
		e.hasPreview = true
		return
	}
	e.placeAt(c, e.drawColor)
}

// placeAt writes the cell optimistically and hands the placement to the
// collaborator, fire-and-forget. Rendering never blocks on the outcome.
func (e *Engine) placeAt(c GridCoord, clr color.RGBA) {
	prev, had := e.cells[c]
	e.cells[c] = clr
	if e.placer == nil {
		return
	}
	p := &pendingPlace{coord: c, prev: prev, hadPrev: had}
	e.pending[c] = p
	e.placer.Place(c.X, c.Y, clr, func(ok bool) {
		e.mu.Lock()
		e.resolved = append(e.resolved, placeOutcome{p: p, ok: ok})
		e.mu.Unlock()
	})
}

// drainResolved reconciles placement outcomes on the frame loop. A rejected
// placement reverts its optimistic entry unless an authoritative update has
// since taken the coordinate.
func (e *Engine) drainResolved() {
	e.mu.Lock()
	outcomes := e.resolved
	e.resolved = nil
	e.mu.Unlock()

	for _, o := range outcomes {
		p := o.p
		if e.pending[p.coord] == p {
			delete(e.pending, p.coord)
		}
		if o.ok || p.superseded {
			continue
		}
		if p.hadPrev {
			e.cells[p.coord] = p.prev
		} else {
			delete(e.cells, p.coord)
		}
		if e.OnPlacementRejected != nil {
			e.OnPlacementRejected(p.coord)
		}
	}
}

// recordPanVelocity tracks the instantaneous pan velocity in screen px/sec
// for momentum at release.
func (e *Engine) recordPanVelocity(g Gesture) {
	at := g.Start.Add(g.Duration)
	if !e.lastPanEmitAt.IsZero() {
		dt := at.Sub(e.lastPanEmitAt).Seconds()
		if dt > 0 {
			e.panVelX = g.DeltaX / dt
			e.panVelY = g.DeltaY / dt
			e.panVelAt = at
		}
	}
	e.lastPanEmitAt = at
}

// maybeStartMomentum coasts the viewport when a pan released while still
// moving fast. The velocity converts through the same screen-to-grid path
// (and sign inversion) as live pan deltas.
func (e *Engine) maybeStartMomentum(now time.Time) {
	if e.prevRecState != "pan" || e.rec.State() != "idle" {
		return
	}
	if e.panVelAt.IsZero() || now.Sub(e.panVelAt) > momentumGrace {
		return
	}
	gvx, gvy := e.tr.ScreenDeltaToGrid(e.panVelX, e.panVelY, e.vp.View())
	e.vp.StartMomentum(-gvx, -gvy)
	e.panVelAt = time.Time{}
	e.lastPanEmitAt = time.Time{}
}

// beginContact runs once per new contact before the recognizer sees it: any
// in-flight animation stops so it cannot fight the live gesture for the
// view, and a stale precision preview survives (it is confirm/cancel owned).
func (e *Engine) beginContact() {
	if !e.gestureStarted {
		e.vp.StopAnimations()
		e.gestureStarted = true
	}
}
