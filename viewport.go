package mosaic

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Momentum tuning. Velocity is in grid units per second and decays
// exponentially; below the stop speed the animation ends.
const (
	momentumDecay     = 0.002 // fraction of velocity remaining after one second
	momentumStopSpeed = 0.05  // grid units per second
)

// viewAnim holds active tweens for an animated viewport transition.
type viewAnim struct {
	tweenX   *gween.Tween
	tweenY   *gween.Tween
	tweenZ   *gween.Tween
	doneX    bool
	doneY    bool
	doneZoom bool
}

// viewportHandler is one registered change listener.
type viewportHandler struct {
	id uint32
	fn func(View)
}

// ViewportHandle allows removing a registered viewport change listener.
type ViewportHandle struct {
	id uint32
	vp *Viewport
}

// Remove unregisters this listener so it no longer fires.
func (h ViewportHandle) Remove() {
	if h.vp == nil {
		return
	}
	s := h.vp.handlers
	for i := range s {
		if s[i].id == h.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = viewportHandler{}
			h.vp.handlers = s[:len(s)-1]
			return
		}
	}
}

// Viewport is the single source of truth for pan offset and zoom. Every
// mutation, including animated transitions and momentum, goes through the
// same clamp path; there is no unclamped way to move the view.
//
// Clamping policy per axis: when the visible area is larger than the board,
// the board is centered in it; when smaller, the board edge never recedes
// past the surface edge.
type Viewport struct {
	tr *Transform

	offsetX, offsetY float64 // grid units
	zoom             float64
	minZoom, maxZoom float64

	anim       *viewAnim
	velX, velY float64
	coasting   bool

	handlers []viewportHandler
	nextID   uint32
}

// NewViewport creates a Viewport bound to the given transform.
func NewViewport(tr *Transform, cfg Config) *Viewport {
	cfg = cfg.withDefaults()
	vp := &Viewport{
		tr:      tr,
		zoom:    1.0,
		minZoom: cfg.MinZoom,
		maxZoom: cfg.MaxZoom,
	}
	return vp
}

// View returns an immutable snapshot of the current pan/zoom state.
func (vp *Viewport) View() View {
	return View{OffsetX: vp.offsetX, OffsetY: vp.offsetY, Zoom: vp.zoom}
}

// ZoomBounds returns the configured zoom limits.
func (vp *Viewport) ZoomBounds() (min, max float64) {
	return vp.minZoom, vp.maxZoom
}

// OnChange registers a listener fired after every mutation that actually
// changed the view. Mutations fully absorbed by clamping do not fire.
func (vp *Viewport) OnChange(fn func(View)) ViewportHandle {
	vp.nextID++
	id := vp.nextID
	vp.handlers = append(vp.handlers, viewportHandler{id: id, fn: fn})
	return ViewportHandle{id: id, vp: vp}
}

// SetPan sets the pan offset in grid units, subject to clamping.
func (vp *Viewport) SetPan(x, y float64) {
	prev := vp.View()
	vp.offsetX = clampFinite(x, -maxCoordinate, maxCoordinate)
	vp.offsetY = clampFinite(y, -maxCoordinate, maxCoordinate)
	vp.clampOffset()
	vp.notifyIfChanged(prev)
}

// ApplyPanDelta shifts the pan offset by (dx, dy) grid units, subject to
// clamping.
func (vp *Viewport) ApplyPanDelta(dx, dy float64) {
	vp.SetPan(vp.offsetX+dx, vp.offsetY+dy)
}

// SetZoom sets the zoom factor, clamped to the configured bounds. The point
// at the center of the surface stays anchored.
func (vp *Viewport) SetZoom(z float64) {
	cx, cy := vp.surfaceCenterScreen()
	vp.SetZoomAt(z, cx, cy)
}

// SetZoomAt sets the zoom factor while keeping the grid point under the
// given screen position stationary (focal-point zoom).
func (vp *Viewport) SetZoomAt(z, screenX, screenY float64) {
	prev := vp.View()

	z = clampFinite(z, vp.minZoom, vp.maxZoom)
	fgx, fgy := vp.tr.screenToGridF(screenX, screenY, prev)

	vp.zoom = z
	cx, cy := vp.tr.correct(screenX, screenY)
	px := vp.tr.cellSurfacePx(z)
	vp.offsetX = cx/px - fgx
	vp.offsetY = cy/px - fgy

	vp.clampOffset()
	vp.notifyIfChanged(prev)
}

// ApplyZoomDelta scales the zoom by (1 + delta) about the surface center.
func (vp *Viewport) ApplyZoomDelta(delta float64) {
	cx, cy := vp.surfaceCenterScreen()
	vp.ApplyZoomDeltaAt(delta, cx, cy)
}

// ApplyZoomDeltaAt scales the zoom by (1 + delta) about the given screen
// position. Arbitrarily large deltas in either direction land on the zoom
// bounds.
func (vp *Viewport) ApplyZoomDeltaAt(delta, screenX, screenY float64) {
	delta = clampFinite(delta, -maxCoordinate, maxCoordinate)
	factor := 1 + delta
	if factor <= 0 {
		factor = vp.minZoom / vp.zoom
	}
	vp.SetZoomAt(vp.zoom*factor, screenX, screenY)
}

// NavigateToGrid moves the view so the given cell is centered on the
// surface. A positive duration animates the transition; zero or negative
// snaps immediately.
func (vp *Viewport) NavigateToGrid(x, y int, duration float32, easeFn ease.TweenFunc) {
	vw, vh := vp.tr.ViewportGridSize(vp.zoom)
	tx := vw/2 - (float64(x) + 0.5)
	ty := vh/2 - (float64(y) + 0.5)
	vp.transitionTo(tx, ty, vp.zoom, duration, easeFn)
}

// FitToGrid zooms and pans so the whole board is visible and centered.
func (vp *Viewport) FitToGrid(duration float32, easeFn ease.TweenFunc) {
	gw, gh := vp.tr.GridSize()
	sw, sh := vp.tr.SurfaceSize()
	if gw == 0 || gh == 0 || sw == 0 || sh == 0 {
		return
	}
	zx := sw / (vp.tr.cellSurfacePx(1) * float64(gw))
	zy := sh / (vp.tr.cellSurfacePx(1) * float64(gh))
	z := clampFinite(math.Min(zx, zy), vp.minZoom, vp.maxZoom)

	vw, vh := vp.tr.ViewportGridSize(z)
	vp.transitionTo((vw-float64(gw))/2, (vh-float64(gh))/2, z, duration, easeFn)
}

// Reset returns the view to zoom 1 with the board's top-left corner at the
// surface's top-left (subject to the usual clamping).
func (vp *Viewport) Reset(duration float32, easeFn ease.TweenFunc) {
	vp.transitionTo(0, 0, 1.0, duration, easeFn)
}

// transitionTo starts (or snaps) a transition to the given target state.
// Targets are pre-clamped so tweens end inside bounds; every intermediate
// frame still passes through the clamp path.
func (vp *Viewport) transitionTo(tx, ty, tz float64, duration float32, easeFn ease.TweenFunc) {
	vp.StopAnimations()

	tz = clampFinite(tz, vp.minZoom, vp.maxZoom)
	tx, ty = vp.clampedOffset(tx, ty, tz)

	if duration <= 0 {
		prev := vp.View()
		vp.offsetX, vp.offsetY, vp.zoom = tx, ty, tz
		vp.clampOffset()
		vp.notifyIfChanged(prev)
		return
	}

	if easeFn == nil {
		easeFn = ease.OutQuad
	}
	vp.anim = &viewAnim{
		tweenX: gween.New(float32(vp.offsetX), float32(tx), duration, easeFn),
		tweenY: gween.New(float32(vp.offsetY), float32(ty), duration, easeFn),
		tweenZ: gween.New(float32(vp.zoom), float32(tz), duration, easeFn),
	}
}

// StartMomentum begins a coasting pan with the given velocity in grid units
// per second. Used by the engine after a fast pan release.
func (vp *Viewport) StartMomentum(vx, vy float64) {
	vx = clampFinite(vx, -maxCoordinate, maxCoordinate)
	vy = clampFinite(vy, -maxCoordinate, maxCoordinate)
	if math.Hypot(vx, vy) < momentumStopSpeed {
		return
	}
	vp.velX, vp.velY = vx, vy
	vp.coasting = true
}

// StopAnimations cancels any in-flight transition or momentum coast. The
// engine calls this the moment a new gesture begins so an old animation
// cannot fight live input for the view state.
func (vp *Viewport) StopAnimations() {
	vp.anim = nil
	vp.coasting = false
	vp.velX, vp.velY = 0, 0
}

// Animating reports whether a transition or momentum coast is in flight.
func (vp *Viewport) Animating() bool {
	return vp.anim != nil || vp.coasting
}

// Update advances animated transitions and momentum by dt seconds. Called
// once per frame by the engine.
func (vp *Viewport) Update(dt float32) {
	if vp.anim != nil {
		prev := vp.View()
		a := vp.anim
		if !a.doneX {
			val, done := a.tweenX.Update(dt)
			vp.offsetX = float64(val)
			a.doneX = done
		}
		if !a.doneY {
			val, done := a.tweenY.Update(dt)
			vp.offsetY = float64(val)
			a.doneY = done
		}
		if !a.doneZoom {
			val, done := a.tweenZ.Update(dt)
			vp.zoom = clampFinite(float64(val), vp.minZoom, vp.maxZoom)
			a.doneZoom = done
		}
		if a.doneX && a.doneY && a.doneZoom {
			vp.anim = nil
		}
		vp.clampOffset()
		vp.notifyIfChanged(prev)
	}

	if vp.coasting {
		before := vp.View()
		vp.ApplyPanDelta(vp.velX*float64(dt), vp.velY*float64(dt))
		after := vp.View()

		decay := math.Pow(momentumDecay, float64(dt))
		vp.velX *= decay
		vp.velY *= decay

		// Stop when too slow or fully absorbed by the boundary clamp.
		if math.Hypot(vp.velX, vp.velY) < momentumStopSpeed || before == after {
			vp.coasting = false
			vp.velX, vp.velY = 0, 0
		}
	}
}

// surfaceCenterScreen returns the screen position of the surface center,
// through the inverse correction so focal math sees true screen coordinates.
func (vp *Viewport) surfaceCenterScreen() (float64, float64) {
	sw, sh := vp.tr.SurfaceSize()
	return vp.tr.uncorrect(sw/2, sh/2)
}

// clampedOffset returns (x, y) clamped per the centering/boundary policy at
// the given zoom.
func (vp *Viewport) clampedOffset(x, y, zoom float64) (float64, float64) {
	vw, vh := vp.tr.ViewportGridSize(zoom)
	gw, gh := vp.tr.GridSize()
	return clampAxis(x, vw, float64(gw)), clampAxis(y, vh, float64(gh))
}

// clampOffset re-clamps the current offset against the current zoom.
func (vp *Viewport) clampOffset() {
	vp.offsetX, vp.offsetY = vp.clampedOffset(vp.offsetX, vp.offsetY, vp.zoom)
}

// clampAxis applies the per-axis boundary policy: center the board when the
// visible span exceeds it, otherwise keep the board edge at or beyond the
// surface edge.
func clampAxis(offset, viewGrid, grid float64) float64 {
	if viewGrid <= 0 || grid <= 0 {
		return offset
	}
	if viewGrid >= grid {
		return (viewGrid - grid) / 2
	}
	lo := viewGrid - grid
	return math.Max(lo, math.Min(offset, 0))
}

// notifyIfChanged fires change listeners when the view differs from prev.
func (vp *Viewport) notifyIfChanged(prev View) {
	cur := vp.View()
	if cur == prev {
		return
	}
	for _, h := range vp.handlers {
		h.fn(cur)
	}
}
