package mosaic

import "math"

// View is an immutable snapshot of the viewport's pan/zoom state. Offsets are
// in grid units; Zoom is the scale factor applied to CellSize.
type View struct {
	OffsetX, OffsetY float64
	Zoom             float64
}

// Transform is the single owner of all coordinate math between screen space,
// drawing-surface space, and grid space. Every conversion goes through the
// same correction pipeline (chrome origin offset, then device pixel ratio),
// in both directions. No other component performs its own coordinate math.
//
// All methods are queries; out-of-range input yields ok=false or a clamped
// value, never a panic.
type Transform struct {
	cellSize     float64
	gridW, gridH int
	deviceScale  float64
	originX      float64
	originY      float64

	surfaceW, surfaceH float64
}

// NewTransform creates a Transform from the board configuration.
func NewTransform(cfg Config) *Transform {
	cfg = cfg.withDefaults()
	return &Transform{
		cellSize:    cfg.CellSize,
		gridW:       cfg.GridWidth,
		gridH:       cfg.GridHeight,
		deviceScale: cfg.DeviceScale,
		originX:     cfg.OriginX,
		originY:     cfg.OriginY,
	}
}

// SetSurfaceSize records the drawing surface dimensions in surface pixels.
// Called by the engine whenever the surface is laid out or resized.
func (t *Transform) SetSurfaceSize(w, h float64) {
	t.surfaceW = clampFinite(w, 0, maxCoordinate)
	t.surfaceH = clampFinite(h, 0, maxCoordinate)
}

// SurfaceSize returns the current drawing surface dimensions in surface pixels.
func (t *Transform) SurfaceSize() (w, h float64) {
	return t.surfaceW, t.surfaceH
}

// CellSize returns the configured cell size in device-independent pixels.
func (t *Transform) CellSize() float64 { return t.cellSize }

// GridSize returns the board dimensions in cells.
func (t *Transform) GridSize() (w, h int) { return t.gridW, t.gridH }

// DeviceScale returns the device pixel ratio used by the correction pipeline.
func (t *Transform) DeviceScale() float64 { return t.deviceScale }

// cellSurfacePx returns the size of one cell in surface pixels at the given
// zoom.
func (t *Transform) cellSurfacePx(zoom float64) float64 {
	return t.cellSize * zoom * t.deviceScale
}

// correct maps screen coordinates to surface coordinates: subtract the chrome
// origin, then scale by the device pixel ratio.
func (t *Transform) correct(sx, sy float64) (float64, float64) {
	return (sx - t.originX) * t.deviceScale, (sy - t.originY) * t.deviceScale
}

// uncorrect is the exact inverse of correct.
func (t *Transform) uncorrect(cx, cy float64) (float64, float64) {
	return cx/t.deviceScale + t.originX, cy/t.deviceScale + t.originY
}

// screenToGridF converts a screen point to fractional grid coordinates under
// the given view. Shared by ScreenToGrid and the viewport's focal-point zoom
// so both use identical correction.
func (t *Transform) screenToGridF(sx, sy float64, v View) (gx, gy float64) {
	sx = clampFinite(sx, -maxCoordinate, maxCoordinate)
	sy = clampFinite(sy, -maxCoordinate, maxCoordinate)
	cx, cy := t.correct(sx, sy)
	px := t.cellSurfacePx(v.Zoom)
	return cx/px - v.OffsetX, cy/px - v.OffsetY
}

// ScreenToGrid converts a screen point to the grid cell under it. Returns
// ok=false when the point falls outside the board; that is a normal outcome,
// not an error.
func (t *Transform) ScreenToGrid(sx, sy float64, v View) (GridCoord, bool) {
	gx, gy := t.screenToGridF(sx, sy, v)
	c := GridCoord{X: int(math.Floor(gx)), Y: int(math.Floor(gy))}
	if c.X < 0 || c.X >= t.gridW || c.Y < 0 || c.Y >= t.gridH {
		return GridCoord{}, false
	}
	return c, true
}

// GridToScreen converts a grid cell to the screen position of its center,
// applying the inverse of the ScreenToGrid correction pipeline. Used for
// placement previews and round-trip accuracy checks.
func (t *Transform) GridToScreen(c GridCoord, v View) (sx, sy float64) {
	px := t.cellSurfacePx(v.Zoom)
	cx := (float64(c.X) + 0.5 + v.OffsetX) * px
	cy := (float64(c.Y) + 0.5 + v.OffsetY) * px
	return t.uncorrect(cx, cy)
}

// GridToSurface converts a grid cell's top-left corner to surface pixels.
// Render-side counterpart of GridToScreen; the render loop positions cell
// quads with it.
func (t *Transform) GridToSurface(gx, gy float64, v View) (x, y float64) {
	px := t.cellSurfacePx(v.Zoom)
	return (gx + v.OffsetX) * px, (gy + v.OffsetY) * px
}

// CellSurfaceRect returns the rectangle a cell covers in surface pixels
// under the given view. The render loop paints from it; hover and preview
// overlays drawn by collaborators can use it for the same geometry.
func (t *Transform) CellSurfaceRect(c GridCoord, v View) Rect {
	px := t.cellSurfacePx(v.Zoom)
	x, y := t.GridToSurface(float64(c.X), float64(c.Y), v)
	return Rect{X: x, Y: y, Width: px, Height: px}
}

// ScreenDeltaToGrid converts a screen-space movement delta to grid units.
// The chrome origin cancels in deltas; so does the device pixel ratio, since
// both the correction and the cell size carry it.
func (t *Transform) ScreenDeltaToGrid(dx, dy float64, v View) (gdx, gdy float64) {
	dx = clampFinite(dx, -maxCoordinate, maxCoordinate)
	dy = clampFinite(dy, -maxCoordinate, maxCoordinate)
	d := t.cellSize * v.Zoom
	return dx / d, dy / d
}

// ViewportGridSize returns the drawing surface dimensions in grid units at
// the given zoom.
func (t *Transform) ViewportGridSize(zoom float64) (w, h float64) {
	px := t.cellSurfacePx(zoom)
	return t.surfaceW / px, t.surfaceH / px
}

// VisibleGridArea returns the inclusive rectangle of grid cells currently
// visible under v, expanded by margin cells on every side and clamped to the
// board. The render loop uses it for culling.
func (t *Transform) VisibleGridArea(v View, margin int) GridRect {
	px := t.cellSurfacePx(v.Zoom)

	// Surface corners are already in corrected space.
	minX := int(math.Floor(0/px-v.OffsetX)) - margin
	minY := int(math.Floor(0/px-v.OffsetY)) - margin
	maxX := int(math.Ceil(t.surfaceW/px-v.OffsetX)) + margin
	maxY := int(math.Ceil(t.surfaceH/px-v.OffsetY)) + margin

	return GridRect{
		MinX: maxInt(minX, 0),
		MinY: maxInt(minY, 0),
		MaxX: minInt(maxX, t.gridW-1),
		MaxY: minInt(maxY, t.gridH-1),
	}
}

// maxCoordinate bounds every coordinate accepted from an input source.
// Values beyond it (or non-finite) come from a misbehaving device and are
// clamped before any gesture or viewport math runs.
const maxCoordinate = 1 << 24

// clampFinite clamps v to [lo, hi], mapping NaN and infinities to the nearest
// bound (NaN to lo).
func clampFinite(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
