package mosaic

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// GridCoord identifies one addressable cell on the board.
// Valid coordinates satisfy 0 <= X < GridWidth and 0 <= Y < GridHeight.
type GridCoord struct {
	X, Y int
}

// Rect is an axis-aligned rectangle in surface pixels. The coordinate system
// has its origin at the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// GridRect is an inclusive rectangle of grid cells, used for visibility
// culling. Empty when MaxX < MinX or MaxY < MinY.
type GridRect struct {
	MinX, MinY, MaxX, MaxY int
}

// Empty reports whether the rectangle contains no cells.
func (r GridRect) Empty() bool {
	return r.MaxX < r.MinX || r.MaxY < r.MinY
}

// Contains reports whether the cell c lies inside the rectangle.
func (r GridRect) Contains(c GridCoord) bool {
	return c.X >= r.MinX && c.X <= r.MaxX && c.Y >= r.MinY && c.Y <= r.MaxY
}

// CellUpdate is one record from the external cell update stream.
// Within a batch, order of application is undefined; the last write per
// coordinate wins.
type CellUpdate struct {
	X, Y  int
	Color color.RGBA
}

// Placer is the external placement collaborator. Place may complete
// asynchronously; done must be called exactly once, from any goroutine,
// with ok=false when the placement was rejected (e.g. rate limited).
// The engine reconciles its optimistic cache from the outcome and never
// retries on its own.
type Placer interface {
	Place(x, y int, clr color.RGBA, done func(ok bool))
}

// TapMode selects how a resolved tap turns into a placement.
type TapMode uint8

const (
	// TapModeDirect places immediately on tap.
	TapModeDirect TapMode = iota
	// TapModePrecision surfaces a pending cell that must be confirmed
	// (or cancelled) before placement happens.
	TapModePrecision
)

// GestureType identifies a classified gesture.
type GestureType uint8

const (
	GestureTap       GestureType = iota // press and release within time and movement limits
	GesturePan                          // one contact dragged beyond the movement limit
	GesturePinch                        // two concurrent contacts changing distance
	GestureLongPress                    // one stationary contact held past the long-press delay
)

// String returns the gesture type name used in diagnostics.
func (g GestureType) String() string {
	switch g {
	case GestureTap:
		return "tap"
	case GesturePan:
		return "pan"
	case GesturePinch:
		return "pinch"
	case GestureLongPress:
		return "long_press"
	default:
		return "unknown"
	}
}

// Config supplies the fixed board geometry and zoom limits. It is read once
// at construction and never mutated afterward.
type Config struct {
	// GridWidth and GridHeight are the board dimensions in cells.
	GridWidth, GridHeight int
	// CellSize is the size of one cell in device-independent pixels at
	// zoom 1.0.
	CellSize float64
	// MinZoom and MaxZoom bound the zoom factor. Zero values default to
	// 0.1 and 10.
	MinZoom, MaxZoom float64
	// DeviceScale is the device pixel ratio between reported input
	// coordinates and drawing-surface pixels. Zero defaults to 1.
	DeviceScale float64
	// OriginX and OriginY are the screen-space offset of the drawing
	// surface's top-left corner (viewport chrome correction).
	OriginX, OriginY float64
}

// withDefaults returns cfg with zero fields replaced by defaults.
func (cfg Config) withDefaults() Config {
	if cfg.MinZoom == 0 {
		cfg.MinZoom = defaultMinZoom
	}
	if cfg.MaxZoom == 0 {
		cfg.MaxZoom = defaultMaxZoom
	}
	if cfg.DeviceScale == 0 {
		cfg.DeviceScale = 1
	}
	if cfg.CellSize == 0 {
		cfg.CellSize = defaultCellSize
	}
	return cfg
}

const (
	defaultMinZoom  = 0.1
	defaultMaxZoom  = 10.0
	defaultCellSize = 10.0
)

// ColorWhite is the tint used for untouched render geometry.
var ColorWhite = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// WhitePixel is a 1x1 white image scaled to draw solid-color cells and
// grid lines.
var WhitePixel *ebiten.Image

func init() {
	WhitePixel = ebiten.NewImage(1, 1)
	WhitePixel.Fill(ColorWhite)
}
