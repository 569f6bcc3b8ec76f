package mosaic

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Diagnostics is a point-in-time support dump of engine state. Every field a
// support request form would ask for is gathered here so one call captures
// the whole picture.
type Diagnostics struct {
	TouchSeen      bool
	DeviceScale    float64
	SurfaceW       float64
	SurfaceH       float64
	View           View
	GestureState   string
	ActiveContacts int
	FPS            float64
	FrameCount     uint64
	CachedCells    int
}

// DiagnosticState returns a snapshot for support tooling.
func (e *Engine) DiagnosticState() Diagnostics {
	sw, sh := e.tr.SurfaceSize()
	return Diagnostics{
		TouchSeen:      e.touchSeen,
		DeviceScale:    e.tr.DeviceScale(),
		SurfaceW:       sw,
		SurfaceH:       sh,
		View:           e.vp.View(),
		GestureState:   e.rec.State(),
		ActiveContacts: e.rec.ContactCount(),
		FPS:            e.metrics.fps,
		FrameCount:     e.metrics.total,
		CachedCells:    len(e.cells),
	}
}

// drawDiagnostics prints the support overlay in the top-left corner.
func (e *Engine) drawDiagnostics(screen *ebiten.Image) {
	d := e.DiagnosticState()
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"FPS: %.1f (frame %d)\nzoom: %.2f offset: (%.2f, %.2f)\ngesture: %s contacts: %d cells: %d",
		d.FPS, d.FrameCount,
		d.View.Zoom, d.View.OffsetX, d.View.OffsetY,
		d.GestureState, d.ActiveContacts, d.CachedCells,
	))
}
