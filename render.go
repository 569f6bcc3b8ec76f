package mosaic

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// cullMarginCells is the extra ring of cells painted beyond the visible
// rectangle so slow frames during a fast pan don't show pop-in.
const cullMarginCells = 2

// gridLineColor is the overlay color for cell boundaries at high zoom.
var gridLineColor = color.RGBA{R: 255, G: 255, B: 255, A: 40}

// previewAlpha dims the precision-mode preview cell against placed cells.
const previewAlpha = 0.6

// quad is one solid-color rectangle to paint, in surface pixels. The frame's
// quad list is a pure function of viewport, cache, and preview state, so an
// unchanged state re-emits an identical list.
type quad struct {
	x, y, w, h float64
	clr        color.RGBA
	alpha      float32
}

// Draw repaints the visible board region. Part of the [ebiten.Game]
// contract. Rendering reads viewport and cache state but never mutates it.
func (e *Engine) Draw(screen *ebiten.Image) {
	e.metrics.tick(time.Now())

	b := screen.Bounds()
	e.tr.SetSurfaceSize(float64(b.Dx()), float64(b.Dy()))

	screen.Fill(e.ClearColor)

	e.quadBuf = e.buildQuads(e.quadBuf[:0])
	op := &ebiten.DrawImageOptions{}
	for i := range e.quadBuf {
		q := &e.quadBuf[i]
		op.GeoM.Reset()
		op.GeoM.Scale(q.w, q.h)
		op.GeoM.Translate(q.x, q.y)
		op.ColorScale.Reset()
		op.ColorScale.ScaleWithColor(q.clr)
		op.ColorScale.ScaleAlpha(q.alpha)
		screen.DrawImage(WhitePixel, op)
	}

	if e.ShowDiagnostics {
		e.drawDiagnostics(screen)
	}
	e.flushScreenshots(screen)
}

// buildQuads emits the frame's paint list: cached cells inside the visible
// rectangle (plus margin), the precision preview, and grid lines above the
// zoom threshold.
func (e *Engine) buildQuads(buf []quad) []quad {
	if sw, sh := e.tr.SurfaceSize(); sw <= 0 || sh <= 0 {
		return buf
	}
	v := e.vp.View()
	area := e.tr.VisibleGridArea(v, cullMarginCells)
	if area.Empty() {
		return buf
	}
	for y := area.MinY; y <= area.MaxY; y++ {
		for x := area.MinX; x <= area.MaxX; x++ {
			clr, ok := e.cells[GridCoord{X: x, Y: y}]
			if !ok {
				continue
			}
			r := e.tr.CellSurfaceRect(GridCoord{X: x, Y: y}, v)
			buf = append(buf, quad{x: r.X, y: r.Y, w: r.Width, h: r.Height, clr: clr, alpha: 1})
		}
	}

	if e.hasPreview && area.Contains(e.previewCoord) {
		r := e.tr.CellSurfaceRect(e.previewCoord, v)
		buf = append(buf, quad{x: r.X, y: r.Y, w: r.Width, h: r.Height, clr: e.drawColor, alpha: previewAlpha})
	}

	if v.Zoom >= e.GridLineZoom {
		buf = e.buildGridLines(buf, v, area)
	}
	return buf
}

// buildGridLines emits one-pixel cell boundaries across the visible area.
func (e *Engine) buildGridLines(buf []quad, v View, area GridRect) []quad {
	sw, sh := e.tr.SurfaceSize()

	for x := area.MinX; x <= area.MaxX+1; x++ {
		sx, _ := e.tr.GridToSurface(float64(x), 0, v)
		if sx < 0 || sx > sw {
			continue
		}
		buf = append(buf, quad{x: sx, y: 0, w: 1, h: sh, clr: gridLineColor, alpha: 1})
	}
	for y := area.MinY; y <= area.MaxY+1; y++ {
		_, sy := e.tr.GridToSurface(0, float64(y), v)
		if sy < 0 || sy > sh {
			continue
		}
		buf = append(buf, quad{x: 0, y: sy, w: sw, h: 1, clr: gridLineColor, alpha: 1})
	}
	return buf
}
