package mosaic

import "time"

// frameMetrics accumulates render-loop counters. The rolling FPS is
// recomputed once per second from accumulated frame counts; the numbers are
// observational only and never gate correctness.
type frameMetrics struct {
	total       uint64
	window      int
	windowStart time.Time
	fps         float64
}

// tick records one rendered frame.
func (m *frameMetrics) tick(now time.Time) {
	m.total++
	m.window++
	if m.windowStart.IsZero() {
		m.windowStart = now
		return
	}
	elapsed := now.Sub(m.windowStart)
	if elapsed < time.Second {
		return
	}
	m.fps = float64(m.window) / elapsed.Seconds()
	m.window = 0
	m.windowStart = now
}

// FPS returns the rolling frames-per-second figure, updated once per second.
func (e *Engine) FPS() float64 { return e.metrics.fps }

// FrameCount returns the total number of frames rendered.
func (e *Engine) FrameCount() uint64 { return e.metrics.total }
