package mosaic

import "github.com/hajimehoshi/ebiten/v2"

// RunConfig configures the window created by Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// Resizable allows the user to resize the window; the engine re-lays
	// out and re-clamps the viewport automatically.
	Resizable bool
	// ShowDiagnostics enables the frame-metrics overlay.
	ShowDiagnostics bool
}

// Run creates a window and drives the engine's game loop until the window
// closes or Engine.Shutdown is called. For full control, skip Run and use
// the Engine as an [ebiten.Game] directly.
func Run(e *Engine, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 800
	}
	if cfg.Height <= 0 {
		cfg.Height = 600
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	e.ShowDiagnostics = cfg.ShowDiagnostics

	if err := ebiten.RunGame(e); err != nil && err != ebiten.Termination {
		return err
	}
	return nil
}
