// Package mosaic is an interaction engine for shared pixel-placement boards,
// built on [Ebitengine].
//
// Mosaic turns raw pointer and multi-touch input into a single consistent
// mapping between screen position and grid cell: gesture classification
// (tap, pan, pinch, long-press), a constrained pan/zoom viewport with
// animated transitions, and a culled render loop over a cached cell grid.
// The backend that persists placed cells, and all UI chrome around the
// board, are external collaborators.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	engine := mosaic.NewEngine(mosaic.Config{
//		GridWidth: 100, GridHeight: 100, CellSize: 10,
//	}, placer)
//	mosaic.Run(engine, mosaic.RunConfig{
//		Title: "Board", Width: 800, Height: 600,
//	})
//
// For full control, the Engine implements [ebiten.Game]; call
// [Engine.Update], [Engine.Draw], and [Engine.Layout] from your own game.
//
// # Coordinate spaces
//
// All conversion between screen, drawing-surface, and grid space lives in
// [Transform]. Both directions apply the same correction pipeline (chrome
// origin offset, device pixel ratio), which is what keeps taps, pans, and
// zooms from drifting apart; no other component does coordinate math.
//
// # Collaborators
//
// Placements go to a [Placer], fire-and-forget, with the cell cached
// optimistically and reverted if the placer rejects. Authoritative cell
// state arrives through [Engine.ApplyCellUpdates] and always wins. Viewport
// changes and classified gestures are observable through
// [Viewport.OnChange] and [Recognizer.OnGesture].
//
// [Ebitengine]: https://ebitengine.org
package mosaic
