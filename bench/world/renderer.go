package world

import (
	"github.com/gdamore/tcell/v2"
)

// Renderer draws every sprite entity onto a tcell screen, mapping the spawn
// square onto the full screen area.
type Renderer struct {
	screen tcell.Screen
	style  tcell.Style
}

// NewRenderer creates a Renderer for an initialised screen.
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{
		screen: screen,
		style:  tcell.StyleDefault.Foreground(tcell.ColorGreen),
	}
}

// Draw clears the screen, plots every sprite and presents the frame. Returns
// the number of sprites plotted.
func (r *Renderer) Draw(w *World) int {
	r.screen.Clear()
	width, height := r.screen.Size()
	if width <= 0 || height <= 0 {
		return 0
	}

	drawn := 0
	query := w.drawable.Query()
	for query.Next() {
		pos, sprite := query.Get()
		col, row := project(w.bounds, width, height, pos.X, pos.Y)
		r.screen.SetContent(col, row, sprite.Glyph, nil, r.style)
		drawn++
	}
	r.screen.Show()
	return drawn
}

// Cell returns the screen cell a world position maps to. Y grows upward in
// the world and downward on screen.
func (r *Renderer) Cell(w *World, x, y float64) (col, row int) {
	width, height := r.screen.Size()
	return project(w.bounds, width, height, x, y)
}

func project(bounds float64, width, height int, x, y float64) (col, row int) {
	span := 2 * bounds
	col = clampCell(int((x+bounds)/span*float64(width-1)+0.5), width)
	row = clampCell(int((bounds-y)/span*float64(height-1)+0.5), height)
	return col, row
}

func clampCell(c, n int) int {
	if c < 0 {
		return 0
	}
	if c >= n {
		return n - 1
	}
	return c
}
