package world

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScreen(t *testing.T, width, height int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(width, height)
	t.Cleanup(screen.Fini)
	return screen
}

func TestRenderer_Draw_PlotsOnlySprites(t *testing.T) {
	// GIVEN one sprite at the origin and one invisible collider
	screen := newTestScreen(t, 81, 21)
	w := newTestWorld(1)
	visible := w.CreateEntity(true, false)
	hidden := w.CreateEntity(false, true)
	w.SetPosition(visible, 0, 0)
	w.SetPosition(hidden, -100, 100)
	r := NewRenderer(screen)

	// WHEN drawn
	drawn := r.Draw(w)

	// THEN exactly the sprite lands in the centre cell
	assert.Equal(t, 1, drawn)
	col, row := r.Cell(w, 0, 0)
	assert.Equal(t, [2]int{40, 10}, [2]int{col, row})
	mainc, _, _, _ := screen.GetContent(col, row)
	assert.Equal(t, SpriteGlyph, mainc)
	corner, _, _, _ := screen.GetContent(0, 0)
	assert.NotEqual(t, SpriteGlyph, corner)
}

func TestRenderer_Cell_MapsCornersAndClamps(t *testing.T) {
	screen := newTestScreen(t, 81, 21)
	w := newTestWorld(1)
	r := NewRenderer(screen)

	col, row := r.Cell(w, -DefaultBounds, DefaultBounds)
	assert.Equal(t, [2]int{0, 0}, [2]int{col, row})
	col, row = r.Cell(w, DefaultBounds, -DefaultBounds)
	assert.Equal(t, [2]int{80, 20}, [2]int{col, row})
	col, row = r.Cell(w, 10*DefaultBounds, -10*DefaultBounds)
	assert.Equal(t, [2]int{80, 20}, [2]int{col, row})
}
