package world

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpatialGrid_CellOf_ClampsOutsidePositions(t *testing.T) {
	g := NewSpatialGrid(10, 2)

	assert.Equal(t, 11, g.Size)
	cx, cy := g.CellOf(-10, -10)
	assert.Equal(t, [2]int{0, 0}, [2]int{cx, cy})
	cx, cy = g.CellOf(0, 0)
	assert.Equal(t, [2]int{5, 5}, [2]int{cx, cy})
	cx, cy = g.CellOf(1000, -1000)
	assert.Equal(t, [2]int{10, 0}, [2]int{cx, cy})
}

func TestSpatialGrid_Neighbors_CoversAdjacentCellsOnly(t *testing.T) {
	g := NewSpatialGrid(10, 2)
	g.Add(0, 0, 0)
	g.Add(1, 2.5, 0)  // adjacent cell
	g.Add(2, 6, 0)    // two cells away
	g.Add(3, -9, -9)  // far corner

	var got []int
	cx, cy := g.CellOf(0, 0)
	g.Neighbors(cx, cy, func(idx int32) { got = append(got, int(idx)) })
	sort.Ints(got)

	assert.Equal(t, []int{0, 1}, got)

	g.Clear()
	got = got[:0]
	g.Neighbors(cx, cy, func(idx int32) { got = append(got, int(idx)) })
	assert.Empty(t, got)
}
